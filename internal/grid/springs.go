package grid

// Kind classifies a spring by the offset it spans.
type Kind uint8

const (
	Structural Kind = iota
	Shear
	Bend
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	}
	return "unknown"
}

// Spring joins particles A < B with the rest-pose distance captured at
// construction.
type Spring struct {
	A, B int
	Rest float32
	Kind Kind
}

// offset is one neighbour direction, in emission order.
type offset struct {
	dr, dc int
	kind   Kind
}

// offsets lists the forward neighbours of (r, c). The order defines the
// spring list order and therefore the Gauss-Seidel sweep order.
var offsets = [...]offset{
	{0, 1, Structural}, // right
	{1, 0, Structural}, // down
	{1, 1, Shear},      // down-right
	{1, -1, Shear},     // down-left
	{0, 2, Bend},       // right two
	{2, 0, Bend},       // down two
}

func (g *Grid) inside(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// Springs enumerates every spring: for each particle in row-major order, one
// spring per in-bounds forward offset.
func (g *Grid) Springs() []Spring {
	springs := make([]Spring, 0, g.SpringCount())
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			a := g.Index(r, c)
			for _, o := range offsets {
				if !g.inside(r+o.dr, c+o.dc) {
					continue
				}
				b := g.Index(r+o.dr, c+o.dc)
				springs = append(springs, Spring{A: a, B: b, Rest: g.RestLength(a, b), Kind: o.kind})
			}
		}
	}
	return springs
}

// SpringCount is the closed-form size of Springs().
func (g *Grid) SpringCount() int {
	r, c := g.rows, g.cols
	return r*(c-1) + (r-1)*c + 2*(r-1)*(c-1) + r*(c-2) + (r-2)*c
}
