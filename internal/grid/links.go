package grid

// MaxLinks bounds the number of springs touching one particle.
const MaxLinks = 2 * len(offsets)

// Link is one spring seen from a particle. Head is true when the particle is
// the spring's A endpoint.
type Link struct {
	Other int
	Rest  float32
	Head  bool
}

// backward lists the offsets of the springs whose B endpoint is the
// particle, ordered by ascending A index.
var backward = [...]offset{
	{-2, 0, Bend},       // down two
	{-1, -1, Shear},     // down-right
	{-1, 0, Structural}, // down
	{-1, 1, Shear},      // down-left
	{0, -2, Bend},       // right two
	{0, -1, Structural}, // right
}

// Links appends the springs touching particle i to dst, tail links first in
// ascending partner index, then head links in emission order. Summing spring
// forces in this order reproduces the accumulation of a sequential pass over
// Springs() exactly.
func (g *Grid) Links(i int, dst []Link) []Link {
	r, c := g.Coords(i)
	for _, o := range backward {
		if !g.inside(r+o.dr, c+o.dc) {
			continue
		}
		a := g.Index(r+o.dr, c+o.dc)
		dst = append(dst, Link{Other: a, Rest: g.RestLength(a, i)})
	}
	for _, o := range offsets {
		if !g.inside(r+o.dr, c+o.dc) {
			continue
		}
		b := g.Index(r+o.dr, c+o.dc)
		dst = append(dst, Link{Other: b, Rest: g.RestLength(i, b), Head: true})
	}
	return dst
}

// LinkTable flattens Links for every particle. Links of particle i are
// links[start[i]:start[i+1]].
func (g *Grid) LinkTable() (links []Link, start []int32) {
	n := g.Len()
	start = make([]int32, n+1)
	links = make([]Link, 0, 2*g.SpringCount())
	for i := 0; i < n; i++ {
		start[i] = int32(len(links))
		links = g.Links(i, links)
	}
	start[n] = int32(len(links))
	return links, start
}
