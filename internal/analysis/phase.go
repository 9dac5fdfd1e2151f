package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/clothlab/internal/sim"
)

type Point struct{ X, Y float64 }

// Portrait pairs two trace columns frame by frame.
type Portrait struct {
	XField, YField string
	Points         []Point
}

func NewPortrait(samples []sim.Sample, xField, yField string) (*Portrait, error) {
	xs, err := sim.Column(samples, xField)
	if err != nil {
		return nil, err
	}
	ys, err := sim.Column(samples, yField)
	if err != nil {
		return nil, err
	}

	p := &Portrait{XField: xField, YField: yField, Points: make([]Point, len(xs))}
	for i := range xs {
		p.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return p, nil
}

// ASCII plots the portrait on a width x height character grid.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s vs %s\n", p.YField, p.XField)
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// UpCrossings returns the interpolated times at which xs rises through
// threshold. times and xs must have equal length.
func UpCrossings(times, xs []float64, threshold float64) []float64 {
	out := make([]float64, 0)
	for i := 1; i < len(xs) && i < len(times); i++ {
		prev, curr := xs[i-1], xs[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// SwayPeriod estimates the oscillation period of a trace column from the
// mean spacing of its upward crossings through the column mean. ok is
// false with fewer than two crossings.
func SwayPeriod(samples []sim.Sample, field string) (period float64, ok bool, err error) {
	xs, err := sim.Column(samples, field)
	if err != nil {
		return 0, false, err
	}
	times, _ := sim.Column(samples, "time")
	if len(xs) == 0 {
		return 0, false, nil
	}

	crossings := UpCrossings(times, xs, floats.Sum(xs)/float64(len(xs)))
	if len(crossings) < 2 {
		return 0, false, nil
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1), true, nil
}
