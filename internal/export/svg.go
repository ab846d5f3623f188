// Package export renders recorded coasts for use outside the terminal.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/coastsim/internal/coasting"
)

// Series selects which sample field is plotted against elapsed time.
type Series string

const (
	SeriesVelocity Series = "velocity"
	SeriesDistance Series = "distance"
)

func (s Series) value(sm coasting.Sample) (float64, error) {
	switch s {
	case SeriesVelocity:
		return sm.Velocity, nil
	case SeriesDistance:
		return sm.Distance, nil
	default:
		return 0, fmt.Errorf("unknown series %q", string(s))
	}
}

type Point struct {
	X, Y float64
}

// SamplesToSVG plots one series of samples against elapsed time.
func SamplesToSVG(samples []coasting.Sample, series Series, width, height int, strokeColor string) (string, error) {
	points := make([]Point, len(samples))
	for i, sm := range samples {
		y, err := series.value(sm)
		if err != nil {
			return "", err
		}
		points[i] = Point{X: sm.Elapsed, Y: y}
	}
	return CurveToSVG(points, width, height, strokeColor), nil
}

// CurveToSVG draws points as a single polyline scaled to fill width by
// height with a 10% margin. It returns "" for fewer than two points.
func CurveToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

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

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
