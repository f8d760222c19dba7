// Package render draws a synthesized peak as terminal text, a PNG chart or
// an Excel workbook.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// gutter is the width of the y-axis label column, including the axis line.
const gutter = 7

// eighths of a character cell, lowest first.
var blocks = []rune(" ▁▂▃▄▅▆▇█")

// ASCII renders curve into a plot area of width x height cells framed by
// axis labels. The y-axis runs from 0 to the curve's tier maximum.
func ASCII(curve peak.Curve, width, height int) string {
	if len(curve.Samples) == 0 {
		return ""
	}
	width = max(width, 10)
	height = max(height, 3)

	yMax := curve.Axis.YMax
	if yMax <= 0 {
		yMax = 1
	}

	// Column fill in eighths of a row. Each column shows the highest sample of
	// its bin so narrow peaks keep their apex.
	levels := make([]float64, width)
	last := len(curve.Samples) - 1
	perCol := float64(last) / float64(width-1)
	for col := range levels {
		lo := max(int(math.Round((float64(col)-0.5)*perCol)), 0)
		hi := min(int(math.Round((float64(col)+0.5)*perCol)), last)
		v := 0.0
		for _, s := range curve.Samples[lo : hi+1] {
			v = math.Max(v, s.Intensity)
		}
		levels[col] = math.Min(1, v/yMax) * float64(height) * 8
	}

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		b.WriteString(yLabel(row, height, yMax))
		for _, level := range levels {
			cell := int(math.Round(level - float64(row*8)))
			cell = max(0, min(8, cell))
			b.WriteRune(blocks[cell])
		}
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", gutter-1))
	b.WriteString("└")
	b.WriteString(strings.Repeat("─", width))
	b.WriteByte('\n')

	b.WriteString(strings.Repeat(" ", gutter))
	b.WriteString(xLabels(curve.Axis.XMin, curve.Axis.XMax, width))
	b.WriteByte('\n')

	return b.String()
}

func yLabel(row, height int, yMax float64) string {
	switch row {
	case height - 1:
		return fmt.Sprintf("%5.0f ┤", yMax)
	case (height - 1) / 2:
		if height > 4 {
			return fmt.Sprintf("%5.0f ┤", yMax/2)
		}
	case 0:
		return fmt.Sprintf("%5.0f ┤", 0.0)
	}
	return strings.Repeat(" ", gutter-1) + "│"
}

// xLabels spreads the axis minimum, midpoint and maximum across width.
func xLabels(xMin, xMax float64, width int) string {
	left := fmt.Sprintf("%.2f", xMin)
	mid := fmt.Sprintf("%.2f", (xMin+xMax)/2)
	right := fmt.Sprintf("%.2f", xMax)

	line := []rune(strings.Repeat(" ", width))
	place := func(s string, at int) {
		at = max(0, min(width-len(s), at))
		copy(line[at:], []rune(s))
	}
	place(left, 0)
	if width >= len(left)+len(mid)+len(right)+2 {
		place(mid, width/2-len(mid)/2)
	}
	place(right, width-len(right))
	return string(line)
}

// Badge renders the range label the way the predictor header shows it.
func Badge(axis peak.AxisRange) string {
	return strings.ToUpper(axis.Label)
}
