package main

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/chewxy/math32"
)

// row is one screen line of the chart: the layer densities and normalized extinction at the
// altitude the line represents.
type row struct {
	altitude   float32
	densities  atmosphere.LayerDensities
	extinction [3]float32
}

// layout resamples curves onto rows lines, top line first. The top line is the edge of the
// atmosphere and the bottom line the surface. Extinction is normalized by the curves' maximum.
func layout(curves atmosphere.ProfileCurves, rows int) []row {
	if rows <= 0 || len(curves.Samples) == 0 {
		return nil
	}
	out := make([]row, rows)
	last := len(curves.Samples) - 1
	for i := range rows {
		var u float32
		if rows > 1 {
			u = 1 - float32(i)/float32(rows-1)
		}
		idx := int(math32.Round(u * float32(last)))
		s := curves.Samples[idx]
		out[i] = row{
			altitude:  s.Altitude,
			densities: s.Densities,
			extinction: [3]float32{
				s.Extinction[0] / curves.MaxExtinction,
				s.Extinction[1] / curves.MaxExtinction,
				s.Extinction[2] / curves.MaxExtinction,
			},
		}
	}
	return out
}

// column maps v in [0, 1] onto a plot of width cells.
func column(v float32, width int) int {
	if width <= 1 {
		return 0
	}
	return int(math32.Round(common.Clamp01(v) * float32(width-1)))
}
