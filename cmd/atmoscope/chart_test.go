package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_TopIsEdgeBottomIsSurface(t *testing.T) {
	curves := atmosphere.SampleProfile(atmosphere.DefaultSettings(), 100)
	rows := layout(curves, 20)
	require.Len(t, rows, 20)

	assert.Equal(t, float32(1), rows[0].altitude)
	assert.Equal(t, float32(0), rows[19].altitude)
	assert.Greater(t, rows[19].densities.Rayleigh, rows[0].densities.Rayleigh)
	for _, r := range rows {
		for _, e := range r.extinction {
			assert.LessOrEqual(t, e, float32(1)+1e-6)
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	assert.Nil(t, layout(atmosphere.SampleProfile(nil, 10), 10))
	assert.Nil(t, layout(atmosphere.SampleProfile(atmosphere.DefaultSettings(), 10), 0))
}

func TestColumn(t *testing.T) {
	assert.Equal(t, 0, column(0, 40))
	assert.Equal(t, 39, column(1, 40))
	assert.Equal(t, 39, column(3, 40))
	assert.Equal(t, 0, column(-1, 40))
	assert.Equal(t, 0, column(0.5, 1))
}
