package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryType_MinPoints(t *testing.T) {
	tests := []struct {
		kind GeometryType
		min  int
	}{
		{GeometryPoint, 1},
		{GeometryLine, 2},
		{GeometryArea, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.min, tt.kind.MinPoints())
			assert.False(t, tt.kind.HasEnoughPoints(tt.min-1))
			assert.True(t, tt.kind.HasEnoughPoints(tt.min))
		})
	}

	assert.False(t, GeometryType("Circle").HasEnoughPoints(10))
}

func TestParseGeometryType(t *testing.T) {
	g, err := ParseGeometryType("Area")
	require.NoError(t, err)
	assert.Equal(t, GeometryArea, g)

	_, err = ParseGeometryType("area")
	assert.Error(t, err)
}

func TestGeometryType_Geometry(t *testing.T) {
	pts := []LatLng{{Lat: 60, Lng: 10}, {Lat: 61, Lng: 11}, {Lat: 61, Lng: 10}}

	t.Run("line keeps order and lon/lat axis", func(t *testing.T) {
		g, err := GeometryLine.Geometry(pts[:2])
		require.NoError(t, err)
		ls, ok := g.(orb.LineString)
		require.True(t, ok)
		assert.Equal(t, orb.LineString{{10, 60}, {11, 61}}, ls)
	})

	t.Run("area ring is closed", func(t *testing.T) {
		g, err := GeometryArea.Geometry(pts)
		require.NoError(t, err)
		poly, ok := g.(orb.Polygon)
		require.True(t, ok)
		require.Len(t, poly, 1)
		assert.Len(t, poly[0], 4)
		assert.True(t, poly[0].Closed())
	})

	t.Run("not enough points", func(t *testing.T) {
		_, err := GeometryArea.Geometry(pts[:2])
		assert.Error(t, err)
	})
}
