package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// GeometryType - вид геометрии объекта препятствия
type GeometryType string

const (
	GeometryPoint GeometryType = "Point"
	GeometryLine  GeometryType = "Line"
	GeometryArea  GeometryType = "Area"
)

// geometryKind описывает правила одного вида геометрии
type geometryKind struct {
	minPoints int
	build     func(points []LatLng) orb.Geometry
}

var geometryKinds = map[GeometryType]geometryKind{
	GeometryPoint: {minPoints: 1, build: buildPoint},
	GeometryLine:  {minPoints: 2, build: buildLine},
	GeometryArea:  {minPoints: 3, build: buildArea},
}

// GeometryTypes возвращает все поддерживаемые виды геометрии в стабильном порядке
func GeometryTypes() []GeometryType {
	return []GeometryType{GeometryPoint, GeometryLine, GeometryArea}
}

// ParseGeometryType разбирает строковое значение вида геометрии
func ParseGeometryType(s string) (GeometryType, error) {
	g := GeometryType(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown geometry type %q", s)
	}
	return g, nil
}

func (g GeometryType) Valid() bool {
	_, ok := geometryKinds[g]
	return ok
}

// MinPoints - минимальное количество точек: 1 для Point, 2 для Line, 3 для Area
func (g GeometryType) MinPoints() int {
	return geometryKinds[g].minPoints
}

// HasEnoughPoints проверяет, что точек достаточно для построения геометрии
func (g GeometryType) HasEnoughPoints(n int) bool {
	kind, ok := geometryKinds[g]
	return ok && n >= kind.minPoints
}

// Geometry строит orb геометрию из точек. Порядок точек сохраняется.
// Для Point используется первая точка, для Area кольцо замыкается.
func (g GeometryType) Geometry(points []LatLng) (orb.Geometry, error) {
	kind, ok := geometryKinds[g]
	if !ok {
		return nil, fmt.Errorf("unknown geometry type %q", g)
	}
	if len(points) < kind.minPoints {
		return nil, fmt.Errorf("%s requires at least %d points, got %d", g, kind.minPoints, len(points))
	}
	return kind.build(points), nil
}

// LatLng - координаты в десятичных градусах
type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) orbPoint() orb.Point {
	// orb использует порядок [lon, lat]
	return orb.Point{p.Lng, p.Lat}
}

func buildPoint(points []LatLng) orb.Geometry {
	return points[0].orbPoint()
}

func buildLine(points []LatLng) orb.Geometry {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, p.orbPoint())
	}
	return ls
}

func buildArea(points []LatLng) orb.Geometry {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, p.orbPoint())
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}
