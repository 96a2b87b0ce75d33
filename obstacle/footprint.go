package obstacle

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"

	"github.com/urbanflight/freespace/utils"
)

// Footprints with an area below this are degenerate.
const defaultDegenerateEpsilon = 1e-12

// Segment is a 2D line segment between two planar points.
type Segment struct {
	Start r2.Point
	End   r2.Point
}

// Footprint is the minimal set of planar polygon queries collision checking
// needs. Implementations must be immutable once constructed so they can be
// shared across concurrent readers.
type Footprint interface {
	// Contains reports whether the point lies inside the polygon. Points on
	// the boundary are treated as contained.
	Contains(pt r2.Point) bool
	// Crosses reports whether the segment intersects the polygon boundary
	// without being wholly contained by it.
	Crosses(seg Segment) bool
	// Centroid returns the geometric center of the polygon.
	Centroid() r2.Point
	// Area returns the planar area of the polygon.
	Area() float64
	// Vertices returns the boundary vertices without the closing duplicate.
	Vertices() []r2.Point
}

// polygonFootprint backs Footprint with an orb planar polygon.
type polygonFootprint struct {
	poly     orb.Polygon
	centroid r2.Point
	area     float64
}

// NewFootprint builds a polygonal footprint from boundary vertices given in
// winding order, without the closing duplicate.
func NewFootprint(vertices []r2.Point) (Footprint, error) {
	if len(vertices) < 3 {
		return nil, errors.Errorf("footprint needs at least 3 vertices, got %d", len(vertices))
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	ring = append(ring, ring[0])
	poly := orb.Polygon{ring}

	centroid, area := planar.CentroidArea(poly)
	area = math.Abs(area)
	if utils.Float64AlmostEqual(area, 0, defaultDegenerateEpsilon) {
		return nil, errors.New("footprint polygon has no area")
	}
	return &polygonFootprint{
		poly:     poly,
		centroid: r2.Point{X: centroid[0], Y: centroid[1]},
		area:     area,
	}, nil
}

func (pf *polygonFootprint) Contains(pt r2.Point) bool {
	return planar.PolygonContains(pf.poly, orb.Point{pt.X, pt.Y})
}

func (pf *polygonFootprint) Crosses(seg Segment) bool {
	if pf.Contains(seg.Start) && pf.Contains(seg.End) {
		return false
	}
	ring := pf.poly[0]
	for i := 0; i < len(ring)-1; i++ {
		edgeStart := r2.Point{X: ring[i][0], Y: ring[i][1]}
		edgeEnd := r2.Point{X: ring[i+1][0], Y: ring[i+1][1]}
		if segmentsIntersect(edgeStart, edgeEnd, seg.Start, seg.End) {
			return true
		}
	}
	return false
}

func (pf *polygonFootprint) Centroid() r2.Point {
	return pf.centroid
}

func (pf *polygonFootprint) Area() float64 {
	return pf.area
}

func (pf *polygonFootprint) Vertices() []r2.Point {
	ring := pf.poly[0]
	verts := make([]r2.Point, 0, len(ring)-1)
	for _, pt := range ring[:len(ring)-1] {
		verts = append(verts, r2.Point{X: pt[0], Y: pt[1]})
	}
	return verts
}

// segmentsIntersect reports whether segments [a1,a2] and [b1,b2] share at
// least one point, counting endpoint touches and collinear overlap.
func segmentsIntersect(a1, a2, b1, b2 r2.Point) bool {
	d1 := direction(b1, b2, a1)
	d2 := direction(b1, b2, a2)
	d3 := direction(a1, a2, b1)
	d4 := direction(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(b1, b2, a1):
		return true
	case d2 == 0 && onSegment(b1, b2, a2):
		return true
	case d3 == 0 && onSegment(a1, a2, b1):
		return true
	case d4 == 0 && onSegment(a1, a2, b2):
		return true
	}
	return false
}

// direction is the cross product orientation of p3 relative to segment [p1,p2].
func direction(p1, p2, p3 r2.Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment reports whether a point q collinear with [p,r] lies between them.
func onSegment(p, r, q r2.Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}
