// Package obstacle models rectangular obstacles with polygonal footprints and a
// vertical extent, and extracts them from raw center/half-extent records.
package obstacle

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Obstacle pairs a planar footprint with the vertical extent it occupies.
// Obstacles are immutable once constructed; all queries are pure.
type Obstacle struct {
	footprint Footprint
	base      float64
	top       float64
}

// NewObstacle constructs an Obstacle from a footprint and the base and top of
// its vertical extent.
func NewObstacle(footprint Footprint, base, top float64) (*Obstacle, error) {
	if footprint == nil {
		return nil, errors.New("obstacle needs a footprint")
	}
	if math.IsNaN(base) || math.IsInf(base, 0) || math.IsNaN(top) || math.IsInf(top, 0) {
		return nil, errors.Errorf("obstacle vertical extent must be finite, got [%f, %f]", base, top)
	}
	if top < base {
		return nil, errors.Errorf("obstacle top %f below its base %f", top, base)
	}
	if top < 0 {
		return nil, errors.Errorf("obstacle top %f below ground", top)
	}
	return &Obstacle{footprint: footprint, base: base, top: top}, nil
}

// Footprint returns the obstacle's planar footprint.
func (o *Obstacle) Footprint() Footprint {
	return o.footprint
}

// Base returns the bottom of the obstacle's vertical extent.
func (o *Obstacle) Base() float64 {
	return o.base
}

// Top returns the obstacle's altitude ceiling.
func (o *Obstacle) Top() float64 {
	return o.top
}

// Contains reports whether the planar point lies within the obstacle
// footprint, boundary included.
func (o *Obstacle) Contains(pt r2.Point) bool {
	return o.footprint.Contains(pt)
}

// Crosses reports whether the segment crosses the footprint boundary.
func (o *Obstacle) Crosses(seg Segment) bool {
	return o.footprint.Crosses(seg)
}

// Centroid returns the footprint centroid.
func (o *Obstacle) Centroid() r2.Point {
	return o.footprint.Centroid()
}

// Area returns the footprint area.
func (o *Obstacle) Area() float64 {
	return o.footprint.Area()
}

// Vertices returns the footprint boundary vertices without the closing duplicate.
func (o *Obstacle) Vertices() []r2.Point {
	return o.footprint.Vertices()
}

// String returns a human readable string that represents the obstacle.
func (o *Obstacle) String() string {
	center := o.Centroid()
	return fmt.Sprintf("Type: Obstacle | Center: N:%.1f, E:%.1f | Extent: [%.1f, %.1f]",
		center.X, center.Y, o.base, o.top)
}
