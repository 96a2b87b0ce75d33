// Package spatialindex provides 2D point indexes that answer radius queries,
// used to prune obstacle candidates before exact collision checks.
package spatialindex

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrNoPoints is returned when an index would be built over no points.
var ErrNoPoints = errors.New("spatial index needs at least one point")

// Index answers radius queries against a fixed set of planar points. Query
// results are positions in the point slice the index was built from, in no
// particular order.
type Index interface {
	// Len returns the number of indexed points.
	Len() int
	// Within returns the indices of all points whose Euclidean distance from
	// pt is at most radius. A point at exactly the radius is included.
	Within(pt r2.Point, radius float64) []int
}

// A Constructor builds an Index over the given points.
type Constructor func(points []r2.Point) (Index, error)
