package obstacle

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Record is one raw obstacle row: the center of an axis-aligned box in local
// north/east/altitude coordinates plus its half-extent along each axis.
type Record struct {
	North     float64
	East      float64
	Alt       float64
	HalfNorth float64
	HalfEast  float64
	HalfAlt   float64
}

// Validate checks that the record describes a usable obstacle volume. Zero
// planar half-extents would produce an empty footprint and are rejected
// rather than passed through.
func (r Record) Validate() error {
	for _, v := range []float64{r.North, r.East, r.Alt, r.HalfNorth, r.HalfEast, r.HalfAlt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("record fields must be finite")
		}
	}
	if r.HalfNorth <= 0 || r.HalfEast <= 0 {
		return errors.Errorf("planar half extents must be positive, got (%f, %f)", r.HalfNorth, r.HalfEast)
	}
	if r.HalfAlt < 0 {
		return errors.Errorf("vertical half extent must be nonnegative, got %f", r.HalfAlt)
	}
	return nil
}

// NewObstacleFromRecord builds the rectangular obstacle a record describes.
// Footprint corners are laid out in a consistent winding starting from the
// (North-HalfNorth, East-HalfEast) corner; the vertical extent spans
// Alt-HalfAlt to Alt+HalfAlt.
func NewObstacleFromRecord(rec Record) (*Obstacle, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	corners := []r2.Point{
		{X: rec.North - rec.HalfNorth, Y: rec.East - rec.HalfEast},
		{X: rec.North - rec.HalfNorth, Y: rec.East + rec.HalfEast},
		{X: rec.North + rec.HalfNorth, Y: rec.East + rec.HalfEast},
		{X: rec.North + rec.HalfNorth, Y: rec.East - rec.HalfEast},
	}
	footprint, err := NewFootprint(corners)
	if err != nil {
		return nil, err
	}
	return NewObstacle(footprint, rec.Alt-rec.HalfAlt, rec.Alt+rec.HalfAlt)
}

// NewObstaclesFromRecords converts records to obstacles preserving input
// order. The first invalid record fails the whole conversion; no partial
// collection is returned.
func NewObstaclesFromRecords(recs []Record) ([]*Obstacle, error) {
	obstacles := make([]*Obstacle, 0, len(recs))
	for i, rec := range recs {
		obst, err := NewObstacleFromRecord(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		obstacles = append(obstacles, obst)
	}
	return obstacles, nil
}
