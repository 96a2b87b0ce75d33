package sampling

import (
	"math"

	"github.com/pkg/errors"

	"github.com/urbanflight/freespace/spatialindex"
)

// Default vertical sampling range in meters.
const (
	DefaultZMin = 0.
	DefaultZMax = 20.
)

// Options configures a Sampler.
type Options struct {
	// ZMin and ZMax fix the vertical sampling range. The planar range always
	// derives from the obstacle data, the vertical one never does.
	ZMin float64
	ZMax float64
	// RespectBase limits each obstacle's occupancy to its own vertical
	// extent [base, top]. When false an obstacle blocks every altitude up to
	// its top, matching planners that treat all obstacles as grounded.
	RespectBase bool
	// IndexConstructor builds the pruning index over obstacle centers. Nil
	// selects the k-d tree.
	IndexConstructor spatialindex.Constructor
	// NumThreads caps the worker count used by Sample. Zero or one keeps
	// sampling on the calling goroutine.
	NumThreads int
}

// DefaultOptions returns the sampler configuration used when the caller has
// no special needs.
func DefaultOptions() *Options {
	return &Options{
		ZMin:             DefaultZMin,
		ZMax:             DefaultZMax,
		IndexConstructor: spatialindex.NewKDTree,
		NumThreads:       1,
	}
}

// Validate checks the options for contradictions.
func (o *Options) Validate() error {
	if math.IsNaN(o.ZMin) || math.IsInf(o.ZMin, 0) || math.IsNaN(o.ZMax) || math.IsInf(o.ZMax, 0) {
		return errors.New("vertical sampling range must be finite")
	}
	if o.ZMax <= o.ZMin {
		return errors.Errorf("vertical sampling range is empty: zmin %f, zmax %f", o.ZMin, o.ZMax)
	}
	if o.NumThreads < 0 {
		return errors.Errorf("number of threads must be nonnegative, got %d", o.NumThreads)
	}
	return nil
}
