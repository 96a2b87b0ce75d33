// Package sampling draws collision-free random waypoints from the free space
// over a field of rectangular obstacles.
package sampling

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/urbanflight/freespace/logging"
	"github.com/urbanflight/freespace/obstacle"
	"github.com/urbanflight/freespace/spatialindex"
	"github.com/urbanflight/freespace/utils"
)

// Sampling runs serially below this many requested points regardless of the
// configured thread count.
const samplesBeforeParallelization = 1000

// Bounds is the axis-aligned sampling volume. X is north, Y east, Z altitude.
type Bounds struct {
	Min r3.Vector
	Max r3.Vector
}

// Sampler draws uniform random waypoints in its bounds and rejects any that
// fall inside an obstacle. Its collision state is immutable after
// construction; Sample must not be called concurrently with itself because
// draws advance the sampler's random source.
type Sampler struct {
	obstacles   []*obstacle.Obstacle
	bounds      Bounds
	pruneRadius float64
	index       spatialindex.Index
	opts        *Options
	randseed    *rand.Rand
	logger      logging.Logger
}

// NewSampler builds a sampler over the records with a fixed default seed.
func NewSampler(records []obstacle.Record, opts *Options, logger logging.Logger) (*Sampler, error) {
	//nolint:gosec
	return NewSamplerWithSeed(records, rand.New(rand.NewSource(1)), opts, logger)
}

// NewSamplerWithSeed builds a sampler over the records, drawing all
// randomness from seed. The planar bounds cover every obstacle's planar
// extent and the pruning radius is twice the largest planar half extent, so
// no obstacle can contain a point farther than the radius from its center.
func NewSamplerWithSeed(
	records []obstacle.Record,
	seed *rand.Rand,
	opts *Options,
	logger logging.Logger,
) (*Sampler, error) {
	if len(records) == 0 {
		return nil, errors.New("sampler needs at least one obstacle record")
	}
	if seed == nil {
		return nil, errors.New("sampler needs a random source")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Global()
	}

	obstacles, err := obstacle.NewObstaclesFromRecords(records)
	if err != nil {
		return nil, err
	}

	bounds := Bounds{
		Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: opts.ZMin},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: opts.ZMax},
	}
	var pruneRadius float64
	for _, rec := range records {
		bounds.Min.X = math.Min(bounds.Min.X, rec.North-rec.HalfNorth)
		bounds.Max.X = math.Max(bounds.Max.X, rec.North+rec.HalfNorth)
		bounds.Min.Y = math.Min(bounds.Min.Y, rec.East-rec.HalfEast)
		bounds.Max.Y = math.Max(bounds.Max.Y, rec.East+rec.HalfEast)
		pruneRadius = math.Max(pruneRadius, 2*math.Max(rec.HalfNorth, rec.HalfEast))
	}

	centers := make([]r2.Point, 0, len(obstacles))
	for _, obst := range obstacles {
		centers = append(centers, obst.Centroid())
	}
	construct := opts.IndexConstructor
	if construct == nil {
		construct = spatialindex.NewKDTree
	}
	index, err := construct(centers)
	if err != nil {
		return nil, errors.Wrap(err, "building pruning index")
	}

	optsCopy := *opts
	logger.Debugf(
		"sampler over %d obstacles, bounds [%v, %v], prune radius %.2f",
		len(obstacles), bounds.Min, bounds.Max, pruneRadius,
	)
	return &Sampler{
		obstacles:   obstacles,
		bounds:      bounds,
		pruneRadius: pruneRadius,
		index:       index,
		opts:        &optsCopy,
		randseed:    seed,
		logger:      logger,
	}, nil
}

// Obstacles returns the extracted obstacles in record order.
func (s *Sampler) Obstacles() []*obstacle.Obstacle { return s.obstacles }

// Bounds returns the sampling volume.
func (s *Sampler) Bounds() Bounds { return s.bounds }

// PruneRadius returns the planar radius used to shortlist obstacles around a
// query point.
func (s *Sampler) PruneRadius() float64 { return s.pruneRadius }

// Collides reports whether the point lies inside any obstacle. Obstacles
// whose center is farther than the pruning radius from the point cannot
// contain it and are skipped wholesale.
func (s *Sampler) Collides(pt r3.Vector) bool {
	planar := r2.Point{X: pt.X, Y: pt.Y}
	for _, i := range s.index.Within(planar, s.pruneRadius) {
		obst := s.obstacles[i]
		if !obst.Contains(planar) {
			continue
		}
		if pt.Z > obst.Top() {
			continue
		}
		if s.opts.RespectBase && pt.Z < obst.Base() {
			continue
		}
		return true
	}
	return false
}

// Sample draws count uniform candidates and returns the ones that do not
// collide with any obstacle. Colliding candidates are dropped, not redrawn,
// so fewer than count points come back when obstacles are dense; callers
// wanting a fixed yield should oversample.
func (s *Sampler) Sample(ctx context.Context, count int) ([]r3.Vector, error) {
	if count < 0 {
		return nil, errors.Errorf("sample count must be nonnegative, got %d", count)
	}
	if count == 0 {
		return []r3.Vector{}, nil
	}
	numGroups := utils.MinInt(s.opts.NumThreads, count)
	if numGroups > 1 && count >= samplesBeforeParallelization {
		return s.sampleParallel(ctx, count, numGroups)
	}
	return s.sampleSerial(ctx, count)
}

func (s *Sampler) sampleSerial(ctx context.Context, count int) ([]r3.Vector, error) {
	free := make([]r3.Vector, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := s.draw(s.randseed)
		if s.Collides(candidate) {
			continue
		}
		free = append(free, candidate)
	}
	s.logger.Debugf("kept %d of %d samples", len(free), count)
	return free, nil
}

func (s *Sampler) sampleParallel(ctx context.Context, count, numGroups int) ([]r3.Vector, error) {
	// Group seeds come off the master seed in group order so a fixed seed
	// yields the same output no matter how the groups get scheduled.
	var seeds []*rand.Rand
	var groupOut [][]r3.Vector
	err := utils.GroupWorkParallel(
		ctx,
		count,
		numGroups,
		func(numGroups int) {
			seeds = make([]*rand.Rand, numGroups)
			for i := range seeds {
				//nolint:gosec
				seeds[i] = rand.New(rand.NewSource(s.randseed.Int63()))
			}
			groupOut = make([][]r3.Vector, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			groupSeed := seeds[groupNum]
			free := make([]r3.Vector, 0, groupSize)
			return func(memberNum, workNum int) {
					candidate := s.draw(groupSeed)
					if !s.Collides(candidate) {
						free = append(free, candidate)
					}
				}, func() {
					groupOut[groupNum] = free
				}
		},
	)
	if err != nil {
		return nil, err
	}
	merged := make([]r3.Vector, 0, count)
	for _, group := range groupOut {
		merged = append(merged, group...)
	}
	s.logger.Debugf("kept %d of %d samples", len(merged), count)
	return merged, nil
}

// draw returns one uniform point in the sampler's bounds.
func (s *Sampler) draw(r *rand.Rand) r3.Vector {
	return r3.Vector{
		X: r.Float64()*(s.bounds.Max.X-s.bounds.Min.X) + s.bounds.Min.X,
		Y: r.Float64()*(s.bounds.Max.Y-s.bounds.Min.Y) + s.bounds.Min.Y,
		Z: r.Float64()*(s.bounds.Max.Z-s.bounds.Min.Z) + s.bounds.Min.Z,
	}
}
