// Package cli implements the freespace command line interface.
package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/urbanflight/freespace/colliders"
	"github.com/urbanflight/freespace/logging"
	"github.com/urbanflight/freespace/sampling"
	"github.com/urbanflight/freespace/spatialindex"
)

const (
	// Flags.
	mapFlag         = "map"
	debugFlag       = "debug"
	countFlag       = "count"
	seedFlag        = "seed"
	zminFlag        = "zmin"
	zmaxFlag        = "zmax"
	threadsFlag     = "threads"
	indexFlag       = "index"
	respectBaseFlag = "respect-base"
	outFlag         = "out"
	northFlag       = "north"
	eastFlag        = "east"
	altFlag         = "alt"
	latFlag         = "lat"
	lonFlag         = "lon"

	indexKDTree = "kdtree"
	indexRTree  = "rtree"
	indexGrid   = "grid"
)

var app = &cli.App{
	Name:            "freespace",
	Usage:           "sample collision-free waypoints over a collider map",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     mapFlag,
			Aliases:  []string{"m"},
			Usage:    "load the collider map from `FILE`",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  debugFlag,
			Usage: "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "info",
			Usage:  "describe the obstacles and sampling volume of a map",
			Action: InfoAction,
		},
		{
			Name:  "sample",
			Usage: "draw random waypoints and keep the collision-free ones",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    countFlag,
					Aliases: []string{"n"},
					Value:   100,
					Usage:   "number of candidates to draw",
				},
				&cli.Int64Flag{
					Name:  seedFlag,
					Value: 1,
					Usage: "random seed",
				},
				&cli.Float64Flag{
					Name:  zminFlag,
					Value: sampling.DefaultZMin,
					Usage: "lowest sampled altitude",
				},
				&cli.Float64Flag{
					Name:  zmaxFlag,
					Value: sampling.DefaultZMax,
					Usage: "highest sampled altitude",
				},
				&cli.IntFlag{
					Name:  threadsFlag,
					Value: 1,
					Usage: "worker count for sampling",
				},
				&cli.StringFlag{
					Name:  indexFlag,
					Value: indexKDTree,
					Usage: "pruning index: kdtree, rtree or grid",
				},
				&cli.BoolFlag{
					Name:  respectBaseFlag,
					Usage: "treat the space under floating obstacles as free",
				},
				&cli.StringFlag{
					Name:    outFlag,
					Aliases: []string{"o"},
					Usage:   "write samples as CSV to `FILE` instead of stdout",
				},
			},
			Action: SampleAction,
		},
		{
			Name:  "check",
			Usage: "check a single point for collision",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:  northFlag,
					Usage: "meters north of home",
				},
				&cli.Float64Flag{
					Name:  eastFlag,
					Usage: "meters east of home",
				},
				&cli.Float64Flag{
					Name:  altFlag,
					Usage: "altitude in meters",
				},
				&cli.Float64Flag{
					Name:  latFlag,
					Usage: "geodetic latitude, used with --lon instead of --north/--east",
				},
				&cli.Float64Flag{
					Name:  lonFlag,
					Usage: "geodetic longitude",
				},
			},
			Action: CheckAction,
		},
	},
}

// NewApp returns the freespace app with Writer set to out and ErrWriter set
// to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(debugFlag) {
		return logging.NewDebugLogger("cli")
	}
	return zap.NewNop().Sugar()
}

// InfoAction is the corresponding Action for 'info'.
func InfoAction(c *cli.Context) error {
	m, err := colliders.ReadFile(c.String(mapFlag))
	if err != nil {
		return err
	}
	sampler, err := sampling.NewSampler(m.Records(), nil, newLogger(c))
	if err != nil {
		return err
	}
	bounds := sampler.Bounds()
	fmt.Fprintf(c.App.Writer, "home: %.6f, %.6f\n", m.Home().Lat(), m.Home().Lng())
	fmt.Fprintf(c.App.Writer, "obstacles: %d\n", len(sampler.Obstacles()))
	fmt.Fprintf(c.App.Writer, "bounds: north [%.2f, %.2f] east [%.2f, %.2f] alt [%.2f, %.2f]\n",
		bounds.Min.X, bounds.Max.X, bounds.Min.Y, bounds.Max.Y, bounds.Min.Z, bounds.Max.Z)
	fmt.Fprintf(c.App.Writer, "prune radius: %.2f\n", sampler.PruneRadius())
	for _, obst := range sampler.Obstacles() {
		fmt.Fprintln(c.App.Writer, obst)
	}
	return nil
}

// SampleAction is the corresponding Action for 'sample'.
func SampleAction(c *cli.Context) error {
	construct, err := indexConstructor(c.String(indexFlag))
	if err != nil {
		return err
	}
	opts := sampling.DefaultOptions()
	opts.ZMin = c.Float64(zminFlag)
	opts.ZMax = c.Float64(zmaxFlag)
	opts.RespectBase = c.Bool(respectBaseFlag)
	opts.IndexConstructor = construct
	opts.NumThreads = c.Int(threadsFlag)

	m, err := colliders.ReadFile(c.String(mapFlag))
	if err != nil {
		return err
	}
	//nolint:gosec
	seed := rand.New(rand.NewSource(c.Int64(seedFlag)))
	sampler, err := sampling.NewSamplerWithSeed(m.Records(), seed, opts, newLogger(c))
	if err != nil {
		return err
	}
	samples, err := sampler.Sample(c.Context, c.Int(countFlag))
	if err != nil {
		return err
	}

	if out := c.String(outFlag); out != "" {
		if err := writeSamplesFile(out, samples); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %d of %d samples to %s\n", len(samples), c.Int(countFlag), out)
		return nil
	}
	for _, pt := range samples {
		fmt.Fprintf(c.App.Writer, "%f,%f,%f\n", pt.X, pt.Y, pt.Z)
	}
	return nil
}

// CheckAction is the corresponding Action for 'check'.
func CheckAction(c *cli.Context) error {
	m, err := colliders.ReadFile(c.String(mapFlag))
	if err != nil {
		return err
	}
	pt := r3.Vector{X: c.Float64(northFlag), Y: c.Float64(eastFlag), Z: c.Float64(altFlag)}
	if c.IsSet(latFlag) || c.IsSet(lonFlag) {
		if !c.IsSet(latFlag) || !c.IsSet(lonFlag) {
			return errors.New("geodetic checks need both --lat and --lon")
		}
		local := colliders.GlobalToLocal(geo.NewPoint(c.Float64(latFlag), c.Float64(lonFlag)), m.Home())
		pt.X, pt.Y = local.X, local.Y
	}
	sampler, err := sampling.NewSampler(m.Records(), nil, newLogger(c))
	if err != nil {
		return err
	}
	if sampler.Collides(pt) {
		fmt.Fprintf(c.App.Writer, "collision at north %.2f east %.2f alt %.2f\n", pt.X, pt.Y, pt.Z)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "free at north %.2f east %.2f alt %.2f\n", pt.X, pt.Y, pt.Z)
	return nil
}

func indexConstructor(name string) (spatialindex.Constructor, error) {
	switch name {
	case indexKDTree:
		return spatialindex.NewKDTree, nil
	case indexRTree:
		return spatialindex.NewRTree, nil
	case indexGrid:
		return spatialindex.NewUniformGrid(0), nil
	default:
		return nil, errors.Errorf("unknown index %q (want %s, %s or %s)", name, indexKDTree, indexRTree, indexGrid)
	}
}

// writeSamplesFile writes one north,east,alt row per sample.
func writeSamplesFile(path string, samples []r3.Vector) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"north", "east", "alt"}); err != nil {
		return err
	}
	for _, pt := range samples {
		row := []string{
			strconv.FormatFloat(pt.X, 'f', -1, 64),
			strconv.FormatFloat(pt.Y, 'f', -1, 64),
			strconv.FormatFloat(pt.Z, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
