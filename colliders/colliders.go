// Package colliders reads obstacle maps shipped as collider CSV files and
// anchors them to a geodetic home point.
package colliders

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/urbanflight/freespace/obstacle"
)

// Map is an obstacle field anchored at a geodetic home point. Record
// coordinates are local meters north and east of home.
type Map struct {
	home    *geo.Point
	records []obstacle.Record
}

// Home returns the geodetic anchor of the map.
func (m *Map) Home() *geo.Point { return m.home }

// Records returns the obstacle records in file order.
func (m *Map) Records() []obstacle.Record { return m.records }

const fieldsPerRecord = 6

// Read parses a collider map. The first line carries the home point as
// "lat0 <lat>, lon0 <lon>", the second the column header, and every line
// after that one obstacle record. Any malformed line fails the whole read.
func Read(r io.Reader) (*Map, error) {
	reader := bufio.NewReader(r)
	homeLine, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "reading home line")
	}
	home, err := parseHome(homeLine)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = fieldsPerRecord
	csvReader.TrimLeadingSpace = true
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading collider records")
	}
	if len(rows) == 0 {
		return nil, errors.New("collider map has no header line")
	}
	if strings.TrimSpace(rows[0][0]) != "posX" {
		return nil, errors.Errorf("unexpected collider header %q", strings.Join(rows[0], ","))
	}

	records := make([]obstacle.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		// line 1 is the home point, line 2 the header
		lineNum := i + 3
		values := make([]float64, fieldsPerRecord)
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad collider field %q", lineNum, field)
			}
			values[j] = v
		}
		rec := obstacle.Record{
			North:     values[0],
			East:      values[1],
			Alt:       values[2],
			HalfNorth: values[3],
			HalfEast:  values[4],
			HalfAlt:   values[5],
		}
		if err := rec.Validate(); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		records = append(records, rec)
	}
	return &Map{home: home, records: records}, nil
}

// ReadFile reads a collider map from disk.
func ReadFile(path string) (_ *Map, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return Read(f)
}

// parseHome parses the "lat0 <lat>, lon0 <lon>" anchor line.
func parseHome(line string) (*geo.Point, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return nil, errors.Errorf("malformed home line %q", strings.TrimSpace(line))
	}
	lat, err := parseHomeField(parts[0], "lat0")
	if err != nil {
		return nil, err
	}
	lon, err := parseHomeField(parts[1], "lon0")
	if err != nil {
		return nil, err
	}
	return geo.NewPoint(lat, lon), nil
}

func parseHomeField(field, name string) (float64, error) {
	tokens := strings.Fields(field)
	if len(tokens) != 2 || tokens[0] != name {
		return 0, errors.Errorf("home line field %q should look like %q", strings.TrimSpace(field), name+" <value>")
	}
	v, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "home line field %q", strings.TrimSpace(field))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("home line field %q must be finite", strings.TrimSpace(field))
	}
	return v, nil
}

// cartesianDistance returns the unsigned north and east displacement in
// meters between p and q. The haversine legs ride a modified point sharing
// p's latitude and q's longitude, so each leg varies along one axis only.
// This projects a sphere onto a plane and loses accuracy as the points
// separate.
func cartesianDistance(p, q *geo.Point) (northDist, eastDist float64) {
	mod := geo.NewPoint(p.Lat(), q.Lng())
	eastDist = 1e3 * p.GreatCircleDistance(mod)
	northDist = 1e3 * q.GreatCircleDistance(mod)
	return northDist, eastDist
}

// GlobalToLocal projects a geodetic point onto the local plane anchored at
// home. X is meters north of home, Y meters east. The projection is
// linearized about home.
func GlobalToLocal(point, home *geo.Point) r3.Vector {
	northDist, eastDist := cartesianDistance(home, point)
	azimuth := home.BearingTo(point)

	switch {
	case azimuth >= 0 && azimuth <= 90:
		return r3.Vector{X: northDist, Y: eastDist}
	case azimuth > 90 && azimuth <= 180:
		return r3.Vector{X: -northDist, Y: eastDist}
	case azimuth >= -90 && azimuth < 0:
		return r3.Vector{X: northDist, Y: -eastDist}
	default:
		return r3.Vector{X: -northDist, Y: -eastDist}
	}
}

// LocalToGlobal maps local meters north and east of home back to a geodetic
// point. It inverts GlobalToLocal up to the linearization error.
func LocalToGlobal(v r3.Vector, home *geo.Point) *geo.Point {
	distKm := math.Hypot(v.X, v.Y) / 1e3
	bearing := math.Atan2(v.Y, v.X) * 180 / math.Pi
	return home.PointAtDistanceAndBearing(distKm, bearing)
}
