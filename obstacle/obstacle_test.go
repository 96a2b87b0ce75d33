package obstacle

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestNewObstacle(t *testing.T) {
	fp := makeRectFootprint(t)

	obst, err := NewObstacle(fp, 4, 6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, obst.Base(), test.ShouldEqual, 4)
	test.That(t, obst.Top(), test.ShouldEqual, 6)
	test.That(t, obst.Footprint(), test.ShouldEqual, fp)

	_, err = NewObstacle(nil, 0, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "footprint")

	_, err = NewObstacle(fp, 5, 2)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "below its base")

	_, err = NewObstacle(fp, math.NaN(), 3)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "finite")

	_, err = NewObstacle(fp, -6, -2)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "below ground")
}

func TestObstacleQueries(t *testing.T) {
	obst, err := NewObstacle(makeRectFootprint(t), 0, 10)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, obst.Contains(r2.Point{X: 0, Y: 0}), test.ShouldBeTrue)
	test.That(t, obst.Contains(r2.Point{X: 3, Y: 0}), test.ShouldBeFalse)
	test.That(t, obst.Area(), test.ShouldAlmostEqual, 24)
	test.That(t, obst.Centroid(), test.ShouldResemble, r2.Point{X: 0, Y: 0})
	test.That(t, obst.Vertices(), test.ShouldHaveLength, 4)
	test.That(t, obst.Crosses(Segment{Start: r2.Point{X: -5, Y: 0}, End: r2.Point{X: 5, Y: 0}}), test.ShouldBeTrue)
	test.That(t, obst.String(), test.ShouldContainSubstring, "Obstacle")
}
