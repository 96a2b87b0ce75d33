package spatialindex

import (
	"math"
	"sort"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestWithin(t *testing.T) {
	points := []r2.Point{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: -3, Y: -4},
		{X: 10, Y: 1},
		{X: -1, Y: 5.5},
	}
	cases := []struct {
		name      string
		construct Constructor
	}{
		{"kdtree", NewKDTree},
		{"rtree", NewRTree},
		{"grid", NewUniformGrid(0)},
		{"grid fixed cell", NewUniformGrid(2.5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			index, err := tc.construct(points)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, index.Len(), test.ShouldEqual, len(points))

			// points at exactly the radius are included
			hits := index.Within(r2.Point{X: 0, Y: 0}, 5)
			sort.Ints(hits)
			test.That(t, hits, test.ShouldResemble, []int{0, 1, 2})

			// just short of them
			hits = index.Within(r2.Point{X: 0, Y: 0}, 4.999)
			test.That(t, hits, test.ShouldResemble, []int{0})

			hits = index.Within(r2.Point{X: 0, Y: 0}, 100)
			test.That(t, hits, test.ShouldHaveLength, len(points))

			hits = index.Within(r2.Point{X: 100, Y: 100}, 1)
			test.That(t, hits, test.ShouldBeEmpty)

			// zero radius only picks up colocated points
			hits = index.Within(r2.Point{X: 10, Y: 1}, 0)
			test.That(t, hits, test.ShouldResemble, []int{3})

			hits = index.Within(r2.Point{X: 0, Y: 0}, -1)
			test.That(t, hits, test.ShouldBeEmpty)
		})
	}
}

func TestConstructorErrors(t *testing.T) {
	cases := []struct {
		name      string
		construct Constructor
	}{
		{"kdtree", NewKDTree},
		{"rtree", NewRTree},
		{"grid", NewUniformGrid(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			index, err := tc.construct(nil)
			test.That(t, err, test.ShouldBeError, ErrNoPoints)
			test.That(t, index, test.ShouldBeNil)
		})
	}

	t.Run("grid rejects non-finite cell size", func(t *testing.T) {
		index, err := NewUniformGrid(math.NaN())([]r2.Point{{X: 1, Y: 1}})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "finite")
		test.That(t, index, test.ShouldBeNil)
	})
}

func TestGridDefaultCellSize(t *testing.T) {
	// all points colocated still indexes and answers queries
	points := []r2.Point{{X: 2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 2}}
	index, err := NewUniformGrid(0)(points)
	test.That(t, err, test.ShouldBeNil)

	hits := index.Within(r2.Point{X: 2, Y: 2}, 0)
	sort.Ints(hits)
	test.That(t, hits, test.ShouldResemble, []int{0, 1, 2})

	hits = index.Within(r2.Point{X: 3, Y: 2}, 0.5)
	test.That(t, hits, test.ShouldBeEmpty)
}
