package spatialindex

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/urbanflight/freespace/utils"
)

// indexedPoint is a planar point tagged with its position in the build slice.
type indexedPoint struct {
	pt  r2.Point
	idx int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.pt.X - q.pt.X
	case 1:
		return p.pt.Y - q.pt.Y
	default:
		panic("illegal dimension")
	}
}

func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between the points.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	return utils.Square(p.pt.X-q.pt.X) + utils.Square(p.pt.Y-q.pt.Y)
}

// indexedPoints satisfies kdtree.Interface for tree construction.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, indexedPoints: p}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts indexedPoints along a single dimension.
type plane struct {
	kdtree.Dim
	indexedPoints
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].pt.X < p.indexedPoints[j].pt.X
	case 1:
		return p.indexedPoints[i].pt.Y < p.indexedPoints[j].pt.Y
	default:
		panic("illegal dimension")
	}
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

// kdTreeIndex answers radius queries with a k-d tree.
type kdTreeIndex struct {
	tree *kdtree.Tree
	size int
}

// NewKDTree builds a k-d tree index over the points.
func NewKDTree(points []r2.Point) (Index, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	data := make(indexedPoints, 0, len(points))
	for i, pt := range points {
		data = append(data, indexedPoint{pt: pt, idx: i})
	}
	return &kdTreeIndex{tree: kdtree.New(data, false), size: len(points)}, nil
}

func (k *kdTreeIndex) Len() int { return k.size }

func (k *kdTreeIndex) Within(pt r2.Point, radius float64) []int {
	if radius < 0 {
		return nil
	}
	// The tree measures squared distances.
	keep := kdtree.NewDistKeeper(radius * radius)
	k.tree.NearestSet(keep, indexedPoint{pt: pt, idx: -1})

	found := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		p, ok := c.Comparable.(indexedPoint)
		if !ok {
			// The keeper seeds its heap with a sentinel bound entry.
			continue
		}
		found = append(found, p.idx)
	}
	return found
}
