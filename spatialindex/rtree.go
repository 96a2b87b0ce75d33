package spatialindex

import (
	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r2"

	"github.com/urbanflight/freespace/utils"
)

// rtreego rejects rectangles with non-positive side lengths, so stored points
// and query boxes are padded by this much.
const pointRectSide = 1e-9

// pointEntry wraps an indexed point for R-tree storage.
type pointEntry struct {
	bbox rtreego.Rect
	pt   r2.Point
	idx  int
}

// Bounds implements the rtreego.Spatial interface.
func (e *pointEntry) Bounds() rtreego.Rect { return e.bbox }

// rTreeIndex answers radius queries with an R-tree over point-sized rectangles.
type rTreeIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewRTree builds an R-tree index over the points.
func NewRTree(points []r2.Point) (Index, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	tree := rtreego.NewTree(2, 25, 50)
	for i, pt := range points {
		bbox, err := rtreego.NewRect(
			rtreego.Point{pt.X, pt.Y},
			[]float64{pointRectSide, pointRectSide},
		)
		if err != nil {
			return nil, err
		}
		tree.Insert(&pointEntry{bbox: bbox, pt: pt, idx: i})
	}
	return &rTreeIndex{tree: tree, size: len(points)}, nil
}

func (r *rTreeIndex) Len() int { return r.size }

func (r *rTreeIndex) Within(pt r2.Point, radius float64) []int {
	if radius < 0 {
		return nil
	}
	// The rectangular search overshoots the disk, so hits get filtered by
	// exact distance afterwards.
	side := 2 * (radius + pointRectSide)
	bbox, err := rtreego.NewRect(
		rtreego.Point{pt.X - radius - pointRectSide, pt.Y - radius - pointRectSide},
		[]float64{side, side},
	)
	if err != nil {
		return nil
	}
	results := r.tree.SearchIntersect(bbox)
	found := make([]int, 0, len(results))
	for _, spatial := range results {
		entry := spatial.(*pointEntry)
		if utils.Square(entry.pt.X-pt.X)+utils.Square(entry.pt.Y-pt.Y) <= radius*radius {
			found = append(found, entry.idx)
		}
	}
	return found
}
