package spatialindex

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/urbanflight/freespace/utils"
)

// cellKey addresses one bucket of a uniform grid.
type cellKey struct {
	cx int
	cy int
}

// gridIndex answers radius queries by scanning the grid cells overlapping the
// bounding box of the query disk.
type gridIndex struct {
	cells    map[cellKey][]int
	points   []r2.Point
	cellSize float64
}

// NewUniformGrid returns a Constructor for a uniform grid index with the given
// cell size. A cell size of zero or less derives one from the data extent at
// build time.
func NewUniformGrid(cellSize float64) Constructor {
	return func(points []r2.Point) (Index, error) {
		if len(points) == 0 {
			return nil, ErrNoPoints
		}
		if math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
			return nil, errors.New("grid cell size must be finite")
		}
		size := cellSize
		if size <= 0 {
			size = defaultCellSize(points)
		}
		stored := make([]r2.Point, len(points))
		copy(stored, points)
		cells := make(map[cellKey][]int)
		for i, pt := range stored {
			key := keyFor(pt, size)
			cells[key] = append(cells[key], i)
		}
		return &gridIndex{cells: cells, points: stored, cellSize: size}, nil
	}
}

func keyFor(pt r2.Point, size float64) cellKey {
	return cellKey{
		cx: int(math.Floor(pt.X / size)),
		cy: int(math.Floor(pt.Y / size)),
	}
}

// defaultCellSize targets on the order of one point per cell for evenly
// spread data.
func defaultCellSize(points []r2.Point) float64 {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, pt := range points[1:] {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent <= 0 {
		return 1
	}
	cellsPerSide := math.Max(math.Sqrt(float64(len(points))), 1)
	return extent / cellsPerSide
}

func (g *gridIndex) Len() int { return len(g.points) }

func (g *gridIndex) Within(pt r2.Point, radius float64) []int {
	if radius < 0 {
		return nil
	}
	minKey := keyFor(r2.Point{X: pt.X - radius, Y: pt.Y - radius}, g.cellSize)
	maxKey := keyFor(r2.Point{X: pt.X + radius, Y: pt.Y + radius}, g.cellSize)
	found := make([]int, 0)
	for cx := minKey.cx; cx <= maxKey.cx; cx++ {
		for cy := minKey.cy; cy <= maxKey.cy; cy++ {
			for _, i := range g.cells[cellKey{cx: cx, cy: cy}] {
				candidate := g.points[i]
				if utils.Square(candidate.X-pt.X)+utils.Square(candidate.Y-pt.Y) <= radius*radius {
					found = append(found, i)
				}
			}
		}
	}
	return found
}
