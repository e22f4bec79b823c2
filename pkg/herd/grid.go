package herd

import (
	"math"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
)

type gridKey struct {
	x, z int
}

// spatialGrid buckets snapshot indexes by XZ cell so neighbor queries only
// touch the cells overlapping the query circle.
type spatialGrid struct {
	cellSize float64
	cells    map[gridKey][]int
}

func newSpatialGrid() spatialGrid {
	return spatialGrid{cellSize: 1, cells: make(map[gridKey][]int)}
}

// rebuild resets every bucket to length 0 but keeps its capacity, so a steady
// population stops allocating after the first few ticks.
func (g *spatialGrid) rebuild(entries []Neighbor, cellSize float64) {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	g.cellSize = math.Max(cellSize, 1)

	for i, e := range entries {
		key := g.keyFor(e.Position)
		g.cells[key] = append(g.cells[key], i)
	}
}

func (g *spatialGrid) keyFor(p geometry.Vector3D) gridKey {
	return gridKey{
		x: int(math.Floor(p.X / g.cellSize)),
		z: int(math.Floor(p.Z / g.cellSize)),
	}
}

// query calls fn for every index stored in a cell overlapping the square
// bounding the circle (p, radius). fn returns false to stop early.
func (g *spatialGrid) query(p geometry.Vector3D, radius float64, fn func(i int) bool) {
	minKey := g.keyFor(geometry.Vector3D{X: p.X - radius, Z: p.Z - radius})
	maxKey := g.keyFor(geometry.Vector3D{X: p.X + radius, Z: p.Z + radius})

	for gx := minKey.x; gx <= maxKey.x; gx++ {
		for gz := minKey.z; gz <= maxKey.z; gz++ {
			for _, i := range g.cells[gridKey{x: gx, z: gz}] {
				if !fn(i) {
					return
				}
			}
		}
	}
}
