package viewer

import (
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/nav"
)

// viewport maps the XZ plane to screen pixels: +X to the right, +Z down.
type viewport struct {
	bounds  nav.Bounds
	scale   float64 // pixels per world unit
	offsetX float64 // screen column of bounds.MinX
	offsetY float64 // screen row of bounds.MinZ
}

func newViewport(bounds nav.Bounds, scale, offsetX, offsetY float64) viewport {
	return viewport{bounds: bounds, scale: scale, offsetX: offsetX, offsetY: offsetY}
}

func (v viewport) toScreen(p geometry.Vector3D) (float32, float32) {
	x := v.offsetX + (p.X-v.bounds.MinX)*v.scale
	y := v.offsetY + (p.Z-v.bounds.MinZ)*v.scale
	return float32(x), float32(y)
}

func (v viewport) toWorld(x, y float64) geometry.Vector3D {
	return geometry.Vector3D{
		X: v.bounds.MinX + (x-v.offsetX)/v.scale,
		Z: v.bounds.MinZ + (y-v.offsetY)/v.scale,
	}
}

func (v viewport) length(l float64) float32 {
	return float32(l * v.scale)
}

// size returns the pixel size of the world area.
func (v viewport) size() (int, int) {
	return int(v.bounds.Width() * v.scale), int(v.bounds.Depth() * v.scale)
}

// contains reports whether the screen point lies over the world area.
func (v viewport) contains(x, y float64) bool {
	w, h := v.size()
	return x >= v.offsetX && x <= v.offsetX+float64(w) && y >= v.offsetY && y <= v.offsetY+float64(h)
}
