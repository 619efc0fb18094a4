package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

// Camera projects world positions onto the canvas. Extent is the world
// distance from the centre to the nearest canvas edge at zoom 1; a weak
// perspective makes bodies nearer the viewer spread out.
type Camera struct {
	Center           r3.Vec
	Extent           float64
	RotX, RotY, RotZ float64
	Zoom             float64
	Distance         float64
}

func NewCamera(extent float64) *Camera {
	if !(extent > 0) {
		extent = 1
	}
	return &Camera{Extent: extent, Zoom: 1, Distance: 10}
}

// FitCamera returns a camera whose extent holds every position with
// some margin.
func FitCamera(pos []r3.Vec) *Camera {
	extent := 0.0
	for _, p := range pos {
		extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	return NewCamera(1.2 * extent)
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(1000, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(1e-3, c.Zoom/1.25) }

func (c *Camera) Reset() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1
}

// Rotate applies the camera rotation about its centre, x then y then z.
func (c *Camera) Rotate(p r3.Vec) r3.Vec {
	p = r3.Sub(p, c.Center)
	if c.RotX != 0 {
		p = r3.NewRotation(c.RotX, axisX).Rotate(p)
	}
	if c.RotY != 0 {
		p = r3.NewRotation(c.RotY, axisY).Rotate(p)
	}
	if c.RotZ != 0 {
		p = r3.NewRotation(c.RotZ, axisZ).Rotate(p)
	}
	return p
}

// Project maps p to sub-pixel coordinates of a sw x sh canvas. It returns
// the depth toward the viewer and whether the point lands on the canvas.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := r3.Scale(c.Zoom/c.Extent, c.Rotate(p))
	scale := 1.0
	if c.Distance > 0 {
		if rot.Z >= c.Distance {
			return 0, 0, rot.Z, false
		}
		scale = c.Distance / (c.Distance - rot.Z)
	}

	half := float64(sh) / 2
	if float64(sw)/2 < half {
		half = float64(sw) / 2
	}
	sx := int(math.Round(rot.X*scale*half)) + sw/2
	sy := int(math.Round(-rot.Y*scale*half)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
