// Package camera provides a 2D pan/zoom camera over the scene's XY plane.
package camera

import "gonum.org/v1/gonum/spatial/r3"

// Camera controls the viewport into the scene. World +Y points up on
// screen; Z is ignored.
type Camera struct {
	// Center is the world point shown at the middle of the viewport
	Center r3.Vec

	// PixelsPerUnit is the scale at zoom 1
	PixelsPerUnit float32

	// Zoom level (1.0 = base scale, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centred on the world origin at zoom 1.
func New(viewportW, viewportH, pixelsPerUnit float32) *Camera {
	return &Camera{
		PixelsPerUnit: pixelsPerUnit,
		Zoom:          1.0,
		ViewportW:     viewportW,
		ViewportH:     viewportH,
		MinZoom:       0.25,
		MaxZoom:       8.0,
	}
}

func (c *Camera) scale() float32 {
	return c.PixelsPerUnit * c.Zoom
}

// WorldToScreen converts a world position to screen coordinates.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float32) {
	s := c.scale()
	sx = c.ViewportW/2 + float32(p.X-c.Center.X)*s
	sy = c.ViewportH/2 - float32(p.Y-c.Center.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to a world position with Z = 0.
func (c *Camera) ScreenToWorld(sx, sy float32) r3.Vec {
	s := c.scale()
	return r3.Vec{
		X: c.Center.X + float64((sx-c.ViewportW/2)/s),
		Y: c.Center.Y - float64((sy-c.ViewportH/2)/s),
	}
}

// Length converts a world distance to screen pixels.
func (c *Camera) Length(d float64) float32 {
	return float32(d) * c.scale()
}

// IsVisible returns true if a circle at p with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r3.Vec, radius float64) bool {
	sx, sy := c.WorldToScreen(p)
	r := c.Length(radius)
	return sx >= -r && sx <= c.ViewportW+r && sy >= -r && sy <= c.ViewportH+r
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the view by a drag of (dx, dy) screen pixels, so the world
// follows the cursor.
func (c *Camera) Pan(dx, dy float32) {
	s := c.scale()
	c.Center.X -= float64(dx / s)
	c.Center.Y += float64(dy / s)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	anchor := c.ScreenToWorld(sx, sy)
	c.SetZoom(c.Zoom * factor)
	moved := c.ScreenToWorld(sx, sy)
	c.Center = r3.Add(c.Center, r3.Sub(anchor, moved))
}

// Reset returns the camera to the origin at zoom 1.
func (c *Camera) Reset() {
	c.Center = r3.Vec{}
	c.Zoom = 1.0
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
