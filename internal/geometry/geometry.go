// Package geometry maps normalized matrix positions to canvas cells and
// back. Both directions are pure functions over a Dimensions value; no
// state, no rendering.
package geometry

import (
	"github.com/hylla/prioritas/internal/domain"
)

// Point is a location on the canvas in fractional cell coordinates.
// Callers round only when blitting so that the inverse mapping stays
// precise.
type Point struct {
	X float64
	Y float64
}

// Insets describes padding inside the canvas, in cells.
type Insets struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Dimensions describes the canvas the matrix renders into.
type Dimensions struct {
	Width   int
	Height  int
	Padding Insets
}

// UsableWidth returns the horizontal extent available for card placement.
func (d Dimensions) UsableWidth() int {
	return d.Width - d.Padding.Left - d.Padding.Right
}

// UsableHeight returns the vertical extent available for card placement.
func (d Dimensions) UsableHeight() int {
	return d.Height - d.Padding.Top - d.Padding.Bottom
}

// Degenerate reports whether the canvas has no usable area. Mapping
// against a degenerate canvas returns center sentinels instead of
// dividing by zero.
func (d Dimensions) Degenerate() bool {
	return d.UsableWidth() <= 0 || d.UsableHeight() <= 0
}

// Center returns the canvas midpoint.
func (d Dimensions) Center() Point {
	return Point{
		X: float64(d.Padding.Left) + float64(d.UsableWidth())/2,
		Y: float64(d.Padding.Top) + float64(d.UsableHeight())/2,
	}
}

// ToPixels maps a normalized position onto the canvas. The position is
// sanitized first, so malformed coordinates land at deterministic spots
// instead of propagating NaN into layout.
func ToPixels(pos domain.Position, d Dimensions) Point {
	if d.Degenerate() {
		return d.Center()
	}
	pos = pos.Sanitize()
	return Point{
		X: float64(d.Padding.Left) + pos.X*float64(d.UsableWidth()),
		Y: float64(d.Padding.Top) + pos.Y*float64(d.UsableHeight()),
	}
}

// ToNormalized maps a canvas point back to a normalized position. The
// result is always clamped to [0, 1] even when the point lies outside
// the usable area, which is what a drag released over the padding needs.
func ToNormalized(pt Point, d Dimensions) domain.Position {
	if d.Degenerate() {
		return domain.CenterPosition()
	}
	return domain.Position{
		X: (pt.X - float64(d.Padding.Left)) / float64(d.UsableWidth()),
		Y: (pt.Y - float64(d.Padding.Top)) / float64(d.UsableHeight()),
	}.Sanitize()
}
