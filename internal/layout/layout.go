// Package layout resolves terminal viewport sizes into matrix canvas
// dimensions. A small breakpoint table buckets the viewport into device
// classes; the resolver applies the class recipe and memoizes results
// per viewport size so repeated resize reports stay cheap.
package layout

import (
	"github.com/hylla/prioritas/internal/geometry"
)

// DeviceClass buckets a viewport width into one of five rendering tiers.
type DeviceClass string

// DeviceClass values from smallest viewport to largest.
const (
	DeviceCompact   DeviceClass = "compact"
	DeviceNarrow    DeviceClass = "narrow"
	DeviceStandard  DeviceClass = "standard"
	DeviceWide      DeviceClass = "wide"
	DeviceUltrawide DeviceClass = "ultrawide"
)

// classSpec is one row of the breakpoint table.
type classSpec struct {
	class       DeviceClass
	maxWidth    int // inclusive upper bound in columns, 0 means unbounded
	utilization float64
	padding     geometry.Insets
	headerRows  int
	sidebar     bool
}

// classTable is ordered smallest first; lookup takes the first row whose
// bound covers the width, so the table order is load-bearing.
var classTable = []classSpec{
	{class: DeviceCompact, maxWidth: 64, utilization: 0.96, padding: geometry.Insets{Top: 1, Right: 1, Bottom: 1, Left: 1}, headerRows: 1},
	{class: DeviceNarrow, maxWidth: 96, utilization: 0.92, padding: geometry.Insets{Top: 1, Right: 2, Bottom: 1, Left: 2}, headerRows: 2},
	{class: DeviceStandard, maxWidth: 128, utilization: 0.88, padding: geometry.Insets{Top: 1, Right: 2, Bottom: 1, Left: 2}, headerRows: 2, sidebar: true},
	{class: DeviceWide, maxWidth: 168, utilization: 0.84, padding: geometry.Insets{Top: 2, Right: 3, Bottom: 2, Left: 3}, headerRows: 3, sidebar: true},
	{class: DeviceUltrawide, utilization: 0.80, padding: geometry.Insets{Top: 2, Right: 4, Bottom: 2, Left: 4}, headerRows: 3, sidebar: true},
}

// ClassFor buckets a viewport width into its device class.
func ClassFor(width int) DeviceClass {
	return specFor(width).class
}

// specFor returns the first table row covering the width.
func specFor(width int) classSpec {
	for _, spec := range classTable {
		if spec.maxWidth == 0 || width <= spec.maxWidth {
			return spec
		}
	}
	return classTable[len(classTable)-1]
}

// Options tune the resolver beyond the breakpoint table.
type Options struct {
	SidebarWidth    int
	StatusRows      int
	MaxCanvasWidth  int
	MaxCanvasHeight int
}

// DefaultOptions returns the resolver defaults.
func DefaultOptions() Options {
	return Options{
		SidebarWidth:    28,
		StatusRows:      2,
		MaxCanvasWidth:  220,
		MaxCanvasHeight: 70,
	}
}

// sizeKey identifies one memoized viewport measurement.
type sizeKey struct {
	width  int
	height int
}

// Resolver turns viewport sizes into canvas dimensions. Resolve is
// memoized on the exact (width, height) pair; it is not safe for
// concurrent use, matching its single-goroutine caller.
type Resolver struct {
	opts Options
	memo map[sizeKey]geometry.Dimensions
}

// NewResolver constructs a resolver with the given options. Zero option
// fields fall back to defaults.
func NewResolver(opts Options) *Resolver {
	def := DefaultOptions()
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = def.SidebarWidth
	}
	if opts.StatusRows <= 0 {
		opts.StatusRows = def.StatusRows
	}
	if opts.MaxCanvasWidth <= 0 {
		opts.MaxCanvasWidth = def.MaxCanvasWidth
	}
	if opts.MaxCanvasHeight <= 0 {
		opts.MaxCanvasHeight = def.MaxCanvasHeight
	}
	return &Resolver{
		opts: opts,
		memo: map[sizeKey]geometry.Dimensions{},
	}
}

// Resolve computes canvas dimensions for a viewport measurement.
// Identical measurements return the identical cached value. Unusable
// viewports resolve to zero dimensions, which callers treat as a
// waiting state rather than an error.
func (r *Resolver) Resolve(width, height int) geometry.Dimensions {
	key := sizeKey{width: width, height: height}
	if dims, ok := r.memo[key]; ok {
		return dims
	}
	dims := r.compute(width, height)
	r.memo[key] = dims
	return dims
}

// compute applies the class recipe to one viewport measurement.
func (r *Resolver) compute(width, height int) geometry.Dimensions {
	if width <= 0 || height <= 0 {
		return geometry.Dimensions{}
	}

	spec := specFor(width)

	availW := width
	if spec.sidebar {
		availW -= r.opts.SidebarWidth
	}
	availH := height - spec.headerRows - r.opts.StatusRows
	if availW <= 0 || availH <= 0 {
		return geometry.Dimensions{}
	}

	canvasW := int(float64(availW) * spec.utilization)
	if canvasW > r.opts.MaxCanvasWidth {
		canvasW = r.opts.MaxCanvasWidth
	}
	// Even widths keep the vertical midline on a whole cell.
	canvasW -= canvasW % 2

	canvasH := availH
	if canvasH > r.opts.MaxCanvasHeight {
		canvasH = r.opts.MaxCanvasHeight
	}

	dims := geometry.Dimensions{
		Width:   canvasW,
		Height:  canvasH,
		Padding: spec.padding,
	}
	if dims.Degenerate() {
		return geometry.Dimensions{}
	}
	return dims
}
