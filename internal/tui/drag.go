package tui

import (
	"github.com/hylla/prioritas/internal/domain"
	"github.com/hylla/prioritas/internal/geometry"
)

// dragPhase identifies the drag session state.
type dragPhase int

// drag session phases: at most one session exists per model.
const (
	dragIdle dragPhase = iota
	dragActive
	dragCommitting
)

// dragSession tracks one grabbed card from pick-up to drop or cancel. The live
// point departs from the committed position while dragging; origin keeps the
// stored position untouched so a cancel snaps back exactly.
type dragSession struct {
	phase  dragPhase
	ideaID string
	origin domain.Position
	pos    domain.Position
	point  geometry.Point
	dims   geometry.Dimensions
}

// active reports whether a card is currently grabbed.
func (d *dragSession) active() bool {
	return d.phase == dragActive
}

// committing reports whether a drop is waiting on the repository.
func (d *dragSession) committing() bool {
	return d.phase == dragCommitting
}

// holds reports whether this session owns the given card.
func (d *dragSession) holds(ideaID string) bool {
	return d.phase != dragIdle && d.ideaID == ideaID
}

// begin grabs one card. Refused while another session is active or committing.
func (d *dragSession) begin(idea domain.Idea, dims geometry.Dimensions) bool {
	if d.phase != dragIdle {
		return false
	}
	d.phase = dragActive
	d.ideaID = idea.ID
	d.origin = idea.Position
	d.pos = idea.Position
	d.dims = dims
	d.point = geometry.ToPixels(idea.Position, dims)
	return true
}

// nudge shifts the live point by whole cells, clamped to the usable canvas.
func (d *dragSession) nudge(dx, dy float64) {
	if d.phase != dragActive {
		return
	}
	d.point.X += dx
	d.point.Y += dy
	d.clampPoint()
	d.syncPosition()
}

// follow moves the live point to an absolute canvas cell (mouse motion).
func (d *dragSession) follow(x, y float64) {
	if d.phase != dragActive {
		return
	}
	d.point.X = x
	d.point.Y = y
	d.clampPoint()
	d.syncPosition()
}

// position returns the live normalized position. The normalized value is the
// source of truth; the pixel point is only its projection onto current dims.
func (d *dragSession) position() domain.Position {
	return d.pos
}

// syncPosition re-derives the normalized position from the live point. Skipped
// while dims are degenerate so a collapsed viewport cannot corrupt it.
func (d *dragSession) syncPosition() {
	if d.dims.Degenerate() {
		return
	}
	d.pos = geometry.ToNormalized(d.point, d.dims)
}

// beginCommit freezes the session for the repository write and returns the target.
func (d *dragSession) beginCommit() (domain.Position, bool) {
	if d.phase != dragActive {
		return domain.Position{}, false
	}
	d.phase = dragCommitting
	return d.position(), true
}

// rescale re-anchors the live point after a canvas resize so the card keeps
// its normalized position instead of its old cell. Degenerate dims leave the
// normalized position untouched until a usable canvas comes back.
func (d *dragSession) rescale(dims geometry.Dimensions) {
	if d.phase == dragIdle {
		return
	}
	d.dims = dims
	if dims.Degenerate() {
		return
	}
	d.point = geometry.ToPixels(d.pos, dims)
}

// finish releases the session after a settled commit.
func (d *dragSession) finish() {
	*d = dragSession{}
}

// cancel discards the live delta and returns the grab-time position unchanged.
func (d *dragSession) cancel() (string, domain.Position) {
	ideaID, origin := d.ideaID, d.origin
	*d = dragSession{}
	return ideaID, origin
}

// clampPoint keeps the live point inside the padded canvas area.
func (d *dragSession) clampPoint() {
	minX := float64(d.dims.Padding.Left)
	maxX := float64(d.dims.Width - d.dims.Padding.Right - 1)
	minY := float64(d.dims.Padding.Top)
	maxY := float64(d.dims.Height - d.dims.Padding.Bottom - 1)
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}
	if d.point.X < minX {
		d.point.X = minX
	}
	if d.point.X > maxX {
		d.point.X = maxX
	}
	if d.point.Y < minY {
		d.point.Y = minY
	}
	if d.point.Y > maxY {
		d.point.Y = maxY
	}
}
