package domain

import "math"

// Position locates an idea on the matrix in normalized coordinates.
// Both axes live in the closed interval [0, 1]; (0, 0) is the top-left
// corner and (0.5, 0.5) the matrix midpoint.
type Position struct {
	X float64
	Y float64
}

// CenterPosition returns the deterministic fallback position used for
// missing or malformed coordinates.
func CenterPosition() Position {
	return Position{X: 0.5, Y: 0.5}
}

// Clamp constrains both axes to [0, 1].
func (p Position) Clamp() Position {
	return Position{
		X: clampUnit(p.X),
		Y: clampUnit(p.Y),
	}
}

// Sanitize replaces non-finite axis values with the center fallback and
// clamps the rest. Every write path runs positions through this so that
// rendering never sees NaN or out-of-range coordinates.
func (p Position) Sanitize() Position {
	if !isFiniteUnit(p.X) {
		p.X = 0.5
	}
	if !isFiniteUnit(p.Y) {
		p.Y = 0.5
	}
	return p.Clamp()
}

// Quadrant classifies the position against the matrix midpoint.
// Ties go right/bottom: x >= 0.5 is the right half, y >= 0.5 the bottom
// half, so a fixed position always classifies as the same quadrant.
func (p Position) Quadrant() Quadrant {
	p = p.Sanitize()
	right := p.X >= 0.5
	bottom := p.Y >= 0.5
	switch {
	case !right && !bottom:
		return QuadrantQuickWins
	case right && !bottom:
		return QuadrantBigBets
	case !right && bottom:
		return QuadrantIncremental
	default:
		return QuadrantMoneyPit
	}
}

// Quadrant identifies one of the four matrix regions.
type Quadrant string

// Quadrant values in reading order: top-left, top-right, bottom-left, bottom-right.
const (
	QuadrantQuickWins   Quadrant = "quick-wins"
	QuadrantBigBets     Quadrant = "big-bets"
	QuadrantIncremental Quadrant = "incremental"
	QuadrantMoneyPit    Quadrant = "money-pit"
)

// Label returns the display name for a quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantQuickWins:
		return "Quick Wins"
	case QuadrantBigBets:
		return "Big Bets"
	case QuadrantIncremental:
		return "Incremental"
	case QuadrantMoneyPit:
		return "Money Pit"
	default:
		return string(q)
	}
}

// clampUnit clamps one axis value to [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// isFiniteUnit reports whether one axis value is a usable real number.
func isFiniteUnit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
