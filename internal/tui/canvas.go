package tui

import (
	"math"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/hylla/prioritas/internal/domain"
	"github.com/hylla/prioritas/internal/geometry"
)

var (
	gridStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	axisLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	quadrantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Italic(true)
	cardStyle          = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("241"))
	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("212")).
				Foreground(lipgloss.Color("212"))
	draggedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("62")).
				Foreground(lipgloss.Color("62")).
				Bold(true)
	archivedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("239")).
				Foreground(lipgloss.Color("239")).
				Strikethrough(true)
	collapsedDotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	collapsedSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	cardDetailsStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	canvasWaitingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// renderMatrixCanvas composes the quadrant grid, labels and cards into one
// fixed-size block. The dragged card follows the live drag point; every other
// card sits at its stored position.
func renderMatrixCanvas(dims geometry.Dimensions, matrix MatrixConfig, ideas []domain.Idea, selectedID string, drag *dragSession) string {
	if dims.Degenerate() {
		return ""
	}

	canvas := lipgloss.NewCanvas(dims.Width, dims.Height)
	canvas.Compose(lipgloss.NewLayer(matrixGrid(dims)).X(0).Y(0).Z(0))
	composeLabels(canvas, dims, matrix)

	for i, idea := range ideas {
		dragged := drag != nil && drag.holds(idea.ID)
		pt := geometry.ToPixels(idea.Position, dims)
		z := 10 + i
		if idea.ID == selectedID {
			z = 100
		}
		if dragged {
			pt = drag.point
			z = 200
		}
		block := renderCard(idea, cardWidth(dims), idea.ID == selectedID, dragged)
		x, y := cardTopLeft(pt, block, dims)
		canvas.Compose(lipgloss.NewLayer(block).X(x).Y(y).Z(z))
	}

	return canvas.Render()
}

// matrixGrid draws the midlines splitting the canvas into four quadrants.
func matrixGrid(dims geometry.Dimensions) string {
	cx := midlineColumn(dims)
	cy := midlineRow(dims)

	rows := make([]string, dims.Height)
	for y := 0; y < dims.Height; y++ {
		var b strings.Builder
		for x := 0; x < dims.Width; x++ {
			switch {
			case x == cx && y == cy:
				b.WriteRune('┼')
			case x == cx && y >= dims.Padding.Top && y < dims.Height-dims.Padding.Bottom:
				b.WriteRune('│')
			case y == cy && x >= dims.Padding.Left && x < dims.Width-dims.Padding.Right:
				b.WriteRune('─')
			default:
				b.WriteRune(' ')
			}
		}
		rows[y] = b.String()
	}
	return gridStyle.Render(strings.Join(rows, "\n"))
}

// composeLabels overlays the axis and quadrant labels onto the grid.
func composeLabels(canvas *lipgloss.Canvas, dims geometry.Dimensions, matrix MatrixConfig) {
	cx := midlineColumn(dims)
	cy := midlineRow(dims)

	topRow := dims.Padding.Top
	bottomRow := dims.Height - dims.Padding.Bottom - 1
	leftCol := dims.Padding.Left + 1
	rightEdge := dims.Width - dims.Padding.Right - 1

	place := func(text string, style lipgloss.Style, x, y int) {
		if text == "" || y < 0 || y >= dims.Height {
			return
		}
		x = clamp(x, 0, dims.Width-lipgloss.Width(text))
		canvas.Compose(lipgloss.NewLayer(style.Render(text)).X(x).Y(y).Z(5))
	}

	place(matrix.TopLeftLabel, quadrantLabelStyle, leftCol, topRow)
	place(matrix.TopRightLabel, quadrantLabelStyle, rightEdge-lipgloss.Width(matrix.TopRightLabel), topRow)
	place(matrix.BottomLeftLabel, quadrantLabelStyle, leftCol, bottomRow)
	place(matrix.BottomRightLabel, quadrantLabelStyle, rightEdge-lipgloss.Width(matrix.BottomRightLabel), bottomRow)

	if matrix.ValueAxisLabel != "" {
		valueLabel := " " + matrix.ValueAxisLabel + " ↑ "
		place(valueLabel, axisLabelStyle, cx-lipgloss.Width(valueLabel)/2, topRow)
	}
	if matrix.EffortAxisLabel != "" {
		effortLabel := " " + matrix.EffortAxisLabel + " → "
		place(effortLabel, axisLabelStyle, rightEdge-lipgloss.Width(effortLabel), cy)
	}
}

// renderCard renders one idea as a canvas block. Collapsed cards are a single
// marker line; expanded cards get a bordered box with the first details line.
func renderCard(idea domain.Idea, width int, selected, dragged bool) string {
	if idea.Collapsed && !dragged {
		marker := "◆ " + truncate(idea.Content, width-2)
		if selected {
			return collapsedSelectedStyle.Render(marker)
		}
		return collapsedDotStyle.Render(marker)
	}

	inner := width - 2
	lines := []string{truncate(idea.Content, inner)}
	if details := firstLine(idea.Details); details != "" {
		lines = append(lines, cardDetailsStyle.Render(truncate(details, inner)))
	}
	body := strings.Join(lines, "\n")

	style := cardStyle
	switch {
	case dragged:
		style = draggedCardStyle
	case idea.ArchivedAt != nil:
		style = archivedCardStyle
	case selected:
		style = selectedCardStyle
	}
	return style.Width(inner).Render(body)
}

// cardTopLeft centers a card block on its anchor point, clamped to the canvas.
func cardTopLeft(pt geometry.Point, block string, dims geometry.Dimensions) (int, int) {
	w := lipgloss.Width(block)
	h := lipgloss.Height(block)
	x := int(math.Round(pt.X)) - w/2
	y := int(math.Round(pt.Y)) - h/2
	x = clamp(x, 0, max(0, dims.Width-w))
	y = clamp(y, 0, max(0, dims.Height-h))
	return x, y
}

// cardWidth picks a card width that keeps four cards legible per quadrant row.
func cardWidth(dims geometry.Dimensions) int {
	return clamp(dims.UsableWidth()/4, 12, 26)
}

// midlineColumn returns the vertical midline column. Resolver widths are even,
// so the midline lands on a whole cell.
func midlineColumn(dims geometry.Dimensions) int {
	return dims.Padding.Left + dims.UsableWidth()/2
}

// midlineRow returns the horizontal midline row.
func midlineRow(dims geometry.Dimensions) int {
	return dims.Padding.Top + dims.UsableHeight()/2
}

// firstLine returns the first non-empty line of a details body.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// truncate shortens a string to max cells, rune-safe, with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// clamp bounds v to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
