package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		return matrixView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
	}
	if !m.ready {
		return matrixView("loading...")
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	helpStyle := lipgloss.NewStyle().Foreground(muted)
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	if len(m.projects) == 0 {
		sections := []string{
			titleStyle.Render("prioritas"),
			"",
			"No projects yet.",
			"Press N to create your first project.",
			"Press q to quit.",
		}
		if strings.TrimSpace(m.status) != "" && m.status != "ready" {
			sections = append(sections, "", statusStyle.Render(m.status))
		}
		content := strings.Join(sections, "\n")
		return m.composeView(content, accent, muted, dim, helpStyle)
	}

	project := m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)]

	header := titleStyle.Render("prioritas") + "  " + project.Name
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	if m.showArchived {
		header += statusStyle.Render("  showing archived")
	}
	rollupLine := helpStyle.Render(fmt.Sprintf(
		"%d cards  %s %d · %s %d · %s %d · %s %d",
		m.rollup.TotalIdeas,
		m.matrix.TopLeftLabel, m.rollup.QuickWins,
		m.matrix.TopRightLabel, m.rollup.BigBets,
		m.matrix.BottomLeftLabel, m.rollup.Incremental,
		m.matrix.BottomRightLabel, m.rollup.MoneyPit,
	))

	var body string
	if m.dims.Degenerate() {
		body = canvasWaitingStyle.Render("measuring viewport...")
	} else {
		selectedID := ""
		if idea, ok := m.selectedIdeaRow(); ok {
			selectedID = idea.ID
		}
		drag := m.drag
		body = renderMatrixCanvas(m.dims, m.matrix, m.collection.ideas(), selectedID, &drag)
	}

	statusLine := statusStyle.Render(truncate(m.status, max(0, m.width-2)))
	content := header + "\n" + rollupLine + "\n" + body + "\n" + statusLine
	return m.composeView(content, accent, muted, dim, helpStyle)
}

// composeView stacks content above the help line and applies any modal overlay.
func (m Model) composeView(content string, accent, muted, dim color.Color, helpStyle lipgloss.Style) tea.View {
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}
	fullContent := content + "\n" + helpLine

	if overlay := m.renderModeOverlay(accent, muted, dim, helpStyle, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return matrixView(fullContent)
}

// matrixView wraps content in the terminal settings every screen shares.
func matrixView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, helpStyle lipgloss.Style, maxWidth int) string {
	if maxWidth < 24 {
		maxWidth = 24
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(dim)

	switch m.mode {
	case modeAddIdea, modeEditIdea:
		if len(m.formInputs) < 2 {
			return ""
		}
		title := "New Card"
		if m.mode == modeEditIdea {
			title = "Edit Card"
		}
		lines := []string{
			titleStyle.Render(title),
			"",
			formFieldLabel("content", m.formFocus == ideaFieldContent, muted, accent) + " " + m.formInputs[ideaFieldContent].View(),
			formFieldLabel("details", m.formFocus == ideaFieldDetails, muted, accent) + " " + m.formInputs[ideaFieldDetails].View(),
			"",
			hintStyle.Render("tab next field • enter save • esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddProject:
		if len(m.projectFormInputs) < 2 {
			return ""
		}
		lines := []string{
			titleStyle.Render("New Project"),
			"",
			formFieldLabel("name", m.projectFormFocus == projectFieldName, muted, accent) + " " + m.projectFormInputs[projectFieldName].View(),
			formFieldLabel("description", m.projectFormFocus == projectFieldDescription, muted, accent) + " " + m.projectFormInputs[projectFieldDescription].View(),
			"",
			hintStyle.Render("tab next field • enter create • esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeProjectPicker:
		lines := []string{titleStyle.Render("Projects"), ""}
		selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
		for idx, project := range m.projects {
			row := "  " + project.Name
			if idx == m.projectPickerIndex {
				row = selectedStyle.Render("▸ " + project.Name)
			}
			lines = append(lines, truncate(row, maxWidth-6))
		}
		lines = append(lines, "", hintStyle.Render("j/k move • enter switch • esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeIdeaInfo:
		idea, ok := m.collection.get(m.infoIdeaID)
		if !ok {
			return ""
		}
		innerWidth := min(maxWidth-6, 72)
		lines := []string{
			titleStyle.Render(truncate(idea.Content, innerWidth)),
			helpStyle.Render(idea.Quadrant().Label() + fmt.Sprintf("  (%.2f, %.2f)", idea.Position.X, idea.Position.Y)),
		}
		if idea.ArchivedAt != nil {
			lines = append(lines, hintStyle.Render("archived "+idea.ArchivedAt.Format("2006-01-02 15:04")))
		}
		if strings.TrimSpace(idea.Details) != "" {
			lines = append(lines, "", m.markdown.render(idea.Details, innerWidth))
		}
		lines = append(lines,
			"",
			hintStyle.Render("updated "+idea.UpdatedAt.Format("2006-01-02 15:04")),
			hintStyle.Render("e edit • esc close"),
		)
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeConfirmAction:
		yes, no := "[ yes ]", "[ no ]"
		choiceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
		if m.confirmChoice == 0 {
			yes = choiceStyle.Render(yes)
		} else {
			no = choiceStyle.Render(no)
		}
		lines := []string{
			titleStyle.Render(m.pendingConfirm.Label),
			"",
			truncate(m.pendingConfirm.Idea.Content, maxWidth-6),
			"",
			yes + "  " + no,
			"",
			hintStyle.Render("y confirm • n/esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeActivityLog:
		lines := []string{titleStyle.Render("Activity"), ""}
		entries := m.activityLog
		if len(entries) > activityLogViewWindow {
			entries = entries[len(entries)-activityLogViewWindow:]
		}
		if len(entries) == 0 {
			lines = append(lines, helpStyle.Render("no activity yet"))
		}
		for _, entry := range entries {
			row := hintStyle.Render(entry.At.Format("15:04")) + " " + entry.Summary
			if entry.Target != "" {
				row += helpStyle.Render("  " + entry.Target)
			}
			lines = append(lines, truncate(row, maxWidth-6))
		}
		lines = append(lines, "", hintStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// formFieldLabel renders a form label, highlighted while focused.
func formFieldLabel(label string, focused bool, muted, accent color.Color) string {
	style := lipgloss.NewStyle().Foreground(muted).Width(12)
	if focused {
		style = style.Foreground(accent).Bold(true)
	}
	return style.Render(label + ":")
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	centeredOverlay := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10))
	return canvas.Render()
}
