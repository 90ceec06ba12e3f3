package tui

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/prioritas/internal/app"
	"github.com/hylla/prioritas/internal/domain"
	"github.com/hylla/prioritas/internal/geometry"
	"github.com/hylla/prioritas/internal/layout"
)

// Service represents service data used by this package.
type Service interface {
	ListProjects(context.Context, bool) ([]domain.Project, error)
	CreateProject(context.Context, string, string) (domain.Project, error)
	ListIdeas(context.Context, string, bool) ([]domain.Idea, error)
	CreateIdea(context.Context, app.CreateIdeaInput) (domain.Idea, error)
	UpdateIdea(context.Context, app.UpdateIdeaInput) (domain.Idea, error)
	MoveIdea(context.Context, string, domain.Position) (domain.Idea, error)
	SetIdeaCollapsed(context.Context, string, bool) (domain.Idea, error)
	DeleteIdea(context.Context, string, app.DeleteMode) error
	RestoreIdea(context.Context, string) (domain.Idea, error)
	QuadrantRollup(context.Context, string) (domain.QuadrantRollup, error)
	ListProjectChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddIdea
	modeEditIdea
	modeIdeaInfo
	modeProjectPicker
	modeAddProject
	modeConfirmAction
	modeActivityLog
)

// idea-form field indexes used throughout keyboard/update logic.
const (
	ideaFieldContent = iota
	ideaFieldDetails
)

// project-form field indexes used for focused form actions.
const (
	projectFieldName = iota
	projectFieldDescription
)

// activity log limits used by modal rendering and retention.
const (
	activityLogMaxItems   = 200
	activityLogViewWindow = 12
)

// headerLines is the fixed row count rendered above the matrix canvas; mouse
// hit testing subtracts it to translate viewport rows into canvas rows.
const headerLines = 2

// resizeDebounce is how long a viewport size must hold before the canvas is
// re-resolved. Terminal resizes arrive as bursts; only the last one wins.
const resizeDebounce = 120 * time.Millisecond

// confirmAction describes a pending confirmation action.
type confirmAction struct {
	Kind  string
	Idea  domain.Idea
	Mode  app.DeleteMode
	Label string
}

// activityEntry describes one recorded mutation for the in-app activity log.
type activityEntry struct {
	At      time.Time
	Summary string
	Target  string
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	matrix            MatrixConfig
	resolver          *layout.Resolver
	defaultDeleteMode app.DeleteMode

	dims      geometry.Dimensions
	resizeGen int

	projects        []domain.Project
	selectedProject int
	collection      *ideaCollection
	selectedIdea    int
	rollup          domain.QuadrantRollup
	showArchived    bool

	drag           dragSession
	mouseDragMoved bool

	mode          inputMode
	formInputs    []textinput.Model
	formFocus     int
	editingIdeaID string
	infoIdeaID    string

	projectPickerIndex int
	projectFormInputs  []textinput.Model
	projectFormFocus   int
	pendingProjectID   string
	pendingFocusIdeaID string

	pendingConfirm confirmAction
	confirmChoice  int

	activityLog []activityEntry

	markdown *markdownRenderer
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	ideas           []domain.Idea
	rollup          domain.QuadrantRollup
	err             error
}

// actionMsg carries message data through update handling. A non-zero
// settleToken ties the message back to one staged optimistic mutation:
// success commits it with the canonical row, failure rolls it back.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	projectID   string
	focusIdeaID string
	settleToken int
	canonical   *domain.Idea
}

// resizeSettledMsg fires once a resize burst has been quiet for the debounce
// window. Stale generations are dropped in Update.
type resizeSettledMsg struct {
	gen    int
	width  int
	height int
}

// activityLogLoadedMsg carries persisted activity entries for the active project.
type activityLogLoadedMsg struct {
	entries []activityEntry
	err     error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:               svc,
		status:            "loading...",
		help:              h,
		keys:              newKeyMap(),
		matrix:            DefaultMatrixConfig(),
		resolver:          layout.NewResolver(layout.Options{}),
		defaultDeleteMode: app.DeleteModeArchive,
		collection:        newIdeaCollection(),
		activityLog:       []activityEntry{},
		markdown:          &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.resizeGen++
		gen, w, h := m.resizeGen, msg.Width, msg.Height
		return m, tea.Tick(resizeDebounce, func(time.Time) tea.Msg {
			return resizeSettledMsg{gen: gen, width: w, height: h}
		})

	case resizeSettledMsg:
		if msg.gen != m.resizeGen {
			return m, nil
		}
		m.dims = m.resolver.Resolve(msg.width, msg.height)
		m.drag.rescale(m.dims)
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.selectedProject = msg.selectedProject
		m.collection.replaceAll(msg.ideas)
		m.rollup = msg.rollup
		if len(m.projects) == 0 {
			m.selectedProject = 0
			m.selectedIdea = 0
			if m.mode == modeNone {
				m.status = "create your first project"
				return m, m.startProjectForm()
			}
			return m, nil
		}
		if m.pendingProjectID != "" {
			for idx, project := range m.projects {
				if project.ID == m.pendingProjectID {
					m.selectedProject = idx
					break
				}
			}
			m.pendingProjectID = ""
		}
		if m.pendingFocusIdeaID != "" {
			if idx := m.collection.indexOf(m.pendingFocusIdeaID); idx >= 0 {
				m.selectedIdea = idx
			}
			m.pendingFocusIdeaID = ""
		}
		m.clampSelections()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		return m.handleActionMsg(msg)

	case activityLogLoadedMsg:
		if msg.err != nil {
			m.status = "activity log failed: " + msg.err.Error()
			m.mode = modeNone
			return m, nil
		}
		m.activityLog = append([]activityEntry(nil), msg.entries...)
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// handleActionMsg settles optimistic mutations and applies side effects.
func (m Model) handleActionMsg(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.settleToken != 0 {
			stagedID, staged := m.collection.stagedIdeaID(msg.settleToken)
			m.collection.rollback(msg.settleToken)
			if m.drag.committing() && staged && m.drag.holds(stagedID) {
				m.drag.finish()
			}
			m.status = "change failed, rolled back: " + msg.err.Error()
			return m, nil
		}
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	if msg.settleToken != 0 && msg.canonical != nil {
		m.collection.commit(msg.settleToken, *msg.canonical)
		if m.drag.committing() && m.drag.holds(msg.canonical.ID) {
			m.drag.finish()
		}
	}
	if msg.status != "" {
		m.status = msg.status
	}
	if msg.projectID != "" {
		m.pendingProjectID = msg.projectID
	}
	if msg.focusIdeaID != "" {
		m.pendingFocusIdeaID = msg.focusIdeaID
	}
	if msg.reload {
		return m, m.loadData
	}
	return m, nil
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	projects, err := m.svc.ListProjects(context.Background(), false)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{projects: projects}
	}

	projectIdx := clamp(m.selectedProject, 0, len(projects)-1)
	if pendingProjectID := strings.TrimSpace(m.pendingProjectID); pendingProjectID != "" {
		for idx, project := range projects {
			if project.ID == pendingProjectID {
				projectIdx = idx
				break
			}
		}
	}
	projectID := projects[projectIdx].ID

	ideas, err := m.svc.ListIdeas(context.Background(), projectID, m.showArchived)
	if err != nil {
		return loadedMsg{err: err}
	}
	rollup, err := m.svc.QuadrantRollup(context.Background(), projectID)
	if err != nil {
		return loadedMsg{err: err}
	}

	return loadedMsg{
		projects:        projects,
		selectedProject: projectIdx,
		ideas:           ideas,
		rollup:          rollup,
	}
}

// loadActivityLog loads persisted project activity entries for modal rendering.
func (m Model) loadActivityLog() tea.Msg {
	projectID, ok := m.currentProjectID()
	if !ok {
		return activityLogLoadedMsg{entries: nil}
	}
	events, err := m.svc.ListProjectChangeEvents(context.Background(), projectID, activityLogMaxItems)
	if err != nil {
		return activityLogLoadedMsg{err: err}
	}
	return activityLogLoadedMsg{entries: mapChangeEventsToActivityEntries(events)}
}

// mapChangeEventsToActivityEntries converts newest-first ledger rows into
// chronological modal rows.
func mapChangeEventsToActivityEntries(events []domain.ChangeEvent) []activityEntry {
	entries := make([]activityEntry, 0, len(events))
	for idx := len(events) - 1; idx >= 0; idx-- {
		entries = append(entries, mapChangeEventToActivityEntry(events[idx]))
	}
	return entries
}

// mapChangeEventToActivityEntry derives a compact activity row from one ledger row.
func mapChangeEventToActivityEntry(event domain.ChangeEvent) activityEntry {
	summary := "update card"
	switch event.Operation {
	case domain.ChangeOperationCreate:
		summary = "add card"
	case domain.ChangeOperationMove:
		summary = "move card"
		if to := event.Metadata["to_quadrant"]; to != "" {
			summary = "move card to " + domain.Quadrant(to).Label()
		}
	case domain.ChangeOperationCollapse:
		if event.Metadata["collapsed"] == "true" {
			summary = "collapse card"
		} else {
			summary = "expand card"
		}
	case domain.ChangeOperationImport:
		summary = "import card"
	case domain.ChangeOperationArchive:
		summary = "archive card"
	case domain.ChangeOperationRestore:
		summary = "restore card"
	case domain.ChangeOperationDelete:
		summary = "delete card"
	}
	target := event.Metadata["content"]
	if target == "" {
		target = event.IdeaID
	}
	return activityEntry{
		At:      event.OccurredAt,
		Summary: summary,
		Target:  truncate(target, 40),
	}
}

// currentProjectID resolves the active project.
func (m Model) currentProjectID() (string, bool) {
	if len(m.projects) == 0 {
		return "", false
	}
	return m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)].ID, true
}

// selectedIdeaRow resolves the currently highlighted card.
func (m Model) selectedIdeaRow() (domain.Idea, bool) {
	return m.collection.at(m.selectedIdea)
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.projects) == 0 {
		m.selectedProject = 0
		m.selectedIdea = 0
		return
	}
	m.selectedProject = clamp(m.selectedProject, 0, len(m.projects)-1)
	if m.collection.len() == 0 {
		m.selectedIdea = 0
		return
	}
	m.selectedIdea = clamp(m.selectedIdea, 0, m.collection.len()-1)
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.drag.committing() {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		m.status = "saving move..."
		return m, nil
	}
	if m.drag.active() {
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.nextIdea):
		if m.collection.len() > 0 {
			m.selectedIdea = (m.selectedIdea + 1) % m.collection.len()
		}
		return m, nil

	case key.Matches(msg, m.keys.prevIdea):
		if m.collection.len() > 0 {
			m.selectedIdea = (m.selectedIdea + m.collection.len() - 1) % m.collection.len()
		}
		return m, nil

	case key.Matches(msg, m.keys.grab):
		return m.grabSelected()

	case key.Matches(msg, m.keys.addIdea):
		return m, m.startIdeaForm(nil)

	case key.Matches(msg, m.keys.editIdea):
		if idea, ok := m.selectedIdeaRow(); ok {
			return m, m.startIdeaForm(&idea)
		}
		return m, nil

	case key.Matches(msg, m.keys.ideaInfo):
		if idea, ok := m.selectedIdeaRow(); ok {
			m.mode = modeIdeaInfo
			m.infoIdeaID = idea.ID
			m.status = "card details"
		}
		return m, nil

	case key.Matches(msg, m.keys.collapseIdea):
		return m.toggleCollapseSelected()

	case key.Matches(msg, m.keys.yankIdea):
		return m.yankSelected()

	case key.Matches(msg, m.keys.deleteIdea):
		return m.confirmDeleteSelected(m.defaultDeleteMode)

	case key.Matches(msg, m.keys.hardDeleteIdea):
		return m.confirmDeleteSelected(app.DeleteModeHard)

	case key.Matches(msg, m.keys.restoreIdea):
		return m.restoreSelected()

	case key.Matches(msg, m.keys.newProject):
		return m, m.startProjectForm()

	case key.Matches(msg, m.keys.projects):
		m.mode = modeProjectPicker
		m.projectPickerIndex = m.selectedProject
		m.status = "switch project"
		return m, nil

	case key.Matches(msg, m.keys.activityLog):
		m.mode = modeActivityLog
		m.status = "activity log"
		return m, m.loadActivityLog

	case key.Matches(msg, m.keys.toggleArchived):
		m.showArchived = !m.showArchived
		if m.showArchived {
			m.status = "showing archived"
		} else {
			m.status = "hiding archived"
		}
		return m, m.loadData

	default:
		return m, nil
	}
}

// handleDragKey routes keys while a card is grabbed. Movement keys shift the
// live point; selection keys are suspended until the drag settles.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		ideaID, _ := m.drag.cancel()
		if idx := m.collection.indexOf(ideaID); idx >= 0 {
			m.selectedIdea = idx
		}
		m.status = "drag cancelled"
		return m, nil

	case key.Matches(msg, m.keys.drop):
		return m.commitDrag()

	case key.Matches(msg, m.keys.nudgeLeft):
		m.drag.nudge(-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.nudgeRight):
		m.drag.nudge(1, 0)
		return m, nil

	case key.Matches(msg, m.keys.nudgeUp):
		m.drag.nudge(0, -1)
		return m, nil

	case key.Matches(msg, m.keys.nudgeDown):
		m.drag.nudge(0, 1)
		return m, nil

	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	default:
		return m, nil
	}
}

// grabSelected starts a keyboard drag on the highlighted card.
func (m Model) grabSelected() (tea.Model, tea.Cmd) {
	idea, ok := m.selectedIdeaRow()
	if !ok {
		return m, nil
	}
	if idea.ArchivedAt != nil {
		m.status = "restore the card before moving it"
		return m, nil
	}
	if m.dims.Degenerate() {
		m.status = "viewport too small to drag"
		return m, nil
	}
	if !m.drag.begin(idea, m.dims) {
		return m, nil
	}
	m.mouseDragMoved = false
	m.status = "dragging: " + truncate(idea.Content, 40)
	return m, nil
}

// commitDrag freezes the drag, stages the move optimistically and asks the
// repository to persist it. The staged row is rolled back if the write fails.
func (m Model) commitDrag() (tea.Model, tea.Cmd) {
	pos, ok := m.drag.beginCommit()
	if !ok {
		return m, nil
	}
	ideaID := m.drag.ideaID
	token, ok := m.collection.stageMove(ideaID, pos, time.Now().UTC())
	if !ok {
		m.drag.finish()
		return m, nil
	}
	m.status = "saving move..."
	return m, m.moveIdeaCmd(ideaID, pos, token)
}

// moveIdeaCmd persists one move and reports back with the settle token.
func (m Model) moveIdeaCmd(ideaID string, pos domain.Position, token int) tea.Cmd {
	return func() tea.Msg {
		idea, err := m.svc.MoveIdea(context.Background(), ideaID, pos)
		if err != nil {
			return actionMsg{err: err, settleToken: token}
		}
		return actionMsg{
			status:      "moved to " + idea.Position.Quadrant().Label(),
			settleToken: token,
			canonical:   &idea,
		}
	}
}

// toggleCollapseSelected flips the highlighted card optimistically.
func (m Model) toggleCollapseSelected() (tea.Model, tea.Cmd) {
	idea, ok := m.selectedIdeaRow()
	if !ok {
		return m, nil
	}
	collapsed := !idea.Collapsed
	token, ok := m.collection.stageCollapse(idea.ID, collapsed, time.Now().UTC())
	if !ok {
		return m, nil
	}
	ideaID := idea.ID
	return m, func() tea.Msg {
		updated, err := m.svc.SetIdeaCollapsed(context.Background(), ideaID, collapsed)
		if err != nil {
			return actionMsg{err: err, settleToken: token}
		}
		status := "card expanded"
		if updated.Collapsed {
			status = "card collapsed"
		}
		return actionMsg{status: status, settleToken: token, canonical: &updated}
	}
}

// yankSelected copies the highlighted card to the system clipboard.
func (m Model) yankSelected() (tea.Model, tea.Cmd) {
	idea, ok := m.selectedIdeaRow()
	if !ok {
		return m, nil
	}
	text := idea.Content
	if strings.TrimSpace(idea.Details) != "" {
		text += "\n\n" + idea.Details
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.status = "yank failed: " + err.Error()
		return m, nil
	}
	m.status = "yanked: " + truncate(idea.Content, 40)
	return m, nil
}

// confirmDeleteSelected opens the confirmation modal for one delete mode.
func (m Model) confirmDeleteSelected(mode app.DeleteMode) (tea.Model, tea.Cmd) {
	idea, ok := m.selectedIdeaRow()
	if !ok {
		return m, nil
	}
	label := "Archive card?"
	if mode == app.DeleteModeHard {
		label = "Permanently delete card?"
	}
	m.pendingConfirm = confirmAction{
		Kind:  "delete",
		Idea:  idea,
		Mode:  mode,
		Label: label,
	}
	m.confirmChoice = 0
	m.mode = modeConfirmAction
	m.status = "confirm"
	return m, nil
}

// restoreSelected brings an archived card back onto the board.
func (m Model) restoreSelected() (tea.Model, tea.Cmd) {
	idea, ok := m.selectedIdeaRow()
	if !ok || idea.ArchivedAt == nil {
		m.status = "card is not archived"
		return m, nil
	}
	ideaID := idea.ID
	return m, func() tea.Msg {
		restored, err := m.svc.RestoreIdea(context.Background(), ideaID)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "card restored", reload: true, focusIdeaID: restored.ID}
	}
}

// executeConfirmedAction runs the pending confirmation choice.
func (m Model) executeConfirmedAction() (tea.Model, tea.Cmd) {
	action := m.pendingConfirm
	m.pendingConfirm = confirmAction{}
	m.mode = modeNone
	if action.Kind != "delete" {
		return m, nil
	}
	ideaID := action.Idea.ID
	mode := action.Mode
	return m, func() tea.Msg {
		if err := m.svc.DeleteIdea(context.Background(), ideaID, mode); err != nil {
			return actionMsg{err: err}
		}
		status := "card archived"
		if mode == app.DeleteModeHard {
			status = "card deleted"
		}
		return actionMsg{status: status, reload: true}
	}
}

// startIdeaForm enters the add/edit form. A nil idea means a new card.
func (m *Model) startIdeaForm(idea *domain.Idea) tea.Cmd {
	content := textinput.New()
	content.Prompt = ""
	content.Placeholder = "what's the idea?"
	content.CharLimit = 200
	details := textinput.New()
	details.Prompt = ""
	details.Placeholder = "optional details (markdown)"
	details.CharLimit = 2000

	if idea != nil {
		content.SetValue(idea.Content)
		details.SetValue(idea.Details)
		m.mode = modeEditIdea
		m.editingIdeaID = idea.ID
		m.status = "edit card"
	} else {
		m.mode = modeAddIdea
		m.editingIdeaID = ""
		m.status = "new card"
	}
	m.formInputs = []textinput.Model{content, details}
	m.formFocus = ideaFieldContent
	return m.formInputs[ideaFieldContent].Focus()
}

// startProjectForm enters the new-project form.
func (m *Model) startProjectForm() tea.Cmd {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "project name"
	name.CharLimit = 120
	description := textinput.New()
	description.Prompt = ""
	description.Placeholder = "optional description"
	description.CharLimit = 500

	m.projectFormInputs = []textinput.Model{name, description}
	m.projectFormFocus = projectFieldName
	m.mode = modeAddProject
	return m.projectFormInputs[projectFieldName].Focus()
}

// submitIdeaForm persists the form as a create or an update.
func (m Model) submitIdeaForm() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.formInputs[ideaFieldContent].Value())
	details := strings.TrimSpace(m.formInputs[ideaFieldDetails].Value())
	if content == "" {
		m.status = "card content is required"
		return m, nil
	}

	editingID := m.editingIdeaID
	m.mode = modeNone
	m.editingIdeaID = ""
	m.formInputs = nil

	if editingID != "" {
		return m, func() tea.Msg {
			idea, err := m.svc.UpdateIdea(context.Background(), app.UpdateIdeaInput{
				IdeaID:  editingID,
				Content: content,
				Details: details,
			})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "card updated", reload: true, focusIdeaID: idea.ID}
		}
	}

	projectID, ok := m.currentProjectID()
	if !ok {
		m.status = "create a project first"
		return m, nil
	}
	collapsed := m.matrix.CollapsedByDefault
	return m, func() tea.Msg {
		idea, err := m.svc.CreateIdea(context.Background(), app.CreateIdeaInput{
			ProjectID: projectID,
			Content:   content,
			Details:   details,
			Position:  domain.CenterPosition(),
			Collapsed: collapsed,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "card added", reload: true, focusIdeaID: idea.ID}
	}
}

// submitProjectForm persists the new project and switches to it.
func (m Model) submitProjectForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.projectFormInputs[projectFieldName].Value())
	description := strings.TrimSpace(m.projectFormInputs[projectFieldDescription].Value())
	if name == "" {
		m.status = "project name is required"
		return m, nil
	}
	m.mode = modeNone
	m.projectFormInputs = nil
	return m, func() tea.Msg {
		project, err := m.svc.CreateProject(context.Background(), name, description)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "project created", reload: true, projectID: project.ID}
	}
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeActivityLog:
		switch msg.String() {
		case "esc", "a", "q":
			m.mode = modeNone
			m.status = "ready"
		}
		return m, nil

	case modeIdeaInfo:
		switch msg.String() {
		case "esc", "i", "q":
			m.mode = modeNone
			m.infoIdeaID = ""
			m.status = "ready"
			return m, nil
		case "e":
			if idea, ok := m.collection.get(m.infoIdeaID); ok {
				m.infoIdeaID = ""
				return m, m.startIdeaForm(&idea)
			}
			return m, nil
		}
		return m, nil

	case modeProjectPicker:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.status = "cancelled"
			return m, nil
		case "j", "down":
			if m.projectPickerIndex < len(m.projects)-1 {
				m.projectPickerIndex++
			}
			return m, nil
		case "k", "up":
			if m.projectPickerIndex > 0 {
				m.projectPickerIndex--
			}
			return m, nil
		case "enter":
			if len(m.projects) == 0 {
				m.mode = modeNone
				return m, nil
			}
			m.selectedProject = clamp(m.projectPickerIndex, 0, len(m.projects)-1)
			m.selectedIdea = 0
			m.mode = modeNone
			m.status = "project switched"
			return m, m.loadData
		}
		return m, nil

	case modeConfirmAction:
		switch msg.String() {
		case "esc", "n":
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
			m.status = "cancelled"
			return m, nil
		case "h", "left", "l", "right", "tab":
			m.confirmChoice = 1 - m.confirmChoice
			return m, nil
		case "y":
			return m.executeConfirmedAction()
		case "enter":
			if m.confirmChoice == 0 {
				return m.executeConfirmedAction()
			}
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
			m.status = "cancelled"
			return m, nil
		}
		return m, nil

	case modeAddIdea, modeEditIdea:
		if len(m.formInputs) < 2 {
			m.mode = modeNone
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.editingIdeaID = ""
			m.formInputs = nil
			m.status = "cancelled"
			return m, nil
		case "tab", "shift+tab":
			m.formInputs[m.formFocus].Blur()
			m.formFocus = 1 - m.formFocus
			return m, m.formInputs[m.formFocus].Focus()
		case "enter":
			return m.submitIdeaForm()
		default:
			var cmd tea.Cmd
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
			return m, cmd
		}

	case modeAddProject:
		if len(m.projectFormInputs) < 2 {
			m.mode = modeNone
			return m, nil
		}
		switch msg.String() {
		case "esc":
			if len(m.projects) == 0 {
				// Nothing to fall back to; keep the form open.
				m.status = "create your first project"
				return m, nil
			}
			m.mode = modeNone
			m.projectFormInputs = nil
			m.status = "cancelled"
			return m, nil
		case "tab", "shift+tab":
			m.projectFormInputs[m.projectFormFocus].Blur()
			m.projectFormFocus = 1 - m.projectFormFocus
			return m, m.projectFormInputs[m.projectFormFocus].Focus()
		case "enter":
			return m.submitProjectForm()
		default:
			var cmd tea.Cmd
			m.projectFormInputs[m.projectFormFocus], cmd = m.projectFormInputs[m.projectFormFocus].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// handleMouseClick handles mouse click.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.drag.committing() {
		return m, nil
	}
	if m.drag.active() {
		// A second press while dragging drops the card at the cursor.
		m.drag.follow(float64(msg.X), float64(msg.Y-headerLines))
		return m.commitDrag()
	}

	idx, ok := m.ideaAtCell(msg.X, msg.Y-headerLines)
	if !ok {
		return m, nil
	}
	m.selectedIdea = idx
	idea, _ := m.collection.at(idx)
	if idea.ArchivedAt != nil || m.dims.Degenerate() {
		return m, nil
	}
	if m.drag.begin(idea, m.dims) {
		m.mouseDragMoved = false
		m.status = "dragging: " + truncate(idea.Content, 40)
	}
	return m, nil
}

// handleMouseMotion follows the cursor while a card is grabbed.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active() {
		return m, nil
	}
	m.drag.follow(float64(msg.X), float64(msg.Y-headerLines))
	m.mouseDragMoved = true
	return m, nil
}

// handleMouseRelease settles a mouse drag: a moved card commits, a click that
// never moved stays a plain selection.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active() {
		return m, nil
	}
	if !m.mouseDragMoved {
		ideaID, _ := m.drag.cancel()
		if idx := m.collection.indexOf(ideaID); idx >= 0 {
			m.selectedIdea = idx
		}
		m.status = "ready"
		return m, nil
	}
	return m.commitDrag()
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeProjectPicker {
		switch msg.Button {
		case tea.MouseWheelUp:
			if m.projectPickerIndex > 0 {
				m.projectPickerIndex--
			}
		case tea.MouseWheelDown:
			if m.projectPickerIndex < len(m.projects)-1 {
				m.projectPickerIndex++
			}
		}
		return m, nil
	}
	if m.mode != modeNone || m.drag.phase != dragIdle || m.collection.len() == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.selectedIdea = (m.selectedIdea + m.collection.len() - 1) % m.collection.len()
	case tea.MouseWheelDown:
		m.selectedIdea = (m.selectedIdea + 1) % m.collection.len()
	}
	return m, nil
}

// ideaAtCell hit-tests a canvas cell against the rendered cards. The topmost
// match wins, mirroring the z-order the canvas composes with.
func (m Model) ideaAtCell(x, y int) (int, bool) {
	if m.dims.Degenerate() {
		return 0, false
	}
	bestIdx := -1
	for idx, idea := range m.collection.ideas() {
		block := renderCard(idea, cardWidth(m.dims), idx == m.selectedIdea, false)
		pt := geometry.ToPixels(idea.Position, m.dims)
		left, top := cardTopLeft(pt, block, m.dims)
		w := lipgloss.Width(block)
		h := lipgloss.Height(block)
		if x >= left && x < left+w && y >= top && y < top+h {
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

// modeLabel returns the short header tag for the active mode.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddIdea:
		return "add"
	case modeEditIdea:
		return "edit"
	case modeIdeaInfo:
		return "info"
	case modeProjectPicker:
		return "projects"
	case modeAddProject:
		return "new project"
	case modeConfirmAction:
		return "confirm"
	case modeActivityLog:
		return "activity"
	}
	if m.drag.active() {
		return "drag"
	}
	if m.drag.committing() {
		return "saving"
	}
	return "normal"
}
