package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	nextIdea       key.Binding
	prevIdea       key.Binding
	grab           key.Binding
	drop           key.Binding
	cancel         key.Binding
	nudgeLeft      key.Binding
	nudgeRight     key.Binding
	nudgeUp        key.Binding
	nudgeDown      key.Binding
	addIdea        key.Binding
	ideaInfo       key.Binding
	editIdea       key.Binding
	collapseIdea   key.Binding
	yankIdea       key.Binding
	deleteIdea     key.Binding
	hardDeleteIdea key.Binding
	restoreIdea    key.Binding
	newProject     key.Binding
	projects       key.Binding
	activityLog    key.Binding
	toggleArchived key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextIdea:       key.NewBinding(key.WithKeys("tab", "j"), key.WithHelp("tab/j", "next card")),
		prevIdea:       key.NewBinding(key.WithKeys("shift+tab", "k"), key.WithHelp("S-tab/k", "prev card")),
		grab:           key.NewBinding(key.WithKeys("g", " "), key.WithHelp("g/space", "grab card")),
		drop:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop card")),
		cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		nudgeLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "drag left")),
		nudgeRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "drag right")),
		nudgeUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "drag up")),
		nudgeDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "drag down")),
		addIdea:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new idea")),
		ideaInfo:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "idea details")),
		editIdea:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit idea")),
		collapseIdea:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse/expand")),
		yankIdea:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank content")),
		deleteIdea:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete (default)")),
		hardDeleteIdea: key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "hard delete")),
		restoreIdea:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore card")),
		newProject:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new project")),
		projects:       key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p/P", "project picker")),
		activityLog:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "activity log")),
		toggleArchived: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle archived")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.grab, k.addIdea, k.ideaInfo, k.editIdea, k.collapseIdea, k.projects, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextIdea, k.prevIdea, k.grab, k.drop, k.cancel, k.nudgeLeft, k.nudgeRight, k.nudgeUp, k.nudgeDown},
		{k.addIdea, k.ideaInfo, k.editIdea, k.collapseIdea, k.yankIdea, k.deleteIdea, k.hardDeleteIdea, k.restoreIdea},
		{k.newProject, k.projects, k.activityLog, k.toggleArchived, k.reload, k.toggleHelp, k.quit},
	}
}
