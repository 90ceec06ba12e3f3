package tui

import (
	"github.com/hylla/prioritas/internal/app"
	"github.com/hylla/prioritas/internal/layout"
)

// MatrixConfig carries the axis and quadrant labels painted on the canvas.
type MatrixConfig struct {
	EffortAxisLabel    string
	ValueAxisLabel     string
	TopLeftLabel       string
	TopRightLabel      string
	BottomLeftLabel    string
	BottomRightLabel   string
	CollapsedByDefault bool
}

type Option func(*Model)

func DefaultMatrixConfig() MatrixConfig {
	return MatrixConfig{
		EffortAxisLabel:  "Effort",
		ValueAxisLabel:   "Value",
		TopLeftLabel:     "Quick Wins",
		TopRightLabel:    "Big Bets",
		BottomLeftLabel:  "Incremental",
		BottomRightLabel: "Money Pit",
	}
}

func WithMatrixConfig(cfg MatrixConfig) Option {
	return func(m *Model) {
		m.matrix = cfg
	}
}

func WithLayoutOptions(opts layout.Options) Option {
	return func(m *Model) {
		m.resolver = layout.NewResolver(opts)
	}
}

func WithDefaultDeleteMode(mode app.DeleteMode) Option {
	return func(m *Model) {
		switch mode {
		case app.DeleteModeArchive, app.DeleteModeHard:
			m.defaultDeleteMode = mode
		}
	}
}
