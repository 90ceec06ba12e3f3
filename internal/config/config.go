package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type DeleteMode string

const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Delete   DeleteConfig   `toml:"delete"`
	Matrix   MatrixConfig   `toml:"matrix"`
	Layout   LayoutConfig   `toml:"layout"`
	Serve    ServeConfig    `toml:"serve"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

type MatrixConfig struct {
	EffortAxisLabel    string         `toml:"effort_axis_label"`
	ValueAxisLabel     string         `toml:"value_axis_label"`
	Quadrants          QuadrantLabels `toml:"quadrants"`
	CollapsedByDefault bool           `toml:"collapsed_by_default"`
}

type QuadrantLabels struct {
	TopLeft     string `toml:"top_left"`
	TopRight    string `toml:"top_right"`
	BottomLeft  string `toml:"bottom_left"`
	BottomRight string `toml:"bottom_right"`
}

type LayoutConfig struct {
	SidebarWidth    int `toml:"sidebar_width"`
	StatusRows      int `toml:"status_rows"`
	MaxCanvasWidth  int `toml:"max_canvas_width"`
	MaxCanvasHeight int `toml:"max_canvas_height"`
}

type ServeConfig struct {
	Bind         string `toml:"bind"`
	HTTPEndpoint string `toml:"http_endpoint"`
	MCPEndpoint  string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile string `toml:"dev_file"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeArchive,
		},
		Matrix: MatrixConfig{
			EffortAxisLabel: "Effort",
			ValueAxisLabel:  "Value",
			Quadrants: QuadrantLabels{
				TopLeft:     "Quick Wins",
				TopRight:    "Big Bets",
				BottomLeft:  "Incremental",
				BottomRight: "Money Pit",
			},
			CollapsedByDefault: false,
		},
		Layout: LayoutConfig{
			SidebarWidth:    28,
			StatusRows:      2,
			MaxCanvasWidth:  220,
			MaxCanvasHeight: 70,
		},
		Serve: ServeConfig{
			Bind:         "127.0.0.1:7420",
			HTTPEndpoint: "/api",
			MCPEndpoint:  "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch c.Delete.DefaultMode {
	case DeleteModeArchive, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	labels := []struct {
		key   string
		value string
	}{
		{"matrix.quadrants.top_left", c.Matrix.Quadrants.TopLeft},
		{"matrix.quadrants.top_right", c.Matrix.Quadrants.TopRight},
		{"matrix.quadrants.bottom_left", c.Matrix.Quadrants.BottomLeft},
		{"matrix.quadrants.bottom_right", c.Matrix.Quadrants.BottomRight},
	}
	for _, label := range labels {
		if strings.TrimSpace(label.value) == "" {
			return fmt.Errorf("%s is required", label.key)
		}
	}

	if c.Layout.SidebarWidth < 0 {
		return errors.New("layout.sidebar_width must be >= 0")
	}
	if c.Layout.StatusRows < 0 {
		return errors.New("layout.status_rows must be >= 0")
	}
	if c.Layout.MaxCanvasWidth < 0 {
		return errors.New("layout.max_canvas_width must be >= 0")
	}
	if c.Layout.MaxCanvasHeight < 0 {
		return errors.New("layout.max_canvas_height must be >= 0")
	}

	if strings.TrimSpace(c.Serve.Bind) == "" {
		return errors.New("serve.bind is required")
	}
	for key, endpoint := range map[string]string{
		"serve.http_endpoint": c.Serve.HTTPEndpoint,
		"serve.mcp_endpoint":  c.Serve.MCPEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint == "" || !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /", key)
		}
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
