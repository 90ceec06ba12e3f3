package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsForPlatformLayouts verifies behavior for the covered scenario.
func TestPathsForPlatformLayouts(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configDir  string
		dataDir    string
		wantConfig string
		wantDB     string
	}{
		{
			name:       "linux with xdg overrides",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configDir:  "/fallback/config",
			dataDir:    "/fallback/data",
			wantConfig: filepath.Join("/xdg/config", "prioritas", "config.toml"),
			wantDB:     filepath.Join("/xdg/data", "prioritas", "prioritas.db"),
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			configDir:  "/home/me/.config",
			dataDir:    "/home/me/.local/share",
			wantConfig: filepath.Join("/home/me/.config", "prioritas", "config.toml"),
			wantDB:     filepath.Join("/home/me/.local/share", "prioritas", "prioritas.db"),
		},
		{
			name:       "windows appdata pair",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`, "LOCALAPPDATA": `C:\Users\me\AppData\Local`},
			configDir:  `C:\fallback\config`,
			dataDir:    `C:\fallback\data`,
			wantConfig: filepath.Join(`C:\Users\me\AppData\Roaming`, "prioritas", "config.toml"),
			wantDB:     filepath.Join(`C:\Users\me\AppData\Local`, "prioritas", "prioritas.db"),
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			configDir:  "/Users/me/Library/Application Support",
			dataDir:    "/Users/me/Library/Application Support",
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "prioritas", "config.toml"),
			wantDB:     filepath.Join("/Users/me/Library/Application Support", "prioritas", "prioritas.db"),
		},
		{
			name:       "other platforms keep provided bases",
			goos:       "freebsd",
			env:        map[string]string{},
			configDir:  "/cfg",
			dataDir:    "/data",
			wantConfig: filepath.Join("/cfg", "prioritas", "config.toml"),
			wantDB:     filepath.Join("/data", "prioritas", "prioritas.db"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.configDir, tc.dataDir, "prioritas")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if p.ConfigPath != tc.wantConfig {
				t.Fatalf("unexpected config path %q, want %q", p.ConfigPath, tc.wantConfig)
			}
			if p.DBPath != tc.wantDB {
				t.Fatalf("unexpected db path %q, want %q", p.DBPath, tc.wantDB)
			}
			if p.DataDir != filepath.Dir(p.DBPath) {
				t.Fatalf("data dir %q does not contain db %q", p.DataDir, p.DBPath)
			}
		})
	}
}

// TestPathsForRejectsEmptyInputs verifies behavior for the covered scenario.
func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "prioritas"); err == nil {
		t.Fatal("expected error for empty config base")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/config", "/tmp/data", "   "); err == nil {
		t.Fatal("expected error for blank app name")
	}
}

// TestDefaultPathsSmoke verifies behavior for the covered scenario.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies behavior for the covered scenario.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "prioritas", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "prioritas-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "prioritas-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
