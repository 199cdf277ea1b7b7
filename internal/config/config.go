package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Layout names understood by the engine. The config only ever carries one of
// these tags, never layout code.
const (
	LayoutMasterStack = "master-stack"
	LayoutMonocle     = "monocle"
	LayoutGrid        = "grid"
	LayoutFloating    = "floating"
)

func KnownLayout(name string) bool {
	switch name {
	case LayoutMasterStack, LayoutMonocle, LayoutGrid, LayoutFloating:
		return true
	}
	return false
}

// Duration accepts "500ms" style values in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Workspaces        int               `yaml:"workspaces"`
	DefaultLayout     string            `yaml:"default_layout"`
	Gap               int               `yaml:"gap"`
	BorderWidth       int               `yaml:"border_width"`
	MasterRatio       float64           `yaml:"master_ratio"`
	Modifier          string            `yaml:"modifier"`
	Bindings          map[string]string `yaml:"bindings"`
	FocusFollowsMouse bool              `yaml:"focus_follows_mouse"`
	CloseGrace        Duration          `yaml:"close_grace"`
	Socket            string            `yaml:"socket"`
}

func Default() Config {
	return Config{
		Workspaces:        4,
		DefaultLayout:     LayoutMasterStack,
		Gap:               0,
		BorderWidth:       1,
		MasterRatio:       0.5,
		Modifier:          "mod4",
		Bindings:          DefaultBindings(),
		FocusFollowsMouse: true,
		CloseGrace:        0,
		Socket:            "",
	}
}

func DefaultBindings() map[string]string {
	b := map[string]string{
		"focus-next":         "j",
		"focus-prev":         "k",
		"close":              "q",
		"force-close":        "shift+q",
		"quit":               "shift+e",
		"toggle-float":       "space",
		"toggle-fullscreen":  "f",
		"layout-master-stack": "t",
		"layout-monocle":     "m",
		"layout-grid":        "g",
		"layout-floating":    "s",
	}
	for i := 1; i <= 9; i++ {
		b[fmt.Sprintf("workspace-%d", i)] = fmt.Sprintf("%d", i)
		b[fmt.Sprintf("move-to-workspace-%d", i)] = fmt.Sprintf("shift+%d", i)
	}
	return b
}

// Load reads the config file at filePath. A missing file yields the defaults;
// anything unreadable, unrecognized or out of range is a fatal load error.
func Load(filePath string) (Config, error) {
	cfg := Default()

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", filePath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filePath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filePath, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workspaces < 1 {
		return fmt.Errorf("workspaces must be a positive integer, got %d", c.Workspaces)
	}
	if !KnownLayout(c.DefaultLayout) {
		return fmt.Errorf("default_layout %q is not one of master-stack, monocle, grid, floating", c.DefaultLayout)
	}
	if c.Gap < 0 {
		return fmt.Errorf("gap must be non-negative, got %d", c.Gap)
	}
	if c.BorderWidth < 0 {
		return fmt.Errorf("border_width must be non-negative, got %d", c.BorderWidth)
	}
	if c.MasterRatio < 0.05 || c.MasterRatio > 0.95 {
		return fmt.Errorf("master_ratio must be within [0.05, 0.95], got %v", c.MasterRatio)
	}
	if _, err := ParseModifiers(c.Modifier); err != nil {
		return err
	}
	if c.CloseGrace < 0 {
		return fmt.Errorf("close_grace must be non-negative, got %v", c.CloseGrace)
	}
	for action, key := range c.Bindings {
		if !KnownAction(action, c.Workspaces) {
			return fmt.Errorf("bindings: unrecognized action %q", action)
		}
		if _, err := ParseKeySpec(key); err != nil {
			return fmt.Errorf("bindings: action %q: %w", action, err)
		}
	}
	return nil
}

// SocketPath resolves the IPC socket location, preferring the configured
// override, then XDG_RUNTIME_DIR, then /tmp.
func (c Config) SocketPath() string {
	if c.Socket != "" {
		return c.Socket
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "x-tilewm", "ipc.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("x-tilewm-%d", os.Getuid()), "ipc.sock")
}

// KnownAction reports whether action is a recognized binding target.
// Workspace actions are only recognized up to the configured workspace count.
func KnownAction(action string, workspaces int) bool {
	switch action {
	case "focus-next", "focus-prev", "close", "force-close", "quit",
		"toggle-float", "toggle-fullscreen",
		"layout-master-stack", "layout-monocle", "layout-grid", "layout-floating":
		return true
	}
	var n int
	if _, err := fmt.Sscanf(action, "workspace-%d", &n); err == nil {
		return n >= 1 && n <= workspaces
	}
	if _, err := fmt.Sscanf(action, "move-to-workspace-%d", &n); err == nil {
		return n >= 1 && n <= workspaces
	}
	return false
}
