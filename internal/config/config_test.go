package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jezek/xgb/xproto"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Workspaces != 4 || cfg.DefaultLayout != LayoutMasterStack {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
workspaces: 6
default_layout: grid
gap: 8
master_ratio: 0.6
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workspaces != 6 {
		t.Fatalf("workspaces %d, want 6", cfg.Workspaces)
	}
	if cfg.DefaultLayout != LayoutGrid {
		t.Fatalf("layout %q, want grid", cfg.DefaultLayout)
	}
	if cfg.Gap != 8 || cfg.MasterRatio != 0.6 {
		t.Fatalf("gap %d ratio %v, want 8 and 0.6", cfg.Gap, cfg.MasterRatio)
	}
	// Untouched fields keep their defaults.
	if !cfg.FocusFollowsMouse || cfg.BorderWidth != 1 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "worskpaces: 4\n")
	if _, err := Load(path); err == nil {
		t.Fatal("misspelled key should be rejected")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"workspaces: 0\n",
		"default_layout: spiral\n",
		"gap: -1\n",
		"master_ratio: 1.5\n",
		"modifier: hyper\n",
		"bindings: {fly: j}\n",
		"bindings: {close: f99}\n",
		"close_grace: -1s\n",
	}
	for _, content := range cases {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Fatalf("config %q should be rejected", content)
		}
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseModifiers(t *testing.T) {
	mask, err := ParseModifiers("shift+mod4")
	if err != nil {
		t.Fatal(err)
	}
	if want := uint16(xproto.ModMaskShift | xproto.ModMask4); mask != want {
		t.Fatalf("mask %#x, want %#x", mask, want)
	}

	if _, err := ParseModifiers("meta"); err == nil {
		t.Fatal("unknown modifier should error")
	}
}

func TestParseKeySpec(t *testing.T) {
	ks, err := ParseKeySpec("shift+3")
	if err != nil {
		t.Fatal(err)
	}
	if ks.Mods != xproto.ModMaskShift || ks.Key != "3" {
		t.Fatalf("got %+v", ks)
	}

	ks, err = ParseKeySpec("space")
	if err != nil {
		t.Fatal(err)
	}
	if ks.Mods != 0 || ks.Key != "space" {
		t.Fatalf("got %+v", ks)
	}

	if _, err := ParseKeySpec("shift+f13"); err == nil {
		t.Fatal("unrecognized key should error")
	}
}

func TestKnownAction(t *testing.T) {
	if !KnownAction("workspace-4", 4) {
		t.Fatal("workspace-4 should be recognized with 4 workspaces")
	}
	if KnownAction("workspace-5", 4) {
		t.Fatal("workspace-5 should not be recognized with 4 workspaces")
	}
	if !KnownAction("move-to-workspace-1", 4) {
		t.Fatal("move-to-workspace-1 should be recognized")
	}
	if KnownAction("explode", 4) {
		t.Fatal("unknown action recognized")
	}
}
