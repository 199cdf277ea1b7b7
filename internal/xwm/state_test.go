package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

func singleOutput() []x11.Output {
	return []x11.Output{{Name: "eDP-1", Rect: x11.Rect{W: 1920, H: 1080}, Primary: true}}
}

func dualOutput() []x11.Output {
	return []x11.Output{
		{Name: "eDP-1", Rect: x11.Rect{W: 1920, H: 1080}, Primary: true},
		{Name: "HDMI-1", Rect: x11.Rect{X: 1920, W: 1280, H: 1024}},
	}
}

func testState(t *testing.T, workspaces int, outputs []x11.Output) *State {
	t.Helper()
	cfg := config.Default()
	cfg.Workspaces = workspaces
	return NewState(cfg, outputs, 3200, 1080)
}

func addTiled(s *State, h xproto.Window, ws int) *Client {
	c := &Client{Window: h, State: StateTiled}
	s.AddClient(c, ws)
	return c
}

func TestMoveClientConservesCount(t *testing.T) {
	s := testState(t, 3, singleOutput())
	addTiled(s, 1, 0)
	addTiled(s, 2, 0)

	before := s.ManagedCount()
	affected, err := s.MoveClientTo(1, 2)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if got := s.ManagedCount(); got != before {
		t.Fatalf("managed count changed from %d to %d", before, got)
	}
	if len(affected) != 2 || affected[0] != 0 || affected[1] != 2 {
		t.Fatalf("affected workspaces %v, want [0 2]", affected)
	}

	c, _ := s.Client(1)
	if c.Workspace != 2 {
		t.Fatalf("client workspace %d, want 2", c.Workspace)
	}
	if s.Workspaces[0].contains(1) || !s.Workspaces[2].contains(1) {
		t.Fatal("client membership not moved")
	}
}

func TestMoveClientOutOfRange(t *testing.T) {
	s := testState(t, 2, singleOutput())
	addTiled(s, 1, 0)

	before := s.ManagedCount()
	if _, err := s.MoveClientTo(1, 5); err == nil {
		t.Fatal("expected error for out-of-range workspace")
	}
	if got := s.ManagedCount(); got != before {
		t.Fatalf("failed move mutated state: count %d, want %d", got, before)
	}
	c, _ := s.Client(1)
	if c.Workspace != 0 {
		t.Fatalf("failed move changed client workspace to %d", c.Workspace)
	}
}

func TestMoveClientSameWorkspaceNoop(t *testing.T) {
	s := testState(t, 2, singleOutput())
	addTiled(s, 1, 0)

	affected, err := s.MoveClientTo(1, 0)
	if err != nil {
		t.Fatalf("same-workspace move errored: %v", err)
	}
	if affected != nil {
		t.Fatalf("same-workspace move should be a no-op, got affected %v", affected)
	}
}

func TestFocusCycleRoundtrip(t *testing.T) {
	s := testState(t, 1, singleOutput())
	addTiled(s, 1, 0)
	addTiled(s, 2, 0)
	addTiled(s, 3, 0)
	s.SetFocus(1)

	h, ok := s.FocusNext()
	if !ok || h != 2 {
		t.Fatalf("FocusNext = %d, %v; want 2, true", h, ok)
	}
	h, ok = s.FocusPrev()
	if !ok || h != 1 {
		t.Fatalf("FocusPrev = %d, %v; want 1, true", h, ok)
	}
}

func TestFocusCycleWraps(t *testing.T) {
	s := testState(t, 1, singleOutput())
	addTiled(s, 1, 0)
	addTiled(s, 2, 0)
	s.SetFocus(2)

	if h, _ := s.FocusNext(); h != 1 {
		t.Fatalf("FocusNext from last = %d, want wrap to 1", h)
	}
	if h, _ := s.FocusPrev(); h != 2 {
		t.Fatalf("FocusPrev from first = %d, want wrap to 2", h)
	}
}

func TestFocusEmptyWorkspace(t *testing.T) {
	s := testState(t, 1, singleOutput())

	h, ok := s.FocusNext()
	if ok || h != 0 {
		t.Fatalf("FocusNext on empty workspace = %d, %v; want 0, false", h, ok)
	}
	if s.Workspaces[0].Focus != 0 {
		t.Fatal("empty workspace should have no focus")
	}
}

func TestRemoveFocusFallsBackToHistory(t *testing.T) {
	s := testState(t, 1, singleOutput())
	addTiled(s, 1, 0)
	addTiled(s, 2, 0)
	s.SetFocus(1)
	s.SetFocus(2)

	s.RemoveClient(2)
	if got := s.Workspaces[0].Focus; got != 1 {
		t.Fatalf("focus after removing focused client = %d, want history fallback 1", got)
	}

	s.RemoveClient(1)
	if got := s.Workspaces[0].Focus; got != 0 {
		t.Fatalf("focus after removing last client = %d, want 0", got)
	}
}

func TestArrangeMixedStates(t *testing.T) {
	s := testState(t, 1, singleOutput())
	addTiled(s, 1, 0)
	full := addTiled(s, 2, 0)
	full.EnterFullscreen()
	float := addTiled(s, 3, 0)
	float.State = StateFloating
	float.FloatRect = x11.Rect{X: 100, Y: 100, W: 400, H: 300}

	out := s.Arrange(0)

	mon := s.Monitors[0]
	if out[2] != mon.Rect {
		t.Fatalf("fullscreen client got %v, want monitor rect %v", out[2], mon.Rect)
	}
	if out[3] != float.FloatRect {
		t.Fatalf("floating client got %v, want stored rect %v", out[3], float.FloatRect)
	}
	// The lone tiled client takes the whole usable area.
	if out[1] != mon.Usable {
		t.Fatalf("tiled client got %v, want usable %v", out[1], mon.Usable)
	}
}

func TestTransientChainHasCycle(t *testing.T) {
	s := testState(t, 1, singleOutput())
	a := addTiled(s, 1, 0)
	b := addTiled(s, 2, 0)
	b.TransientFor = 1

	if !s.TransientChainHasCycle(1, 2) {
		t.Fatal("1 -> 2 -> 1 should be detected as a cycle")
	}
	if s.TransientChainHasCycle(3, 1) {
		t.Fatal("3 -> 1 has no cycle")
	}
	_ = a
}

func TestToggleFloatingCapturesRect(t *testing.T) {
	s := testState(t, 1, singleOutput())
	c := addTiled(s, 1, 0)
	c.Rect = x11.Rect{X: 10, Y: 20, W: 500, H: 400}

	s.ToggleFloating(1)
	if c.State != StateFloating {
		t.Fatalf("state %v, want floating", c.State)
	}
	if c.FloatRect != c.Rect {
		t.Fatalf("float rect %v, want captured %v", c.FloatRect, c.Rect)
	}

	s.ToggleFloating(1)
	if c.State != StateTiled {
		t.Fatalf("state %v, want tiled", c.State)
	}
}

func TestRaisesOnFocus(t *testing.T) {
	s := testState(t, 1, singleOutput())
	tiled := addTiled(s, 1, 0)
	addTiled(s, 2, 0)

	if s.RaisesOnFocus(1) {
		t.Fatal("tiled client in master-stack should not restack on focus")
	}

	s.SetLayout(0, LayoutMonocle)
	if !s.RaisesOnFocus(1) {
		t.Fatal("monocle client must restack on focus, frames overlap")
	}

	s.SetLayout(0, LayoutMasterStack)
	tiled.State = StateFloating
	if !s.RaisesOnFocus(1) {
		t.Fatal("floating client must restack on focus")
	}

	if s.RaisesOnFocus(99) {
		t.Fatal("unknown handle should not restack")
	}
}

func TestHiddenRestoresPreviousState(t *testing.T) {
	s := testState(t, 1, singleOutput())
	tiled := addTiled(s, 1, 0)
	float := addTiled(s, 2, 0)
	float.State = StateFloating

	tiled.EnterHidden()
	if tiled.State != StateHidden || tiled.Visible() {
		t.Fatalf("state %v after hide, want hidden and not visible", tiled.State)
	}
	tiled.LeaveHidden()
	if tiled.State != StateTiled {
		t.Fatalf("state %v after unhide, want tiled restored", tiled.State)
	}

	float.EnterHidden()
	float.LeaveHidden()
	if float.State != StateFloating {
		t.Fatalf("state %v after unhide, want floating restored", float.State)
	}

	// Unhiding a client that is not hidden changes nothing.
	tiled.LeaveHidden()
	if tiled.State != StateTiled {
		t.Fatalf("unhide on visible client changed state to %v", tiled.State)
	}
}

func TestClientRootRectOffsetsByBorder(t *testing.T) {
	c := &Client{Rect: x11.Rect{X: 100, Y: 50, W: 400, H: 300}}

	got := c.clientRootRect(2)
	want := x11.Rect{X: 102, Y: 52, W: 400, H: 300}
	if got != want {
		t.Fatalf("clientRootRect(2) = %v, want %v", got, want)
	}
	if got := c.clientRootRect(0); got != c.Rect {
		t.Fatalf("clientRootRect(0) = %v, want frame rect %v", got, c.Rect)
	}
}

func TestSetFocusFollowsVisibleWorkspace(t *testing.T) {
	s := testState(t, 2, dualOutput())
	addTiled(s, 1, 1)

	s.SetFocus(1)
	if s.FocusedMonitor != 1 {
		t.Fatalf("focused monitor %d, want 1", s.FocusedMonitor)
	}
}
