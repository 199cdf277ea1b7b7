package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
)

func TestReconcileOutputsRemoval(t *testing.T) {
	s := testState(t, 2, dualOutput())
	addTiled(s, 1, 1) // lives on HDMI-1

	affected := s.ReconcileOutputs(singleOutput())

	if len(s.Monitors) != 1 {
		t.Fatalf("monitor count %d, want 1", len(s.Monitors))
	}
	if s.Workspaces[1].Monitor != 0 {
		t.Fatalf("orphaned workspace on monitor %d, want relocation to 0", s.Workspaces[1].Monitor)
	}
	if s.ManagedCount() != 1 {
		t.Fatalf("managed count %d after hotplug, clients must survive", s.ManagedCount())
	}

	found := false
	for _, i := range affected {
		if i == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("relocated workspace 1 missing from affected set %v", affected)
	}

	if s.FocusedMonitor >= len(s.Monitors) {
		t.Fatalf("focused monitor %d out of range", s.FocusedMonitor)
	}
}

func TestReconcileOutputsMatchesByName(t *testing.T) {
	s := testState(t, 2, dualOutput())

	// Same outputs, reversed discovery order.
	reversed := []x11.Output{
		{Name: "HDMI-1", Rect: x11.Rect{X: 1920, W: 1280, H: 1024}},
		{Name: "eDP-1", Rect: x11.Rect{W: 1920, H: 1080}, Primary: true},
	}
	s.ReconcileOutputs(reversed)

	if s.Monitors[s.Workspaces[0].Monitor].Name != "eDP-1" {
		t.Fatalf("workspace 0 on %q, want eDP-1", s.Monitors[s.Workspaces[0].Monitor].Name)
	}
	if s.Monitors[s.Workspaces[1].Monitor].Name != "HDMI-1" {
		t.Fatalf("workspace 1 on %q, want HDMI-1", s.Monitors[s.Workspaces[1].Monitor].Name)
	}
}

func TestReconcileUnchangedOutputsNoRecompute(t *testing.T) {
	s := testState(t, 2, dualOutput())

	affected := s.ReconcileOutputs(dualOutput())
	if len(affected) != 0 {
		t.Fatalf("identical topology should affect no workspaces, got %v", affected)
	}
}

func TestRecomputeUsableTopStrut(t *testing.T) {
	s := testState(t, 1, singleOutput())

	s.Struts[99] = x11.Strut{Top: 30, TopStartX: 0, TopEndX: 1919}
	s.RecomputeUsable()

	usable := s.Monitors[0].Usable
	want := x11.Rect{X: 0, Y: 30, W: 1920, H: 1050}
	if usable != want {
		t.Fatalf("usable %v, want %v", usable, want)
	}

	delete(s.Struts, 99)
	s.RecomputeUsable()
	if s.Monitors[0].Usable != s.Monitors[0].Rect {
		t.Fatalf("usable %v after strut removal, want full %v", s.Monitors[0].Usable, s.Monitors[0].Rect)
	}
}

func TestRecomputeUsableBandOutsideMonitor(t *testing.T) {
	s := testState(t, 2, dualOutput())

	// A bar on the second monitor's top edge must not shrink the first.
	s.Struts[99] = x11.Strut{Top: 20, TopStartX: 1920, TopEndX: 3199}
	s.RecomputeUsable()

	if s.Monitors[0].Usable != s.Monitors[0].Rect {
		t.Fatalf("first monitor shrank to %v for a strut on the second", s.Monitors[0].Usable)
	}
	if got := s.Monitors[1].Usable.Y; got != 20 {
		t.Fatalf("second monitor usable starts at y=%d, want 20", got)
	}
}
