package xwm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
)

// Monitor maps one physical output to a usable screen area and the workspace
// shown on it. Usable is the output geometry minus reserved strut space.
type Monitor struct {
	Index   int
	Name    string
	Rect    x11.Rect
	Usable  x11.Rect
	Primary bool

	// Active is the workspace index shown on this monitor, -1 for none.
	Active int
}

func monitorsFromOutputs(outputs []x11.Output) []*Monitor {
	monitors := make([]*Monitor, 0, len(outputs))
	for i, out := range outputs {
		monitors = append(monitors, &Monitor{
			Index:   i,
			Name:    out.Name,
			Rect:    out.Rect,
			Usable:  out.Rect,
			Primary: out.Primary,
			Active:  -1,
		})
	}
	return monitors
}

// RecomputeUsable rebuilds every monitor's usable area from its raw geometry
// and the struts currently claimed by docks. Strut distances are measured
// from the root screen edges; only the portion cutting into a given monitor
// is subtracted there.
func (s *State) RecomputeUsable() {
	for _, mon := range s.Monitors {
		usable := mon.Rect

		for _, strut := range s.Struts {
			if strut.Left > usable.X && spansOverlap(strut.LeftStartY, strut.LeftEndY, usable.Y, usable.Y+usable.H-1) {
				cut := core.Clamp(strut.Left-usable.X, 0, usable.W)
				usable.X += cut
				usable.W -= cut
			}
			if right := s.RootW - strut.Right; strut.Right > 0 && right < usable.X+usable.W &&
				spansOverlap(strut.RightStartY, strut.RightEndY, usable.Y, usable.Y+usable.H-1) {
				usable.W -= core.Clamp(usable.X+usable.W-right, 0, usable.W)
			}
			if strut.Top > usable.Y && spansOverlap(strut.TopStartX, strut.TopEndX, usable.X, usable.X+usable.W-1) {
				cut := core.Clamp(strut.Top-usable.Y, 0, usable.H)
				usable.Y += cut
				usable.H -= cut
			}
			if bottom := s.RootH - strut.Bottom; strut.Bottom > 0 && bottom < usable.Y+usable.H &&
				spansOverlap(strut.BottomStartX, strut.BottomEndX, usable.X, usable.X+usable.W-1) {
				usable.H -= core.Clamp(usable.Y+usable.H-bottom, 0, usable.H)
			}
		}

		mon.Usable = usable
	}
}

func spansOverlap(aStart, aEnd, bStart, bEnd int) bool {
	if aEnd < aStart {
		return false
	}
	return aStart <= bEnd && bStart <= aEnd
}

// ReconcileOutputs rebuilds the monitor set after a RandR change and returns
// the workspace indexes needing a layout recompute. Workspaces on removed
// monitors relocate to the primary monitor (or the first remaining one);
// clients are never destroyed by a topology change.
func (s *State) ReconcileOutputs(outputs []x11.Output) []int {
	oldMonitors := s.Monitors
	oldNameOf := func(i int) string {
		if i >= 0 && i < len(oldMonitors) {
			return oldMonitors[i].Name
		}
		return ""
	}

	s.Monitors = monitorsFromOutputs(outputs)
	s.RecomputeUsable()

	newIndexByName := make(map[string]int, len(s.Monitors))
	for i, mon := range s.Monitors {
		newIndexByName[mon.Name] = i
	}

	fallback := 0
	for i, mon := range s.Monitors {
		if mon.Primary {
			fallback = i
			break
		}
	}

	var affected []int
	for _, ws := range s.Workspaces {
		oldName := oldNameOf(ws.Monitor)
		if idx, ok := newIndexByName[oldName]; ok {
			if usableChanged(oldMonitors, ws.Monitor, s.Monitors[idx]) {
				affected = append(affected, ws.Index)
			}
			ws.Monitor = idx
		} else {
			ws.Monitor = fallback
			affected = append(affected, ws.Index)
		}
	}

	// Carry each surviving monitor's active workspace over; a monitor that
	// inherited relocated workspaces keeps its own.
	for i, mon := range s.Monitors {
		mon.Active = -1
		for _, old := range oldMonitors {
			if old.Name == mon.Name && old.Active >= 0 && old.Active < len(s.Workspaces) &&
				s.Workspaces[old.Active].Monitor == i {
				mon.Active = old.Active
				break
			}
		}
		if mon.Active == -1 {
			for _, ws := range s.Workspaces {
				if ws.Monitor == i {
					mon.Active = ws.Index
					break
				}
			}
		}
	}

	if s.FocusedMonitor >= len(s.Monitors) {
		s.FocusedMonitor = fallback
	}

	return affected
}

func usableChanged(oldMonitors []*Monitor, oldIndex int, now *Monitor) bool {
	if oldIndex < 0 || oldIndex >= len(oldMonitors) {
		return true
	}
	return oldMonitors[oldIndex].Usable != now.Usable
}
