package xwm

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Workspace holds ordered client membership and the active layout for one
// virtual desktop. The count is fixed at startup; workspaces are never
// created or destroyed while the manager runs.
type Workspace struct {
	Index   int
	Monitor int
	Clients []xproto.Window
	Layout  LayoutSpec
	Focus   xproto.Window

	// history is the focus recency order, most recent last.
	history []xproto.Window
}

func (w *Workspace) contains(h xproto.Window) bool {
	for _, c := range w.Clients {
		if c == h {
			return true
		}
	}
	return false
}

func (w *Workspace) indexOf(h xproto.Window) int {
	for i, c := range w.Clients {
		if c == h {
			return i
		}
	}
	return -1
}

func (w *Workspace) remove(h xproto.Window) {
	if i := w.indexOf(h); i >= 0 {
		w.Clients = append(w.Clients[:i], w.Clients[i+1:]...)
	}
	for i := len(w.history) - 1; i >= 0; i-- {
		if w.history[i] == h {
			w.history = append(w.history[:i], w.history[i+1:]...)
		}
	}
	if w.Focus == h {
		w.Focus = 0
		if len(w.history) > 0 {
			w.Focus = w.history[len(w.history)-1]
		}
	}
}

// touchFocus marks h as the workspace focus and refreshes its recency slot.
func (w *Workspace) touchFocus(h xproto.Window) {
	for i := len(w.history) - 1; i >= 0; i-- {
		if w.history[i] == h {
			w.history = append(w.history[:i], w.history[i+1:]...)
		}
	}
	w.history = append(w.history, h)
	w.Focus = h
}

// AddClient places a client on workspace wsIndex and returns the workspace
// indexes whose layout must be recomputed.
func (s *State) AddClient(c *Client, wsIndex int) []int {
	ws := s.Workspaces[wsIndex]
	ws.Clients = append(ws.Clients, c.Window)
	c.Workspace = wsIndex
	s.Clients[c.Window] = c
	if c.Frame != 0 {
		s.frames[c.Frame] = c.Window
	}
	return []int{wsIndex}
}

// RemoveClient detaches a client from its workspace, focus history and frame
// index. The client's own state is left to the caller (destroy vs withdraw).
func (s *State) RemoveClient(h xproto.Window) []int {
	c, ok := s.Clients[h]
	if !ok {
		return nil
	}
	ws := s.Workspaces[c.Workspace]
	ws.remove(h)
	delete(s.Clients, h)
	if c.Frame != 0 {
		delete(s.frames, c.Frame)
	}
	return []int{ws.Index}
}

// MoveClientTo reassigns a client to another workspace. The reassignment and
// the recompute set are produced atomically: by the time any subsequent event
// is handled, the client belongs to exactly the target workspace.
func (s *State) MoveClientTo(h xproto.Window, wsIndex int) ([]int, error) {
	if wsIndex < 0 || wsIndex >= len(s.Workspaces) {
		return nil, fmt.Errorf("workspace %d does not exist (have %d)", wsIndex+1, len(s.Workspaces))
	}
	c, ok := s.Clients[h]
	if !ok {
		return nil, fmt.Errorf("window %d is not managed", h)
	}
	if c.Workspace == wsIndex {
		return nil, nil
	}

	from := s.Workspaces[c.Workspace]
	from.remove(h)

	to := s.Workspaces[wsIndex]
	to.Clients = append(to.Clients, h)
	c.Workspace = wsIndex

	return []int{from.Index, to.Index}, nil
}

// SetLayout switches the active layout of a workspace.
func (s *State) SetLayout(wsIndex int, kind LayoutKind) []int {
	ws := s.Workspaces[wsIndex]
	ws.Layout.Kind = kind
	return []int{wsIndex}
}

// ToggleFloating flips a visible client between Tiled and Floating.
func (s *State) ToggleFloating(h xproto.Window) []int {
	c, ok := s.Clients[h]
	if !ok {
		return nil
	}
	switch c.State {
	case StateTiled:
		c.State = StateFloating
		if c.FloatRect.Empty() {
			c.FloatRect = c.Rect
		}
	case StateFloating:
		c.State = StateTiled
	default:
		return nil
	}
	return []int{c.Workspace}
}
