package xwm

import (
	"github.com/jezek/xgb/xproto"
)

// Focus selection cycles only over the workspace currently visible on the
// focused monitor. The per-workspace history gives "most recently used"
// fallback focus when the focused client goes away.

// SetFocus records h as focused. When h lives on a visible workspace the
// focused monitor follows it.
func (s *State) SetFocus(h xproto.Window) {
	c, ok := s.Clients[h]
	if !ok {
		return
	}
	ws := s.Workspaces[c.Workspace]
	ws.touchFocus(h)
	if s.WorkspaceVisible(ws) {
		s.FocusedMonitor = ws.Monitor
	}
}

// FocusedClient returns the focused client of the current workspace, if any.
func (s *State) FocusedClient() (*Client, bool) {
	ws := s.CurrentWorkspace()
	if ws.Focus == 0 {
		return nil, false
	}
	return s.Client(ws.Focus)
}

// FocusNext selects the client after the current focus in stack order,
// wrapping. An empty workspace clears focus.
func (s *State) FocusNext() (xproto.Window, bool) {
	return s.cycleFocus(1)
}

// FocusPrev selects the client before the current focus, wrapping.
func (s *State) FocusPrev() (xproto.Window, bool) {
	return s.cycleFocus(-1)
}

func (s *State) cycleFocus(dir int) (xproto.Window, bool) {
	ws := s.CurrentWorkspace()
	n := len(ws.Clients)
	if n == 0 {
		ws.Focus = 0
		return 0, false
	}

	i := ws.indexOf(ws.Focus)
	if i < 0 {
		i = 0
	} else {
		i = ((i+dir)%n + n) % n
	}

	h := ws.Clients[i]
	ws.touchFocus(h)
	return h, true
}
