package xwm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

// State is the manager's in-memory model of the session: clients, workspaces,
// monitors and struts. It is mutated only by the dispatcher goroutine, so it
// carries no locks, and it never talks to the display server itself — that
// split keeps every invariant here testable without a connection.
type State struct {
	Clients    map[xproto.Window]*Client
	frames     map[xproto.Window]xproto.Window
	Workspaces []*Workspace
	Monitors   []*Monitor

	// Struts reserved by unmanaged dock/desktop windows, keyed by owner.
	Struts map[xproto.Window]x11.Strut

	FocusedMonitor int
	RootW, RootH   int
}

func NewState(cfg config.Config, outputs []x11.Output, rootW, rootH int) *State {
	s := &State{
		Clients: make(map[xproto.Window]*Client),
		frames:  make(map[xproto.Window]xproto.Window),
		Struts:  make(map[xproto.Window]x11.Strut),
		RootW:   rootW,
		RootH:   rootH,
	}

	kind, _ := LayoutKindFromName(cfg.DefaultLayout)
	spec := LayoutSpec{
		Kind:        kind,
		MasterRatio: cfg.MasterRatio,
		Gap:         cfg.Gap,
		Border:      cfg.BorderWidth,
	}

	s.Monitors = monitorsFromOutputs(outputs)

	for i := 0; i < cfg.Workspaces; i++ {
		monitor := 0
		if i < len(s.Monitors) {
			monitor = i
		}
		s.Workspaces = append(s.Workspaces, &Workspace{
			Index:   i,
			Monitor: monitor,
			Layout:  spec,
		})
	}

	for i := range s.Monitors {
		if i < len(s.Workspaces) {
			s.Monitors[i].Active = i
		} else {
			s.Monitors[i].Active = -1
		}
	}

	s.RecomputeUsable()
	return s
}

func (s *State) Client(h xproto.Window) (*Client, bool) {
	c, ok := s.Clients[h]
	return c, ok
}

// ClientByFrame resolves a frame window back to its client.
func (s *State) ClientByFrame(frame xproto.Window) (*Client, bool) {
	h, ok := s.frames[frame]
	if !ok {
		return nil, false
	}
	return s.Client(h)
}

func (s *State) Workspace(i int) (*Workspace, bool) {
	if i < 0 || i >= len(s.Workspaces) {
		return nil, false
	}
	return s.Workspaces[i], true
}

// CurrentWorkspace is the workspace visible on the monitor holding input
// focus.
func (s *State) CurrentWorkspace() *Workspace {
	mon := s.Monitors[s.FocusedMonitor]
	if mon.Active < 0 || mon.Active >= len(s.Workspaces) {
		return s.Workspaces[0]
	}
	return s.Workspaces[mon.Active]
}

// WorkspaceVisible reports whether a workspace is the active one on its
// monitor.
func (s *State) WorkspaceVisible(ws *Workspace) bool {
	return s.Monitors[ws.Monitor].Active == ws.Index
}

// ManagedCount is the total number of managed clients across all workspaces.
// RaisesOnFocus reports whether focusing h must restack its frame above its
// siblings: floating and fullscreen clients always, and every client in a
// monocle workspace, where all frames share one geometry and only stacking
// order decides what shows.
func (s *State) RaisesOnFocus(h xproto.Window) bool {
	c, ok := s.Client(h)
	if !ok {
		return false
	}
	if c.Floating() || c.Fullscreen() {
		return true
	}
	return s.Workspaces[c.Workspace].Layout.Kind == LayoutMonocle
}

func (s *State) ManagedCount() int {
	n := 0
	for _, ws := range s.Workspaces {
		n += len(ws.Clients)
	}
	return n
}

// Arrange computes the geometry for every client on a workspace: the tiled
// subset through the layout engine, fullscreen clients over the whole monitor,
// floating clients at their stored geometry. Pure; callers apply the result.
func (s *State) Arrange(wsIndex int) map[xproto.Window]x11.Rect {
	ws := s.Workspaces[wsIndex]
	mon := s.Monitors[ws.Monitor]

	var tiled []xproto.Window
	for _, h := range ws.Clients {
		c := s.Clients[h]
		if c == nil {
			continue
		}
		if c.State == StateTiled {
			tiled = append(tiled, h)
		}
	}

	out := Compute(tiled, ws.Layout, mon.Usable)

	for _, h := range ws.Clients {
		c := s.Clients[h]
		if c == nil {
			continue
		}
		switch c.State {
		case StateFullScreen:
			out[h] = mon.Rect
		case StateFloating:
			out[h] = c.FloatRect
		}
	}

	return out
}

// TransientChainHasCycle walks transient-for references from h and reports
// whether adding target as h's transient-for hint would close a cycle. The
// compliance layer ignores hints that would.
func (s *State) TransientChainHasCycle(h, target xproto.Window) bool {
	seen := map[xproto.Window]bool{h: true}
	for target != 0 {
		if seen[target] {
			return true
		}
		seen[target] = true
		c, ok := s.Clients[target]
		if !ok {
			return false
		}
		target = c.TransientFor
	}
	return false
}
