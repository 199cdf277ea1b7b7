package xwm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

type ClientState int

const (
	StateUnmanaged ClientState = iota
	StateMapped
	StateTiled
	StateFloating
	StateFullScreen
	StateHidden
	StateDestroyed
)

func (s ClientState) String() string {
	switch s {
	case StateMapped:
		return "mapped"
	case StateTiled:
		return "tiled"
	case StateFloating:
		return "floating"
	case StateFullScreen:
		return "fullscreen"
	case StateHidden:
		return "hidden"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unmanaged"
	}
}

// Client is one managed window plus its reparenting frame. All
// cross-references (transient-for, workspace, focus) are handles resolved
// through the State lookups, never pointers, so the object graph stays
// acyclic by construction.
type Client struct {
	Window xproto.Window
	Frame  xproto.Window
	Title  string

	State ClientState
	// returnState remembers the visible state to restore when leaving
	// FullScreen or Hidden.
	returnState ClientState

	Type   x11.WindowType
	Urgent bool
	// Sticky clients follow workspace switches on their monitor.
	Sticky       bool
	TransientFor xproto.Window
	Workspace    int
	PID          int

	// Rect is the current outer frame geometry. FloatRect is the remembered
	// floating geometry, OrigRect/OrigBorder what the window had before it
	// was managed (restored at unmanage).
	Rect       x11.Rect
	FloatRect  x11.Rect
	OrigRect   x11.Rect
	OrigBorder int

	Hints        x11.SizeHints
	AcceptsInput bool
	Protocols    x11.Protocols
}

// clientRootRect is the client window's root-relative geometry: the window
// sits at the frame's inner origin, one border width in from the frame's
// outer corner on each axis.
func (c *Client) clientRootRect(border int) x11.Rect {
	r := c.Rect
	r.X += border
	r.Y += border
	return r
}

// Visible reports whether the client occupies screen space in its workspace
// (the workspace itself may still be off-screen).
func (c *Client) Visible() bool {
	switch c.State {
	case StateMapped, StateTiled, StateFloating, StateFullScreen:
		return true
	}
	return false
}

func (c *Client) Floating() bool {
	return c.State == StateFloating
}

func (c *Client) Fullscreen() bool {
	return c.State == StateFullScreen
}

// EnterFullscreen records the state to come back to. Entering twice is a
// no-op.
func (c *Client) EnterFullscreen() {
	if c.State == StateFullScreen {
		return
	}
	c.returnState = c.State
	c.State = StateFullScreen
}

func (c *Client) LeaveFullscreen() {
	if c.State != StateFullScreen {
		return
	}
	c.State = c.restoreState()
}

func (c *Client) EnterHidden() {
	if c.State == StateHidden {
		return
	}
	c.returnState = c.State
	c.State = StateHidden
}

func (c *Client) LeaveHidden() {
	if c.State != StateHidden {
		return
	}
	c.State = c.restoreState()
}

func (c *Client) restoreState() ClientState {
	switch c.returnState {
	case StateTiled, StateFloating:
		return c.returnState
	default:
		return StateTiled
	}
}
