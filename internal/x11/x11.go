// Package x11 owns the connection to the X server. Every remote mutation the
// window manager performs goes through this package; no other package talks to
// the display server directly.
package x11

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/res"
	"github.com/jezek/xgb/xproto"
)

// ErrWMRunning is returned by Connect when another window manager already
// holds SubstructureRedirect on the root window.
var ErrWMRunning = fmt.Errorf("x11: another window manager is already running")

const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type Conn struct {
	XGB    *xgb.Conn
	Screen *xproto.ScreenInfo
	Root   xproto.Window
	Atoms  *AtomCache

	// checkWID is the EWMH supporting WM check window.
	checkWID xproto.Window
	haveRes  bool
}

// Connect dials the X server, claims window manager ownership of the root
// window, resolves the atom cache and initializes the RandR and X-Resource
// extensions. Any failure here is fatal to the session.
func Connect() (*Conn, error) {
	x, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}

	screen := xproto.Setup(x).DefaultScreen(x)

	c := &Conn{
		XGB:    x,
		Screen: screen,
		Root:   screen.Root,
	}

	c.Atoms, err = ResolveAtoms(x)
	if err != nil {
		x.Close()
		return nil, err
	}

	// Becoming the window manager is selecting SubstructureRedirect on the
	// root window; the server rejects a second redirect with Access.
	if err := xproto.ChangeWindowAttributesChecked(x, screen.Root,
		xproto.CwEventMask, []uint32{rootEventMask}).Check(); err != nil {
		x.Close()
		if _, ok := err.(xproto.AccessError); ok {
			return nil, ErrWMRunning
		}
		return nil, fmt.Errorf("x11: select root events: %w", err)
	}

	if err := randr.Init(x); err != nil {
		x.Close()
		return nil, fmt.Errorf("x11: randr init: %w", err)
	}
	if err := randr.SelectInputChecked(x, screen.Root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange).Check(); err != nil {
		x.Close()
		return nil, fmt.Errorf("x11: randr select input: %w", err)
	}

	// X-Resource is only used for client PID attribution; a server without it
	// degrades to the _NET_WM_PID fallback.
	if err := res.Init(x); err != nil {
		slog.Debug("X-Resource extension unavailable", "error", err)
	} else {
		c.haveRes = true
	}

	cursor, err := xcursor.CreateCursor(x, xcursor.LeftPtr)
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("x11: root cursor: %w", err)
	}
	xproto.ChangeWindowAttributes(x, screen.Root, xproto.CwCursor, []uint32{uint32(cursor)})

	if err := c.announce(); err != nil {
		x.Close()
		return nil, err
	}

	return c, nil
}

// announce creates the supporting WM check window and advertises the EWMH
// surface on the root window.
func (c *Conn) announce() error {
	wid, err := xproto.NewWindowId(c.XGB)
	if err != nil {
		return fmt.Errorf("x11: check window id: %w", err)
	}

	if err := xproto.CreateWindowChecked(c.XGB, xproto.WindowClassCopyFromParent,
		wid, c.Root,
		-1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, xproto.WindowClassCopyFromParent, 0, []uint32{}).Check(); err != nil {
		return fmt.Errorf("x11: create check window: %w", err)
	}
	c.checkWID = wid

	a := c.Atoms
	c.ReplaceProp32(c.Root, a.NetSupportingWMCheck, xproto.AtomWindow, uint32(wid))
	c.ReplaceProp32(wid, a.NetSupportingWMCheck, xproto.AtomWindow, uint32(wid))
	c.ReplacePropUTF8(wid, a.NetWMName, "x-tilewm")

	supported := []uint32{
		uint32(a.NetSupported), uint32(a.NetSupportingWMCheck), uint32(a.NetWMName),
		uint32(a.NetActiveWindow), uint32(a.NetClientList),
		uint32(a.NetCurrentDesktop), uint32(a.NetNumberOfDesktops), uint32(a.NetWMDesktop),
		uint32(a.NetWMState), uint32(a.NetWMStateFullscreen), uint32(a.NetWMStateSticky),
		uint32(a.NetWMStateDemandsAttention), uint32(a.NetWMStateHidden),
		uint32(a.NetWMWindowType), uint32(a.NetWMWindowTypeNormal), uint32(a.NetWMWindowTypeDialog),
		uint32(a.NetWMWindowTypeDock), uint32(a.NetWMWindowTypeDesktop), uint32(a.NetWMWindowTypeUtility),
		uint32(a.NetWMStrut), uint32(a.NetWMStrutPartial), uint32(a.NetFrameExtents),
		uint32(a.NetCloseWindow), uint32(a.NetWMPID),
	}
	c.ReplaceProp32(c.Root, a.NetSupported, xproto.AtomAtom, supported...)

	return nil
}

func (c *Conn) Close() {
	if c.checkWID != 0 {
		xproto.DestroyWindow(c.XGB, c.checkWID)
	}
	c.XGB.Close()
}

func (c *Conn) Flush() {
	c.XGB.Sync()
}
