package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Requests are fire-and-forget unless a round trip is required for
// correctness (reparenting, frame creation, geometry queries).

func (c *Conn) ApplyGeometry(wid xproto.Window, r Rect) {
	xproto.ConfigureWindow(c.XGB, wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(r.X)), uint32(int32(r.Y)), uint32(r.W), uint32(r.H)})
}

func (c *Conn) Resize(wid xproto.Window, w, h int) {
	xproto.ConfigureWindow(c.XGB, wid,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(w), uint32(h)})
}

func (c *Conn) SetBorderWidth(wid xproto.Window, width int) {
	xproto.ConfigureWindow(c.XGB, wid,
		xproto.ConfigWindowBorderWidth, []uint32{uint32(width)})
}

func (c *Conn) SetBorderPixel(wid xproto.Window, pixel uint32) {
	xproto.ChangeWindowAttributes(c.XGB, wid, xproto.CwBorderPixel, []uint32{pixel})
}

func (c *Conn) Raise(wid xproto.Window) {
	xproto.ConfigureWindow(c.XGB, wid,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (c *Conn) Lower(wid xproto.Window) {
	xproto.ConfigureWindow(c.XGB, wid,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
}

func (c *Conn) MapWindow(wid xproto.Window) {
	xproto.MapWindow(c.XGB, wid)
}

func (c *Conn) UnmapWindow(wid xproto.Window) {
	xproto.UnmapWindow(c.XGB, wid)
}

// CreateFrame creates the reparenting container for a client at the given
// outer geometry. The frame holds the border; the client sits at (0,0) inside.
func (c *Conn) CreateFrame(r Rect, borderWidth int, borderPixel uint32) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(c.XGB)
	if err != nil {
		return 0, fmt.Errorf("x11: frame id: %w", err)
	}

	if err := xproto.CreateWindowChecked(c.XGB, c.Screen.RootDepth,
		wid, c.Root,
		int16(r.X), int16(r.Y), uint16(r.W), uint16(r.H), uint16(borderWidth),
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwBorderPixel|xproto.CwEventMask,
		[]uint32{
			borderPixel,
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskEnterWindow,
		}).Check(); err != nil {
		return 0, fmt.Errorf("x11: create frame: %w", err)
	}

	return wid, nil
}

func (c *Conn) DestroyWindow(wid xproto.Window) {
	xproto.DestroyWindow(c.XGB, wid)
}

// Reparent moves client into frame. This is one of the few checked round
// trips: a client that vanished mid-manage must not end up half-framed.
func (c *Conn) Reparent(client, frame xproto.Window) error {
	if err := xproto.ChangeSaveSetChecked(c.XGB, xproto.SetModeInsert, client).Check(); err != nil {
		return fmt.Errorf("x11: save-set insert %d: %w", client, err)
	}
	if err := xproto.ReparentWindowChecked(c.XGB, client, frame, 0, 0).Check(); err != nil {
		return fmt.Errorf("x11: reparent %d: %w", client, err)
	}
	return nil
}

// ReparentToRoot returns a client to the root window at the given position,
// used by the unmanage-all pass.
func (c *Conn) ReparentToRoot(client xproto.Window, x, y int) {
	xproto.ReparentWindow(c.XGB, client, c.Root, int16(x), int16(y))
	xproto.ChangeSaveSet(c.XGB, xproto.SetModeDelete, client)
}

// SelectClientEvents subscribes to the client-side events the state machine
// tracks after a window is managed.
func (c *Conn) SelectClientEvents(wid xproto.Window) {
	xproto.ChangeWindowAttributes(c.XGB, wid, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify})
}

func (c *Conn) SetInputFocus(wid xproto.Window) {
	xproto.SetInputFocus(c.XGB, xproto.InputFocusPointerRoot, wid, xproto.TimeCurrentTime)
}

// ClearInputFocus reverts input focus to the root so no window holds it.
func (c *Conn) ClearInputFocus() {
	xproto.SetInputFocus(c.XGB, xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime)
}

func (c *Conn) KillClient(wid xproto.Window) {
	xproto.KillClient(c.XGB, uint32(wid))
}

func (c *Conn) sendClientMessage(wid xproto.Window, typ xproto.Atom, data []uint32) {
	var d [5]uint32
	copy(d[:], data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wid,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(d[:]),
	}
	xproto.SendEvent(c.XGB, false, wid, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// SendDeleteWindow asks the client to close itself via the polite ICCCM
// WM_DELETE_WINDOW path.
func (c *Conn) SendDeleteWindow(wid xproto.Window) {
	c.sendClientMessage(wid, c.Atoms.WMProtocols,
		[]uint32{uint32(c.Atoms.WMDeleteWindow), uint32(xproto.TimeCurrentTime)})
}

func (c *Conn) SendTakeFocus(wid xproto.Window) {
	c.sendClientMessage(wid, c.Atoms.WMProtocols,
		[]uint32{uint32(c.Atoms.WMTakeFocus), uint32(xproto.TimeCurrentTime)})
}

// ConfigureFromRequest forwards a ConfigureRequest for an unmanaged window,
// honoring exactly the fields the client asked for.
func (c *Conn) ConfigureFromRequest(wid xproto.Window, valueMask uint16, r Rect, borderWidth int) {
	var mask uint16
	var values []uint32

	add := func(bit uint16, v uint32) {
		if valueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(xproto.ConfigWindowX, uint32(int32(r.X)))
	add(xproto.ConfigWindowY, uint32(int32(r.Y)))
	add(xproto.ConfigWindowWidth, uint32(r.W))
	add(xproto.ConfigWindowHeight, uint32(r.H))
	add(xproto.ConfigWindowBorderWidth, uint32(borderWidth))

	if mask != 0 {
		xproto.ConfigureWindow(c.XGB, wid, mask, values)
	}
}

// SendConfigureNotify acknowledges a ConfigureRequest whose geometry the
// layout overrode, telling the client where it actually is.
func (c *Conn) SendConfigureNotify(wid xproto.Window, r Rect, borderWidth int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            wid,
		Window:           wid,
		AboveSibling:     xproto.WindowNone,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(r.W),
		Height:           uint16(r.H),
		BorderWidth:      uint16(borderWidth),
		OverrideRedirect: false,
	}
	xproto.SendEvent(c.XGB, false, wid, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func (c *Conn) Geometry(wid xproto.Window) (Rect, int, error) {
	reply, err := xproto.GetGeometry(c.XGB, xproto.Drawable(wid)).Reply()
	if err != nil {
		return Rect{}, 0, fmt.Errorf("x11: geometry %d: %w", wid, err)
	}
	return Rect{
		X: int(reply.X), Y: int(reply.Y),
		W: int(reply.Width), H: int(reply.Height),
	}, int(reply.BorderWidth), nil
}

// Attributes returns override-redirect and whether the window is viewable.
func (c *Conn) Attributes(wid xproto.Window) (overrideRedirect, viewable bool, err error) {
	reply, err := xproto.GetWindowAttributes(c.XGB, wid).Reply()
	if err != nil {
		return false, false, fmt.Errorf("x11: attributes %d: %w", wid, err)
	}
	return reply.OverrideRedirect, reply.MapState == xproto.MapStateViewable, nil
}

// ExistingWindows lists the root's direct children, used to adopt clients that
// were mapped before the manager started.
func (c *Conn) ExistingWindows() ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(c.XGB, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: query tree: %w", err)
	}
	return reply.Children, nil
}

// Property helpers. Format 32 values travel as native-endian u32 quads.

func (c *Conn) getProp(wid xproto.Window, prop xproto.Atom) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(c.XGB, false, wid, prop, xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
}

// PropCard32s reads a format-32 property as a u32 slice; a missing property
// yields a nil slice and no error.
func (c *Conn) PropCard32s(wid xproto.Window, prop xproto.Atom) ([]uint32, error) {
	reply, err := c.getProp(wid, prop)
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 || len(reply.Value) < 4 {
		return nil, nil
	}
	vals := make([]uint32, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		vals = append(vals, xgb.Get32(reply.Value[i:]))
	}
	return vals, nil
}

func (c *Conn) PropAtoms(wid xproto.Window, prop xproto.Atom) ([]xproto.Atom, error) {
	vals, err := c.PropCard32s(wid, prop)
	if err != nil {
		return nil, err
	}
	atoms := make([]xproto.Atom, len(vals))
	for i, v := range vals {
		atoms[i] = xproto.Atom(v)
	}
	return atoms, nil
}

func (c *Conn) PropString(wid xproto.Window, prop xproto.Atom) (string, error) {
	reply, err := c.getProp(wid, prop)
	if err != nil {
		return "", err
	}
	if reply.Format != 8 {
		return "", nil
	}
	return string(reply.Value), nil
}

func (c *Conn) ReplaceProp32(wid xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		xgb.Put32(buf[i*4:], v)
	}
	xproto.ChangeProperty(c.XGB, xproto.PropModeReplace, wid, prop, typ, 32,
		uint32(len(values)), buf)
}

func (c *Conn) ReplacePropUTF8(wid xproto.Window, prop xproto.Atom, s string) {
	xproto.ChangeProperty(c.XGB, xproto.PropModeReplace, wid, prop, c.Atoms.UTF8String, 8,
		uint32(len(s)), []byte(s))
}

func (c *Conn) DeleteProp(wid xproto.Window, prop xproto.Atom) {
	xproto.DeleteProperty(c.XGB, wid, prop)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Conn) WindowTitle(wid xproto.Window) string {
	if name, err := c.PropString(wid, c.Atoms.NetWMName); err == nil && name != "" {
		return name
	}
	name, _ := c.PropString(wid, xproto.AtomWmName)
	return name
}
