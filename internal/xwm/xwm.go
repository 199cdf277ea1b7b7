// Package xwm implements the window manager: a single dispatcher goroutine
// owns all session state and consumes protocol events and IPC commands from
// one loop, so no operation ever observes a half-applied transition.
package xwm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/ipc"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

const (
	focusedBorderPixel   = 0x5294e2
	unfocusedBorderPixel = 0x3b4252
	urgentBorderPixel    = 0xbf616a
)

type binding struct {
	Keycode xproto.Keycode
	Mods    uint16
	Action  string
}

type Manager struct {
	conn  *x11.Conn
	cfg   config.Config
	state *State

	keys     *x11.KeyTable
	bindings []binding

	eventC    chan x11.Event
	commandC  chan ipc.Request
	internalC chan func()
	doneC     chan struct{}

	closePending map[xproto.Window]*time.Timer
	// ignoreUnmap counts UnmapNotify events caused by our own reparenting of
	// already-mapped windows, which must not be read as withdrawal.
	ignoreUnmap map[xproto.Window]int

	started time.Time
	quit    bool
}

func NewManager(conn *x11.Conn, cfg config.Config, commandC chan ipc.Request) (*Manager, error) {
	outputs, err := conn.QueryOutputs()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		conn: conn,
		cfg:  cfg,
		state: NewState(cfg, outputs,
			int(conn.Screen.WidthInPixels), int(conn.Screen.HeightInPixels)),
		commandC:     commandC,
		internalC:    make(chan func(), 8),
		doneC:        make(chan struct{}),
		closePending: make(map[xproto.Window]*time.Timer),
		ignoreUnmap:  make(map[xproto.Window]int),
		started:      time.Now(),
	}

	m.keys, err = conn.LoadKeyTable()
	if err != nil {
		return nil, err
	}
	m.grabBindings()

	return m, nil
}

func (m *Manager) String() string {
	return "xwm.Manager"
}

func (m *Manager) Serve(ctx context.Context) error {
	defer close(m.doneC)

	m.eventC = make(chan x11.Event, 64)
	go m.conn.ReceiveEvents(ctx, m.eventC)

	m.adoptExisting()
	m.publishDesktops()
	m.publishClientList()
	m.publishActiveWindow(0)
	m.publishSnapshot()
	m.conn.Flush()

	for {
		// Protocol events drain before commands so IPC always acts on
		// settled state.
		select {
		case ev, ok := <-m.eventC:
			if !ok {
				return fmt.Errorf("xwm: display connection lost")
			}
			m.dispatch(ev)
			m.conn.Flush()
			if m.quit {
				m.shutdown()
				return suture.ErrTerminateSupervisorTree
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case ev, ok := <-m.eventC:
			if !ok {
				return fmt.Errorf("xwm: display connection lost")
			}
			m.dispatch(ev)
			if m.quit {
				m.shutdown()
				return suture.ErrTerminateSupervisorTree
			}
		case req := <-m.commandC:
			m.handleRequest(req)
			if m.quit {
				m.shutdown()
				return suture.ErrTerminateSupervisorTree
			}
		case fn := <-m.internalC:
			fn()
		}
		m.conn.Flush()
	}
}

func (m *Manager) dispatch(ev x11.Event) {
	switch ev := ev.(type) {
	case x11.MapRequest:
		m.manage(ev.Window, false)
	case x11.ConfigureRequest:
		m.handleConfigureRequest(ev)
	case x11.UnmapNotify:
		m.handleUnmapNotify(ev)
	case x11.DestroyNotify:
		m.handleDestroyNotify(ev)
	case x11.PropertyNotify:
		m.handlePropertyNotify(ev)
	case x11.EnterNotify:
		m.handleEnterNotify(ev)
	case x11.ClientMessage:
		m.handleClientMessage(ev)
	case x11.KeyPress:
		m.handleKeyPress(ev)
	case x11.RandrChange:
		m.handleRandrChange()
	case x11.MappingNotify:
		m.handleMappingNotify()
	}
}

// adoptExisting manages windows that were already mapped when the manager
// started, in stacking order as reported by the server.
func (m *Manager) adoptExisting() {
	wids, err := m.conn.ExistingWindows()
	if err != nil {
		slog.Warn("Failed to query existing windows", "error", err)
		return
	}
	for _, wid := range wids {
		m.manage(wid, true)
	}
}

// manage brings a window under management: read its hints, frame it, place it
// on a workspace and tile or float it. Docks and desktops stay unmanaged but
// get their struts honored.
func (m *Manager) manage(wid xproto.Window, existing bool) {
	if wid == m.conn.Root {
		return
	}
	if c, ok := m.state.Client(wid); ok {
		// ICCCM: a client maps its own window to request deiconification.
		if !existing && c.State == StateHidden {
			m.unhideClient(c)
		}
		return
	}
	if _, ok := m.state.ClientByFrame(wid); ok {
		return
	}

	override, viewable, err := m.conn.Attributes(wid)
	if err != nil {
		slog.Debug("Window vanished before manage", "window", wid)
		return
	}
	if override {
		if !existing {
			m.conn.MapWindow(wid)
		}
		return
	}
	if existing && !viewable {
		return
	}

	typ := m.conn.WindowTypeOf(wid)
	switch typ {
	case x11.WindowTypeDock, x11.WindowTypeDesktop:
		m.conn.SelectClientEvents(wid)
		if strut, ok := m.conn.StrutOf(wid); ok && !strut.Empty() {
			m.state.Struts[wid] = strut
			m.state.RecomputeUsable()
		}
		m.conn.MapWindow(wid)
		if typ == x11.WindowTypeDesktop {
			m.conn.Lower(wid)
		}
		m.applyAllVisible()
		return
	case x11.WindowTypeNotification:
		m.conn.MapWindow(wid)
		m.conn.Raise(wid)
		return
	}

	rect, borderWidth, err := m.conn.Geometry(wid)
	if err != nil {
		slog.Debug("Window vanished before manage", "window", wid)
		return
	}

	wmHints := m.conn.WMHintsOf(wid)
	c := &Client{
		Window:       wid,
		Title:        m.conn.WindowTitle(wid),
		Type:         typ,
		Urgent:       wmHints.Urgent,
		AcceptsInput: wmHints.AcceptsInput,
		Hints:        m.conn.SizeHintsOf(wid),
		Protocols:    m.conn.ProtocolsOf(wid),
		PID:          m.conn.ClientPID(wid),
		Rect:         rect,
		OrigRect:     rect,
		OrigBorder:   borderWidth,
	}

	if target := m.conn.TransientForOf(wid); target != 0 {
		if m.state.TransientChainHasCycle(wid, target) {
			slog.Warn("Ignoring transient-for hint forming a cycle", "window", wid, "target", target)
		} else {
			c.TransientFor = target
		}
	}

	wsIndex := m.state.CurrentWorkspace().Index
	if owner, ok := m.state.Client(c.TransientFor); ok {
		wsIndex = owner.Workspace
	}

	if m.floatsInitially(c) {
		c.State = StateFloating
		c.FloatRect = m.initialFloatRect(c, wsIndex)
	} else {
		c.State = StateTiled
	}

	frame, err := m.conn.CreateFrame(rect, m.cfg.BorderWidth, unfocusedBorderPixel)
	if err != nil {
		slog.Warn("Failed to create frame, leaving window unmanaged", "window", wid, "error", err)
		m.conn.MapWindow(wid)
		return
	}
	if err := m.conn.Reparent(wid, frame); err != nil {
		// The window went away between MapRequest and here.
		slog.Warn("Reparent failed, leaving window unmanaged", "window", wid, "error", err)
		m.conn.DestroyWindow(frame)
		return
	}
	c.Frame = frame

	m.conn.SelectClientEvents(wid)
	m.conn.SetBorderWidth(wid, 0)
	if existing {
		// Reparenting a mapped window emits one UnmapNotify.
		m.ignoreUnmap[wid]++
	}

	fullscreen, attention := m.conn.InitialStatesOf(wid)
	if attention {
		c.Urgent = true
	}
	if wmHints.StartIconic {
		c.EnterHidden()
	}
	if fullscreen {
		c.EnterFullscreen()
	}

	affected := m.state.AddClient(c, wsIndex)

	if c.State == StateHidden {
		m.setICCCMState(wid, x11.WMStateIconic)
	} else {
		m.setICCCMState(wid, x11.WMStateNormal)
	}
	m.publishFrameExtents(c)
	m.publishClientDesktop(c)
	m.publishNetWMState(c)
	m.publishClientList()

	m.applyWorkspaces(affected)

	ws := m.state.Workspaces[wsIndex]
	if m.state.WorkspaceVisible(ws) && c.Visible() {
		m.focusClient(wid)
	}
	m.publishSnapshot()

	slog.Info("Managing window",
		"window", wid, "title", c.Title, "type", c.Type.String(),
		"workspace", wsIndex, "state", c.State.String(), "pid", c.PID)
}

// floatsInitially decides the starting mode: dialogs, transients, utility
// windows and fixed-size clients float, everything else tiles.
func (m *Manager) floatsInitially(c *Client) bool {
	switch c.Type {
	case x11.WindowTypeDialog, x11.WindowTypeUtility, x11.WindowTypeToolbar,
		x11.WindowTypeMenu, x11.WindowTypeSplash:
		return true
	}
	if c.TransientFor != 0 {
		return true
	}
	h := c.Hints
	if h.HasMin && h.HasMax && h.MinW == h.MaxW && h.MinH == h.MaxH {
		return true
	}
	return false
}

// initialFloatRect centers an unplaced floating window on its monitor's
// usable area; a window that asked for a position keeps it.
func (m *Manager) initialFloatRect(c *Client, wsIndex int) x11.Rect {
	r := c.Hints.Constrain(c.OrigRect)
	if r.X != 0 || r.Y != 0 {
		return r
	}
	usable := m.state.Monitors[m.state.Workspaces[wsIndex].Monitor].Usable
	r.X = core.Clamp(usable.X+(usable.W-r.W)/2, usable.X, usable.X+usable.W-1)
	r.Y = core.Clamp(usable.Y+(usable.H-r.H)/2, usable.Y, usable.Y+usable.H-1)
	return r
}

// unmanage removes a window from management. For a withdrawal the window is
// returned to the root at its pre-manage geometry; for a destroy there is
// nothing left to restore.
func (m *Manager) unmanage(h xproto.Window, destroyed bool) {
	c, ok := m.state.Client(h)
	if !ok {
		return
	}
	m.cancelPendingClose(h)

	affected := m.state.RemoveClient(h)
	c.State = StateDestroyed

	if !destroyed {
		m.conn.ReparentToRoot(h, c.OrigRect.X, c.OrigRect.Y)
		m.conn.SetBorderWidth(h, c.OrigBorder)
		m.setICCCMState(h, x11.WMStateWithdrawn)
	}
	if c.Frame != 0 {
		m.conn.DestroyWindow(c.Frame)
	}

	m.applyWorkspaces(affected)

	ws := m.state.CurrentWorkspace()
	if len(affected) > 0 && affected[0] == ws.Index {
		if ws.Focus != 0 {
			m.focusClient(ws.Focus)
		} else {
			m.clearFocus()
		}
	}

	m.publishClientList()
	m.publishSnapshot()

	slog.Info("Unmanaged window", "window", h, "title", c.Title, "destroyed", destroyed)
}

func (m *Manager) handleUnmapNotify(ev x11.UnmapNotify) {
	if n := m.ignoreUnmap[ev.Window]; n > 0 {
		if n == 1 {
			delete(m.ignoreUnmap, ev.Window)
		} else {
			m.ignoreUnmap[ev.Window] = n - 1
		}
		return
	}
	if _, ok := m.state.Struts[ev.Window]; ok {
		delete(m.state.Struts, ev.Window)
		m.state.RecomputeUsable()
		m.applyAllVisible()
		return
	}
	m.unmanage(ev.Window, false)
}

func (m *Manager) handleDestroyNotify(ev x11.DestroyNotify) {
	if _, ok := m.state.Struts[ev.Window]; ok {
		delete(m.state.Struts, ev.Window)
		m.state.RecomputeUsable()
		m.applyAllVisible()
		return
	}
	m.unmanage(ev.Window, true)
}

func (m *Manager) handleConfigureRequest(ev x11.ConfigureRequest) {
	c, ok := m.state.Client(ev.Window)
	if !ok {
		m.conn.ConfigureFromRequest(ev.Window, ev.ValueMask, ev.Rect, ev.BorderWidth)
		return
	}

	if c.Floating() {
		r := c.FloatRect
		if ev.ValueMask&xproto.ConfigWindowX != 0 {
			r.X = ev.Rect.X
		}
		if ev.ValueMask&xproto.ConfigWindowY != 0 {
			r.Y = ev.Rect.Y
		}
		if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
			r.W = ev.Rect.W
		}
		if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
			r.H = ev.Rect.H
		}
		c.FloatRect = c.Hints.Constrain(r)
		m.applyWorkspaces([]int{c.Workspace})
		return
	}

	// The layout owns tiled geometry; tell the client where it really is.
	m.conn.SendConfigureNotify(c.Window, c.clientRootRect(m.frameBorder(c)), 0)
}

func (m *Manager) handleEnterNotify(ev x11.EnterNotify) {
	if !m.cfg.FocusFollowsMouse {
		return
	}
	c, ok := m.state.ClientByFrame(ev.Window)
	if !ok || !c.Visible() {
		return
	}
	if m.state.CurrentWorkspace().Focus == c.Window && m.state.FocusedMonitor == m.state.Workspaces[c.Workspace].Monitor {
		return
	}
	m.focusClient(c.Window)
	m.publishSnapshot()
}

func (m *Manager) handleRandrChange() {
	outputs, err := m.conn.QueryOutputs()
	if err != nil {
		slog.Warn("Failed to query outputs after RandR change", "error", err)
		return
	}

	affected := m.state.ReconcileOutputs(outputs)
	slog.Info("Monitor topology changed", "monitors", len(outputs), "workspaces_affected", len(affected))

	m.applyAllVisible()
	m.publishDesktops()
	m.publishSnapshot()
}

func (m *Manager) handleMappingNotify() {
	keys, err := m.conn.LoadKeyTable()
	if err != nil {
		slog.Warn("Failed to reload keyboard mapping", "error", err)
		return
	}
	m.keys = keys
	m.conn.UngrabAllKeys()
	m.bindings = m.bindings[:0]
	m.grabBindings()
}

func (m *Manager) handleKeyPress(ev x11.KeyPress) {
	for _, b := range m.bindings {
		if b.Keycode == ev.Keycode && b.Mods == ev.Modifiers {
			m.runAction(b.Action)
			return
		}
	}
}

func (m *Manager) grabBindings() {
	baseMods, err := config.ParseModifiers(m.cfg.Modifier)
	if err != nil {
		return
	}

	for action, spec := range m.cfg.Bindings {
		ks, err := config.ParseKeySpec(spec)
		if err != nil {
			continue
		}
		sym, ok := x11.KeysymForName(ks.Key)
		if !ok {
			continue
		}
		keycode := m.keys.KeycodeFor(sym)
		if keycode == 0 {
			slog.Warn("Binding key not present on keyboard", "action", action, "key", ks.Key)
			continue
		}

		mods := baseMods | ks.Mods
		m.bindings = append(m.bindings, binding{Keycode: keycode, Mods: mods, Action: action})
		m.conn.GrabKey(keycode, mods)
	}
}

func (m *Manager) runAction(action string) {
	switch action {
	case "focus-next":
		m.focusStep(1)
	case "focus-prev":
		m.focusStep(-1)
	case "close":
		m.closeFocused(false)
	case "force-close":
		m.closeFocused(true)
	case "quit":
		m.quit = true
	case "toggle-float":
		m.toggleFloat()
	case "toggle-fullscreen":
		m.toggleFullscreen()
	case "layout-master-stack":
		m.setLayout(config.LayoutMasterStack)
	case "layout-monocle":
		m.setLayout(config.LayoutMonocle)
	case "layout-grid":
		m.setLayout(config.LayoutGrid)
	case "layout-floating":
		m.setLayout(config.LayoutFloating)
	default:
		var n int
		if _, err := fmt.Sscanf(action, "workspace-%d", &n); err == nil {
			m.switchWorkspace(n - 1)
			return
		}
		if _, err := fmt.Sscanf(action, "move-to-workspace-%d", &n); err == nil {
			m.moveToWorkspace(n - 1)
			return
		}
	}
}

// handleRequest executes one IPC command and replies on its channel.
func (m *Manager) handleRequest(req ipc.Request) {
	var err error
	var status *ipc.StatusData

	switch cmd := req.Cmd.(type) {
	case ipc.FocusNext:
		m.focusStep(1)
	case ipc.FocusPrev:
		m.focusStep(-1)
	case ipc.SwitchWorkspace:
		err = m.switchWorkspace(cmd.Index - 1)
	case ipc.MoveToWorkspace:
		err = m.moveToWorkspace(cmd.Index - 1)
	case ipc.ToggleFloat:
		err = m.toggleFloat()
	case ipc.ToggleFullscreen:
		err = m.toggleFullscreen()
	case ipc.SetLayout:
		err = m.setLayout(cmd.Name)
	case ipc.Close:
		err = m.closeFocused(false)
	case ipc.ForceClose:
		err = m.closeFocused(true)
	case ipc.Quit:
		m.quit = true
	case ipc.Status:
		status = m.status()
	default:
		err = fmt.Errorf("unsupported command %s", req.Cmd.Tag())
	}

	if req.ReplyC != nil {
		req.ReplyC <- ipc.Reply{Err: err, Status: status}
	}
}

func (m *Manager) focusStep(dir int) {
	ws := m.state.CurrentWorkspace()
	for range ws.Clients {
		h, ok := m.state.cycleFocus(dir)
		if !ok {
			break
		}
		if c, okc := m.state.Client(h); okc && c.Visible() {
			m.focusClient(h)
			m.publishSnapshot()
			return
		}
	}
	m.clearFocus()
	m.publishSnapshot()
}

func (m *Manager) focusClient(h xproto.Window) {
	c, ok := m.state.Client(h)
	if !ok || !c.Visible() {
		return
	}

	m.state.SetFocus(h)

	if c.Urgent {
		c.Urgent = false
		m.publishNetWMState(c)
	}
	if c.AcceptsInput {
		m.conn.SetInputFocus(c.Window)
	}
	if c.Protocols.TakeFocus {
		m.conn.SendTakeFocus(c.Window)
	}
	if m.state.RaisesOnFocus(h) {
		m.conn.Raise(c.Frame)
	}

	m.publishActiveWindow(h)
	m.updateBorders()
}

func (m *Manager) clearFocus() {
	m.conn.ClearInputFocus()
	m.publishActiveWindow(0)
	m.updateBorders()
}

// switchWorkspace makes workspace i the active one on its monitor. Switching
// to the already-active workspace just moves the focused monitor.
func (m *Manager) switchWorkspace(i int) error {
	ws, ok := m.state.Workspace(i)
	if !ok {
		return fmt.Errorf("workspace %d does not exist (have %d)", i+1, len(m.state.Workspaces))
	}

	mon := m.state.Monitors[ws.Monitor]
	if mon.Active != i {
		if old, okOld := m.state.Workspace(mon.Active); okOld {
			// Sticky clients ride along to the incoming workspace.
			var sticky []xproto.Window
			for _, h := range old.Clients {
				if c, okc := m.state.Client(h); okc && c.Sticky {
					sticky = append(sticky, h)
				}
			}
			for _, h := range sticky {
				m.state.MoveClientTo(h, i)
			}
			for _, h := range old.Clients {
				if c, okc := m.state.Client(h); okc {
					m.hideFrame(c)
				}
			}
		}
		mon.Active = i
		m.applyWorkspaces([]int{i})
	}
	m.state.FocusedMonitor = ws.Monitor

	if ws.Focus != 0 {
		m.focusClient(ws.Focus)
	} else {
		m.clearFocus()
	}

	m.publishDesktops()
	m.publishSnapshot()
	return nil
}

// moveToWorkspace sends the focused client to workspace i.
func (m *Manager) moveToWorkspace(i int) error {
	c, ok := m.state.FocusedClient()
	if !ok {
		return fmt.Errorf("no focused client")
	}

	affected, err := m.state.MoveClientTo(c.Window, i)
	if err != nil {
		return err
	}
	if affected == nil {
		return nil
	}

	m.publishClientDesktop(c)
	if !m.state.WorkspaceVisible(m.state.Workspaces[c.Workspace]) {
		m.hideFrame(c)
	}
	m.applyWorkspaces(affected)

	ws := m.state.CurrentWorkspace()
	if ws.Focus != 0 {
		m.focusClient(ws.Focus)
	} else {
		m.clearFocus()
	}

	m.publishClientList()
	m.publishSnapshot()
	return nil
}

func (m *Manager) toggleFloat() error {
	c, ok := m.state.FocusedClient()
	if !ok {
		return fmt.Errorf("no focused client")
	}

	affected := m.state.ToggleFloating(c.Window)
	if affected == nil {
		return fmt.Errorf("client is neither tiled nor floating")
	}
	if c.Floating() {
		c.FloatRect = c.Hints.Constrain(c.FloatRect)
		m.conn.Raise(c.Frame)
	}
	m.applyWorkspaces(affected)
	m.publishSnapshot()
	return nil
}

func (m *Manager) toggleFullscreen() error {
	c, ok := m.state.FocusedClient()
	if !ok {
		return fmt.Errorf("no focused client")
	}
	m.setFullscreen(c, c.State != StateFullScreen)
	return nil
}

func (m *Manager) setLayout(name string) error {
	kind, ok := LayoutKindFromName(name)
	if !ok {
		return fmt.Errorf("unknown layout %q", name)
	}
	ws := m.state.CurrentWorkspace()
	m.applyWorkspaces(m.state.SetLayout(ws.Index, kind))
	m.publishSnapshot()
	return nil
}

func (m *Manager) closeFocused(force bool) error {
	c, ok := m.state.FocusedClient()
	if !ok {
		return fmt.Errorf("no focused client")
	}
	m.closeClient(c.Window, force)
	return nil
}

// applyWorkspaces pushes computed geometry to the server for each listed
// workspace that is currently visible.
func (m *Manager) applyWorkspaces(indexes []int) {
	for _, i := range indexes {
		ws, ok := m.state.Workspace(i)
		if !ok {
			continue
		}
		visible := m.state.WorkspaceVisible(ws)
		rects := m.state.Arrange(i)

		var floaters []*Client
		for _, h := range ws.Clients {
			c, okc := m.state.Client(h)
			if !okc {
				continue
			}
			if !visible || !c.Visible() {
				m.hideFrame(c)
				continue
			}
			if r, okr := rects[h]; okr && !r.Empty() {
				m.placeClient(c, r)
			}
			m.showFrame(c)
			if c.Floating() || c.Fullscreen() {
				floaters = append(floaters, c)
			}
		}

		// Monocle frames all overlap; the focused one comes up first so the
		// stack stays in focus order, then floaters go back on top.
		if visible && ws.Layout.Kind == LayoutMonocle && ws.Focus != 0 {
			if c, okc := m.state.Client(ws.Focus); okc && c.Visible() {
				m.conn.Raise(c.Frame)
			}
		}
		for _, c := range floaters {
			m.conn.Raise(c.Frame)
		}
	}
	m.updateBorders()
}

func (m *Manager) applyAllVisible() {
	indexes := make([]int, 0, len(m.state.Workspaces))
	for _, ws := range m.state.Workspaces {
		indexes = append(indexes, ws.Index)
	}
	m.applyWorkspaces(indexes)
}

func (m *Manager) frameBorder(c *Client) int {
	if c.Fullscreen() {
		return 0
	}
	return m.cfg.BorderWidth
}

func (m *Manager) placeClient(c *Client, r x11.Rect) {
	c.Rect = r
	m.conn.ApplyGeometry(c.Frame, r)
	m.conn.Resize(c.Window, r.W, r.H)
	m.conn.SetBorderWidth(c.Frame, m.frameBorder(c))
	if !c.Floating() {
		// Synthetic ConfigureNotify so the client learns its real
		// root-relative geometry, border offset included.
		m.conn.SendConfigureNotify(c.Window, c.clientRootRect(m.frameBorder(c)), 0)
	}
}

func (m *Manager) showFrame(c *Client) {
	m.conn.MapWindow(c.Frame)
	m.conn.MapWindow(c.Window)
}

func (m *Manager) hideFrame(c *Client) {
	m.conn.UnmapWindow(c.Frame)
}

func (m *Manager) updateBorders() {
	for _, mon := range m.state.Monitors {
		ws, ok := m.state.Workspace(mon.Active)
		if !ok {
			continue
		}
		focused := xproto.Window(0)
		if m.state.FocusedMonitor == mon.Index {
			focused = ws.Focus
		}
		for _, h := range ws.Clients {
			c, okc := m.state.Client(h)
			if !okc || c.Frame == 0 {
				continue
			}
			switch {
			case h == focused:
				m.conn.SetBorderPixel(c.Frame, focusedBorderPixel)
			case c.Urgent:
				m.conn.SetBorderPixel(c.Frame, urgentBorderPixel)
			default:
				m.conn.SetBorderPixel(c.Frame, unfocusedBorderPixel)
			}
		}
	}
}

func (m *Manager) snapshot() ipc.Snapshot {
	snap := ipc.Snapshot{
		ActiveWorkspace: m.state.CurrentWorkspace().Index,
		Focused:         uint32(m.state.CurrentWorkspace().Focus),
	}
	for _, ws := range m.state.Workspaces {
		info := ipc.WorkspaceInfo{
			Index:   ws.Index,
			Monitor: m.state.Monitors[ws.Monitor].Name,
			Layout:  ws.Layout.Kind.String(),
			Visible: m.state.WorkspaceVisible(ws),
		}
		for _, h := range ws.Clients {
			c, ok := m.state.Client(h)
			if !ok {
				continue
			}
			info.Clients = append(info.Clients, ipc.ClientInfo{
				Window:   uint32(h),
				Title:    c.Title,
				State:    c.State.String(),
				Urgent:   c.Urgent,
				Floating: c.Floating(),
				PID:      c.PID,
			})
		}
		snap.Workspaces = append(snap.Workspaces, info)
	}
	return snap
}

func (m *Manager) publishSnapshot() {
	bus.Publish(m.snapshot())
}

func (m *Manager) status() *ipc.StatusData {
	monitors := make([]string, 0, len(m.state.Monitors))
	for _, mon := range m.state.Monitors {
		monitors = append(monitors, mon.Name)
	}
	return &ipc.StatusData{
		Version:       build.Current.Version,
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Monitors:      monitors,
		Snapshot:      m.snapshot(),
	}
}

// shutdown returns every managed window to the root at its pre-manage
// geometry and releases all grabs. Runs exactly once, on loop exit.
func (m *Manager) shutdown() {
	for _, t := range m.closePending {
		t.Stop()
	}

	handles := make([]xproto.Window, 0, len(m.state.Clients))
	for h := range m.state.Clients {
		handles = append(handles, h)
	}
	for _, h := range handles {
		c, ok := m.state.Client(h)
		if !ok {
			continue
		}
		m.state.RemoveClient(h)

		m.conn.ReparentToRoot(h, c.OrigRect.X, c.OrigRect.Y)
		m.conn.ApplyGeometry(h, c.OrigRect)
		m.conn.SetBorderWidth(h, c.OrigBorder)
		m.setICCCMState(h, x11.WMStateNormal)
		m.conn.MapWindow(h)
		if c.Frame != 0 {
			m.conn.DestroyWindow(c.Frame)
		}
	}

	m.conn.UngrabAllKeys()
	m.conn.ClearInputFocus()
	m.publishActiveWindow(0)
	m.publishClientList()
	m.conn.Flush()

	slog.Info("Window manager shut down", "restored", len(handles))
}
