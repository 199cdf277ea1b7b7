package xwm

import (
	"log/slog"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

// Compliance layer: mirrors the state machine onto ICCCM/EWMH root and client
// properties, and turns protocol requests from clients and pagers into state
// machine operations. Property writes always happen after the state change
// they describe, within the same dispatch step.

const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	netWMStateToggle = 2
)

func (m *Manager) setICCCMState(wid xproto.Window, state uint32) {
	m.conn.ReplaceProp32(wid, m.conn.Atoms.WMState, m.conn.Atoms.WMState, state, 0)
}

// publishNetWMState rewrites _NET_WM_STATE from the client's current state.
func (m *Manager) publishNetWMState(c *Client) {
	a := m.conn.Atoms
	var atoms []uint32
	if c.State == StateFullScreen {
		atoms = append(atoms, uint32(a.NetWMStateFullscreen))
	}
	if c.State == StateHidden {
		atoms = append(atoms, uint32(a.NetWMStateHidden))
	}
	if c.Sticky {
		atoms = append(atoms, uint32(a.NetWMStateSticky))
	}
	if c.Urgent {
		atoms = append(atoms, uint32(a.NetWMStateDemandsAttention))
	}
	if len(atoms) == 0 {
		m.conn.DeleteProp(c.Window, a.NetWMState)
		return
	}
	m.conn.ReplaceProp32(c.Window, a.NetWMState, xproto.AtomAtom, atoms...)
}

func (m *Manager) publishActiveWindow(wid xproto.Window) {
	m.conn.ReplaceProp32(m.conn.Root, m.conn.Atoms.NetActiveWindow, xproto.AtomWindow, uint32(wid))
}

// publishClientList rewrites _NET_CLIENT_LIST in workspace stacking order.
func (m *Manager) publishClientList() {
	var wids []uint32
	for _, ws := range m.state.Workspaces {
		for _, h := range ws.Clients {
			wids = append(wids, uint32(h))
		}
	}
	m.conn.ReplaceProp32(m.conn.Root, m.conn.Atoms.NetClientList, xproto.AtomWindow, wids...)
}

func (m *Manager) publishDesktops() {
	a := m.conn.Atoms
	m.conn.ReplaceProp32(m.conn.Root, a.NetNumberOfDesktops, xproto.AtomCardinal, uint32(len(m.state.Workspaces)))
	m.conn.ReplaceProp32(m.conn.Root, a.NetCurrentDesktop, xproto.AtomCardinal, uint32(m.state.CurrentWorkspace().Index))
}

func (m *Manager) publishClientDesktop(c *Client) {
	// EWMH: sticky windows report the all-desktops marker.
	desktop := uint32(c.Workspace)
	if c.Sticky {
		desktop = 0xffffffff
	}
	m.conn.ReplaceProp32(c.Window, m.conn.Atoms.NetWMDesktop, xproto.AtomCardinal, desktop)
}

func (m *Manager) publishFrameExtents(c *Client) {
	b := uint32(m.cfg.BorderWidth)
	m.conn.ReplaceProp32(c.Window, m.conn.Atoms.NetFrameExtents, xproto.AtomCardinal, b, b, b, b)
}

// handleClientMessage interprets the EWMH/ICCCM request surface. Messages
// about unmanaged windows are dropped.
func (m *Manager) handleClientMessage(ev x11.ClientMessage) {
	a := m.conn.Atoms

	switch ev.Type {
	case a.NetCurrentDesktop:
		m.switchWorkspace(int(ev.Data[0]))
		return

	case a.NetCloseWindow:
		if _, ok := m.state.Client(ev.Window); ok {
			m.closeClient(ev.Window, false)
		}
		return
	}

	c, ok := m.state.Client(ev.Window)
	if !ok {
		return
	}

	switch ev.Type {
	case a.NetWMState:
		m.handleNetWMState(c, ev.Data)

	case a.NetActiveWindow:
		// Activation switches to the client's workspace, deiconifies and
		// focuses it.
		m.switchWorkspace(c.Workspace)
		if c.State == StateHidden {
			m.unhideClient(c)
		} else {
			m.focusClient(c.Window)
			m.publishSnapshot()
		}

	case a.WMChangeState:
		if ev.Data[0] == x11.WMStateIconic {
			m.hideClient(c)
		}
	}
}

func (m *Manager) handleNetWMState(c *Client, data [5]uint32) {
	a := m.conn.Atoms
	action := data[0]

	for _, prop := range []xproto.Atom{xproto.Atom(data[1]), xproto.Atom(data[2])} {
		switch prop {
		case a.NetWMStateFullscreen:
			on := action == netWMStateAdd || (action == netWMStateToggle && c.State != StateFullScreen)
			m.setFullscreen(c, on)

		case a.NetWMStateSticky:
			switch action {
			case netWMStateAdd:
				c.Sticky = true
			case netWMStateRemove:
				c.Sticky = false
			case netWMStateToggle:
				c.Sticky = !c.Sticky
			}
			m.publishNetWMState(c)
			m.publishClientDesktop(c)
			m.publishSnapshot()

		case a.NetWMStateDemandsAttention:
			switch action {
			case netWMStateAdd:
				c.Urgent = true
			case netWMStateRemove:
				c.Urgent = false
			case netWMStateToggle:
				c.Urgent = !c.Urgent
			}
			m.publishNetWMState(c)
			m.publishSnapshot()
		}
	}
}

// handlePropertyNotify reacts to clients updating their hints after mapping.
func (m *Manager) handlePropertyNotify(ev x11.PropertyNotify) {
	a := m.conn.Atoms

	if _, ok := m.state.Struts[ev.Window]; ok && (ev.Atom == a.NetWMStrut || ev.Atom == a.NetWMStrutPartial) {
		m.refreshStrut(ev.Window)
		return
	}

	c, ok := m.state.Client(ev.Window)
	if !ok {
		return
	}

	switch ev.Atom {
	case xproto.AtomWmName, a.NetWMName:
		title := m.conn.WindowTitle(c.Window)
		if title != c.Title {
			c.Title = title
			m.publishSnapshot()
		}

	case xproto.AtomWmNormalHints:
		c.Hints = m.conn.SizeHintsOf(c.Window)
		if c.State == StateFloating {
			c.FloatRect = c.Hints.Constrain(c.FloatRect)
			m.applyWorkspaces([]int{c.Workspace})
		}

	case xproto.AtomWmHints:
		hints := m.conn.WMHintsOf(c.Window)
		c.AcceptsInput = hints.AcceptsInput
		if hints.Urgent != c.Urgent {
			c.Urgent = hints.Urgent
			m.publishNetWMState(c)
			m.publishSnapshot()
		}

	case xproto.AtomWmTransientFor:
		target := m.conn.TransientForOf(c.Window)
		// A hint update that would close a transient cycle is ignored.
		if m.state.TransientChainHasCycle(c.Window, target) {
			slog.Warn("Ignoring transient-for update forming a cycle",
				"window", c.Window, "target", target)
			return
		}
		c.TransientFor = target

	case a.NetWMStrut, a.NetWMStrutPartial:
		m.refreshStrut(ev.Window)
	}
}

func (m *Manager) refreshStrut(wid xproto.Window) {
	strut, ok := m.conn.StrutOf(wid)
	if ok && !strut.Empty() {
		m.state.Struts[wid] = strut
	} else {
		delete(m.state.Struts, wid)
	}
	m.state.RecomputeUsable()
	m.applyAllVisible()
}

func (m *Manager) setFullscreen(c *Client, on bool) {
	if on == (c.State == StateFullScreen) {
		return
	}
	if on {
		c.EnterFullscreen()
		m.conn.Raise(c.Frame)
	} else {
		c.LeaveFullscreen()
	}
	m.publishNetWMState(c)
	m.applyWorkspaces([]int{c.Workspace})
	m.publishSnapshot()
}

func (m *Manager) hideClient(c *Client) {
	if c.State == StateHidden {
		return
	}
	c.EnterHidden()
	m.conn.UnmapWindow(c.Frame)
	m.setICCCMState(c.Window, x11.WMStateIconic)
	m.publishNetWMState(c)
	m.applyWorkspaces([]int{c.Workspace})
	m.publishSnapshot()
}

// unhideClient deiconifies: the client returns to whatever visible state it
// held before hiding, is re-placed, and takes focus when its workspace is on
// screen.
func (m *Manager) unhideClient(c *Client) {
	if c.State != StateHidden {
		return
	}
	c.LeaveHidden()
	m.setICCCMState(c.Window, x11.WMStateNormal)
	m.publishNetWMState(c)
	m.applyWorkspaces([]int{c.Workspace})
	if m.state.WorkspaceVisible(m.state.Workspaces[c.Workspace]) {
		m.focusClient(c.Window)
	}
	m.publishSnapshot()
}

// closeClient runs the shutdown path for one client: polite WM_DELETE_WINDOW
// when the client speaks the protocol, immediate XKillClient otherwise or when
// forced. With close_grace configured, a polite request that goes unanswered
// escalates to a kill after the grace period.
func (m *Manager) closeClient(h xproto.Window, force bool) {
	c, ok := m.state.Client(h)
	if !ok {
		return
	}

	if force || !c.Protocols.DeleteWindow {
		slog.Debug("Killing client", "window", h, "title", c.Title)
		m.conn.KillClient(c.Window)
		return
	}

	slog.Debug("Requesting client close", "window", h, "title", c.Title)
	m.conn.SendDeleteWindow(c.Window)

	if m.cfg.CloseGrace > 0 && m.closePending[h] == nil {
		m.closePending[h] = time.AfterFunc(m.cfg.CloseGrace.Std(), func() {
			// Runs off the dispatcher goroutine; re-enter through the
			// internal command channel like any other mutation.
			select {
			case m.internalC <- func() { m.escalateClose(h) }:
			case <-m.doneC:
			}
		})
	}
}

func (m *Manager) escalateClose(h xproto.Window) {
	delete(m.closePending, h)
	if _, ok := m.state.Client(h); !ok {
		return
	}
	slog.Debug("Close grace expired, killing client", "window", h)
	m.conn.KillClient(h)
}

func (m *Manager) cancelPendingClose(h xproto.Window) {
	if t, ok := m.closePending[h]; ok {
		t.Stop()
		delete(m.closePending, h)
	}
}
