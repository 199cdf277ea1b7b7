package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// AtomCache holds every protocol atom the manager uses, resolved once during
// Connect in a single pipelined pass. Read-only afterward.
type AtomCache struct {
	WMProtocols    xproto.Atom
	WMDeleteWindow xproto.Atom
	WMTakeFocus    xproto.Atom
	WMState        xproto.Atom
	WMChangeState  xproto.Atom
	UTF8String     xproto.Atom

	NetSupported                xproto.Atom
	NetSupportingWMCheck        xproto.Atom
	NetWMName                   xproto.Atom
	NetActiveWindow             xproto.Atom
	NetClientList               xproto.Atom
	NetCurrentDesktop           xproto.Atom
	NetNumberOfDesktops         xproto.Atom
	NetWMDesktop                xproto.Atom
	NetWMState                  xproto.Atom
	NetWMStateFullscreen        xproto.Atom
	NetWMStateSticky            xproto.Atom
	NetWMStateDemandsAttention  xproto.Atom
	NetWMStateHidden            xproto.Atom
	NetWMWindowType             xproto.Atom
	NetWMWindowTypeNormal       xproto.Atom
	NetWMWindowTypeDialog       xproto.Atom
	NetWMWindowTypeDock         xproto.Atom
	NetWMWindowTypeDesktop      xproto.Atom
	NetWMWindowTypeUtility      xproto.Atom
	NetWMWindowTypeToolbar      xproto.Atom
	NetWMWindowTypeMenu         xproto.Atom
	NetWMWindowTypeSplash       xproto.Atom
	NetWMWindowTypeNotification xproto.Atom
	NetWMStrut                  xproto.Atom
	NetWMStrutPartial           xproto.Atom
	NetFrameExtents             xproto.Atom
	NetCloseWindow              xproto.Atom
	NetWMPID                    xproto.Atom
}

// ResolveAtoms interns the full atom set. All cookies are issued before any
// reply is collected so resolution costs one round trip.
func ResolveAtoms(x *xgb.Conn) (*AtomCache, error) {
	cache := &AtomCache{}

	names := []struct {
		name string
		dest *xproto.Atom
	}{
		{"WM_PROTOCOLS", &cache.WMProtocols},
		{"WM_DELETE_WINDOW", &cache.WMDeleteWindow},
		{"WM_TAKE_FOCUS", &cache.WMTakeFocus},
		{"WM_STATE", &cache.WMState},
		{"WM_CHANGE_STATE", &cache.WMChangeState},
		{"UTF8_STRING", &cache.UTF8String},
		{"_NET_SUPPORTED", &cache.NetSupported},
		{"_NET_SUPPORTING_WM_CHECK", &cache.NetSupportingWMCheck},
		{"_NET_WM_NAME", &cache.NetWMName},
		{"_NET_ACTIVE_WINDOW", &cache.NetActiveWindow},
		{"_NET_CLIENT_LIST", &cache.NetClientList},
		{"_NET_CURRENT_DESKTOP", &cache.NetCurrentDesktop},
		{"_NET_NUMBER_OF_DESKTOPS", &cache.NetNumberOfDesktops},
		{"_NET_WM_DESKTOP", &cache.NetWMDesktop},
		{"_NET_WM_STATE", &cache.NetWMState},
		{"_NET_WM_STATE_FULLSCREEN", &cache.NetWMStateFullscreen},
		{"_NET_WM_STATE_STICKY", &cache.NetWMStateSticky},
		{"_NET_WM_STATE_DEMANDS_ATTENTION", &cache.NetWMStateDemandsAttention},
		{"_NET_WM_STATE_HIDDEN", &cache.NetWMStateHidden},
		{"_NET_WM_WINDOW_TYPE", &cache.NetWMWindowType},
		{"_NET_WM_WINDOW_TYPE_NORMAL", &cache.NetWMWindowTypeNormal},
		{"_NET_WM_WINDOW_TYPE_DIALOG", &cache.NetWMWindowTypeDialog},
		{"_NET_WM_WINDOW_TYPE_DOCK", &cache.NetWMWindowTypeDock},
		{"_NET_WM_WINDOW_TYPE_DESKTOP", &cache.NetWMWindowTypeDesktop},
		{"_NET_WM_WINDOW_TYPE_UTILITY", &cache.NetWMWindowTypeUtility},
		{"_NET_WM_WINDOW_TYPE_TOOLBAR", &cache.NetWMWindowTypeToolbar},
		{"_NET_WM_WINDOW_TYPE_MENU", &cache.NetWMWindowTypeMenu},
		{"_NET_WM_WINDOW_TYPE_SPLASH", &cache.NetWMWindowTypeSplash},
		{"_NET_WM_WINDOW_TYPE_NOTIFICATION", &cache.NetWMWindowTypeNotification},
		{"_NET_WM_STRUT", &cache.NetWMStrut},
		{"_NET_WM_STRUT_PARTIAL", &cache.NetWMStrutPartial},
		{"_NET_FRAME_EXTENTS", &cache.NetFrameExtents},
		{"_NET_CLOSE_WINDOW", &cache.NetCloseWindow},
		{"_NET_WM_PID", &cache.NetWMPID},
	}

	cookies := make([]xproto.InternAtomCookie, len(names))
	for i, n := range names {
		cookies[i] = xproto.InternAtom(x, false, uint16(len(n.name)), n.name)
	}

	for i, n := range names {
		reply, err := cookies[i].Reply()
		if err != nil {
			return nil, fmt.Errorf("x11: intern atom %s: %w", n.name, err)
		}
		if reply.Atom == xproto.AtomNone {
			return nil, fmt.Errorf("x11: required atom %s did not resolve", n.name)
		}
		*n.dest = reply.Atom
	}

	return cache, nil
}
