package x11

import (
	"github.com/jezek/xgb/xproto"
)

// ICCCM/EWMH property interpretation. Parsing is pure and total: every
// optional hint has an explicit default so fallback behavior is auditable
// without a live connection.

// WM_SIZE_HINTS flag bits (ICCCM 4.1.2.3).
const (
	sizeHintPMinSize   = 1 << 4
	sizeHintPMaxSize   = 1 << 5
	sizeHintPResizeInc = 1 << 6
	sizeHintPBaseSize  = 1 << 8
)

// WM_HINTS flag bits (ICCCM 4.1.2.4).
const (
	wmHintInput   = 1 << 0
	wmHintState   = 1 << 1
	wmHintUrgency = 1 << 8
)

// ICCCM WM_STATE values.
const (
	WMStateWithdrawn = 0
	WMStateNormal    = 1
	WMStateIconic    = 3
)

type SizeHints struct {
	HasMin, HasMax, HasInc bool
	MinW, MinH             int
	MaxW, MaxH             int
	IncW, IncH             int
	BaseW, BaseH           int
}

// ParseSizeHints decodes a raw WM_NORMAL_HINTS property. Short or absent data
// yields the zero value: no clamping of any kind.
func ParseSizeHints(raw []uint32) SizeHints {
	var h SizeHints
	if len(raw) < 18 {
		return h
	}

	flags := raw[0]
	if flags&sizeHintPMinSize != 0 {
		h.HasMin = true
		h.MinW, h.MinH = int(raw[5]), int(raw[6])
	}
	if flags&sizeHintPMaxSize != 0 {
		h.HasMax = true
		h.MaxW, h.MaxH = int(raw[7]), int(raw[8])
	}
	if flags&sizeHintPResizeInc != 0 && raw[9] > 0 && raw[10] > 0 {
		h.HasInc = true
		h.IncW, h.IncH = int(raw[9]), int(raw[10])
	}
	if flags&sizeHintPBaseSize != 0 {
		h.BaseW, h.BaseH = int(raw[15]), int(raw[16])
	} else if h.HasMin {
		// ICCCM: base defaults to min when absent.
		h.BaseW, h.BaseH = h.MinW, h.MinH
	}
	return h
}

// Constrain applies min/max/increment hints to a floating geometry. Position
// is untouched. Tiled geometry never passes through here: tiling overrides
// hints, a documented interoperability trade-off.
func (h SizeHints) Constrain(r Rect) Rect {
	w, hgt := r.W, r.H

	if h.HasInc {
		if base := h.BaseW; w > base {
			w = base + ((w-base)/h.IncW)*h.IncW
		}
		if base := h.BaseH; hgt > base {
			hgt = base + ((hgt-base)/h.IncH)*h.IncH
		}
	}
	if h.HasMin {
		if w < h.MinW {
			w = h.MinW
		}
		if hgt < h.MinH {
			hgt = h.MinH
		}
	}
	if h.HasMax {
		if h.MaxW > 0 && w > h.MaxW {
			w = h.MaxW
		}
		if h.MaxH > 0 && hgt > h.MaxH {
			hgt = h.MaxH
		}
	}

	r.W, r.H = w, hgt
	return r
}

type WMHints struct {
	// AcceptsInput defaults to true: a client without WM_HINTS gets real focus.
	AcceptsInput bool
	Urgent       bool
	StartIconic  bool
}

func ParseWMHints(raw []uint32) WMHints {
	h := WMHints{AcceptsInput: true}
	if len(raw) < 1 {
		return h
	}
	flags := raw[0]
	if flags&wmHintInput != 0 && len(raw) > 1 {
		h.AcceptsInput = raw[1] != 0
	}
	if flags&wmHintState != 0 && len(raw) > 2 {
		h.StartIconic = raw[2] == WMStateIconic
	}
	h.Urgent = flags&wmHintUrgency != 0
	return h
}

type Strut struct {
	Left, Right, Top, Bottom int

	LeftStartY, LeftEndY     int
	RightStartY, RightEndY   int
	TopStartX, TopEndX       int
	BottomStartX, BottomEndX int
}

func (s Strut) Empty() bool {
	return s.Left == 0 && s.Right == 0 && s.Top == 0 && s.Bottom == 0
}

// ParseStrutPartial decodes _NET_WM_STRUT_PARTIAL (12 values).
func ParseStrutPartial(raw []uint32) (Strut, bool) {
	if len(raw) < 12 {
		return Strut{}, false
	}
	return Strut{
		Left: int(raw[0]), Right: int(raw[1]), Top: int(raw[2]), Bottom: int(raw[3]),
		LeftStartY: int(raw[4]), LeftEndY: int(raw[5]),
		RightStartY: int(raw[6]), RightEndY: int(raw[7]),
		TopStartX: int(raw[8]), TopEndX: int(raw[9]),
		BottomStartX: int(raw[10]), BottomEndX: int(raw[11]),
	}, true
}

// ParseStrut decodes the legacy _NET_WM_STRUT (4 values); the reserved bands
// span the full root edge.
func ParseStrut(raw []uint32, rootW, rootH int) (Strut, bool) {
	if len(raw) < 4 {
		return Strut{}, false
	}
	return Strut{
		Left: int(raw[0]), Right: int(raw[1]), Top: int(raw[2]), Bottom: int(raw[3]),
		LeftStartY: 0, LeftEndY: rootH - 1,
		RightStartY: 0, RightEndY: rootH - 1,
		TopStartX: 0, TopEndX: rootW - 1,
		BottomStartX: 0, BottomEndX: rootW - 1,
	}, true
}

type WindowType int

const (
	WindowTypeNormal WindowType = iota
	WindowTypeDialog
	WindowTypeDock
	WindowTypeDesktop
	WindowTypeUtility
	WindowTypeToolbar
	WindowTypeMenu
	WindowTypeSplash
	WindowTypeNotification
)

func (t WindowType) String() string {
	switch t {
	case WindowTypeDialog:
		return "dialog"
	case WindowTypeDock:
		return "dock"
	case WindowTypeDesktop:
		return "desktop"
	case WindowTypeUtility:
		return "utility"
	case WindowTypeToolbar:
		return "toolbar"
	case WindowTypeMenu:
		return "menu"
	case WindowTypeSplash:
		return "splash"
	case WindowTypeNotification:
		return "notification"
	default:
		return "normal"
	}
}

// Protocols is the subset of WM_PROTOCOLS the manager cares about.
type Protocols struct {
	DeleteWindow bool
	TakeFocus    bool
}

// Conn-backed hint readers. Each falls back to the documented default on a
// missing or malformed property.

func (c *Conn) SizeHintsOf(wid xproto.Window) SizeHints {
	raw, err := c.PropCard32s(wid, xproto.AtomWmNormalHints)
	if err != nil {
		return SizeHints{}
	}
	return ParseSizeHints(raw)
}

func (c *Conn) WMHintsOf(wid xproto.Window) WMHints {
	raw, err := c.PropCard32s(wid, xproto.AtomWmHints)
	if err != nil {
		return WMHints{AcceptsInput: true}
	}
	return ParseWMHints(raw)
}

func (c *Conn) ProtocolsOf(wid xproto.Window) Protocols {
	atoms, err := c.PropAtoms(wid, c.Atoms.WMProtocols)
	if err != nil {
		return Protocols{}
	}
	var p Protocols
	for _, a := range atoms {
		switch a {
		case c.Atoms.WMDeleteWindow:
			p.DeleteWindow = true
		case c.Atoms.WMTakeFocus:
			p.TakeFocus = true
		}
	}
	return p
}

// TransientForOf returns the WM_TRANSIENT_FOR target, or 0 when absent.
func (c *Conn) TransientForOf(wid xproto.Window) xproto.Window {
	vals, err := c.PropCard32s(wid, xproto.AtomWmTransientFor)
	if err != nil || len(vals) == 0 {
		return 0
	}
	return xproto.Window(vals[0])
}

// WindowTypeOf reads _NET_WM_WINDOW_TYPE. The first recognized atom wins.
// A window without the property defaults to dialog when transient, else
// normal, per EWMH.
func (c *Conn) WindowTypeOf(wid xproto.Window) WindowType {
	atoms, err := c.PropAtoms(wid, c.Atoms.NetWMWindowType)
	if err != nil || len(atoms) == 0 {
		if c.TransientForOf(wid) != 0 {
			return WindowTypeDialog
		}
		return WindowTypeNormal
	}

	a := c.Atoms
	for _, atom := range atoms {
		switch atom {
		case a.NetWMWindowTypeNormal:
			return WindowTypeNormal
		case a.NetWMWindowTypeDialog:
			return WindowTypeDialog
		case a.NetWMWindowTypeDock:
			return WindowTypeDock
		case a.NetWMWindowTypeDesktop:
			return WindowTypeDesktop
		case a.NetWMWindowTypeUtility:
			return WindowTypeUtility
		case a.NetWMWindowTypeToolbar:
			return WindowTypeToolbar
		case a.NetWMWindowTypeMenu:
			return WindowTypeMenu
		case a.NetWMWindowTypeSplash:
			return WindowTypeSplash
		case a.NetWMWindowTypeNotification:
			return WindowTypeNotification
		}
	}
	return WindowTypeNormal
}

// StrutOf reads the client's reserved screen edge, preferring the partial
// form over the legacy full-width one.
func (c *Conn) StrutOf(wid xproto.Window) (Strut, bool) {
	if raw, err := c.PropCard32s(wid, c.Atoms.NetWMStrutPartial); err == nil {
		if s, ok := ParseStrutPartial(raw); ok {
			return s, true
		}
	}
	if raw, err := c.PropCard32s(wid, c.Atoms.NetWMStrut); err == nil {
		return ParseStrut(raw, int(c.Screen.WidthInPixels), int(c.Screen.HeightInPixels))
	}
	return Strut{}, false
}

// InitialStatesOf reads _NET_WM_STATE as set by the client before mapping.
func (c *Conn) InitialStatesOf(wid xproto.Window) (fullscreen, demandsAttention bool) {
	atoms, err := c.PropAtoms(wid, c.Atoms.NetWMState)
	if err != nil {
		return false, false
	}
	for _, atom := range atoms {
		switch atom {
		case c.Atoms.NetWMStateFullscreen:
			fullscreen = true
		case c.Atoms.NetWMStateDemandsAttention:
			demandsAttention = true
		}
	}
	return fullscreen, demandsAttention
}
