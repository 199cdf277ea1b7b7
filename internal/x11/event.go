package x11

import (
	"context"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// Event is the neutral protocol event the dispatcher consumes. The set is
// closed; dispatch is an exhaustive type switch.
type Event interface {
	event()
}

type MapRequest struct {
	Window xproto.Window
}

type ConfigureRequest struct {
	Window      xproto.Window
	Rect        Rect
	BorderWidth int
	// ValueMask records which fields the client actually asked for.
	ValueMask uint16
}

type UnmapNotify struct {
	Window xproto.Window
}

type DestroyNotify struct {
	Window xproto.Window
}

type PropertyNotify struct {
	Window xproto.Window
	Atom   xproto.Atom
}

type EnterNotify struct {
	Window xproto.Window
}

type ClientMessage struct {
	Window xproto.Window
	Type   xproto.Atom
	Data   [5]uint32
}

type KeyPress struct {
	Keycode   xproto.Keycode
	Modifiers uint16
}

type RandrChange struct{}

type MappingNotify struct{}

func (MapRequest) event()       {}
func (ConfigureRequest) event() {}
func (UnmapNotify) event()      {}
func (DestroyNotify) event()    {}
func (PropertyNotify) event()   {}
func (EnterNotify) event()      {}
func (ClientMessage) event()    {}
func (KeyPress) event()         {}
func (RandrChange) event()      {}
func (MappingNotify) event()    {}

// modifier bits that never matter for bindings
const ignoredMods = xproto.ModMaskLock | xproto.ModMask2

// ReceiveEvents pumps translated protocol events into eventC until the
// connection breaks or ctx is canceled. Closing eventC signals the dispatcher
// that the connection is gone, which is fatal to the session.
func (c *Conn) ReceiveEvents(ctx context.Context, eventC chan<- Event) {
	defer close(eventC)
	log := slog.With("func", "x11.Conn.ReceiveEvents")

	for {
		ev, err := c.XGB.WaitForEvent()
		if ev == nil && err == nil {
			log.Debug("exit: connection closed")
			return
		}

		if err != nil {
			// Asynchronous X errors (a request against an already destroyed
			// window, mostly) are expected churn, not connection loss.
			log.Debug("X error", "error", err)
			continue
		}

		translated, ok := c.translate(ev)
		if !ok {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- translated:
		}
	}
}

func (c *Conn) translate(ev xgb.Event) (Event, bool) {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		return MapRequest{Window: ev.Window}, true
	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window: ev.Window,
			Rect: Rect{
				X: int(ev.X), Y: int(ev.Y),
				W: int(ev.Width), H: int(ev.Height),
			},
			BorderWidth: int(ev.BorderWidth),
			ValueMask:   ev.ValueMask,
		}, true
	case xproto.UnmapNotifyEvent:
		return UnmapNotify{Window: ev.Window}, true
	case xproto.DestroyNotifyEvent:
		return DestroyNotify{Window: ev.Window}, true
	case xproto.PropertyNotifyEvent:
		return PropertyNotify{Window: ev.Window, Atom: ev.Atom}, true
	case xproto.EnterNotifyEvent:
		if ev.Mode != xproto.NotifyModeNormal {
			return nil, false
		}
		return EnterNotify{Window: ev.Event}, true
	case xproto.ClientMessageEvent:
		if ev.Format != 32 {
			return nil, false
		}
		var data [5]uint32
		copy(data[:], ev.Data.Data32)
		return ClientMessage{Window: ev.Window, Type: ev.Type, Data: data}, true
	case xproto.KeyPressEvent:
		return KeyPress{Keycode: ev.Detail, Modifiers: ev.State &^ ignoredMods}, true
	case xproto.MappingNotifyEvent:
		return MappingNotify{}, true
	case randr.ScreenChangeNotifyEvent:
		return RandrChange{}, true
	case randr.NotifyEvent:
		return RandrChange{}, true
	default:
		slog.Debug("unhandled X event", "event", ev)
		return nil, false
	}
}
