package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Named keysyms from the recognized key table. Letters and digits map to
// their latin keysyms directly.
var namedKeysyms = map[string]xproto.Keysym{
	"return":    0xff0d,
	"space":     0x0020,
	"tab":       0xff09,
	"escape":    0xff1b,
	"backspace": 0xff08,
	"delete":    0xffff,
	"left":      0xff51,
	"up":        0xff52,
	"right":     0xff53,
	"down":      0xff54,
}

func KeysymForName(name string) (xproto.Keysym, bool) {
	if len(name) == 1 {
		c := name[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return xproto.Keysym(c), true
		}
	}
	sym, ok := namedKeysyms[name]
	return sym, ok
}

// KeyTable is the server's keycode to keysym mapping, reloaded on
// MappingNotify.
type KeyTable struct {
	min     xproto.Keycode
	perCode int
	keysyms []xproto.Keysym
}

func (c *Conn) LoadKeyTable() (*KeyTable, error) {
	setup := xproto.Setup(c.XGB)
	min, max := setup.MinKeycode, setup.MaxKeycode

	reply, err := xproto.GetKeyboardMapping(c.XGB, min, byte(max-min+1)).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: keyboard mapping: %w", err)
	}

	return &KeyTable{
		min:     min,
		perCode: int(reply.KeysymsPerKeycode),
		keysyms: reply.Keysyms,
	}, nil
}

// KeycodeFor returns the first keycode producing sym in its unshifted or
// shifted column, or 0 when the keyboard has no such key.
func (t *KeyTable) KeycodeFor(sym xproto.Keysym) xproto.Keycode {
	if t.perCode == 0 {
		return 0
	}
	for i := 0; i*t.perCode < len(t.keysyms); i++ {
		cols := t.perCode
		if cols > 2 {
			cols = 2
		}
		for col := 0; col < cols; col++ {
			if t.keysyms[i*t.perCode+col] == sym {
				return t.min + xproto.Keycode(i)
			}
		}
	}
	return 0
}

// GrabKey grabs keycode+mods on the root window, including the Lock and
// NumLock variants so bindings fire regardless of lock state.
func (c *Conn) GrabKey(keycode xproto.Keycode, mods uint16) {
	for _, extra := range []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2} {
		xproto.GrabKey(c.XGB, true, c.Root, mods|extra, keycode,
			xproto.GrabModeAsync, xproto.GrabModeAsync)
	}
}

func (c *Conn) UngrabAllKeys() {
	xproto.UngrabKey(c.XGB, xproto.GrabAny, c.Root, xproto.ModMaskAny)
}
