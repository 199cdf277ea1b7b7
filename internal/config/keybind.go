package config

import (
	"fmt"
	"strings"

	"github.com/jezek/xgb/xproto"
)

// KeySpec is a parsed binding value: extra modifiers on top of the global
// modifier, plus a key name from the recognized key table.
type KeySpec struct {
	Mods uint16
	Key  string
}

func ParseModifiers(spec string) (uint16, error) {
	var mask uint16
	for _, part := range strings.Split(spec, "+") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "shift":
			mask |= xproto.ModMaskShift
		case "control", "ctrl":
			mask |= xproto.ModMaskControl
		case "mod1", "alt":
			mask |= xproto.ModMask1
		case "mod2":
			mask |= xproto.ModMask2
		case "mod3":
			mask |= xproto.ModMask3
		case "mod4", "super":
			mask |= xproto.ModMask4
		case "mod5":
			mask |= xproto.ModMask5
		case "":
			return 0, fmt.Errorf("modifier spec %q: empty modifier", spec)
		default:
			return 0, fmt.Errorf("modifier spec %q: unrecognized modifier %q", spec, part)
		}
	}
	return mask, nil
}

// ParseKeySpec parses "shift+3" or "j" style binding values. The key name is
// validated against the recognized key table when bindings are resolved to
// keycodes; here only the shape and modifiers are checked.
func ParseKeySpec(spec string) (KeySpec, error) {
	parts := strings.Split(spec, "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return KeySpec{}, fmt.Errorf("key spec %q: missing key", spec)
	}

	key := strings.TrimSpace(strings.ToLower(parts[len(parts)-1]))
	ks := KeySpec{Key: key}

	if len(parts) > 1 {
		mask, err := ParseModifiers(strings.Join(parts[:len(parts)-1], "+"))
		if err != nil {
			return KeySpec{}, err
		}
		ks.Mods = mask
	}

	if !KnownKey(key) {
		return KeySpec{}, fmt.Errorf("key spec %q: unrecognized key %q", spec, key)
	}

	return ks, nil
}

// KnownKey reports whether name appears in the recognized key table:
// latin letters, digits and a small set of named keys.
func KnownKey(name string) bool {
	if len(name) == 1 {
		c := name[0]
		return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	switch name {
	case "return", "space", "tab", "escape", "backspace", "delete",
		"left", "right", "up", "down":
		return true
	}
	return false
}
