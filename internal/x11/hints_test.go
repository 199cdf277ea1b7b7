package x11

import "testing"

func sizeHintsRaw(flags uint32, fill func(raw []uint32)) []uint32 {
	raw := make([]uint32, 18)
	raw[0] = flags
	if fill != nil {
		fill(raw)
	}
	return raw
}

func TestParseSizeHintsAbsent(t *testing.T) {
	h := ParseSizeHints(nil)
	if h.HasMin || h.HasMax || h.HasInc {
		t.Fatalf("absent property should yield zero hints, got %+v", h)
	}

	r := h.Constrain(Rect{W: 123, H: 456})
	if r.W != 123 || r.H != 456 {
		t.Fatalf("zero hints must not clamp, got %v", r)
	}
}

func TestParseSizeHintsBaseDefaultsToMin(t *testing.T) {
	raw := sizeHintsRaw(sizeHintPMinSize, func(raw []uint32) {
		raw[5], raw[6] = 200, 100
	})
	h := ParseSizeHints(raw)
	if !h.HasMin || h.MinW != 200 || h.MinH != 100 {
		t.Fatalf("min not parsed: %+v", h)
	}
	if h.BaseW != 200 || h.BaseH != 100 {
		t.Fatalf("base should default to min, got %d x %d", h.BaseW, h.BaseH)
	}
}

func TestConstrainOrder(t *testing.T) {
	raw := sizeHintsRaw(sizeHintPMinSize|sizeHintPMaxSize|sizeHintPResizeInc|sizeHintPBaseSize, func(raw []uint32) {
		raw[5], raw[6] = 100, 80 // min
		raw[7], raw[8] = 600, 400 // max
		raw[9], raw[10] = 7, 13 // inc
		raw[15], raw[16] = 10, 10 // base
	})
	h := ParseSizeHints(raw)

	// Increments snap down from base, then min and max clamp.
	r := h.Constrain(Rect{W: 333, H: 333})
	if (r.W-10)%7 != 0 {
		t.Fatalf("width %d not on increment grid", r.W)
	}
	if (r.H-10)%13 != 0 {
		t.Fatalf("height %d not on increment grid", r.H)
	}

	r = h.Constrain(Rect{W: 5, H: 5})
	if r.W != 100 || r.H != 80 {
		t.Fatalf("min clamp gave %v, want 100x80", r)
	}

	r = h.Constrain(Rect{W: 5000, H: 5000})
	if r.W > 600 || r.H > 400 {
		t.Fatalf("max clamp gave %v", r)
	}
}

func TestParseWMHintsDefaults(t *testing.T) {
	h := ParseWMHints(nil)
	if !h.AcceptsInput {
		t.Fatal("absent WM_HINTS must default to accepting input")
	}
	if h.Urgent || h.StartIconic {
		t.Fatalf("absent WM_HINTS should set nothing else, got %+v", h)
	}
}

func TestParseWMHints(t *testing.T) {
	h := ParseWMHints([]uint32{wmHintInput | wmHintState | wmHintUrgency, 0, WMStateIconic})
	if h.AcceptsInput {
		t.Fatal("input flag with value 0 should report no input")
	}
	if !h.StartIconic {
		t.Fatal("iconic initial state not detected")
	}
	if !h.Urgent {
		t.Fatal("urgency flag not detected")
	}
}

func TestParseStrutPartial(t *testing.T) {
	raw := []uint32{0, 0, 30, 0, 0, 0, 0, 0, 100, 1800, 0, 0}
	s, ok := ParseStrutPartial(raw)
	if !ok {
		t.Fatal("12-value strut rejected")
	}
	if s.Top != 30 || s.TopStartX != 100 || s.TopEndX != 1800 {
		t.Fatalf("got %+v", s)
	}

	if _, ok := ParseStrutPartial(raw[:11]); ok {
		t.Fatal("short strut accepted")
	}
}

func TestParseStrutLegacyFullBand(t *testing.T) {
	s, ok := ParseStrut([]uint32{0, 0, 24, 0}, 1920, 1080)
	if !ok {
		t.Fatal("legacy strut rejected")
	}
	if s.Top != 24 {
		t.Fatalf("top %d, want 24", s.Top)
	}
	if s.TopStartX != 0 || s.TopEndX != 1919 {
		t.Fatalf("legacy band should span the root edge, got %d..%d", s.TopStartX, s.TopEndX)
	}
}

func TestStrutEmpty(t *testing.T) {
	if !(Strut{}).Empty() {
		t.Fatal("zero strut should be empty")
	}
	if (Strut{Top: 1}).Empty() {
		t.Fatal("non-zero strut reported empty")
	}
}
