package xwm

import (
	"reflect"
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

func handles(n int) []xproto.Window {
	hs := make([]xproto.Window, n)
	for i := range hs {
		hs[i] = xproto.Window(i + 1)
	}
	return hs
}

func TestComputeMasterStack(t *testing.T) {
	usable := x11.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	spec := LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.5}

	out := Compute(handles(3), spec, usable)

	want := map[xproto.Window]x11.Rect{
		1: {X: 0, Y: 0, W: 960, H: 1080},
		2: {X: 960, Y: 0, W: 960, H: 540},
		3: {X: 960, Y: 540, W: 960, H: 540},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestComputeMasterStackSingleClient(t *testing.T) {
	usable := x11.Rect{X: 10, Y: 20, W: 800, H: 600}
	spec := LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.6}

	out := Compute(handles(1), spec, usable)

	if got := out[1]; got != usable {
		t.Fatalf("single client should take the whole usable area, got %v", got)
	}
}

func TestComputeMasterStackPartitionExact(t *testing.T) {
	usable := x11.Rect{X: 3, Y: 7, W: 1001, H: 757}
	spec := LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.55}

	out := Compute(handles(5), spec, usable)

	area := 0
	for _, r := range out {
		area += r.W * r.H
	}
	if want := usable.W * usable.H; area != want {
		t.Fatalf("partition area %d, want %d", area, want)
	}

	// Stack heights must chain without holes.
	y := usable.Y
	for _, h := range handles(5)[1:] {
		r := out[h]
		if r.Y != y {
			t.Fatalf("stack window %d starts at y=%d, want %d", h, r.Y, y)
		}
		y += r.H
	}
	if y != usable.Y+usable.H {
		t.Fatalf("stack ends at y=%d, want %d", y, usable.Y+usable.H)
	}
}

func TestComputeGrid(t *testing.T) {
	usable := x11.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	spec := LayoutSpec{Kind: LayoutGrid}

	out := Compute(handles(4), spec, usable)

	want := map[xproto.Window]x11.Rect{
		1: {X: 0, Y: 0, W: 960, H: 540},
		2: {X: 960, Y: 0, W: 960, H: 540},
		3: {X: 0, Y: 540, W: 960, H: 540},
		4: {X: 960, Y: 540, W: 960, H: 540},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestComputeGridRemainders(t *testing.T) {
	usable := x11.Rect{X: 0, Y: 0, W: 1001, H: 701}
	spec := LayoutSpec{Kind: LayoutGrid}

	out := Compute(handles(3), spec, usable)

	// 3 clients: 2 rows, 2 cols. Last column and last row absorb remainders.
	if r := out[2]; r.X+r.W != usable.W {
		t.Fatalf("last column should reach the right edge, got %v", r)
	}
	if r := out[3]; r.Y+r.H != usable.H {
		t.Fatalf("last row should reach the bottom edge, got %v", r)
	}
}

func TestComputeMonocle(t *testing.T) {
	usable := x11.Rect{X: 5, Y: 5, W: 640, H: 480}
	out := Compute(handles(3), LayoutSpec{Kind: LayoutMonocle}, usable)

	for h, r := range out {
		if r != usable {
			t.Fatalf("monocle window %d got %v, want %v", h, r, usable)
		}
	}
}

func TestComputeFloatingPassthrough(t *testing.T) {
	out := Compute(handles(3), LayoutSpec{Kind: LayoutFloating}, x11.Rect{W: 800, H: 600})
	if len(out) != 0 {
		t.Fatalf("floating layout should not place anything, got %v", out)
	}
}

func TestComputeEmpty(t *testing.T) {
	out := Compute(nil, LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.5}, x11.Rect{W: 800, H: 600})
	if len(out) != 0 {
		t.Fatalf("no handles should yield no placements, got %v", out)
	}
}

func TestComputeIdempotent(t *testing.T) {
	usable := x11.Rect{X: 0, Y: 0, W: 1366, H: 768}
	spec := LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.5, Gap: 8}
	hs := handles(4)

	first := Compute(hs, spec, usable)
	second := Compute(hs, spec, usable)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different output:\n%v\n%v", first, second)
	}
}

// Gap insets are split between leading and trailing edges so that expanding
// every rectangle by its own insets reproduces the gapless partition exactly.
func TestComputeGapRestorable(t *testing.T) {
	usable := x11.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	hs := handles(3)
	gap := 10
	lead := gap / 2
	trail := gap - lead

	plain := Compute(hs, LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.5}, usable)
	gapped := Compute(hs, LayoutSpec{Kind: LayoutMasterStack, MasterRatio: 0.5, Gap: gap}, usable)

	for _, h := range hs {
		g := gapped[h]
		restored := x11.Rect{
			X: g.X - lead,
			Y: g.Y - lead,
			W: g.W + lead + trail,
			H: g.H + lead + trail,
		}
		if restored != plain[h] {
			t.Fatalf("window %d: expanding %v gives %v, want %v", h, g, restored, plain[h])
		}
	}
}
