package xwm

import (
	"math"

	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/jezek/xgb/xproto"
)

type LayoutKind int

const (
	LayoutMasterStack LayoutKind = iota
	LayoutMonocle
	LayoutGrid
	LayoutFloating
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutMonocle:
		return config.LayoutMonocle
	case LayoutGrid:
		return config.LayoutGrid
	case LayoutFloating:
		return config.LayoutFloating
	default:
		return config.LayoutMasterStack
	}
}

func LayoutKindFromName(name string) (LayoutKind, bool) {
	switch name {
	case config.LayoutMasterStack:
		return LayoutMasterStack, true
	case config.LayoutMonocle:
		return LayoutMonocle, true
	case config.LayoutGrid:
		return LayoutGrid, true
	case config.LayoutFloating:
		return LayoutFloating, true
	}
	return 0, false
}

type LayoutSpec struct {
	Kind        LayoutKind
	MasterRatio float64
	Gap         int
	Border      int
}

// Compute maps each handle to an outer frame rectangle within usable. It is a
// pure function of its inputs: identical inputs always produce identical
// output, and layout-affecting mutations recompute rather than patch.
//
// The tiled kinds partition usable exactly before gap insets are subtracted
// symmetrically from each rectangle; integer remainders go to the last
// stacked client, row or column.
func Compute(handles []xproto.Window, spec LayoutSpec, usable x11.Rect) map[xproto.Window]x11.Rect {
	out := make(map[xproto.Window]x11.Rect, len(handles))
	n := len(handles)
	if n == 0 || usable.Empty() {
		return out
	}

	switch spec.Kind {
	case LayoutFloating:
		// Passthrough: stored geometry stays authoritative.
		return out

	case LayoutMonocle:
		for _, h := range handles {
			out[h] = insetRect(usable, spec.Gap)
		}
		return out

	case LayoutGrid:
		rows := int(math.Ceil(math.Sqrt(float64(n))))
		cols := (n + rows - 1) / rows

		cellW := usable.W / cols
		cellH := usable.H / rows
		remW := usable.W - cellW*cols
		remH := usable.H - cellH*rows

		for i, h := range handles {
			row, col := i/cols, i%cols
			r := x11.Rect{
				X: usable.X + col*cellW,
				Y: usable.Y + row*cellH,
				W: cellW,
				H: cellH,
			}
			if col == cols-1 {
				r.W += remW
			}
			if row == rows-1 {
				r.H += remH
			}
			out[h] = insetRect(r, spec.Gap)
		}
		return out

	default: // master-stack
		if n == 1 {
			out[handles[0]] = insetRect(usable, spec.Gap)
			return out
		}

		masterW := int(float64(usable.W) * spec.MasterRatio)
		out[handles[0]] = insetRect(x11.Rect{
			X: usable.X, Y: usable.Y,
			W: masterW, H: usable.H,
		}, spec.Gap)

		stack := handles[1:]
		stackH := usable.H / len(stack)
		rem := usable.H - stackH*len(stack)
		y := usable.Y
		for i, h := range stack {
			hgt := stackH
			if i == len(stack)-1 {
				hgt += rem
			}
			out[h] = insetRect(x11.Rect{
				X: usable.X + masterW, Y: y,
				W: usable.W - masterW, H: hgt,
			}, spec.Gap)
			y += hgt
		}
		return out
	}
}

// insetRect shrinks r by half the gap on the leading edges and the remaining
// half on the trailing edges, so expanding every rect by its insets restores
// the exact partition.
func insetRect(r x11.Rect, gap int) x11.Rect {
	if gap <= 0 {
		return r
	}
	lead := gap / 2
	trail := gap - lead
	r.X += lead
	r.Y += lead
	r.W -= lead + trail
	r.H -= lead + trail
	if r.W < 1 {
		r.W = 1
	}
	if r.H < 1 {
		r.H = 1
	}
	return r
}
