package x11

import (
	"fmt"

	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/res"
	"github.com/jezek/xgb/xproto"
)

// Output is one connected monitor as reported by RandR.
type Output struct {
	Name    string
	Rect    Rect
	Primary bool
}

// QueryOutputs walks the current CRTC set and returns every active output.
// A server without any active CRTC (headless during hotplug) falls back to a
// single output covering the root screen.
func (c *Conn) QueryOutputs() ([]Output, error) {
	resources, err := randr.GetScreenResourcesCurrent(c.XGB, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XGB, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var outputs []Output
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XGB, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("crtc-%d", crtc)
		isPrimary := false
		for _, out := range info.Outputs {
			if outputInfo, err := randr.GetOutputInfo(c.XGB, out, resources.ConfigTimestamp).Reply(); err == nil {
				name = string(outputInfo.Name)
			}
			if out == primary {
				isPrimary = true
			}
		}

		outputs = append(outputs, Output{
			Name: name,
			Rect: Rect{
				X: int(info.X), Y: int(info.Y),
				W: int(info.Width), H: int(info.Height),
			},
			Primary: isPrimary,
		})
	}

	if len(outputs) == 0 {
		outputs = append(outputs, Output{
			Name: "screen",
			Rect: Rect{
				X: 0, Y: 0,
				W: int(c.Screen.WidthInPixels), H: int(c.Screen.HeightInPixels),
			},
			Primary: true,
		})
	}

	return outputs, nil
}

// ClientPID attributes a client window to its owning process via X-Resource,
// falling back to the client-supplied _NET_WM_PID. Zero means unknown.
func (c *Conn) ClientPID(wid xproto.Window) int {
	if c.haveRes {
		spec := []res.ClientIdSpec{{
			Client: uint32(wid),
			Mask:   res.ClientIdMaskLocalClientPID,
		}}
		if reply, err := res.QueryClientIds(c.XGB, 1, spec).Reply(); err == nil {
			for _, id := range reply.Ids {
				if id.Spec.Mask&res.ClientIdMaskLocalClientPID != 0 && len(id.Value) > 0 {
					return int(id.Value[0])
				}
			}
		}
	}

	if vals, err := c.PropCard32s(wid, c.Atoms.NetWMPID); err == nil && len(vals) > 0 {
		return int(vals[0])
	}
	return 0
}
