// Package ipc carries commands from the control client and state snapshots to
// the bar over a session-scoped unix socket. Frames are length-prefixed: a
// big-endian uint32 length, a one-byte tag, then a CBOR payload whose shape
// depends on the tag.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

type Tag byte

const (
	TagFocusNext Tag = iota + 1
	TagFocusPrev
	TagSwitchWorkspace
	TagMoveToWorkspace
	TagToggleFloat
	TagToggleFullscreen
	TagSetLayout
	TagClose
	TagForceClose
	TagQuit
	TagSubscribe
	TagStatus
)

const (
	TagAck Tag = iota + 0x80
	TagError
	TagSnapshot
	TagStatusData
)

func (t Tag) String() string {
	switch t {
	case TagFocusNext:
		return "focus-next"
	case TagFocusPrev:
		return "focus-prev"
	case TagSwitchWorkspace:
		return "switch-workspace"
	case TagMoveToWorkspace:
		return "move-to-workspace"
	case TagToggleFloat:
		return "toggle-float"
	case TagToggleFullscreen:
		return "toggle-fullscreen"
	case TagSetLayout:
		return "set-layout"
	case TagClose:
		return "close"
	case TagForceClose:
		return "force-close"
	case TagQuit:
		return "quit"
	case TagSubscribe:
		return "subscribe"
	case TagStatus:
		return "status"
	case TagAck:
		return "ack"
	case TagError:
		return "error"
	case TagSnapshot:
		return "snapshot"
	case TagStatusData:
		return "status-data"
	default:
		return fmt.Sprintf("tag-%#02x", byte(t))
	}
}

// Command is the closed set of user actions the reactor accepts. Each variant
// carries its own argument shape.
type Command interface {
	Tag() Tag
}

type FocusNext struct{}
type FocusPrev struct{}

type SwitchWorkspace struct {
	// Index is 1-based on the wire, matching what users type.
	Index int `cbor:"index"`
}

type MoveToWorkspace struct {
	Index int `cbor:"index"`
}

type ToggleFloat struct{}
type ToggleFullscreen struct{}

type SetLayout struct {
	Name string `cbor:"name"`
}

type Close struct{}
type ForceClose struct{}
type Quit struct{}
type Subscribe struct{}
type Status struct{}

func (FocusNext) Tag() Tag        { return TagFocusNext }
func (FocusPrev) Tag() Tag        { return TagFocusPrev }
func (SwitchWorkspace) Tag() Tag  { return TagSwitchWorkspace }
func (MoveToWorkspace) Tag() Tag  { return TagMoveToWorkspace }
func (ToggleFloat) Tag() Tag      { return TagToggleFloat }
func (ToggleFullscreen) Tag() Tag { return TagToggleFullscreen }
func (SetLayout) Tag() Tag        { return TagSetLayout }
func (Close) Tag() Tag            { return TagClose }
func (ForceClose) Tag() Tag       { return TagForceClose }
func (Quit) Tag() Tag             { return TagQuit }
func (Subscribe) Tag() Tag        { return TagSubscribe }
func (Status) Tag() Tag           { return TagStatus }

// Snapshot is the session state published to bar subscribers on every state
// change.
type Snapshot struct {
	ActiveWorkspace int             `cbor:"active_workspace"`
	Focused         uint32          `cbor:"focused"`
	Workspaces      []WorkspaceInfo `cbor:"workspaces"`
}

type WorkspaceInfo struct {
	Index   int          `cbor:"index"`
	Monitor string       `cbor:"monitor"`
	Layout  string       `cbor:"layout"`
	Visible bool         `cbor:"visible"`
	Clients []ClientInfo `cbor:"clients"`
}

type ClientInfo struct {
	Window   uint32 `cbor:"window"`
	Title    string `cbor:"title"`
	State    string `cbor:"state"`
	Urgent   bool   `cbor:"urgent"`
	Floating bool   `cbor:"floating"`
	PID      int    `cbor:"pid,omitempty"`
}

type ErrorReply struct {
	Message string `cbor:"message"`
}

type StatusData struct {
	Version       string   `cbor:"version"`
	UptimeSeconds int64    `cbor:"uptime_seconds"`
	Monitors      []string `cbor:"monitors"`
	Snapshot      Snapshot `cbor:"snapshot"`
}

// Frames are capped well above any real payload; a length beyond the cap is
// treated as a malformed frame and drops the connection.
const maxFrameSize = 1 << 20

var encMode cbor.EncMode

func init() {
	var err error
	// Core Deterministic Encoding: same logical data, identical bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ipc: CBOR encoder initialization failed: " + err.Error())
	}
}

func WriteFrame(w io.Writer, tag Tag, payload any) error {
	body, err := encMode.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ipc: encode %s: %w", tag, err)
	}

	header := make([]byte, 5)
	binary.BigEndian.PutUint32(header, uint32(1+len(body)))
	header[4] = byte(tag)

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func ReadFrame(r io.Reader) (Tag, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 || length > maxFrameSize {
		return 0, nil, fmt.Errorf("ipc: malformed frame length %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}

	return Tag(body[0]), body[1:], nil
}

func WriteCommand(w io.Writer, cmd Command) error {
	return WriteFrame(w, cmd.Tag(), cmd)
}

// DecodeCommand turns a received frame back into its command variant. Unknown
// tags and undecodable payloads are malformed frames.
func DecodeCommand(tag Tag, payload []byte) (Command, error) {
	decode := func(v Command) (Command, error) {
		if err := cbor.Unmarshal(payload, v); err != nil {
			return nil, fmt.Errorf("ipc: decode %s: %w", tag, err)
		}
		return v, nil
	}

	switch tag {
	case TagFocusNext:
		return FocusNext{}, nil
	case TagFocusPrev:
		return FocusPrev{}, nil
	case TagSwitchWorkspace:
		cmd, err := decode(&SwitchWorkspace{})
		if err != nil {
			return nil, err
		}
		return *cmd.(*SwitchWorkspace), nil
	case TagMoveToWorkspace:
		cmd, err := decode(&MoveToWorkspace{})
		if err != nil {
			return nil, err
		}
		return *cmd.(*MoveToWorkspace), nil
	case TagToggleFloat:
		return ToggleFloat{}, nil
	case TagToggleFullscreen:
		return ToggleFullscreen{}, nil
	case TagSetLayout:
		cmd, err := decode(&SetLayout{})
		if err != nil {
			return nil, err
		}
		return *cmd.(*SetLayout), nil
	case TagClose:
		return Close{}, nil
	case TagForceClose:
		return ForceClose{}, nil
	case TagQuit:
		return Quit{}, nil
	case TagSubscribe:
		return Subscribe{}, nil
	case TagStatus:
		return Status{}, nil
	default:
		return nil, fmt.Errorf("ipc: unknown command tag %#02x", byte(tag))
	}
}
