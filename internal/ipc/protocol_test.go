package ipc

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestCommandRoundtrip(t *testing.T) {
	commands := []Command{
		FocusNext{},
		FocusPrev{},
		SwitchWorkspace{Index: 3},
		MoveToWorkspace{Index: 2},
		ToggleFloat{},
		ToggleFullscreen{},
		SetLayout{Name: "monocle"},
		Close{},
		ForceClose{},
		Quit{},
		Subscribe{},
		Status{},
	}

	for _, cmd := range commands {
		var buf bytes.Buffer
		if err := WriteCommand(&buf, cmd); err != nil {
			t.Fatalf("%s: write: %v", cmd.Tag(), err)
		}

		tag, payload, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("%s: read: %v", cmd.Tag(), err)
		}
		if tag != cmd.Tag() {
			t.Fatalf("tag %s, want %s", tag, cmd.Tag())
		}

		got, err := DecodeCommand(tag, payload)
		if err != nil {
			t.Fatalf("%s: decode: %v", cmd.Tag(), err)
		}
		if !reflect.DeepEqual(got, cmd) {
			t.Fatalf("decoded %#v, want %#v", got, cmd)
		}
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	snap := Snapshot{
		ActiveWorkspace: 1,
		Focused:         0x400021,
		Workspaces: []WorkspaceInfo{
			{
				Index:   0,
				Monitor: "eDP-1",
				Layout:  "master-stack",
				Visible: true,
				Clients: []ClientInfo{
					{Window: 0x400021, Title: "editor", State: "tiled", PID: 4242},
					{Window: 0x400042, Title: "terminal", State: "floating", Floating: true, Urgent: true},
				},
			},
			{Index: 1, Monitor: "eDP-1", Layout: "grid"},
		},
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, TagSnapshot, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	tag, payload, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tag != TagSnapshot {
		t.Fatalf("tag %s, want snapshot", tag)
	}

	var got Snapshot
	if err := cbor.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("decoded %#v, want %#v", got, snap)
	}
}

func TestReadFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff, byte(TagAck)})

	if _, _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for oversized frame length")
	}
}

func TestReadFrameRejectsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})

	if _, _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for zero frame length")
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var full bytes.Buffer
	if err := WriteCommand(&full, SetLayout{Name: "grid"}); err != nil {
		t.Fatal(err)
	}

	truncated := bytes.NewReader(full.Bytes()[:full.Len()-2])
	if _, _, err := ReadFrame(truncated); err == nil {
		t.Fatal("expected error for truncated frame")
	}
}

func TestDecodeCommandUnknownTag(t *testing.T) {
	if _, err := DecodeCommand(Tag(0x7f), nil); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestDecodeCommandMalformedPayload(t *testing.T) {
	if _, err := DecodeCommand(TagSetLayout, []byte{0xff, 0x00}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
