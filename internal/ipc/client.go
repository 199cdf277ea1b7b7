package ipc

import (
	"context"
	"fmt"
	"net"

	"github.com/fxamacker/cbor/v2"
)

// Client is the control-side of the socket protocol, used by the command line
// tool and by status bars.
type Client struct {
	conn net.Conn
}

func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial %s: %w", socketPath, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command and waits for its reply. Status returns the decoded
// status payload; every other command returns (nil, nil) on acknowledgement.
func (c *Client) Do(cmd Command) (*StatusData, error) {
	if err := WriteCommand(c.conn, cmd); err != nil {
		return nil, err
	}

	tag, payload, err := ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagAck:
		return nil, nil
	case TagError:
		var reply ErrorReply
		if err := cbor.Unmarshal(payload, &reply); err != nil {
			return nil, fmt.Errorf("ipc: decode error reply: %w", err)
		}
		return nil, fmt.Errorf("%s", reply.Message)
	case TagStatusData:
		var status StatusData
		if err := cbor.Unmarshal(payload, &status); err != nil {
			return nil, fmt.Errorf("ipc: decode status: %w", err)
		}
		return &status, nil
	default:
		return nil, fmt.Errorf("ipc: unexpected reply %s", tag)
	}
}

// Subscribe streams state snapshots to fn until the context ends, the
// connection drops or fn returns an error.
func (c *Client) Subscribe(ctx context.Context, fn func(Snapshot) error) error {
	if err := WriteCommand(c.conn, Subscribe{}); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	tag, _, err := ReadFrame(c.conn)
	if err != nil {
		return err
	}
	if tag != TagAck {
		return fmt.Errorf("ipc: unexpected subscribe reply %s", tag)
	}

	for {
		tag, payload, err := ReadFrame(c.conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if tag != TagSnapshot {
			return fmt.Errorf("ipc: unexpected frame %s in snapshot stream", tag)
		}

		var snap Snapshot
		if err := cbor.Unmarshal(payload, &snap); err != nil {
			return fmt.Errorf("ipc: decode snapshot: %w", err)
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}
