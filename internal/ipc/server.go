package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/google/uuid"
)

// Request is one decoded command handed to the manager. The reply channel is
// buffered so the manager never blocks on a slow connection.
type Request struct {
	Cmd    Command
	ReplyC chan Reply
}

type Reply struct {
	Err    error
	Status *StatusData
}

// Server accepts connections on the session socket. Each connection gets its
// own goroutine; a malformed frame drops that connection and nothing else.
type Server struct {
	socketPath string
	requestC   chan<- Request
	hub        *bus.Hub[Snapshot]
}

func NewServer(socketPath string, requestC chan<- Request, hub *bus.Hub[Snapshot]) *Server {
	return &Server{
		socketPath: socketPath,
		requestC:   requestC,
		hub:        hub,
	}
}

func (s *Server) String() string {
	return "ipc.Server"
}

func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return err
	}
	// A stale socket from a crashed session blocks the listen.
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	defer os.Remove(s.socketPath)
	defer ln.Close()

	context.AfterFunc(ctx, func() { ln.Close() })

	slog.Info("IPC server listening", "socket", s.socketPath)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log := slog.With("connection", uuid.NewString())

	for {
		tag, payload, err := ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("Dropping connection", "error", err)
			}
			return
		}

		cmd, err := DecodeCommand(tag, payload)
		if err != nil {
			log.Debug("Dropping connection on malformed frame", "error", err)
			return
		}

		if _, ok := cmd.(Subscribe); ok {
			s.streamSnapshots(ctx, conn, log)
			return
		}

		replyC := make(chan Reply, 1)
		select {
		case s.requestC <- Request{Cmd: cmd, ReplyC: replyC}:
		case <-ctx.Done():
			return
		}

		var reply Reply
		select {
		case reply = <-replyC:
		case <-ctx.Done():
			return
		}

		switch {
		case reply.Err != nil:
			err = WriteFrame(conn, TagError, ErrorReply{Message: reply.Err.Error()})
		case reply.Status != nil:
			err = WriteFrame(conn, TagStatusData, *reply.Status)
		default:
			err = WriteFrame(conn, TagAck, struct{}{})
		}
		if err != nil {
			log.Debug("Dropping connection", "error", err)
			return
		}
	}
}

// streamSnapshots turns the connection into a one-way snapshot feed until the
// client hangs up.
func (s *Server) streamSnapshots(ctx context.Context, conn net.Conn, log *slog.Logger) {
	snapC, cancel := s.hub.Subscribe(ctx)
	defer cancel()

	hangupC := make(chan struct{})
	go func() {
		io.Copy(io.Discard, conn)
		close(hangupC)
	}()

	if err := WriteFrame(conn, TagAck, struct{}{}); err != nil {
		return
	}
	log.Debug("Subscriber attached")

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangupC:
			log.Debug("Subscriber detached")
			return
		case snap := <-snapC:
			if err := WriteFrame(conn, TagSnapshot, snap); err != nil {
				log.Debug("Subscriber write failed", "error", err)
				return
			}
		}
	}
}
