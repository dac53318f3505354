// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/remap/ndnfs-port/lib/codec"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/packet"
)

// Responder answers an interest name with a signed data packet, or an
// error when the interest should be dropped.
type Responder interface {
	Respond(ctx context.Context, requestName name.Name) (*packet.Data, error)
}

// readTimeout is how long the server waits for the interest after a
// connection is accepted.
const readTimeout = 30 * time.Second

// writeTimeout is how long the server waits for a frame to be written.
const writeTimeout = 10 * time.Second

// maxInterestSize bounds a single encoded interest.
const maxInterestSize = 64 * 1024

// ServerConfig holds the parameters of a Server.
type ServerConfig struct {
	// SocketPath is the Unix socket to listen on. A stale socket file
	// at this path is removed before listening.
	SocketPath string

	Responder Responder
	Logger    *slog.Logger
}

// Server accepts interests on a Unix socket and answers them from a
// Responder.
type Server struct {
	socketPath string
	responder  Responder
	logger     *slog.Logger

	// dispatch serializes calls into the responder.
	dispatch sync.Mutex

	// activeConnections lets Serve wait for in-flight exchanges
	// before returning.
	activeConnections sync.WaitGroup
}

// NewServer validates cfg and returns a Server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("face: SocketPath is required")
	}
	if cfg.Responder == nil {
		return nil, fmt.Errorf("face: Responder is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		socketPath: cfg.SocketPath,
		responder:  cfg.Responder,
		logger:     logger,
	}, nil
}

// Serve listens on the socket and answers interests until ctx is
// cancelled, then waits for active exchanges to finish.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("face: removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("face: listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("face listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// handleConnection runs one interest/data exchange. Every failure ends
// with the connection closed and no frame written.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	var interest Interest
	if err := codec.NewDecoder(io.LimitReader(conn, maxInterestSize)).Decode(&interest); err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Debug("malformed interest", "error", err)
		}
		return
	}
	if len(interest.Selectors) > 0 {
		s.logger.Debug("ignoring interest selectors", "count", len(interest.Selectors))
	}

	requestName := interest.RequestName()
	data, err := s.respond(ctx, requestName)
	if err != nil {
		s.logger.Debug("interest dropped", "name", requestName.String(), "error", err)
		return
	}

	frame, err := newFrame(data, interest.Compression)
	if err != nil {
		s.logger.Error("encoding response frame", "name", requestName.String(), "error", err)
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(frame); err != nil {
		s.logger.Debug("writing response frame", "name", requestName.String(), "error", err)
		return
	}
	s.logger.Debug("interest answered",
		"name", requestName.String(),
		"data_name", data.Name.String(),
		"compression", frame.Compression.String(),
	)
}

func (s *Server) respond(ctx context.Context, requestName name.Name) (*packet.Data, error) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	return s.responder.Respond(ctx, requestName)
}
