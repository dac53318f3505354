// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/remap/ndnfs-port/lib/codec"
	"github.com/remap/ndnfs-port/lib/packet"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// DefaultLifetime is the interest lifetime used when an interest does
// not set one.
const DefaultLifetime = 4 * time.Second

// maxFrameSize bounds a single response frame and the packet it
// decompresses to.
const maxFrameSize = 4 * 1024 * 1024

// Client expresses interests to a face server.
type Client struct {
	socketPath string
}

// NewClient returns a client for the server listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Express sends interest and returns the decoded data packet. The
// packet's signature is not checked. Returns ErrNoData when the server
// drops the interest.
func (c *Client) Express(ctx context.Context, interest Interest) (*packet.Data, error) {
	lifetime := DefaultLifetime
	if interest.LifetimeMs > 0 {
		lifetime = time.Duration(interest.LifetimeMs) * time.Millisecond
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("face: connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(lifetime)
	if contextDeadline, ok := ctx.Deadline(); ok && contextDeadline.Before(deadline) {
		deadline = contextDeadline
	}
	conn.SetDeadline(deadline)

	if err := codec.NewEncoder(conn).Encode(interest); err != nil {
		return nil, fmt.Errorf("face: writing interest: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var frame Frame
	if err := codec.NewDecoder(io.LimitReader(conn, maxFrameSize)).Decode(&frame); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, interest.RequestName())
		}
		return nil, fmt.Errorf("face: reading frame: %w", err)
	}
	return frame.Data()
}
