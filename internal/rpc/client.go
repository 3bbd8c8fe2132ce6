// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/installer"
)

// Client calls a remote installer service.
type Client struct {
	conn     *grpc.ClientConn
	callOpts []grpc.CallOption
}

// Dial creates a client for target. The channel is plaintext; extra options
// (for example a custom dialer) are appended after the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
			grpc.MaxCallSendMsgSize(config.MaxMessageSize),
		),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial installer %s: %w", target, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection. callOpts apply to every call; with
// none, messages use the protobuf encoding.
func NewClient(conn *grpc.ClientConn, callOpts ...grpc.CallOption) *Client {
	return &Client{conn: conn, callOpts: callOpts}
}

func (c *Client) withDefaults(opts []grpc.CallOption) []grpc.CallOption {
	return append(append([]grpc.CallOption(nil), c.callOpts...), opts...)
}

// Install opens an install session.
func (c *Client) Install(ctx context.Context, req *installer.InstallRequest, opts ...grpc.CallOption) (*installer.InstallResponse, error) {
	out := new(installer.InstallResponse)
	if err := c.conn.Invoke(ctx, MethodInstall, req, out, c.withDefaults(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// FileReady asks the server to install one file. A nil error does not mean
// the file was installed: check the response's HasError.
func (c *Client) FileReady(ctx context.Context, req *installer.FileReadyRequest, opts ...grpc.CallOption) (*installer.FileResponse, error) {
	out := new(installer.FileResponse)
	if err := c.conn.Invoke(ctx, MethodFileReady, req, out, c.withDefaults(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ShutdownServer asks the server to drain and stop.
func (c *Client) ShutdownServer(ctx context.Context, opts ...grpc.CallOption) (*installer.ShutdownResponse, error) {
	out := new(installer.ShutdownResponse)
	if err := c.conn.Invoke(ctx, MethodShutdownServer, &installer.ShutdownRequest{}, out, c.withDefaults(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
