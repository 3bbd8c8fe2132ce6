// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package rpc binds the installer service to gRPC. Messages use the protobuf
// wire format of install.proto by default and JSON under the "json"
// content-subtype.
package rpc

import (
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"

	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/log"
)

// ServerOptions configures NewServer. Zero values select the fixed
// production limits.
type ServerOptions struct {
	// Workers bounds concurrently executing handlers.
	Workers int64
	// MaxMessageSize bounds inbound and outbound messages in bytes.
	MaxMessageSize int
	Logger         *zerolog.Logger
}

// NewServer creates a gRPC server with srv registered.
func NewServer(srv InstallerServer, opts ServerOptions) *grpc.Server {
	workers := opts.Workers
	if workers <= 0 {
		workers = config.DispatchWorkers
	}
	maxMsg := opts.MaxMessageSize
	if maxMsg <= 0 {
		maxMsg = config.MaxMessageSize
	}
	logger := log.WithComponent("rpc")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.MaxSendMsgSize(maxMsg),
		grpc.UnaryInterceptor(dispatchInterceptor(semaphore.NewWeighted(workers), logger)),
	)
	RegisterInstallerServer(s, srv)
	return s
}
