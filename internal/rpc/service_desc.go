// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ManuGH/installd/internal/installer"
)

// Fully-qualified method names of the installer service.
const (
	ServiceName              = "install.Installer"
	MethodInstall            = "/install.Installer/Install"
	MethodFileReady          = "/install.Installer/FileReady"
	MethodShutdownServer     = "/install.Installer/ShutdownServer"
	installMethodName        = "Install"
	fileReadyMethodName      = "FileReady"
	shutdownServerMethodName = "ShutdownServer"
)

// InstallerServer is the server API of the installer service.
type InstallerServer interface {
	Install(context.Context, *installer.InstallRequest) (*installer.InstallResponse, error)
	FileReady(context.Context, *installer.FileReadyRequest) (*installer.FileResponse, error)
	ShutdownServer(context.Context, *installer.ShutdownRequest) (*installer.ShutdownResponse, error)
}

var _ InstallerServer = (*installer.Service)(nil)

// RegisterInstallerServer registers srv on s.
func RegisterInstallerServer(s grpc.ServiceRegistrar, srv InstallerServer) {
	s.RegisterService(&installerServiceDesc, srv)
}

func installHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(installer.InstallRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InstallerServer).Install(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodInstall}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InstallerServer).Install(ctx, req.(*installer.InstallRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fileReadyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(installer.FileReadyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InstallerServer).FileReady(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodFileReady}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InstallerServer).FileReady(ctx, req.(*installer.FileReadyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func shutdownServerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(installer.ShutdownRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InstallerServer).ShutdownServer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodShutdownServer}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InstallerServer).ShutdownServer(ctx, req.(*installer.ShutdownRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var installerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InstallerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: installMethodName, Handler: installHandler},
		{MethodName: fileReadyMethodName, Handler: fileReadyHandler},
		{MethodName: shutdownServerMethodName, Handler: shutdownServerHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "install.proto",
}
