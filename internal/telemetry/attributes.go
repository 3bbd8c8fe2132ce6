// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across installd.
const (
	// RPC attributes
	RPCMethodKey    = "rpc.method"
	RPCRequestIDKey = "rpc.request_id"

	// Install attributes
	InstallIDKey        = "install.id"
	InstallFileCountKey = "install.file_count"
	FileNameKey         = "install.file_name"
	FileSourceKey       = "install.source"
	FileTargetKey       = "install.target"

	// Copy tool attributes
	CopyBinKey      = "copy.bin"
	CopyExitCodeKey = "copy.exit_code"
	CopyTimedOutKey = "copy.timed_out"
	CopyDurationKey = "copy.duration_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// FileAttributes creates span attributes for a single file installation.
func FileAttributes(installID, name, source, target string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if installID != "" {
		attrs = append(attrs, attribute.String(InstallIDKey, installID))
	}
	if name != "" {
		attrs = append(attrs, attribute.String(FileNameKey, name))
	}
	if source != "" {
		attrs = append(attrs, attribute.String(FileSourceKey, source))
	}
	if target != "" {
		attrs = append(attrs, attribute.String(FileTargetKey, target))
	}
	return attrs
}

// CopyAttributes describes a finished copy tool invocation.
func CopyAttributes(bin string, exitCode int, timedOut bool, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CopyBinKey, bin),
		attribute.Int(CopyExitCodeKey, exitCode),
		attribute.Bool(CopyTimedOutKey, timedOut),
		attribute.Int64(CopyDurationKey, durationMS),
	}
}

// RPCAttributes creates span attributes for an inbound call.
func RPCAttributes(method, requestID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RPCMethodKey, method),
		attribute.String(RPCRequestIDKey, requestID),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
