// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rpc

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	grpcproto "google.golang.org/grpc/encoding/proto"
	"google.golang.org/grpc/mem"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ManuGH/installd/internal/installer"
)

// Field numbers of install.proto:
//
//	message InstallInfoRequest { string install_id = 1; repeated string files = 2; }
//	message InstallResponse    { string install_id = 1; }
//	message FileReadyRequest   { string install_id = 1; string name = 2; string path = 3; }
//	message FileResponse       { string install_id = 1; string name = 2; string path = 3; ErrorDetail error_detail = 4; }
//	message ErrorDetail        { string message = 1; }
//	message ShutdownRequest    {}
//	message ShutdownResponse   {}
const (
	fieldInstallID   protowire.Number = 1
	fieldFiles       protowire.Number = 2
	fieldName        protowire.Number = 2
	fieldPath        protowire.Number = 3
	fieldErrorDetail protowire.Number = 4
	fieldMessage     protowire.Number = 1
)

// wireCodec is the default "proto" codec. Installer messages are encoded in
// the protobuf wire format of install.proto; any other value goes to the
// stock protobuf codec.
type wireCodec struct {
	fallback encoding.CodecV2
}

func (c wireCodec) Name() string { return grpcproto.Name }

func (c wireCodec) Marshal(v any) (mem.BufferSlice, error) {
	var b []byte
	switch m := v.(type) {
	case *installer.InstallRequest:
		b = appendString(b, fieldInstallID, m.InstallID)
		for _, f := range m.Files {
			b = protowire.AppendTag(b, fieldFiles, protowire.BytesType)
			b = protowire.AppendString(b, f)
		}
	case *installer.InstallResponse:
		b = appendString(b, fieldInstallID, m.InstallID)
	case *installer.FileReadyRequest:
		b = appendString(b, fieldInstallID, m.InstallID)
		b = appendString(b, fieldName, m.Name)
		b = appendString(b, fieldPath, m.Path)
	case *installer.FileResponse:
		b = appendString(b, fieldInstallID, m.InstallID)
		b = appendString(b, fieldName, m.Name)
		b = appendString(b, fieldPath, m.Path)
		if m.ErrorDetail != nil {
			// Presence matters: an empty detail still marks a failure.
			b = protowire.AppendTag(b, fieldErrorDetail, protowire.BytesType)
			b = protowire.AppendBytes(b, appendString(nil, fieldMessage, m.ErrorDetail.Message))
		}
	case *installer.ShutdownRequest, *installer.ShutdownResponse:
	default:
		if c.fallback == nil {
			return nil, fmt.Errorf("proto codec: marshal %T: unsupported message", v)
		}
		return c.fallback.Marshal(v)
	}
	return mem.BufferSlice{mem.SliceBuffer(b)}, nil
}

func (c wireCodec) Unmarshal(data mem.BufferSlice, v any) error {
	switch v.(type) {
	case *installer.InstallRequest, *installer.InstallResponse,
		*installer.FileReadyRequest, *installer.FileResponse,
		*installer.ShutdownRequest, *installer.ShutdownResponse:
	default:
		if c.fallback == nil {
			return fmt.Errorf("proto codec: unmarshal %T: unsupported message", v)
		}
		return c.fallback.Unmarshal(data, v)
	}
	if err := decodeMessage(data.Materialize(), v); err != nil {
		return fmt.Errorf("proto codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func decodeMessage(b []byte, v any) error {
	switch m := v.(type) {
	case *installer.InstallRequest:
		return walkFields(b, func(num protowire.Number, val []byte) error {
			switch num {
			case fieldInstallID:
				m.InstallID = string(val)
			case fieldFiles:
				m.Files = append(m.Files, string(val))
			}
			return nil
		})
	case *installer.InstallResponse:
		return walkFields(b, func(num protowire.Number, val []byte) error {
			if num == fieldInstallID {
				m.InstallID = string(val)
			}
			return nil
		})
	case *installer.FileReadyRequest:
		return walkFields(b, func(num protowire.Number, val []byte) error {
			switch num {
			case fieldInstallID:
				m.InstallID = string(val)
			case fieldName:
				m.Name = string(val)
			case fieldPath:
				m.Path = string(val)
			}
			return nil
		})
	case *installer.FileResponse:
		return walkFields(b, func(num protowire.Number, val []byte) error {
			switch num {
			case fieldInstallID:
				m.InstallID = string(val)
			case fieldName:
				m.Name = string(val)
			case fieldPath:
				m.Path = string(val)
			case fieldErrorDetail:
				if m.ErrorDetail == nil {
					m.ErrorDetail = &installer.ErrorDetail{}
				}
				return walkFields(val, func(num protowire.Number, val []byte) error {
					if num == fieldMessage {
						m.ErrorDetail.Message = string(val)
					}
					return nil
				})
			}
			return nil
		})
	default:
		// Empty messages still reject malformed input.
		return walkFields(b, func(protowire.Number, []byte) error { return nil })
	}
}

// walkFields calls fn for every length-delimited field in b. Fields of other
// wire types are skipped.
func walkFields(b []byte, fn func(num protowire.Number, val []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		val, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(num, val); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func init() {
	encoding.RegisterCodecV2(wireCodec{fallback: encoding.GetCodecV2(grpcproto.Name)})
}
