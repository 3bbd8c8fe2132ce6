// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/ManuGH/installd/internal/installer"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(JSONCodecName)
	require.NotNil(t, c)
	assert.Equal(t, JSONCodecName, c.Name())
}

func TestCodec_FileResponseWireFormat(t *testing.T) {
	c := jsonCodec{}

	b, err := c.Marshal(installer.NewFileResponse(&installer.FileReadyRequest{InstallID: "1", Name: "a", Path: "/a"}).Fail("bad"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"install_id":"1","name":"a","path":"/a","error_detail":{"message":"bad"}}`, string(b))

	var out installer.FileResponse
	require.NoError(t, c.Unmarshal(b, &out))
	require.True(t, out.HasError())
	assert.Equal(t, "bad", out.ErrorDetail.Message)
}

func TestCodec_EmptyPayload(t *testing.T) {
	var req installer.ShutdownRequest
	assert.NoError(t, jsonCodec{}.Unmarshal(nil, &req))
}

func TestCodec_Malformed(t *testing.T) {
	var req installer.FileReadyRequest
	err := jsonCodec{}.Unmarshal([]byte("{"), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json codec")
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	assert.Equal(t, codes.Internal, status.Code(toStatus(errors.New("mkdir failed"))))
	assert.Equal(t, codes.NotFound, status.Code(toStatus(status.Error(codes.NotFound, "x"))))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(toStatus(context.DeadlineExceeded)))
}
