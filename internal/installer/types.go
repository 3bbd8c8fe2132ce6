// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package installer

// InstallRequest opens an install session.
type InstallRequest struct {
	InstallID string   `json:"install_id"`
	Files     []string `json:"files,omitempty"`
}

// InstallResponse echoes the session id.
type InstallResponse struct {
	InstallID string `json:"install_id"`
}

// FileReadyRequest announces that a file has been fully written at Path and
// should be installed under the destination root as Name.
type FileReadyRequest struct {
	InstallID string `json:"install_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
}

// ErrorDetail describes a failed file installation.
type ErrorDetail struct {
	Message string `json:"message"`
}

// FileResponse reports the outcome of one FileReady call. ErrorDetail is nil
// on success and holds a non-empty message on failure.
type FileResponse struct {
	InstallID   string       `json:"install_id"`
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	ErrorDetail *ErrorDetail `json:"error_detail,omitempty"`
}

// NewFileResponse returns a successful response echoing the request.
func NewFileResponse(req *FileReadyRequest) *FileResponse {
	return &FileResponse{
		InstallID: req.InstallID,
		Name:      req.Name,
		Path:      req.Path,
	}
}

// Fail marks the response as failed. An empty message is replaced so that a
// failed response never carries a blank diagnostic.
func (r *FileResponse) Fail(msg string) *FileResponse {
	if msg == "" {
		msg = "file installation failed"
	}
	r.ErrorDetail = &ErrorDetail{Message: msg}
	return r
}

// HasError reports whether the installation failed.
func (r *FileResponse) HasError() bool {
	return r.ErrorDetail != nil
}

// ShutdownRequest asks the server to stop. It carries no fields.
type ShutdownRequest struct{}

// ShutdownResponse is returned before the server stops.
type ShutdownResponse struct{}
