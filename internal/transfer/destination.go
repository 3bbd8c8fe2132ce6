// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transfer

import (
	"path"
	"path/filepath"
	"strings"
)

// Destination is the fixed root every file is installed under. It is either a
// local directory or a host:path specifier understood by the copy tool.
type Destination struct {
	host string
	root string
}

// NewDestination composes a destination from an optional remote host and a
// root path. An empty host means the local filesystem.
func NewDestination(host, root string) Destination {
	return Destination{host: host, root: root}
}

// Root returns the composed destination root ("host:path" or "path").
func (d Destination) Root() string {
	if d.host == "" {
		return d.root
	}
	return d.host + ":" + d.root
}

func (d Destination) String() string { return d.Root() }

// IsRemote reports whether files are delivered to another host.
func (d Destination) IsRemote() bool { return d.host != "" }

// Host returns the remote host, or "" for local destinations.
func (d Destination) Host() string { return d.host }

// Path returns the root path without the host prefix.
func (d Destination) Path() string { return d.root }

// Join returns the target for a file installed as name under the root. name
// is used as given: it is not cleaned, a trailing separator survives, and an
// absolute name replaces the root path.
func (d Destination) Join(name string) Target {
	if d.host == "" {
		return Target{Path: joinPath(d.root, name, string(filepath.Separator), filepath.IsAbs(name))}
	}
	// Remote paths are interpreted by the far side, always slash separated.
	return Target{Host: d.host, Path: joinPath(filepath.ToSlash(d.root), name, "/", path.IsAbs(name))}
}

func joinPath(root, name, sep string, abs bool) string {
	switch {
	case abs || root == "":
		return name
	case strings.HasSuffix(root, sep):
		return root + name
	default:
		return root + sep + name
	}
}

// Target is a single destination file.
type Target struct {
	Host string
	Path string
}

// String renders the target as the copy tool expects it.
func (t Target) String() string {
	if t.Host == "" {
		return t.Path
	}
	return t.Host + ":" + t.Path
}

// IsRemote reports whether the target lives on another host.
func (t Target) IsRemote() bool { return t.Host != "" }

// Parent returns the directory that must exist before the copy runs.
func (t Target) Parent() string {
	if t.Host == "" {
		return filepath.Dir(t.Path)
	}
	return path.Dir(t.Path)
}
