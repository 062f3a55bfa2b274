// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ramfs implements an in-memory POSIX-style inode graph: a
// hierarchical namespace of directories and regular files whose
// contents live entirely in process memory.
//
// The graph has no knowledge of FUSE, mount points, or any host
// kernel; package bridge adapts it onto github.com/hanwen/go-fuse/v2.
package ramfs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure a core operation reports.
// The bridge translates a Kind 1:1 into a host errno.
type Kind int

const (
	// NoSuchEntry means a name was not found during path resolution.
	NoSuchEntry Kind = iota + 1
	// NotADirectory means a non-terminal path component, or an
	// operand of a directory-only operation, is a regular file.
	NotADirectory
	// IsADirectory means a file-only operation received a directory.
	IsADirectory
	// AlreadyExists means the target name of a create or link is
	// occupied.
	AlreadyExists
	// NotEmpty means rmdir was attempted on a non-empty directory.
	NotEmpty
	// NotPermitted means the operation is disallowed outright, such
	// as hard-linking a directory.
	NotPermitted
	// Busy means the operation targeted an inode with open handles,
	// or the root, in a context that refuses that.
	Busy
	// InvalidPath means the path string itself is malformed.
	InvalidPath
	// BadHandle means a file operation used a handle whose inode has
	// nopen == 0.
	BadHandle
	// OutOfSpace means an allocation failed, or a name violates the
	// listing's capacity/length rules.
	OutOfSpace
)

func (k Kind) String() string {
	switch k {
	case NoSuchEntry:
		return "no-such-entry"
	case NotADirectory:
		return "not-a-directory"
	case IsADirectory:
		return "is-a-directory"
	case AlreadyExists:
		return "already-exists"
	case NotEmpty:
		return "not-empty"
	case NotPermitted:
		return "not-permitted"
	case Busy:
		return "busy"
	case InvalidPath:
		return "invalid-path"
	case BadHandle:
		return "bad-handle"
	case OutOfSpace:
		return "out-of-space"
	default:
		return "unknown-error"
	}
}

// Error is the single result type carrying a failure out of package
// ramfs. No exceptions escape the core boundary for bad input; a
// violated internal invariant panics instead, since that indicates
// graph corruption rather than a rejectable request.
type Error struct {
	Op   string
	Path string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ramfs: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("ramfs: %s %q: %s", e.Op, e.Path, e.Kind)
}

func errorf(op, path string, kind Kind) error {
	return &Error{Op: op, Path: path, Kind: kind}
}

// KindOf extracts the Kind from err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
