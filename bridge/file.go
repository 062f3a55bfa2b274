// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"context"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ramfsd/ramfs/ramfs"
)

// File is the FUSE-visible handle for an open regular file. It wraps
// a ramfs.Handle, which already serializes against the owning
// Filesystem, so File itself needs no locking of its own.
type File struct {
	h *ramfs.Handle
}

var _ = (fusefs.FileReader)((*File)(nil))
var _ = (fusefs.FileWriter)((*File)(nil))
var _ = (fusefs.FileFlusher)((*File)(nil))
var _ = (fusefs.FileReleaser)((*File)(nil))
var _ = (fusefs.FileGetattrer)((*File)(nil))
var _ = (fusefs.FileSetattrer)((*File)(nil))

func (f *File) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := f.h.Read(dest, off)
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData{Data: dest[:n]}, 0
}

func (f *File) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	n, err := f.h.Write(data, off)
	if err != nil {
		return 0, toErrno(err)
	}
	return uint32(n), 0
}

// Flush is a no-op: Write already applies every byte to the inode's
// buffer synchronously, so there is nothing buffered to push out.
func (f *File) Flush(ctx context.Context) syscall.Errno {
	return 0
}

func (f *File) Release(ctx context.Context) syscall.Errno {
	return toErrno(f.h.Release())
}

func (f *File) Getattr(ctx context.Context, out *fuse.AttrOut) syscall.Errno {
	mode, uid, gid, nlink, size := f.h.Stat()
	out.Mode = posixMode(mode)
	out.Uid = uid
	out.Gid = gid
	out.Nlink = uint32(nlink)
	out.Size = uint64(size)
	return 0
}

func (f *File) Setattr(ctx context.Context, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if sz, ok := in.GetSize(); ok {
		if err := f.h.Truncate(int64(sz)); err != nil {
			return toErrno(err)
		}
	}
	if mode, ok := in.GetMode(); ok {
		if err := f.h.Chmod(mode); err != nil {
			return toErrno(err)
		}
	}
	return f.Getattr(ctx, out)
}
