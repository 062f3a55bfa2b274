// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bridge adapts a ramfs.Filesystem to the kernel's FUSE
// protocol using github.com/hanwen/go-fuse/v2/fs.
package bridge

import (
	"syscall"

	"github.com/ramfsd/ramfs/ramfs"
)

// posixMode translates an Inode's internal mode (permission bits plus
// ramfs.ModeDir, a ramfs-specific bit rather than the host's S_IFDIR)
// into the S_IFDIR/S_IFREG-tagged mode the kernel expects in stat
// results.
func posixMode(mode uint32) uint32 {
	perm := mode &^ ramfs.ModeDir
	if mode&ramfs.ModeDir != 0 {
		return syscall.S_IFDIR | perm
	}
	return syscall.S_IFREG | perm
}

// toErrno translates a ramfs error into the syscall.Errno the FUSE
// kernel driver expects. Any error that does not carry a ramfs.Kind
// (none are expected to reach this point) maps to EIO.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	kind, ok := ramfs.KindOf(err)
	if !ok {
		return syscall.EIO
	}
	switch kind {
	case ramfs.NoSuchEntry:
		return syscall.ENOENT
	case ramfs.NotADirectory:
		return syscall.ENOTDIR
	case ramfs.IsADirectory:
		return syscall.EISDIR
	case ramfs.AlreadyExists:
		return syscall.EEXIST
	case ramfs.NotEmpty:
		return syscall.ENOTEMPTY
	case ramfs.NotPermitted:
		return syscall.EPERM
	case ramfs.Busy:
		return syscall.EBUSY
	case ramfs.InvalidPath:
		return syscall.EINVAL
	case ramfs.BadHandle:
		return syscall.EBADF
	case ramfs.OutOfSpace:
		return syscall.ENOSPC
	default:
		return syscall.EIO
	}
}
