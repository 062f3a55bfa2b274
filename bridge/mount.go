// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"time"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ramfsd/ramfs/ramfs"
)

// MountOptions configures a Mount call, translating the ramfsd CLI
// flags into go-fuse's fs.Options.
type MountOptions struct {
	Debug      bool
	AllowOther bool
	EntryTTL   time.Duration
	AttrTTL    time.Duration
}

// Mount starts serving fsys at dir and returns the running fuse.Server.
// Callers should call server.Wait() to block until the mount is
// unmounted (e.g. by "fusermount -u dir" or a SIGINT-triggered
// Unmount call), matching go-fuse's own convention in fs.Mount.
func Mount(dir string, fsys *ramfs.Filesystem, opts MountOptions) (*fuse.Server, error) {
	entryTTL := opts.EntryTTL
	attrTTL := opts.AttrTTL

	options := &fusefs.Options{
		MountOptions: fuse.MountOptions{
			Debug:      opts.Debug,
			AllowOther: opts.AllowOther,
			FsName:     "ramfs",
			Name:       "ramfs",
		},
		EntryTimeout: &entryTTL,
		AttrTimeout:  &attrTTL,
	}

	return fusefs.Mount(dir, NewRoot(fsys), options)
}
