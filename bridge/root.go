// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	fusefs "github.com/hanwen/go-fuse/v2/fs"

	"github.com/ramfsd/ramfs/ramfs"
)

// NewRoot returns the InodeEmbedder go-fuse should mount as the root
// of fsys. Every other Node in the tree is minted lazily from Lookup/
// Mkdir/Mknod/Create/Link, each one wrapping the same Filesystem and
// addressing it by the slash-separated path go-fuse tracks for that
// node's position, matching the way loopbackNode addresses the
// backing OS tree by path instead of by inode pointer.
func NewRoot(fsys *ramfs.Filesystem) fusefs.InodeEmbedder {
	return &Node{fsys: fsys}
}
