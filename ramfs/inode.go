// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

const (
	// ModeDir marks an Inode as a directory; otherwise it is a
	// regular file. Mirrors the type bits of Go's os.FileMode /
	// syscall.S_IFDIR, but kept package-local so ramfs has no
	// dependency on a particular host ABI.
	ModeDir = 1 << 31

	// MaxNameLen bounds directory entry names, matching the
	// traditional POSIX NAME_MAX. Overridable per Filesystem via
	// Options.MaxNameLen (see fs.go).
	MaxNameLen = 255
)

// Inode is a node in the graph: either a directory or a regular file.
//
// Following spec invariant 3, a directory's nlink is 1 (its own entry
// in its parent, or the root's self-reference) plus one for each
// child directory's ".." pointing back to it, plus one for its own
// "."; see newDirInode and the nlink bookkeeping in namespace.go.
type Inode struct {
	mode uint32
	uid  uint32
	gid  uint32

	nlink int
	nopen int

	size int64
	data []byte     // regular file payload; nil for directories
	dir  *directory // directory listing; nil for regular files

	// parent is the directory that first attached this inode. It
	// seeds this inode's own ".." entry at creation time and is
	// never updated afterward, even by Rename or by a later hard
	// link. For the root, parent is the root itself.
	parent *Inode

	// traversing is a transient marker used only by Teardown to
	// break the "." / ".." cycles. Always false outside Teardown.
	traversing bool
}

// IsDir reports whether n is a directory.
func (n *Inode) IsDir() bool {
	return n.mode&ModeDir != 0
}

// Mode returns the file-type-and-permission bits.
func (n *Inode) Mode() uint32 { return n.mode }

// SetMode replaces the permission bits, preserving the type bit.
func (n *Inode) SetMode(mode uint32) {
	n.mode = (n.mode & ModeDir) | (mode &^ ModeDir)
}

// UID returns the owner uid.
func (n *Inode) UID() uint32 { return n.uid }

// GID returns the owner gid.
func (n *Inode) GID() uint32 { return n.gid }

// SetOwner replaces the uid/gid pair.
func (n *Inode) SetOwner(uid, gid uint32) {
	n.uid = uid
	n.gid = gid
}

// NLink returns the number of directory entries referring to n (for a
// directory, per invariant 3, including its own "." and any child
// ".." back-references).
func (n *Inode) NLink() int { return n.nlink }

// NOpen returns the number of outstanding open handles on n.
func (n *Inode) NOpen() int { return n.nopen }

// Size returns the byte length of n's payload (0 for directories).
func (n *Inode) Size() int64 { return n.size }

func newFileInode(mode, uid, gid uint32) *Inode {
	return &Inode{
		mode: mode &^ ModeDir,
		uid:  uid,
		gid:  gid,
	}
}

func newDirInode(mode, uid, gid uint32, maxName int) *Inode {
	n := &Inode{
		mode: mode | ModeDir,
		uid:  uid,
		gid:  gid,
	}
	n.dir = newDirectory(maxName)
	return n
}
