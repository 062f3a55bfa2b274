// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"context"
	"path"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ramfsd/ramfs/ramfs"
)

// Node is a FUSE tree node backed by a path into a ramfs.Filesystem.
// Unlike a loopback node, which addresses the backing storage through
// real OS paths, a Node addresses ramfs through virtual, slash
// separated paths computed from its position in the kernel's own
// inode tree.
type Node struct {
	fusefs.Inode

	fsys *ramfs.Filesystem
}

var _ = (fusefs.NodeGetattrer)((*Node)(nil))
var _ = (fusefs.NodeSetattrer)((*Node)(nil))
var _ = (fusefs.NodeLookuper)((*Node)(nil))
var _ = (fusefs.NodeOpendirer)((*Node)(nil))
var _ = (fusefs.NodeReaddirer)((*Node)(nil))
var _ = (fusefs.NodeMkdirer)((*Node)(nil))
var _ = (fusefs.NodeMknoder)((*Node)(nil))
var _ = (fusefs.NodeCreater)((*Node)(nil))
var _ = (fusefs.NodeOpener)((*Node)(nil))
var _ = (fusefs.NodeUnlinker)((*Node)(nil))
var _ = (fusefs.NodeRmdirer)((*Node)(nil))
var _ = (fusefs.NodeRenamer)((*Node)(nil))
var _ = (fusefs.NodeLinker)((*Node)(nil))

func (n *Node) path() string {
	return "/" + n.Path(n.Root())
}

func childPath(parent string, name string) string {
	return path.Join(parent, name)
}

func (n *Node) newChild() *Node {
	return &Node{fsys: n.fsys}
}

func (n *Node) attrOut(mode, uid, gid uint32, nlink int, size int64, out *fuse.AttrOut) {
	out.Mode = posixMode(mode)
	out.Uid = uid
	out.Gid = gid
	out.Nlink = uint32(nlink)
	out.Size = uint64(size)
}

func (n *Node) Getattr(ctx context.Context, f fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	mode, uid, gid, nlink, size, err := n.fsys.Getattr(n.path())
	if err != nil {
		return toErrno(err)
	}
	n.attrOut(mode, uid, gid, nlink, size, out)
	return 0
}

func (n *Node) Setattr(ctx context.Context, f fusefs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	p := n.path()
	if mode, ok := in.GetMode(); ok {
		if err := n.fsys.Chmod(p, mode); err != nil {
			return toErrno(err)
		}
	}
	uid32, uok := in.GetUID()
	gid32, gok := in.GetGID()
	if uok || gok {
		_, curUID, curGID, _, _, err := n.fsys.Getattr(p)
		if err != nil {
			return toErrno(err)
		}
		if uok {
			curUID = uid32
		}
		if gok {
			curGID = gid32
		}
		if err := n.fsys.Chown(p, curUID, curGID); err != nil {
			return toErrno(err)
		}
	}
	if sz, ok := in.GetSize(); ok {
		if err := n.fsys.Truncate(p, int64(sz)); err != nil {
			return toErrno(err)
		}
	}
	return n.Getattr(ctx, f, out)
}

func callerOwner(ctx context.Context) (uid, gid uint32) {
	if caller, ok := fuse.FromContext(ctx); ok {
		return caller.Uid, caller.Gid
	}
	return 0, 0
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	p := childPath(n.path(), name)
	mode, uid, gid, nlink, size, err := n.fsys.Getattr(p)
	if err != nil {
		return nil, toErrno(err)
	}
	n.attrOut(mode, uid, gid, nlink, size, &out.Attr)
	child := n.newChild()
	ch := n.NewInode(ctx, child, fusefs.StableAttr{Mode: posixMode(mode) & syscall.S_IFMT})
	return ch, 0
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	uid, gid := callerOwner(ctx)
	p := childPath(n.path(), name)
	if _, err := n.fsys.Mkdir(p, mode, uid, gid); err != nil {
		return nil, toErrno(err)
	}
	out.Attr.Mode = posixMode(mode | ramfs.ModeDir)
	out.Attr.Uid = uid
	out.Attr.Gid = gid
	out.Attr.Nlink = 2
	child := n.newChild()
	ch := n.NewInode(ctx, child, fusefs.StableAttr{Mode: syscall.S_IFDIR})
	return ch, 0
}

func (n *Node) Mknod(ctx context.Context, name string, mode, rdev uint32, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	uid, gid := callerOwner(ctx)
	p := childPath(n.path(), name)
	if _, err := n.fsys.Mknod(p, mode, uid, gid); err != nil {
		return nil, toErrno(err)
	}
	out.Attr.Mode = posixMode(mode)
	out.Attr.Uid = uid
	out.Attr.Gid = gid
	out.Attr.Nlink = 1
	child := n.newChild()
	ch := n.NewInode(ctx, child, fusefs.StableAttr{Mode: syscall.S_IFREG})
	return ch, 0
}

func (n *Node) Create(ctx context.Context, name string, flags, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, fusefs.FileHandle, uint32, syscall.Errno) {
	uid, gid := callerOwner(ctx)
	p := childPath(n.path(), name)
	if _, err := n.fsys.Mknod(p, mode, uid, gid); err != nil {
		return nil, nil, 0, toErrno(err)
	}
	h, err := n.fsys.Open(p)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	out.Attr.Mode = posixMode(mode)
	out.Attr.Uid = uid
	out.Attr.Gid = gid
	out.Attr.Nlink = 1
	child := n.newChild()
	ch := n.NewInode(ctx, child, fusefs.StableAttr{Mode: syscall.S_IFREG})
	return ch, &File{h: h}, 0, 0
}

func (n *Node) Link(ctx context.Context, target fusefs.InodeEmbedder, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	targetPath := "/" + target.EmbeddedInode().Path(n.Root())
	p := childPath(n.path(), name)
	if _, err := n.fsys.Link(targetPath, p); err != nil {
		return nil, toErrno(err)
	}
	mode, uid, gid, nlink, size, err := n.fsys.Getattr(p)
	if err != nil {
		return nil, toErrno(err)
	}
	n.attrOut(mode, uid, gid, nlink, size, out)
	child := n.newChild()
	ch := n.NewInode(ctx, child, fusefs.StableAttr{Mode: syscall.S_IFREG})
	return ch, 0
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.fsys.Unlink(childPath(n.path(), name)))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.fsys.Rmdir(childPath(n.path(), name)))
}

func (n *Node) Rename(ctx context.Context, name string, newParent fusefs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	if flags&fusefs.RENAME_EXCHANGE != 0 {
		return syscall.ENOTSUP
	}
	oldPath := childPath(n.path(), name)
	newParentPath := "/" + newParent.EmbeddedInode().Path(n.Root())
	newPath := childPath(newParentPath, newName)
	return toErrno(n.fsys.Rename(oldPath, newPath))
}

func (n *Node) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	h, err := n.fsys.Open(n.path())
	if err != nil {
		return nil, 0, toErrno(err)
	}
	return &File{h: h}, 0, 0
}

func (n *Node) Opendir(ctx context.Context) syscall.Errno {
	dh, err := n.fsys.Opendir(n.path())
	if err != nil {
		return toErrno(err)
	}
	dh.Releasedir()
	return 0
}

func (n *Node) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	p := n.path()
	dh, err := n.fsys.Opendir(p)
	if err != nil {
		return nil, toErrno(err)
	}
	defer dh.Releasedir()

	names := dh.Readdir()
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		mode, _, _, _, _, err := n.fsys.Getattr(childPath(p, name))
		if err != nil {
			continue
		}
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: posixMode(mode) & syscall.S_IFMT,
		})
	}
	return fusefs.NewListDirStream(entries), 0
}
