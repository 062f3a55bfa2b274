// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

import "sync"

// Logger allows the use of custom loggers for ramfs diagnostics (such
// as the teardown-with-open-handles warning). The log.Logger in the
// standard library implements this interface.
type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

// Options configures a Filesystem at construction time.
type Options struct {
	// RootMode, RootUID, RootGID set the root directory's initial
	// owner and permission bits. RootMode's type bits are ignored;
	// the root is always a directory.
	RootMode uint32
	RootUID  uint32
	RootGID  uint32

	// MaxNameLen overrides MaxNameLen for directory entries created
	// in this Filesystem. Zero means use the package default.
	MaxNameLen int

	// Logger receives diagnostics. May be nil.
	Logger Logger
}

// Filesystem owns the root inode and is the handle passed between
// the bridge and the core. The sole shared resource is the inode
// graph reachable from root; mu is a coarse, filesystem-wide mutex
// taken by every exported operation (Teardown excepted), so a
// multi-threaded bridge can call in concurrently.
type Filesystem struct {
	mu         sync.Mutex
	root       *Inode
	maxNameLen int
	logger     Logger
}

// NewFilesystem allocates a root directory inode with "." and ".."
// both pointing at itself, and an nlink that cannot reach zero through
// releaseNode/Rename/Unlink/Rmdir alone (only Teardown frees it).
func NewFilesystem(opts Options) *Filesystem {
	maxName := opts.MaxNameLen
	if maxName <= 0 {
		maxName = MaxNameLen
	}

	root := newDirInode(opts.RootMode, opts.RootUID, opts.RootGID, maxName)

	dot, _ := dirAppend(root.dir, ".")
	dot.inode = root
	dotdot, _ := dirAppend(root.dir, "..")
	dotdot.inode = root
	root.parent = root
	root.nlink = 2 // "." plus the self-reference standing in for a parent entry

	return &Filesystem{root: root, maxNameLen: maxName, logger: opts.Logger}
}

// Root returns the Filesystem's root inode.
func (fs *Filesystem) Root() *Inode { return fs.root }

// Path returns a "/"-prefixed path string for n relative to the
// Filesystem's root, for logging. Directories are walked upward
// through their live ".." entries, so a renamed directory reports its
// current location. A regular file is named from its sticky parent
// field (the directory that first attached it); a file that is no
// longer linked in that directory, such as one renamed into another
// directory, reports ".orphaned".
// Returns ".orphaned" if n cannot reach the root (e.g. it was already
// destroyed).
func (fs *Filesystem) Path(n *Inode) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.pathLocked(n)
}

func (fs *Filesystem) pathLocked(n *Inode) string {
	if n == fs.root {
		return "/"
	}

	var segs []string
	cur := n

	// A regular file has no "." / ".." of its own; the only way back
	// up is its sticky parent pointer.
	if !cur.IsDir() {
		parent := cur.parent
		if parent == nil {
			return ".orphaned"
		}
		name := nameOfChildIn(parent, cur)
		if name == "" {
			return ".orphaned"
		}
		segs = append(segs, name)
		cur = parent
	}

	for i := 0; i < 1<<20; i++ { // bound against a corrupted graph
		if cur == fs.root {
			break
		}
		if cur.dir == nil {
			return ".orphaned"
		}
		parent := dirLookup(cur.dir, "..")
		if parent == nil {
			return ".orphaned"
		}
		name := nameOfChildIn(parent, cur)
		if name == "" {
			return ".orphaned"
		}
		segs = append(segs, name)
		cur = parent
	}

	// reverse
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	path := "/"
	for i, s := range segs {
		if i > 0 {
			path += "/"
		}
		path += s
	}
	return path
}

func nameOfChildIn(parent, child *Inode) string {
	if parent.dir == nil {
		return ""
	}
	for _, e := range parent.dir.entries {
		if e.name == "." || e.name == ".." {
			continue
		}
		if e.inode == child {
			return e.name
		}
	}
	return ""
}

// Chmod sets the permission bits of the inode at path.
func (fs *Filesystem) Chmod(path string, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, err := resolve(fs.root, path)
	if err != nil {
		return err
	}
	n.SetMode(mode)
	return nil
}

// Chown sets the owner of the inode at path.
func (fs *Filesystem) Chown(path string, uid, gid uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, err := resolve(fs.root, path)
	if err != nil {
		return err
	}
	n.SetOwner(uid, gid)
	return nil
}
