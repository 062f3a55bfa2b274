// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

// Handle is a reference to an open regular file, letting Read/Write/
// Release operate without re-resolving a path on every call.
type Handle struct {
	inode *Inode
	fs    *Filesystem
}

// Open resolves path to a regular file and returns a Handle,
// incrementing the inode's nopen. Fails is-a-directory for
// directories (see Opendir for those).
func (fs *Filesystem) Open(path string) (*Handle, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := resolve(fs.root, path)
	if err != nil {
		return nil, err
	}
	if n.IsDir() {
		return nil, errorf("open", path, IsADirectory)
	}
	n.nopen++
	return &Handle{inode: n, fs: fs}, nil
}

// Read reads up to len(dest) bytes at off through h.
func (h *Handle) Read(dest []byte, off int64) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.inode.nopen == 0 {
		return 0, errorf("read", "", BadHandle)
	}
	return readContent(h.inode, dest, off)
}

// Write writes data at off through h, growing the file as needed.
func (h *Handle) Write(data []byte, off int64) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.inode.nopen == 0 {
		return 0, errorf("write", "", BadHandle)
	}
	return writeContent(h.inode, data, off)
}

// Release decrements nopen; if nlink is also 0, the inode's content
// is freed, completing an Orphan -> Dead transition.
func (h *Handle) Release() error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.inode.nopen == 0 {
		return errorf("release", "", BadHandle)
	}
	h.inode.nopen--
	if h.inode.nlink == 0 && h.inode.nopen == 0 {
		h.inode.data = nil
		h.inode.size = 0
	}
	return nil
}

// Inode returns the inode this handle refers to, for Getattr-style
// callers that already hold a handle.
func (h *Handle) Inode() *Inode { return h.inode }

// Stat returns h's current attributes under the Filesystem lock,
// mirroring Filesystem.Getattr for callers that only have a handle.
func (h *Handle) Stat() (mode, uid, gid uint32, nlink int, size int64) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	return h.inode.mode, h.inode.uid, h.inode.gid, h.inode.nlink, h.inode.size
}

// Truncate resizes the file h refers to without re-resolving a path,
// for callers (such as a FUSE Setattr on an open file) that already
// hold a handle.
func (h *Handle) Truncate(newSize int64) error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.inode.nopen == 0 {
		return errorf("truncate", "", BadHandle)
	}
	return truncateContent(h.inode, newSize)
}

// Chmod sets the permission bits of the file h refers to, under the
// same lock discipline as Truncate.
func (h *Handle) Chmod(mode uint32) error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.inode.nopen == 0 {
		return errorf("chmod", "", BadHandle)
	}
	h.inode.SetMode(mode)
	return nil
}

// Truncate resizes the regular file named by path.
func (fs *Filesystem) Truncate(path string, newSize int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := resolve(fs.root, path)
	if err != nil {
		return err
	}
	return truncateContent(n, newSize)
}

// DirHandle is a read-only snapshot of a directory listing taken at
// Opendir time, consumed by Readdir/Releasedir.
type DirHandle struct {
	names []string
}

// Opendir resolves path to a directory and snapshots its listing.
func (fs *Filesystem) Opendir(path string) (*DirHandle, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := resolve(fs.root, path)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, errorf("opendir", path, NotADirectory)
	}
	return &DirHandle{names: dirNames(n.dir)}, nil
}

// Readdir returns the entry names captured at Opendir time, including
// "." and "..", in listing order.
func (d *DirHandle) Readdir() []string {
	return d.names
}

// Releasedir is a no-op placeholder kept for symmetry with
// Open/Release; a DirHandle owns no resources beyond its name slice.
func (d *DirHandle) Releasedir() {}

// Getattr returns mode, ownership, link count, and size for the
// inode at path.
func (fs *Filesystem) Getattr(path string) (mode, uid, gid uint32, nlink int, size int64, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, rerr := resolve(fs.root, path)
	if rerr != nil {
		return 0, 0, 0, 0, 0, rerr
	}
	return n.mode, n.uid, n.gid, n.nlink, n.size, nil
}
