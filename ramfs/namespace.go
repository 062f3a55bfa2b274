// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

import "strings"

// addNode attaches an existing, unattached-or-hardlinked inode under
// parent with the given name. Caller has already resolved parent;
// addNode fails already-exists if name is taken in parent.
func addNode(parent, node *Inode, name string) error {
	if dirHas(parent.dir, name) {
		return errorf("add-node", name, AlreadyExists)
	}
	entry, err := dirAppend(parent.dir, name)
	if err != nil {
		return err
	}
	entry.inode = node
	node.nlink++
	if node.parent == nil {
		node.parent = parent
	}
	return nil
}

// Mknod creates a new regular-file inode and attaches it at path.
func (fs *Filesystem) Mknod(path string, mode, uid, gid uint32) (*Inode, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, name, err := resolveParent(fs.root, path)
	if err != nil {
		return nil, err
	}
	if dirHas(parent.dir, name) {
		return nil, errorf("mknod", path, AlreadyExists)
	}

	node := newFileInode(mode, uid, gid)
	if err := addNode(parent, node, name); err != nil {
		return nil, err
	}
	return node, nil
}

// Mkdir creates a new, empty directory inode (with "." and ".."
// already populated) and attaches it at path.
func (fs *Filesystem) Mkdir(path string, mode, uid, gid uint32) (*Inode, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, name, err := resolveParent(fs.root, path)
	if err != nil {
		return nil, err
	}
	if dirHas(parent.dir, name) {
		return nil, errorf("mkdir", path, AlreadyExists)
	}

	child := newDirInode(mode, uid, gid, fs.maxNameLen)

	dot, err := dirAppend(child.dir, ".")
	if err != nil {
		return nil, err
	}
	dot.inode = child
	child.nlink++ // invariant 3: +1 for the directory's own "."

	dotdot, err := dirAppend(child.dir, "..")
	if err != nil {
		return nil, err
	}
	dotdot.inode = parent
	parent.nlink++ // invariant 3: +1 on the parent for this child's ".."

	if err := addNode(parent, child, name); err != nil {
		parent.nlink-- // the child's ".." never got attached
		return nil, err
	}
	return child, nil
}

// Link attaches a second directory entry to the regular file named by
// existingPath, under newPath. Hard-linking a directory is rejected.
func (fs *Filesystem) Link(existingPath, newPath string) (*Inode, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	target, err := resolve(fs.root, existingPath)
	if err != nil {
		return nil, err
	}
	if target.IsDir() {
		return nil, errorf("link", existingPath, NotPermitted)
	}

	parent, name, err := resolveParent(fs.root, newPath)
	if err != nil {
		return nil, err
	}
	if dirHas(parent.dir, name) {
		return nil, errorf("link", newPath, AlreadyExists)
	}
	if err := addNode(parent, target, name); err != nil {
		return nil, err
	}
	return target, nil
}

// validateRename enforces rename's topology rules: both paths must
// be well-formed, neither may contain a bare "." or ".." segment, and
// newPath must not be a descendant of oldPath.
func validateRename(oldPath, newPath string) error {
	for _, p := range []string{oldPath, newPath} {
		if !strings.HasPrefix(p, "/") {
			return errorf("rename", p, InvalidPath)
		}
		for _, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
			if seg == "." || seg == ".." {
				return errorf("rename", p, InvalidPath)
			}
		}
	}
	if oldPath == "/" {
		return errorf("rename", oldPath, InvalidPath)
	}
	if newPath == oldPath || strings.HasPrefix(newPath, oldPath+"/") {
		return errorf("rename", newPath, InvalidPath)
	}
	return nil
}

// Rename atomically relocates the entry named by oldPath to
// newPath. If newPath already names a regular file, that file is
// released first; if it names a directory, Rename fails
// is-a-directory. If the moved entry is itself a directory changing
// parents, its ".." is repointed at the new parent and both parents'
// nlink are adjusted to match (the moved directory's own nlink is
// unaffected — it still owns the same children and the same ".").
func (fs *Filesystem) Rename(oldPath, newPath string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := validateRename(oldPath, newPath); err != nil {
		return err
	}

	oldParent, oldName, err := resolveParent(fs.root, oldPath)
	if err != nil {
		return err
	}
	newParent, newName, err := resolveParent(fs.root, newPath)
	if err != nil {
		return err
	}

	if !dirHas(oldParent.dir, oldName) {
		return errorf("rename", oldPath, NoSuchEntry)
	}

	if existing := dirLookup(newParent.dir, newName); existing != nil {
		if existing.IsDir() {
			return errorf("rename", newPath, IsADirectory)
		}
		if _, err := dirRemove(newParent.dir, newName); err != nil {
			return err
		}
		fs.releaseFile(existing)
	}

	moved, err := dirRemove(oldParent.dir, oldName)
	if err != nil {
		return err
	}

	entry, err := dirAppend(newParent.dir, newName)
	if err != nil {
		// Put the entry back so a failed rename leaves the old name in
		// place. dirAppend fails here only with OutOfSpace on an
		// invalid new name (resolveParent does not check name
		// length); the restored entry goes to the end of the listing.
		back, _ := dirAppend(oldParent.dir, oldName)
		back.inode = moved
		return err
	}
	entry.inode = moved

	if moved.IsDir() && oldParent != newParent {
		dirSetInode(moved.dir, "..", newParent)
		oldParent.nlink--
		newParent.nlink++
	}

	return nil
}

// releaseNode detaches the entry named by path and, if it becomes
// unreferenced, destroys the inode.
func (fs *Filesystem) releaseNode(path string, requireEmptyDir bool) error {
	parent, name, err := resolveParent(fs.root, path)
	if err != nil {
		return err
	}
	target := dirLookup(parent.dir, name)
	if target == nil {
		return errorf("release-node", path, NoSuchEntry)
	}

	if target.IsDir() {
		if !requireEmptyDir {
			return errorf("release-node", path, IsADirectory)
		}
		if !dirIsEmpty(target.dir) {
			return errorf("release-node", path, NotEmpty)
		}
		if _, err := dirRemove(target.dir, ".."); err != nil {
			return err
		}
		parent.nlink--
		target.dir = nil
	} else {
		if requireEmptyDir {
			return errorf("release-node", path, NotADirectory)
		}
		fs.releaseFile(target)
	}

	_, err = dirRemove(parent.dir, name)
	return err
}

// releaseFile decrements nlink and frees the inode's content buffer
// once both nlink and nopen have reached zero.
func (fs *Filesystem) releaseFile(target *Inode) {
	target.nlink--
	if target.nlink == 0 && target.nopen == 0 {
		target.data = nil
		target.size = 0
	}
}

// Unlink detaches a regular file's directory entry.
func (fs *Filesystem) Unlink(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.releaseNode(path, false)
}

// Rmdir detaches and destroys an empty directory.
func (fs *Filesystem) Rmdir(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if path == "/" {
		return errorf("rmdir", path, Busy)
	}
	return fs.releaseNode(path, true)
}
