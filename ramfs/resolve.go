// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

import "strings"

// resolve walks a slash-separated path from start to the inode it
// names. A leading "/" is optional and consumed if present. An
// empty remainder returns start. start must be a directory.
func resolve(start *Inode, path string) (*Inode, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return start, nil
	}
	if !start.IsDir() {
		return nil, errorf("resolve", path, NotADirectory)
	}

	cur := start
	for _, seg := range strings.Split(path, "/") {
		if !cur.IsDir() {
			return nil, errorf("resolve", path, NotADirectory)
		}
		next := dirLookup(cur.dir, seg)
		if next == nil {
			return nil, errorf("resolve", path, NoSuchEntry)
		}
		cur = next
	}
	return cur, nil
}

// resolveParent splits path on its final "/" and resolves the prefix
// to a directory inode, returning it along with the suffix (the
// filename). Fails invalid-path if path does not begin with "/", and
// no-such-entry if path is empty or the filename is empty.
func resolveParent(root *Inode, path string) (*Inode, string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, "", errorf("resolve-parent", path, InvalidPath)
	}
	if path == "/" {
		return nil, "", errorf("resolve-parent", path, NoSuchEntry)
	}

	i := strings.LastIndexByte(path, '/')
	prefix := path[:i]
	name := path[i+1:]
	if name == "" {
		return nil, "", errorf("resolve-parent", path, NoSuchEntry)
	}

	parent, err := resolve(root, prefix)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", errorf("resolve-parent", path, NotADirectory)
	}
	return parent, name, nil
}
