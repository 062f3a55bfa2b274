// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

// dirEntry is a single (name, inode) pair inside a directory's
// listing. Caller is responsible for setting Inode after dirAppend.
type dirEntry struct {
	name  string
	inode *Inode
}

// directory is the ordered sequence of entries belonging to a
// directory inode. entries always begins with "." and "..", as
// required by spec invariant 4; the remainder is user-created
// entries in insertion order. index mirrors entries for O(1)
// lookup/removal and is not part of the exported contract.
type directory struct {
	entries []dirEntry
	index   map[string]int
	maxName int
}

func newDirectory(maxName int) *directory {
	if maxName <= 0 {
		maxName = MaxNameLen
	}
	return &directory{index: make(map[string]int), maxName: maxName}
}

// dirAppend creates a fresh entry with the given name appended at the
// tail and returns it so the caller can set its Inode. Fails
// out-of-space if the name is empty, contains '/', or exceeds the
// listing's maximum name length.
func dirAppend(d *directory, name string) (*dirEntry, error) {
	if !validName(name, d.maxName) {
		return nil, errorf("append", name, OutOfSpace)
	}
	if _, ok := d.index[name]; ok {
		// Namespace operations are responsible for enforcing
		// uniqueness before calling dirAppend; reaching here with a
		// duplicate indicates a bug in the caller, not bad input.
		panic("ramfs: duplicate directory entry: " + name)
	}
	d.index[name] = len(d.entries)
	d.entries = append(d.entries, dirEntry{name: name})
	return &d.entries[len(d.entries)-1], nil
}

// dirRemove removes the first entry whose name matches and returns
// the inode it referenced. Fails no-such-entry if absent. Does not
// touch link counts; callers (namespace.go) do that.
func dirRemove(d *directory, name string) (*Inode, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, errorf("remove", name, NoSuchEntry)
	}
	removed := d.entries[i].inode
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, name)
	for n, idx := range d.index {
		if idx > i {
			d.index[n] = idx - 1
		}
	}
	return removed, nil
}

// dirLookup returns the inode named by name in d, or nil if absent.
func dirLookup(d *directory, name string) *Inode {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.entries[i].inode
}

// dirHas reports whether name is already present in d.
func dirHas(d *directory, name string) bool {
	_, ok := d.index[name]
	return ok
}

// dirSetInode repoints the entry named name at inode. No-op if name
// is absent. Used to re-target a moved directory's ".." entry.
func dirSetInode(d *directory, name string, inode *Inode) {
	if i, ok := d.index[name]; ok {
		d.entries[i].inode = inode
	}
}

// dirIsEmpty reports whether d contains only "." and "..".
func dirIsEmpty(d *directory) bool {
	return len(d.entries) == 2
}

// dirNames returns the listing's entry names in order, including "."
// and "..". Used by opendir/readdir (handle.go) and by Path (fs.go).
func dirNames(d *directory) []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.name
	}
	return names
}

func validName(name string, maxName int) bool {
	if name == "" || len(name) > maxName {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return false
		}
	}
	return true
}
