// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

import "testing"

func TestMkdirNlinkBookkeeping(t *testing.T) {
	fs := NewFilesystem(Options{})
	if fs.root.nlink != 2 {
		t.Fatalf("fresh root nlink = %d, want 2", fs.root.nlink)
	}

	a, err := fs.Mkdir("/a", 0755, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a.nlink != 2 {
		t.Fatalf("new dir nlink = %d, want 2 (own . + parent entry)", a.nlink)
	}
	if fs.root.nlink != 3 {
		t.Fatalf("root nlink after one subdir = %d, want 3", fs.root.nlink)
	}

	if _, err := fs.Mkdir("/a/b", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if a.nlink != 3 {
		t.Fatalf("a.nlink after child subdir = %d, want 3 (own . + parent entry + child's ..)", a.nlink)
	}
}

func TestMkdirRejectsExisting(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/a", 0755, 0, 0); mustKind(t, err) != AlreadyExists {
		t.Fatalf("want AlreadyExists")
	}
}

func TestMknodGetattrRoundTrip(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mknod("/f", 0640, 7, 9); err != nil {
		t.Fatal(err)
	}
	mode, uid, gid, nlink, size, err := fs.Getattr("/f")
	if err != nil {
		t.Fatal(err)
	}
	if mode != 0640 || uid != 7 || gid != 9 || nlink != 1 || size != 0 {
		t.Fatalf("getattr = mode=%o uid=%d gid=%d nlink=%d size=%d", mode, uid, gid, nlink, size)
	}
}

func TestLinkAndUnlink(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	h, err := fs.Open("/f")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Write([]byte("hello"), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Link("/f", "/g"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Unlink("/f"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolve(fs.root, "/f"); mustKind(t, err) != NoSuchEntry {
		t.Fatalf("/f should be gone")
	}

	gh, err := fs.Open("/g")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	n, err := gh.Read(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("read via hard link = %q, want hello", buf[:n])
	}

	_, _, _, nlink, _, err := fs.Getattr("/g")
	if err != nil {
		t.Fatal(err)
	}
	if nlink != 1 {
		t.Fatalf("g.nlink = %d, want 1", nlink)
	}

	if err := h.Release(); err != nil {
		t.Fatal(err)
	}
	if err := gh.Release(); err != nil {
		t.Fatal(err)
	}
}

func TestLinkRejectsDirectory(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Link("/a", "/b"); mustKind(t, err) != NotPermitted {
		t.Fatalf("want NotPermitted")
	}
}

func TestRmdirRequiresEmpty(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/a/b", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}

	if err := fs.Rmdir("/a"); mustKind(t, err) != NotEmpty {
		t.Fatalf("want NotEmpty")
	}

	if err := fs.Rmdir("/a/b"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rmdir("/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolve(fs.root, "/a"); mustKind(t, err) != NoSuchEntry {
		t.Fatalf("/a should be gone")
	}
}

func TestRmdirRoot(t *testing.T) {
	fs := NewFilesystem(Options{})
	if err := fs.Rmdir("/"); mustKind(t, err) != Busy {
		t.Fatalf("rmdir(/) should fail Busy")
	}
}

func TestRenameBasic(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mknod("/a/x", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/a/x", "/a/y"); err != nil {
		t.Fatal(err)
	}
	dh, err := fs.Opendir("/a")
	if err != nil {
		t.Fatal(err)
	}
	names := dh.Readdir()
	var hasY, hasX bool
	for _, n := range names {
		if n == "y" {
			hasY = true
		}
		if n == "x" {
			hasX = true
		}
	}
	if !hasY || hasX {
		t.Fatalf("readdir(/a) = %v, want y present and x absent", names)
	}
}

func TestRenameRoundTrip(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mknod("/a", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/a", "/b"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/b", "/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolve(fs.root, "/a"); err != nil {
		t.Fatalf("expected /a to exist again: %v", err)
	}
}

func TestRenameRejectsDescendant(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/b", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/a", "/a/c"); mustKind(t, err) != InvalidPath {
		t.Fatalf("want InvalidPath for descendant rename")
	}
}

func TestRenameOverRegularFileReleasesTarget(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mknod("/a", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mknod("/b", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/a", "/b"); err != nil {
		t.Fatal(err)
	}
	dh, err := fs.Opendir("/")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, n := range dh.Readdir() {
		if n == "a" || n == "b" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("readdir(/) has %d of {a,b}, want 1 (b only)", count)
	}
}

func TestRenameOverDirectoryFails(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/b", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/a", "/b"); mustKind(t, err) != IsADirectory {
		t.Fatalf("want IsADirectory")
	}
}

func TestRenameDirectoryAcrossParentsFixesDotDotAndNlink(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/b", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mkdir("/a/c", 0755, 0, 0); err != nil {
		t.Fatal(err)
	}

	a, err := resolve(fs.root, "/a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := resolve(fs.root, "/b")
	if err != nil {
		t.Fatal(err)
	}
	aNlink, bNlink := a.nlink, b.nlink

	if err := fs.Rename("/a/c", "/b/c"); err != nil {
		t.Fatal(err)
	}

	if _, err := resolve(fs.root, "/a/c"); mustKind(t, err) != NoSuchEntry {
		t.Fatalf("/a/c should be gone after rename")
	}
	moved, err := resolve(fs.root, "/b/c")
	if err != nil {
		t.Fatalf("/b/c should exist after rename: %v", err)
	}

	parentViaDotDot, err := resolve(fs.root, "/b/c/..")
	if err != nil {
		t.Fatal(err)
	}
	if parentViaDotDot != b {
		t.Fatalf("/b/c/.. resolved to a different inode than /b, want it to follow the move")
	}
	if moved.parent != a {
		t.Fatalf("moved.parent changed from its original attach point; the sticky parent field must stay put")
	}

	if a.nlink != aNlink-1 {
		t.Fatalf("a.nlink = %d, want %d (lost c's \"..\")", a.nlink, aNlink-1)
	}
	if b.nlink != bNlink+1 {
		t.Fatalf("b.nlink = %d, want %d (gained c's \"..\")", b.nlink, bNlink+1)
	}
}

func TestDirectoryNameUniqueness(t *testing.T) {
	fs := NewFilesystem(Options{})
	if _, err := fs.Mknod("/x", 0644, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Mknod("/x", 0644, 0, 0); mustKind(t, err) != AlreadyExists {
		t.Fatalf("want AlreadyExists")
	}
	if _, err := fs.Mkdir("/x", 0755, 0, 0); mustKind(t, err) != AlreadyExists {
		t.Fatalf("want AlreadyExists for dir over file name too")
	}
}
