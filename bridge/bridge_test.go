// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ramfsd/ramfs/internal/testutil"
	"github.com/ramfsd/ramfs/ramfs"
)

type testCase struct {
	*testing.T

	mntDir string
	fsys   *ramfs.Filesystem
	server fuseServerCloser
}

// fuseServerCloser narrows *fuse.Server down to the one method the
// test harness needs, so this file does not have to import the fuse
// package just to spell out a type.
type fuseServerCloser interface {
	Unmount() error
}

func newTestCase(t *testing.T) *testCase {
	t.Helper()
	dir := t.TempDir()
	mntDir := filepath.Join(dir, "mnt")
	if err := os.Mkdir(mntDir, 0755); err != nil {
		t.Fatal(err)
	}

	fsys := ramfs.NewFilesystem(ramfs.Options{RootMode: 0755})
	server, err := Mount(mntDir, fsys, MountOptions{
		Debug:    testutil.VerboseTest(),
		EntryTTL: time.Second,
		AttrTTL:  time.Second,
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	tc := &testCase{T: t, mntDir: mntDir, fsys: fsys, server: server}
	t.Cleanup(func() {
		if err := tc.server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
		fsys.Teardown()
	})
	return tc
}

func TestMountWriteReadRoundTrip(t *testing.T) {
	tc := newTestCase(t)

	fn := filepath.Join(tc.mntDir, "hello.txt")
	if err := os.WriteFile(fn, []byte("hello ramfs"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(fn)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello ramfs" {
		t.Fatalf("read %q, want %q", got, "hello ramfs")
	}
}

func TestMountMkdirReaddir(t *testing.T) {
	tc := newTestCase(t)

	if err := os.Mkdir(filepath.Join(tc.mntDir, "sub"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tc.mntDir, "sub", "a"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(tc.mntDir, "sub"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a" {
		t.Fatalf("ReadDir = %v, want [a]", entries)
	}
}

func TestMountRename(t *testing.T) {
	tc := newTestCase(t)

	oldPath := filepath.Join(tc.mntDir, "old")
	newPath := filepath.Join(tc.mntDir, "new")
	if err := os.WriteFile(oldPath, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("old path still exists after rename")
	}
	got, err := os.ReadFile(newPath)
	if err != nil || string(got) != "data" {
		t.Fatalf("ReadFile(new) = %q, %v", got, err)
	}
}

func TestMountLink(t *testing.T) {
	tc := newTestCase(t)

	a := filepath.Join(tc.mntDir, "a")
	b := filepath.Join(tc.mntDir, "b")
	if err := os.WriteFile(a, []byte("shared"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Link(a, b); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := os.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, err := os.ReadFile(b)
	if err != nil || string(got) != "shared" {
		t.Fatalf("ReadFile(b) = %q, %v", got, err)
	}
}

// TestMountConcurrentCreate drives many concurrent file creations
// through the mount, exercising the Filesystem's coarse lock under
// genuine goroutine concurrency rather than serialized calls.
func TestMountConcurrentCreate(t *testing.T) {
	tc := newTestCase(t)

	var g errgroup.Group
	const n = 32
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn := filepath.Join(tc.mntDir, fmt.Sprintf("f%d", i))
			return os.WriteFile(fn, []byte(fmt.Sprintf("content-%d", i)), 0644)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent create: %v", err)
	}

	entries, err := os.ReadDir(tc.mntDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != n {
		t.Fatalf("ReadDir returned %d entries, want %d", len(entries), n)
	}
}
