// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

// Teardown destroys the entire graph reachable from root, without
// re-entering an already-visited directory — cycle-safe because
// every directory reaches back into the graph through "." (itself)
// and ".." (its parent). It does not take fs.mu: callers tear down a
// Filesystem exactly once, at shutdown, after the bridge has stopped
// issuing requests.
func (fs *Filesystem) Teardown() {
	teardown(fs.root, fs.logger)
}

func teardown(n *Inode, logger Logger) {
	n.nlink--

	if n.traversing {
		// Cycle guard: a child's ".." reached back into a directory
		// that is currently being torn down.
		return
	}
	n.traversing = true

	if n.nopen > 0 && logger != nil {
		logger.Printf("ramfs: teardown: inode has %d open handle(s) still outstanding", n.nopen)
	}

	if n.IsDir() && n.dir != nil {
		entries := append([]dirEntry(nil), n.dir.entries...)
		for _, e := range entries {
			teardown(e.inode, logger)
		}
	}

	n.traversing = false

	if n.nlink <= 0 {
		n.data = nil
		n.dir = nil
	}
}
