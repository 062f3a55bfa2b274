// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ramfs

// readContent clamps to size-off when off+len(dest) > size, and
// returns 0 bytes (not an error) once off >= size.
func readContent(n *Inode, dest []byte, off int64) (int, error) {
	if n.IsDir() {
		return 0, errorf("read", "", IsADirectory)
	}
	if off < 0 || off >= n.size {
		return 0, nil
	}
	end := off + int64(len(dest))
	if end > n.size {
		end = n.size
	}
	return copy(dest, n.data[off:end]), nil
}

// writeContent grows the buffer when off+len(data) > size. Growth is
// always zero-filled between the old size and off, then data is
// copied in at off.
func writeContent(n *Inode, data []byte, off int64) (int, error) {
	if n.IsDir() {
		return 0, errorf("write", "", IsADirectory)
	}
	if off < 0 {
		return 0, errorf("write", "", InvalidPath)
	}

	need := off + int64(len(data))
	if need > n.size {
		grown := make([]byte, need)
		copy(grown, n.data)
		n.data = grown
		n.size = need
	}
	return copy(n.data[off:], data), nil
}

// truncateContent resizes n's buffer to newSize. Shrinking to 0
// releases the underlying slice outright (sets it to nil) so the
// freed buffer is observable rather than just logically empty.
// Growth zero-fills, matching writeContent.
func truncateContent(n *Inode, newSize int64) error {
	if n.IsDir() {
		return errorf("truncate", "", IsADirectory)
	}
	if newSize < 0 {
		return errorf("truncate", "", InvalidPath)
	}
	switch {
	case newSize == 0:
		n.data = nil
	case newSize <= n.size:
		n.data = n.data[:newSize]
	default:
		grown := make([]byte, newSize)
		copy(grown, n.data)
		n.data = grown
	}
	n.size = newSize
	return nil
}
