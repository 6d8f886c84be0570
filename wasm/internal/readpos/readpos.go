// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package readpos tracks the number of bytes consumed from a reader.
package readpos

import "io"

// ReadPos wraps an io.Reader and keeps track of the current read position.
type ReadPos struct {
	R      io.Reader
	CurPos int64
}

// Read implements io.Reader.
func (r *ReadPos) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.CurPos += int64(n)
	return n, err
}

// ReadByte implements io.ByteReader.
func (r *ReadPos) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
