// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var casesUint = []struct {
	v uint32
	b []byte
}{
	{v: 0, b: []byte{0x00}},
	{v: 1, b: []byte{0x01}},
	{v: 127, b: []byte{0x7f}},
	{v: 128, b: []byte{0x80, 0x01}},
	{v: 624485, b: []byte{0xe5, 0x8e, 0x26}},
	{v: 0xffffffff, b: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
}

var casesInt = []struct {
	v int64
	b []byte
}{
	{v: 0, b: []byte{0x00}},
	{v: -1, b: []byte{0x7f}},
	{v: 63, b: []byte{0x3f}},
	{v: 64, b: []byte{0xc0, 0x00}},
	{v: -64, b: []byte{0x40}},
	{v: -65, b: []byte{0xbf, 0x7f}},
	{v: -123456, b: []byte{0xc0, 0xbb, 0x78}},
	{v: 624485, b: []byte{0xe5, 0x8e, 0x26}},
	{v: 2147483647, b: []byte{0xff, 0xff, 0xff, 0xff, 0x07}},
	{v: -2147483648, b: []byte{0x80, 0x80, 0x80, 0x80, 0x78}},
}

func TestReadVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarUint32(bytes.NewReader(c.b))
			require.NoError(t, err)
			assert.Equal(t, c.v, n)

			n, read, err := GetVarUint32(c.b)
			require.NoError(t, err)
			assert.Equal(t, c.v, n)
			assert.Equal(t, len(c.b), read)
		})
	}
}

func TestReadVarint64(t *testing.T) {
	for _, c := range casesInt {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarint64(bytes.NewReader(c.b))
			require.NoError(t, err)
			assert.Equal(t, c.v, n)

			n, read, err := GetVarint64(c.b)
			require.NoError(t, err)
			assert.Equal(t, c.v, n)
			assert.Equal(t, len(c.b), read)
		})
	}
}

func TestReadErrors(t *testing.T) {
	_, err := ReadVarUint32(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)

	_, err = ReadVarUint32(bytes.NewReader([]byte{0x80}))
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	_, _, err = GetVarUint32(nil)
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	// six bytes cannot hold a u32
	_, err = ReadVarUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
	assert.Equal(t, ErrOverflow, err)

	// the fifth byte may only use its low four bits
	_, err = ReadVarUint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x1f}))
	assert.Equal(t, ErrOverflow, err)

	_, err = ReadVarint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}))
	assert.Equal(t, ErrOverflow, err)
}
