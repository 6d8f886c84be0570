// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 provides functions for reading and writing integer values
// encoded in the Little Endian Base 128 (LEB128) format:
// https://en.wikipedia.org/wiki/LEB128
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when an encoded value does not fit in the requested integer width.
var ErrOverflow = errors.New("leb128: integer representation too long")

func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUnsigned(r io.Reader, bits uint) (uint64, error) {
	var result uint64
	for shift := uint(0); ; shift += 7 {
		b, err := readByte(r)
		if err != nil {
			if err == io.EOF && shift != 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if shift >= bits {
			return 0, ErrOverflow
		}
		// The final byte may only carry the bits that remain.
		if shift+7 > bits && uint64(b&0x7f)>>(bits-shift) != 0 {
			return 0, ErrOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

func readSigned(r io.Reader, bits uint) (int64, error) {
	var result int64
	var shift uint
	for {
		b, err := readByte(r)
		if err != nil {
			if err == io.EOF && shift != 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if shift >= bits {
			return 0, ErrOverflow
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			if bits < 64 && (result < -(1<<(bits-1)) || result >= 1<<(bits-1)) {
				return 0, ErrOverflow
			}
			return result, nil
		}
	}
}

// ReadVarUint32 reads a LEB128 encoded unsigned 32-bit integer from r.
// It returns io.EOF only if no bytes were read.
func ReadVarUint32(r io.Reader) (uint32, error) {
	n, err := readUnsigned(r, 32)
	return uint32(n), err
}

// ReadVarUint64 reads a LEB128 encoded unsigned 64-bit integer from r.
func ReadVarUint64(r io.Reader) (uint64, error) {
	return readUnsigned(r, 64)
}

// ReadVarint32 reads a LEB128 encoded signed 32-bit integer from r.
func ReadVarint32(r io.Reader) (int32, error) {
	n, err := readSigned(r, 32)
	return int32(n), err
}

// ReadVarint64 reads a LEB128 encoded signed 64-bit integer from r.
func ReadVarint64(r io.Reader) (int64, error) {
	return readSigned(r, 64)
}

type sliceReader struct {
	b []byte
	n int
}

func (s *sliceReader) ReadByte() (byte, error) {
	if s.n == len(s.b) {
		return 0, io.EOF
	}
	b := s.b[s.n]
	s.n++
	return b, nil
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.n == len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.n:])
	s.n += n
	return n, nil
}

// GetVarUint32 decodes a LEB128 encoded unsigned 32-bit integer from the start of b.
// It returns the value and the number of bytes consumed.
func GetVarUint32(b []byte) (uint32, int, error) {
	r := sliceReader{b: b}
	v, err := ReadVarUint32(&r)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return v, r.n, err
}

// GetVarint32 decodes a LEB128 encoded signed 32-bit integer from the start of b.
func GetVarint32(b []byte) (int32, int, error) {
	r := sliceReader{b: b}
	v, err := ReadVarint32(&r)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return v, r.n, err
}

// GetVarint64 decodes a LEB128 encoded signed 64-bit integer from the start of b.
func GetVarint64(b []byte) (int64, int, error) {
	r := sliceReader{b: b}
	v, err := ReadVarint64(&r)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return v, r.n, err
}
