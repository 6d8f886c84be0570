// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

// Section is implemented by every section of a module.
type Section interface {
	// SectionID returns the section's ID.
	SectionID() SectionID
	// GetRawSection returns the section's position and encoded payload as read from the binary.
	GetRawSection() *RawSection
	// ReadPayload decodes the section payload. r is limited to the payload.
	ReadPayload(r io.Reader) error
	// WritePayload encodes the section payload without its size prefix.
	WritePayload(w io.Writer) error
}

// SectionID is a 1-byte code that encodes the section code of both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom    SectionID = 0
	SectionIDType      SectionID = 1
	SectionIDImport    SectionID = 2
	SectionIDFunction  SectionID = 3
	SectionIDTable     SectionID = 4
	SectionIDMemory    SectionID = 5
	SectionIDGlobal    SectionID = 6
	SectionIDExport    SectionID = 7
	SectionIDStart     SectionID = 8
	SectionIDElement   SectionID = 9
	SectionIDCode      SectionID = 10
	SectionIDData      SectionID = 11
	SectionIDDataCount SectionID = 12
	SectionIDTag       SectionID = 13
)

var sectionNames = [...]string{
	SectionIDCustom:    "custom",
	SectionIDType:      "type",
	SectionIDImport:    "import",
	SectionIDFunction:  "function",
	SectionIDTable:     "table",
	SectionIDMemory:    "memory",
	SectionIDGlobal:    "global",
	SectionIDExport:    "export",
	SectionIDStart:     "start",
	SectionIDElement:   "element",
	SectionIDCode:      "code",
	SectionIDData:      "data",
	SectionIDDataCount: "data count",
	SectionIDTag:       "tag",
}

func (s SectionID) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown"
}

// order returns the position of a known section in the binary. The data count section sits between the element
// and code sections even though its ID is larger.
func (s SectionID) order() int {
	switch s {
	case SectionIDDataCount:
		return int(SectionIDElement) + 1
	case SectionIDCode, SectionIDData:
		return int(s) + 1
	default:
		return int(s)
	}
}

// RawSection records where a section was found in the binary and its undecoded payload.
type RawSection struct {
	Start int64
	End   int64

	ID    SectionID
	Bytes []byte
}

func (s *RawSection) SectionID() SectionID {
	return s.ID
}

func (s *RawSection) GetRawSection() *RawSection {
	return s
}

type InvalidSectionIDError SectionID

func (e InvalidSectionIDError) Error() string {
	return fmt.Sprintf("wasm: malformed section id %d", uint8(e))
}

var ErrUnsupportedSection = errors.New("wasm: unsupported section")

// MissingSectionError is returned when a section required by an operation is absent from the module.
type MissingSectionError SectionID

func (e MissingSectionError) Error() string {
	return fmt.Sprintf("wasm: missing section %s", SectionID(e).String())
}

var ErrSectionOrder = errors.New("wasm: sections must occur at most once and in the prescribed order")

// unmarshalerPtr constrains PT to a pointer to T that can decode itself.
type unmarshalerPtr[T any] interface {
	*T
	Unmarshaler
}

// marshalerPtr constrains PT to a pointer to T that can encode itself.
type marshalerPtr[T any] interface {
	*T
	Marshaler
}

// readVec reads a length-prefixed vector of entries.
func readVec[T any, PT unmarshalerPtr[T]](r io.Reader) ([]T, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}

	entries := make([]T, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		var entry T
		if err := PT(&entry).UnmarshalWASM(r); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// writeVec writes a length-prefixed vector of entries.
func writeVec[T any, PT marshalerPtr[T]](w io.Writer, entries []T) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(entries))); err != nil {
		return err
	}
	for i := range entries {
		if err := PT(&entries[i]).MarshalWASM(w); err != nil {
			return err
		}
	}
	return nil
}

func readIndices(r io.Reader) ([]uint32, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}
	indices := make([]uint32, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		idx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func writeIndices(w io.Writer, indices []uint32) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(indices))); err != nil {
		return err
	}
	for _, idx := range indices {
		if _, err := leb128.WriteVarUint32(w, idx); err != nil {
			return err
		}
	}
	return nil
}
