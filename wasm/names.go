// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

// CustomSectionName is the name of the custom section that holds debug names.
const CustomSectionName = "name"

var (
	_ Marshaler   = (*NameSection)(nil)
	_ Unmarshaler = (*NameSection)(nil)

	_ NameSubsection = (*ModuleNameSubsection)(nil)
	_ NameSubsection = (*FunctionNamesSubsection)(nil)
	_ NameSubsection = (*LocalNamesSubsection)(nil)
	_ NameSubsection = (*RawNameSubsection)(nil)
)

// NameType identifies a subsection of the name section.
type NameType byte

const (
	NameModule   = NameType(0)
	NameFunction = NameType(1)
	NameLocal    = NameType(2)
)

// NameSubsection is a single subsection of the name section.
type NameSubsection interface {
	Marshaler
	Unmarshaler

	Type() NameType
}

// Naming associates a name with an index.
type Naming struct {
	Index uint32
	Name  string
}

func (n *Naming) UnmarshalWASM(r io.Reader) (err error) {
	if n.Index, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	n.Name, err = readUTF8StringUint(r)
	return err
}

func (n *Naming) MarshalWASM(w io.Writer) error {
	if _, err := leb128.WriteVarUint32(w, n.Index); err != nil {
		return err
	}
	return writeStringUint(w, n.Name)
}

// LocalNames holds the local names of the function at Index.
type LocalNames struct {
	Index uint32
	Names []Naming
}

func (l *LocalNames) UnmarshalWASM(r io.Reader) (err error) {
	if l.Index, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	l.Names, err = readVec[Naming](r)
	return err
}

func (l *LocalNames) MarshalWASM(w io.Writer) error {
	if _, err := leb128.WriteVarUint32(w, l.Index); err != nil {
		return err
	}
	return writeVec(w, l.Names)
}

type ModuleNameSubsection struct {
	Name string
}

func (*ModuleNameSubsection) Type() NameType { return NameModule }

func (s *ModuleNameSubsection) UnmarshalWASM(r io.Reader) (err error) {
	s.Name, err = readUTF8StringUint(r)
	return err
}

func (s *ModuleNameSubsection) MarshalWASM(w io.Writer) error {
	return writeStringUint(w, s.Name)
}

// FunctionNamesSubsection maps function indices to names. Entries are ordered by index.
type FunctionNamesSubsection struct {
	Names []Naming
}

func (*FunctionNamesSubsection) Type() NameType { return NameFunction }

func (s *FunctionNamesSubsection) UnmarshalWASM(r io.Reader) (err error) {
	s.Names, err = readVec[Naming](r)
	return err
}

func (s *FunctionNamesSubsection) MarshalWASM(w io.Writer) error {
	return writeVec(w, s.Names)
}

type LocalNamesSubsection struct {
	Funcs []LocalNames
}

func (*LocalNamesSubsection) Type() NameType { return NameLocal }

func (s *LocalNamesSubsection) UnmarshalWASM(r io.Reader) (err error) {
	s.Funcs, err = readVec[LocalNames](r)
	return err
}

func (s *LocalNamesSubsection) MarshalWASM(w io.Writer) error {
	return writeVec(w, s.Funcs)
}

// RawNameSubsection holds a subsection whose layout is not understood. It is written back unchanged.
type RawNameSubsection struct {
	ID    NameType
	Bytes []byte
}

func (s *RawNameSubsection) Type() NameType { return s.ID }

func (s *RawNameSubsection) UnmarshalWASM(r io.Reader) (err error) {
	s.Bytes, err = io.ReadAll(r)
	return err
}

func (s *RawNameSubsection) MarshalWASM(w io.Writer) error {
	_, err := w.Write(s.Bytes)
	return err
}

func newNameSubsection(typ NameType) NameSubsection {
	switch typ {
	case NameModule:
		return &ModuleNameSubsection{}
	case NameFunction:
		return &FunctionNamesSubsection{}
	case NameLocal:
		return &LocalNamesSubsection{}
	default:
		return &RawNameSubsection{ID: typ}
	}
}

// NameSection is a custom section that stores names of modules, functions and locals for debugging purposes.
// See https://github.com/WebAssembly/design/blob/master/BinaryEncoding.md#name-section for more details.
type NameSection struct {
	Entries []NameSubsection
}

// Functions returns the function names subsection, if any.
func (s *NameSection) Functions() *FunctionNamesSubsection {
	for _, sub := range s.Entries {
		if f, ok := sub.(*FunctionNamesSubsection); ok {
			return f
		}
	}
	return nil
}

// Locals returns the local names subsection, if any.
func (s *NameSection) Locals() *LocalNamesSubsection {
	for _, sub := range s.Entries {
		if l, ok := sub.(*LocalNamesSubsection); ok {
			return l
		}
	}
	return nil
}

// UnmarshalWASM reads subsections until r is exhausted. Each subsection must consume exactly its declared size.
func (s *NameSection) UnmarshalWASM(r io.Reader) error {
	s.Entries = nil
	for {
		id, err := readByte(r)
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		payload, err := readBytesUint(r)
		if err != nil {
			return err
		}

		sub, pr := newNameSubsection(NameType(id)), bytes.NewReader(payload)
		if err = sub.UnmarshalWASM(pr); err != nil {
			return fmt.Errorf("name subsection %d: %w", id, err)
		}
		if pr.Len() != 0 {
			return fmt.Errorf("name subsection %d: %d trailing bytes", id, pr.Len())
		}
		s.Entries = append(s.Entries, sub)
	}
}

func (s *NameSection) MarshalWASM(w io.Writer) error {
	var payload bytes.Buffer
	for _, sub := range s.Entries {
		payload.Reset()
		if err := sub.MarshalWASM(&payload); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(sub.Type())}); err != nil {
			return err
		}
		if err := writeBytesUint(w, payload.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
