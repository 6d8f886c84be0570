// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

var (
	_ Section = (*SectionCustom)(nil)
	_ Section = (*SectionTypes)(nil)
	_ Section = (*SectionImports)(nil)
	_ Section = (*SectionFunctions)(nil)
	_ Section = (*SectionTables)(nil)
	_ Section = (*SectionMemories)(nil)
	_ Section = (*SectionGlobals)(nil)
	_ Section = (*SectionExports)(nil)
	_ Section = (*SectionStartFunction)(nil)
	_ Section = (*SectionElements)(nil)
	_ Section = (*SectionDataCount)(nil)
	_ Section = (*SectionCode)(nil)
	_ Section = (*SectionData)(nil)
)

// SectionCustom is a custom section. Its contents are opaque to the decoder.
type SectionCustom struct {
	RawSection
	Name string
	Data []byte
}

func (*SectionCustom) SectionID() SectionID {
	return SectionIDCustom
}

func (s *SectionCustom) ReadPayload(r io.Reader) (err error) {
	if s.Name, err = readUTF8StringUint(r); err != nil {
		return err
	}
	s.Data, err = io.ReadAll(r)
	return err
}

func (s *SectionCustom) WritePayload(w io.Writer) error {
	if err := writeStringUint(w, s.Name); err != nil {
		return err
	}
	_, err := w.Write(s.Data)
	return err
}

// SectionTypes declares the function signatures used by the module.
type SectionTypes struct {
	RawSection
	Entries []FunctionSig
}

func (*SectionTypes) SectionID() SectionID {
	return SectionIDType
}

func (s *SectionTypes) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[FunctionSig](r)
	return err
}

func (s *SectionTypes) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

// SectionFunctions declares the signature of each function defined by the module. Types[i] is the type index of
// the function whose body is Code.Bodies[i].
type SectionFunctions struct {
	RawSection
	Types []uint32
}

func (*SectionFunctions) SectionID() SectionID {
	return SectionIDFunction
}

func (s *SectionFunctions) ReadPayload(r io.Reader) (err error) {
	s.Types, err = readIndices(r)
	return err
}

func (s *SectionFunctions) WritePayload(w io.Writer) error {
	return writeIndices(w, s.Types)
}

type SectionTables struct {
	RawSection
	Entries []Table
}

func (*SectionTables) SectionID() SectionID {
	return SectionIDTable
}

func (s *SectionTables) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[Table](r)
	return err
}

func (s *SectionTables) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

type SectionMemories struct {
	RawSection
	Entries []Memory
}

func (*SectionMemories) SectionID() SectionID {
	return SectionIDMemory
}

func (s *SectionMemories) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[Memory](r)
	return err
}

func (s *SectionMemories) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

// GlobalEntry declares a global variable and its constant initializer expression.
type GlobalEntry struct {
	Type GlobalVar
	Init []byte
}

func (g *GlobalEntry) UnmarshalWASM(r io.Reader) (err error) {
	if err = g.Type.UnmarshalWASM(r); err != nil {
		return err
	}
	g.Init, err = readInitExpr(r)
	return err
}

func (g *GlobalEntry) MarshalWASM(w io.Writer) error {
	if err := g.Type.MarshalWASM(w); err != nil {
		return err
	}
	_, err := w.Write(g.Init)
	return err
}

type SectionGlobals struct {
	RawSection
	Globals []GlobalEntry
}

func (*SectionGlobals) SectionID() SectionID {
	return SectionIDGlobal
}

func (s *SectionGlobals) ReadPayload(r io.Reader) (err error) {
	s.Globals, err = readVec[GlobalEntry](r)
	return err
}

func (s *SectionGlobals) WritePayload(w io.Writer) error {
	return writeVec(w, s.Globals)
}

type DuplicateExportError string

func (e DuplicateExportError) Error() string {
	return fmt.Sprintf("Duplicate export entry: %s", string(e))
}

// ExportEntry exports the entity of the given kind at Index under the name FieldStr.
type ExportEntry struct {
	FieldStr string
	Kind     External
	Index    uint32
}

func (e *ExportEntry) UnmarshalWASM(r io.Reader) (err error) {
	if e.FieldStr, err = readUTF8StringUint(r); err != nil {
		return err
	}
	if err = e.Kind.UnmarshalWASM(r); err != nil {
		return err
	}
	e.Index, err = leb128.ReadVarUint32(r)
	return err
}

func (e *ExportEntry) MarshalWASM(w io.Writer) error {
	if err := writeStringUint(w, e.FieldStr); err != nil {
		return err
	}
	if err := e.Kind.MarshalWASM(w); err != nil {
		return err
	}
	_, err := leb128.WriteVarUint32(w, e.Index)
	return err
}

// SectionExports lists the module's exports. Entries are kept in declaration order.
type SectionExports struct {
	RawSection
	Entries []ExportEntry
}

func (*SectionExports) SectionID() SectionID {
	return SectionIDExport
}

func (s *SectionExports) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[ExportEntry](r)
	return err
}

func (s *SectionExports) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

// Lookup returns the export with the given field name.
func (s *SectionExports) Lookup(field string) (ExportEntry, bool) {
	for _, e := range s.Entries {
		if e.FieldStr == field {
			return e, true
		}
	}
	return ExportEntry{}, false
}

// SectionStartFunction names the function that runs when the module is instantiated.
type SectionStartFunction struct {
	RawSection
	Index uint32
}

func (*SectionStartFunction) SectionID() SectionID {
	return SectionIDStart
}

func (s *SectionStartFunction) ReadPayload(r io.Reader) (err error) {
	s.Index, err = leb128.ReadVarUint32(r)
	return err
}

func (s *SectionStartFunction) WritePayload(w io.Writer) error {
	_, err := leb128.WriteVarUint32(w, s.Index)
	return err
}

// SectionDataCount declares the number of data segments ahead of the code section, which lets bulk memory
// instructions refer to segments.
type SectionDataCount struct {
	RawSection
	Count uint32
}

func (*SectionDataCount) SectionID() SectionID {
	return SectionIDDataCount
}

func (s *SectionDataCount) ReadPayload(r io.Reader) (err error) {
	s.Count, err = leb128.ReadVarUint32(r)
	return err
}

func (s *SectionDataCount) WritePayload(w io.Writer) error {
	_, err := leb128.WriteVarUint32(w, s.Count)
	return err
}
