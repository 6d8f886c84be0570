// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

type InvalidExternalError uint8

func (e InvalidExternalError) Error() string {
	return fmt.Sprintf("wasm: invalid external_kind value %d", uint8(e))
}

// Import describes the entity brought in by an import entry.
type Import interface {
	Marshaler
	Kind() External
	isImport()
}

// ImportEntry describes an import statement in a Wasm module. Type is a FuncImport, TableImport, MemoryImport, or
// GlobalVarImport.
type ImportEntry struct {
	ModuleName string
	FieldName  string
	Type       Import
}

// FuncImport imports a function with the signature at index Type of the type section.
type FuncImport struct {
	Type uint32
}

type TableImport struct {
	Type Table
}

type MemoryImport struct {
	Type Memory
}

type GlobalVarImport struct {
	Type GlobalVar
}

func (FuncImport) Kind() External      { return ExternalFunction }
func (TableImport) Kind() External     { return ExternalTable }
func (MemoryImport) Kind() External    { return ExternalMemory }
func (GlobalVarImport) Kind() External { return ExternalGlobal }

func (FuncImport) isImport()      {}
func (TableImport) isImport()     {}
func (MemoryImport) isImport()    {}
func (GlobalVarImport) isImport() {}

func (f FuncImport) MarshalWASM(w io.Writer) error {
	_, err := leb128.WriteVarUint32(w, f.Type)
	return err
}

func (t TableImport) MarshalWASM(w io.Writer) error {
	return t.Type.MarshalWASM(w)
}

func (t MemoryImport) MarshalWASM(w io.Writer) error {
	return t.Type.MarshalWASM(w)
}

func (t GlobalVarImport) MarshalWASM(w io.Writer) error {
	return t.Type.MarshalWASM(w)
}

// readImport decodes the descriptor of an import of the given kind.
func readImport(r io.Reader, kind External) (Import, error) {
	switch kind {
	case ExternalFunction:
		typeidx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, err
		}
		return FuncImport{Type: typeidx}, nil
	case ExternalTable:
		var t TableImport
		if err := t.Type.UnmarshalWASM(r); err != nil {
			return nil, err
		}
		return t, nil
	case ExternalMemory:
		var m MemoryImport
		if err := m.Type.UnmarshalWASM(r); err != nil {
			return nil, err
		}
		return m, nil
	case ExternalGlobal:
		var g GlobalVarImport
		if err := g.Type.UnmarshalWASM(r); err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, InvalidExternalError(kind)
	}
}

func (i *ImportEntry) UnmarshalWASM(r io.Reader) error {
	var err error
	if i.ModuleName, err = readUTF8StringUint(r); err != nil {
		return err
	}
	if i.FieldName, err = readUTF8StringUint(r); err != nil {
		return err
	}
	var kind External
	if err = kind.UnmarshalWASM(r); err != nil {
		return err
	}
	i.Type, err = readImport(r, kind)
	return err
}

func (i *ImportEntry) MarshalWASM(w io.Writer) error {
	if err := writeStringUint(w, i.ModuleName); err != nil {
		return err
	}
	if err := writeStringUint(w, i.FieldName); err != nil {
		return err
	}
	if err := i.Type.Kind().MarshalWASM(w); err != nil {
		return err
	}
	return i.Type.MarshalWASM(w)
}

// SectionImports declares all imports that will be used in the module.
type SectionImports struct {
	RawSection
	Entries []ImportEntry
}

func (*SectionImports) SectionID() SectionID {
	return SectionIDImport
}

func (s *SectionImports) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[ImportEntry](r)
	return err
}

func (s *SectionImports) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

// FunctionImports returns the function imports of the module in function index order.
func (m *Module) FunctionImports() []ImportEntry {
	if m.Import == nil {
		return nil
	}
	var imports []ImportEntry
	for _, entry := range m.Import.Entries {
		if entry.Type.Kind() == ExternalFunction {
			imports = append(imports, entry)
		}
	}
	return imports
}

// NumImportedFunctions returns the number of functions imported by the module. Imported functions occupy the first
// NumImportedFunctions entries of the function index space.
func (m *Module) NumImportedFunctions() int {
	return len(m.FunctionImports())
}
