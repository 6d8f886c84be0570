// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wext/wasm"
)

var (
	i32Const0 = []byte{0x41, 0x00, 0x0b}
	refFunc1  = []byte{0xd2, 0x01, 0x0b}
)

// testModule returns a module that uses every section the decoder understands.
func testModule() *wasm.Module {
	m := wasm.NewModule()
	m.AddSection(&wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{Form: wasm.TypeFunc},
		{Form: wasm.TypeFunc, ParamTypes: []wasm.ValueType{wasm.ValueTypeI32}, ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}})
	m.AddSection(&wasm.SectionImports{Entries: []wasm.ImportEntry{
		{ModuleName: "env", FieldName: "f", Type: wasm.FuncImport{Type: 1}},
		{ModuleName: "env", FieldName: "g", Type: wasm.GlobalVarImport{Type: wasm.GlobalVar{Type: wasm.ValueTypeI32}}},
	}})
	m.AddSection(&wasm.SectionFunctions{Types: []uint32{0, 1}})
	m.AddSection(&wasm.SectionTables{Entries: []wasm.Table{
		{ElementType: wasm.ValueTypeFuncref, Limits: wasm.ResizableLimits{Initial: 4}},
	}})
	m.AddSection(&wasm.SectionMemories{Entries: []wasm.Memory{
		{Limits: wasm.ResizableLimits{Flags: 1, Initial: 1, Maximum: 2}},
	}})
	m.AddSection(&wasm.SectionGlobals{Globals: []wasm.GlobalEntry{
		{Type: wasm.GlobalVar{Type: wasm.ValueTypeFuncref}, Init: refFunc1},
	}})
	m.AddSection(&wasm.SectionExports{Entries: []wasm.ExportEntry{
		{FieldStr: "run", Kind: wasm.ExternalFunction, Index: 1},
		{FieldStr: "memory", Kind: wasm.ExternalMemory, Index: 0},
		{FieldStr: "call", Kind: wasm.ExternalFunction, Index: 2},
	}})
	m.AddSection(&wasm.SectionStartFunction{Index: 1})
	m.AddSection(&wasm.SectionElements{Entries: []wasm.ElementSegment{
		{Flags: 0, Offset: i32Const0, Elems: []uint32{1, 2}},
		{Flags: 1, ElemKind: 0x00, Elems: []uint32{0}},
		{Flags: 2, Index: 0, Offset: i32Const0, ElemKind: 0x00, Elems: []uint32{2}},
		{Flags: 3, ElemKind: 0x00, Elems: []uint32{1}},
		{Flags: 4, Offset: i32Const0, Exprs: [][]byte{refFunc1, {0xd0, 0x70, 0x0b}}},
		{Flags: 5, ElemKind: byte(wasm.ValueTypeFuncref), Exprs: [][]byte{refFunc1}},
	}})
	m.AddSection(&wasm.SectionCode{Bodies: []wasm.FunctionBody{
		{Code: []byte{0x0b}},
		{Locals: []wasm.LocalEntry{{Count: 2, Type: wasm.ValueTypeI64}}, Code: []byte{0x20, 0x00, 0x10, 0x00, 0x0b}},
	}})
	m.AddSection(&wasm.SectionData{Entries: []wasm.DataSegment{
		{Flags: wasm.DataActive, Offset: i32Const0, Data: []byte("hello")},
		{Flags: wasm.DataPassive, Data: []byte("world")},
		{Flags: wasm.DataActiveExplicit, Index: 0, Offset: i32Const0, Data: []byte{1, 2, 3}},
	}})
	m.AddSection(&wasm.SectionDataCount{Count: 3})
	m.AddSection(&wasm.SectionCustom{Name: "producers", Data: []byte{0x00}})
	return m
}

func TestAddSectionOrder(t *testing.T) {
	m := testModule()

	var ids []wasm.SectionID
	for _, s := range m.Sections {
		ids = append(ids, s.SectionID())
	}
	assert.Equal(t, []wasm.SectionID{
		wasm.SectionIDType,
		wasm.SectionIDImport,
		wasm.SectionIDFunction,
		wasm.SectionIDTable,
		wasm.SectionIDMemory,
		wasm.SectionIDGlobal,
		wasm.SectionIDExport,
		wasm.SectionIDStart,
		wasm.SectionIDElement,
		wasm.SectionIDDataCount,
		wasm.SectionIDCode,
		wasm.SectionIDData,
		wasm.SectionIDCustom,
	}, ids)

	// Replacing a section keeps its position.
	start := &wasm.SectionStartFunction{Index: 2}
	m.AddSection(start)
	assert.Equal(t, len(ids), len(m.Sections))
	assert.Same(t, start, m.Start)
	assert.Same(t, start, m.Sections[7])
}

func TestModuleRoundTrip(t *testing.T) {
	encoded, err := testModule().Encode()
	require.NoError(t, err)

	m, err := wasm.DecodeModule(bytes.NewReader(encoded))
	require.NoError(t, err)

	assert.Equal(t, 1, m.NumImportedFunctions())
	assert.Equal(t, 3, m.NumFunctions())
	assert.Len(t, m.FunctionImports(), 1)
	require.NotNil(t, m.Elements)
	assert.Len(t, m.Elements.Entries, 6)
	assert.Equal(t, [][]byte{refFunc1, {0xd0, 0x70, 0x0b}}, m.Elements.Entries[4].Exprs)
	assert.True(t, m.Elements.Entries[0].IsActive())
	assert.False(t, m.Elements.Entries[1].IsActive())
	require.NotNil(t, m.DataCount)
	assert.Equal(t, uint32(3), m.DataCount.Count)
	assert.Equal(t, []byte("world"), m.Data.Entries[1].Data)
	assert.Equal(t, uint32(1), m.Start.Index)
	assert.NotNil(t, m.Custom("producers"))

	sig, ok := m.FunctionSignature(0)
	require.True(t, ok)
	assert.Equal(t, "(i32) -> (i32)", sig.String())
	sig, ok = m.FunctionSignature(1)
	require.True(t, ok)
	assert.Equal(t, "() -> ()", sig.String())
	_, ok = m.FunctionSignature(3)
	assert.False(t, ok)

	export, ok := m.Export.Lookup("call")
	require.True(t, ok)
	assert.Equal(t, uint32(2), export.Index)
	_, ok = m.Export.Lookup("missing")
	assert.False(t, ok)

	reencoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestDecodeErrors(t *testing.T) {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	withHeader := func(b ...byte) []byte {
		return append(append([]byte(nil), header...), b...)
	}

	cases := []struct {
		name  string
		raw   []byte
		check func(t *testing.T, err error)
	}{
		{"magic", []byte{0x00, 0x61, 0x73, 0x6e, 0x01, 0x00, 0x00, 0x00}, func(t *testing.T, err error) {
			assert.Equal(t, wasm.ErrInvalidMagic, err)
		}},
		{"section id", withHeader(0x0e, 0x00), func(t *testing.T, err error) {
			assert.Equal(t, wasm.InvalidSectionIDError(0x0e), err)
		}},
		{"tag section", withHeader(0x0d, 0x00), func(t *testing.T, err error) {
			assert.True(t, errors.Is(err, wasm.ErrUnsupportedSection))
		}},
		{"order", withHeader(0x03, 0x01, 0x00, 0x01, 0x01, 0x00), func(t *testing.T, err error) {
			assert.Equal(t, wasm.ErrSectionOrder, err)
		}},
		{"duplicate", withHeader(0x01, 0x01, 0x00, 0x01, 0x01, 0x00), func(t *testing.T, err error) {
			assert.Equal(t, wasm.ErrSectionOrder, err)
		}},
		{"truncated", withHeader(0x01, 0x05, 0x01), func(t *testing.T, err error) {
			assert.Error(t, err)
		}},
		{"size mismatch", withHeader(0x01, 0x02, 0x00, 0x00), func(t *testing.T, err error) {
			assert.Error(t, err)
		}},
		{"function without end", withHeader(0x0a, 0x04, 0x01, 0x02, 0x00, 0x01), func(t *testing.T, err error) {
			assert.True(t, errors.Is(err, wasm.ErrFunctionNoEnd))
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := wasm.DecodeModule(bytes.NewReader(c.raw))
			c.check(t, err)
		})
	}
}

func TestSectionCustom(t *testing.T) {
	names := &wasm.NameSection{Entries: []wasm.NameSubsection{
		&wasm.ModuleNameSubsection{Name: "test"},
		&wasm.FunctionNamesSubsection{Names: []wasm.Naming{{Index: 0, Name: "f"}, {Index: 1, Name: "run"}}},
		&wasm.LocalNamesSubsection{Funcs: []wasm.LocalNames{{Index: 1, Names: []wasm.Naming{{Index: 0, Name: "x"}}}}},
		&wasm.RawNameSubsection{ID: 7, Bytes: []byte{0x01, 0x02}},
	}}

	m := testModule()
	_, err := m.Names()
	assert.Equal(t, wasm.MissingSectionError(0), err)

	require.NoError(t, m.SetNames(names))
	encoded, err := m.Encode()
	require.NoError(t, err)

	decoded, err := wasm.DecodeModule(bytes.NewReader(encoded))
	require.NoError(t, err)

	nameCustom := decoded.Custom(wasm.CustomSectionName)
	require.NotNil(t, nameCustom)

	nSec, err := decoded.Names()
	require.NoError(t, err)
	assert.Equal(t, names, nSec)
	assert.Equal(t, "run", nSec.Functions().Names[1].Name)
	assert.Len(t, nSec.Locals().Funcs, 1)

	var buf bytes.Buffer
	require.NoError(t, nSec.MarshalWASM(&buf))
	assert.Equal(t, nameCustom.Data, buf.Bytes())

	decoded.RemoveCustom(wasm.CustomSectionName)
	assert.Nil(t, decoded.Custom(wasm.CustomSectionName))
	for _, s := range decoded.Sections {
		if c, ok := s.(*wasm.SectionCustom); ok {
			assert.NotEqual(t, wasm.CustomSectionName, c.Name)
		}
	}
}
