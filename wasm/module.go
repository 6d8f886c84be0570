// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pgavlin/wext/wasm/internal/readpos"
)

var ErrInvalidMagic = errors.New("magic header not detected")

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// Module represents a parsed WebAssembly module:
// http://webassembly.org/docs/modules/
//
// Sections holds every section in binary order. The typed fields point into Sections.
type Module struct {
	Version  uint32
	Sections []Section

	Types     *SectionTypes
	Import    *SectionImports
	Function  *SectionFunctions
	Table     *SectionTables
	Memory    *SectionMemories
	Global    *SectionGlobals
	Export    *SectionExports
	Start     *SectionStartFunction
	Elements  *SectionElements
	DataCount *SectionDataCount
	Code      *SectionCode
	Data      *SectionData
	Customs   []*SectionCustom
}

// NumFunctions returns the size of the function index space.
func (m *Module) NumFunctions() int {
	n := m.NumImportedFunctions()
	if m.Function != nil {
		n += len(m.Function.Types)
	}
	return n
}

// FunctionType returns the type index of the function at funcidx in the function index space.
func (m *Module) FunctionType(funcidx uint32) (uint32, bool) {
	imports := m.FunctionImports()
	if int(funcidx) < len(imports) {
		return imports[funcidx].Type.(FuncImport).Type, true
	}
	local := int(funcidx) - len(imports)
	if m.Function == nil || local >= len(m.Function.Types) {
		return 0, false
	}
	return m.Function.Types[local], true
}

// FunctionSignature returns the signature of the function at funcidx in the function index space.
func (m *Module) FunctionSignature(funcidx uint32) (*FunctionSig, bool) {
	typeidx, ok := m.FunctionType(funcidx)
	if !ok || m.Types == nil || int(typeidx) >= len(m.Types.Entries) {
		return nil, false
	}
	return &m.Types.Entries[typeidx], true
}

// Names returns the names section. If no names section exists, this function returns a MissingSectionError.
func (m *Module) Names() (*NameSection, error) {
	s := m.Custom(CustomSectionName)
	if s == nil {
		return nil, MissingSectionError(0)
	}

	var names NameSection
	if err := names.UnmarshalWASM(bytes.NewReader(s.Data)); err != nil {
		return nil, err
	}

	return &names, nil
}

// SetNames replaces the contents of the names section, adding the section if it does not exist.
func (m *Module) SetNames(names *NameSection) error {
	var buf bytes.Buffer
	if err := names.MarshalWASM(&buf); err != nil {
		return err
	}

	if s := m.Custom(CustomSectionName); s != nil {
		s.Data = buf.Bytes()
		return nil
	}
	m.AddSection(&SectionCustom{Name: CustomSectionName, Data: buf.Bytes()})
	return nil
}

// Custom returns a custom section with a specific name, if it exists.
func (m *Module) Custom(name string) *SectionCustom {
	for _, s := range m.Customs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// RemoveCustom removes every custom section with the given name.
func (m *Module) RemoveCustom(name string) {
	customs := m.Customs[:0]
	for _, s := range m.Customs {
		if s.Name != name {
			customs = append(customs, s)
		}
	}
	m.Customs = customs

	sections := m.Sections[:0]
	for _, s := range m.Sections {
		if c, ok := s.(*SectionCustom); ok && c.Name == name {
			continue
		}
		sections = append(sections, s)
	}
	m.Sections = sections
}

// AddSection adds a section to the module. Known sections are inserted at their prescribed position and
// replace any existing section with the same ID. Custom sections are appended.
func (m *Module) AddSection(s Section) {
	id := s.SectionID()
	if id == SectionIDCustom {
		c := s.(*SectionCustom)
		m.Customs = append(m.Customs, c)
		m.Sections = append(m.Sections, c)
		return
	}

	m.setTypedSection(s)

	at := len(m.Sections)
	for i, existing := range m.Sections {
		eid := existing.SectionID()
		if eid == SectionIDCustom {
			continue
		}
		if eid == id {
			m.Sections[i] = s
			return
		}
		if eid.order() > id.order() {
			at = i
			break
		}
	}
	m.Sections = append(m.Sections, nil)
	copy(m.Sections[at+1:], m.Sections[at:])
	m.Sections[at] = s
}

func (m *Module) setTypedSection(s Section) {
	switch s := s.(type) {
	case *SectionTypes:
		m.Types = s
	case *SectionImports:
		m.Import = s
	case *SectionFunctions:
		m.Function = s
	case *SectionTables:
		m.Table = s
	case *SectionMemories:
		m.Memory = s
	case *SectionGlobals:
		m.Global = s
	case *SectionExports:
		m.Export = s
	case *SectionStartFunction:
		m.Start = s
	case *SectionElements:
		m.Elements = s
	case *SectionDataCount:
		m.DataCount = s
	case *SectionCode:
		m.Code = s
	case *SectionData:
		m.Data = s
	}
}

// NewModule creates a new empty module
func NewModule() *Module {
	return &Module{Version: Version}
}

// DecodeModule decodes a WASM module.
func DecodeModule(r io.Reader) (*Module, error) {
	reader := &readpos.ReadPos{
		R:      r,
		CurPos: 0,
	}
	m := &Module{}
	magic, err := readU32(reader)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	if m.Version, err = readU32(reader); err != nil {
		return nil, err
	}
	if m.Version != Version {
		return nil, errors.New("unknown binary version")
	}

	err = (&sectionsReader{m: m}).readSections(reader)
	if err != nil {
		return nil, err
	}

	Logger().Debug("decoded module",
		zap.Int("sections", len(m.Sections)),
		zap.Int("imported functions", m.NumImportedFunctions()),
		zap.Int("functions", m.NumFunctions()))
	return m, nil
}

// MustDecode decodes a WASM module and panics on failure.
func MustDecode(r io.Reader) *Module {
	m, err := DecodeModule(r)
	if err != nil {
		panic(fmt.Errorf("decoding module: %w", err))
	}
	return m
}
