// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/pgavlin/wext/wasm/leb128"
)

// Marshaler is implemented by types that can encode themselves in the binary format.
type Marshaler interface {
	MarshalWASM(w io.Writer) error
}

// Unmarshaler is implemented by types that can decode themselves from the binary format.
type Unmarshaler interface {
	UnmarshalWASM(r io.Reader) error
}

// ValidationError is returned when a module is structurally well-formed but invalid.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// ValueType represents the type of a valid value in Wasm
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeV128      ValueType = 0x7b
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

var valueTypeNames = map[ValueType]string{
	ValueTypeI32:       "i32",
	ValueTypeI64:       "i64",
	ValueTypeF32:       "f32",
	ValueTypeF64:       "f64",
	ValueTypeV128:      "v128",
	ValueTypeFuncref:   "funcref",
	ValueTypeExternref: "externref",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("<unknown value_type 0x%02x>", byte(t))
}

// InvalidValueTypeError is returned when a value type byte is not recognized.
type InvalidValueTypeError byte

func (e InvalidValueTypeError) Error() string {
	return fmt.Sprintf("wasm: invalid value type 0x%02x", byte(e))
}

func (t *ValueType) UnmarshalWASM(r io.Reader) error {
	b, err := readByte(r)
	if err != nil {
		return err
	}
	if _, ok := valueTypeNames[ValueType(b)]; !ok {
		return InvalidValueTypeError(b)
	}
	*t = ValueType(b)
	return nil
}

func (t ValueType) MarshalWASM(w io.Writer) error {
	_, err := w.Write([]byte{byte(t)})
	return err
}

// TypeFunc is the form byte of a function signature.
const TypeFunc byte = 0x60

// FunctionSig describes the signature of a declared function in a WASM module
type FunctionSig struct {
	// value for the 'func` type constructor
	Form byte
	// The parameter types of the function
	ParamTypes  []ValueType
	ReturnTypes []ValueType
}

func (f FunctionSig) String() string {
	return fmt.Sprintf("(%s) -> (%s)", joinTypes(f.ParamTypes), joinTypes(f.ReturnTypes))
}

func joinTypes(types []ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func readValueTypes(r io.Reader) ([]ValueType, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}
	types := make([]ValueType, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		var t ValueType
		if err := t.UnmarshalWASM(r); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func writeValueTypes(w io.Writer, types []ValueType) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(types))); err != nil {
		return err
	}
	for _, t := range types {
		if err := t.MarshalWASM(w); err != nil {
			return err
		}
	}
	return nil
}

func (f *FunctionSig) UnmarshalWASM(r io.Reader) error {
	form, err := readByte(r)
	if err != nil {
		return err
	}
	if form != TypeFunc {
		return fmt.Errorf("wasm: unsupported type form 0x%02x", form)
	}
	f.Form = form

	if f.ParamTypes, err = readValueTypes(r); err != nil {
		return err
	}
	f.ReturnTypes, err = readValueTypes(r)
	return err
}

func (f *FunctionSig) MarshalWASM(w io.Writer) error {
	if _, err := w.Write([]byte{TypeFunc}); err != nil {
		return err
	}
	if err := writeValueTypes(w, f.ParamTypes); err != nil {
		return err
	}
	return writeValueTypes(w, f.ReturnTypes)
}

// GlobalVar describes the type and mutability of a declared global variable
type GlobalVar struct {
	Type    ValueType // Type of the value stored by the variable
	Mutable bool      // Whether the value of the variable can be changed by the set_global operator
}

func (g *GlobalVar) UnmarshalWASM(r io.Reader) error {
	if err := g.Type.UnmarshalWASM(r); err != nil {
		return err
	}
	m, err := readByte(r)
	if err != nil {
		return err
	}
	switch m {
	case 0x00, 0x01:
		g.Mutable = m == 0x01
		return nil
	default:
		return fmt.Errorf("wasm: invalid mutability 0x%02x", m)
	}
}

func (g *GlobalVar) MarshalWASM(w io.Writer) error {
	if err := g.Type.MarshalWASM(w); err != nil {
		return err
	}
	var m byte
	if g.Mutable {
		m = 0x01
	}
	_, err := w.Write([]byte{m})
	return err
}

const (
	limitsHasMaximum = 0x01
	limitsShared     = 0x02
)

// ResizableLimits describe the limit of a table or linear memory.
type ResizableLimits struct {
	Flags   uint8  // 1 if the Maximum field is valid, 3 for a shared memory with a maximum
	Initial uint32 // initial length (in units of table elements or wasm pages)
	Maximum uint32 // If flags is 1, it describes the maximum size of the table or memory
}

// HasMaximum reports whether the limits carry an upper bound.
func (lim *ResizableLimits) HasMaximum() bool {
	return lim.Flags&limitsHasMaximum != 0
}

func (lim *ResizableLimits) UnmarshalWASM(r io.Reader) error {
	flags, err := readByte(r)
	if err != nil {
		return err
	}
	if flags&^(limitsHasMaximum|limitsShared) != 0 {
		return fmt.Errorf("wasm: unsupported limits flags 0x%02x", flags)
	}
	lim.Flags = flags

	if lim.Initial, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	if lim.HasMaximum() {
		lim.Maximum, err = leb128.ReadVarUint32(r)
	}
	return err
}

func (lim *ResizableLimits) MarshalWASM(w io.Writer) error {
	if _, err := w.Write([]byte{lim.Flags}); err != nil {
		return err
	}
	if _, err := leb128.WriteVarUint32(w, lim.Initial); err != nil {
		return err
	}
	if lim.HasMaximum() {
		if _, err := leb128.WriteVarUint32(w, lim.Maximum); err != nil {
			return err
		}
	}
	return nil
}

// Table represents a table declaration or import.
type Table struct {
	// The type of elements
	ElementType ValueType
	Limits      ResizableLimits
}

func (t *Table) UnmarshalWASM(r io.Reader) error {
	if err := t.ElementType.UnmarshalWASM(r); err != nil {
		return err
	}
	if t.ElementType != ValueTypeFuncref && t.ElementType != ValueTypeExternref {
		return fmt.Errorf("wasm: invalid table element type %v", t.ElementType)
	}
	return t.Limits.UnmarshalWASM(r)
}

func (t *Table) MarshalWASM(w io.Writer) error {
	if err := t.ElementType.MarshalWASM(w); err != nil {
		return err
	}
	return t.Limits.MarshalWASM(w)
}

// Memory represents a linear memory declaration or import.
type Memory struct {
	Limits ResizableLimits
}

func (m *Memory) UnmarshalWASM(r io.Reader) error {
	return m.Limits.UnmarshalWASM(r)
}

func (m *Memory) MarshalWASM(w io.Writer) error {
	return m.Limits.MarshalWASM(w)
}

// External describes the kind of the entry being imported or exported.
type External byte

const (
	ExternalFunction External = 0
	ExternalTable    External = 1
	ExternalMemory   External = 2
	ExternalGlobal   External = 3
)

func (e External) String() string {
	switch e {
	case ExternalFunction:
		return "function"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	default:
		return "unknown"
	}
}

func (e *External) UnmarshalWASM(r io.Reader) error {
	b, err := readByte(r)
	if err != nil {
		return err
	}
	if b > byte(ExternalGlobal) {
		return InvalidExternalError(b)
	}
	*e = External(b)
	return nil
}

func (e External) MarshalWASM(w io.Writer) error {
	_, err := w.Write([]byte{byte(e)})
	return err
}
