// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

// Element segment flag bits.
const (
	ElemPassive     = 0x01 // passive or declarative instead of active
	ElemTableIndex  = 0x02 // explicit table index (active) or declarative (passive)
	ElemExpressions = 0x04 // elements are given as constant expressions
)

// ElementSegment describes a group of elements that initialize a table. Active segments are placed at Offset in
// table Index when the module is instantiated.
type ElementSegment struct {
	Flags    uint32
	Index    uint32   // table index; zero unless an active segment carries ElemTableIndex
	Offset   []byte   // offset expression of an active segment
	ElemKind byte     // elemkind or reference type; absent for flags 0 and 4
	Elems    []uint32 // function indices, unless Flags carries ElemExpressions
	Exprs    [][]byte // initializer expressions, if Flags carries ElemExpressions
}

// IsActive reports whether the segment is applied to a table at instantiation.
func (s *ElementSegment) IsActive() bool {
	return s.Flags&ElemPassive == 0
}

func (s *ElementSegment) hasElemKind() bool {
	return s.Flags&(ElemPassive|ElemTableIndex) != 0
}

func (s *ElementSegment) UnmarshalWASM(r io.Reader) (err error) {
	if s.Flags, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	if s.Flags > 7 {
		return fmt.Errorf("wasm: invalid element segment flags %d", s.Flags)
	}

	if s.IsActive() {
		if s.Flags&ElemTableIndex != 0 {
			if s.Index, err = leb128.ReadVarUint32(r); err != nil {
				return err
			}
		}
		if s.Offset, err = readInitExpr(r); err != nil {
			return err
		}
	}
	if s.hasElemKind() {
		if s.ElemKind, err = readByte(r); err != nil {
			return err
		}
	}

	if s.Flags&ElemExpressions == 0 {
		s.Elems, err = readIndices(r)
		return err
	}

	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	s.Exprs = make([][]byte, 0, getInitialCap(count))
	for ; count > 0; count-- {
		expr, err := readInitExpr(r)
		if err != nil {
			return err
		}
		s.Exprs = append(s.Exprs, expr)
	}
	return nil
}

func (s *ElementSegment) MarshalWASM(w io.Writer) error {
	var header bytes.Buffer
	leb128.WriteVarUint32(&header, s.Flags)
	if s.IsActive() {
		if s.Flags&ElemTableIndex != 0 {
			leb128.WriteVarUint32(&header, s.Index)
		}
		header.Write(s.Offset)
	}
	if s.hasElemKind() {
		header.WriteByte(s.ElemKind)
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}

	if s.Flags&ElemExpressions == 0 {
		return writeIndices(w, s.Elems)
	}
	if _, err := leb128.WriteVarUint32(w, uint32(len(s.Exprs))); err != nil {
		return err
	}
	for _, expr := range s.Exprs {
		if _, err := w.Write(expr); err != nil {
			return err
		}
	}
	return nil
}

// SectionElements describes the initial contents of the module's tables.
type SectionElements struct {
	RawSection
	Entries []ElementSegment
}

func (*SectionElements) SectionID() SectionID {
	return SectionIDElement
}

func (s *SectionElements) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[ElementSegment](r)
	return err
}

func (s *SectionElements) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

// Data segment flags.
const (
	DataActive         = 0x00 // active in memory 0
	DataPassive        = 0x01
	DataActiveExplicit = 0x02 // active with an explicit memory index
)

// DataSegment describes a group of bytes that initialize linear memory.
type DataSegment struct {
	Flags  uint32
	Index  uint32 // memory index of an active segment
	Offset []byte // offset expression of an active segment
	Data   []byte
}

func (s *DataSegment) UnmarshalWASM(r io.Reader) (err error) {
	if s.Flags, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	if s.Flags > DataActiveExplicit {
		return fmt.Errorf("wasm: invalid data segment flags %d", s.Flags)
	}

	if s.Flags == DataActiveExplicit {
		if s.Index, err = leb128.ReadVarUint32(r); err != nil {
			return err
		}
	}
	if s.Flags != DataPassive {
		if s.Offset, err = readInitExpr(r); err != nil {
			return err
		}
	}
	s.Data, err = readBytesUint(r)
	return err
}

func (s *DataSegment) MarshalWASM(w io.Writer) error {
	var header bytes.Buffer
	leb128.WriteVarUint32(&header, s.Flags)
	if s.Flags == DataActiveExplicit {
		leb128.WriteVarUint32(&header, s.Index)
	}
	if s.Flags != DataPassive {
		header.Write(s.Offset)
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	return writeBytesUint(w, s.Data)
}

// SectionData describes the initial contents of the module's linear memory.
type SectionData struct {
	RawSection
	Entries []DataSegment
}

func (*SectionData) SectionID() SectionID {
	return SectionIDData
}

func (s *SectionData) ReadPayload(r io.Reader) (err error) {
	s.Entries, err = readVec[DataSegment](r)
	return err
}

func (s *SectionData) WritePayload(w io.Writer) error {
	return writeVec(w, s.Entries)
}

var ErrFunctionNoEnd = errors.New("Function body does not end with 0x0b (end)")

// LocalEntry declares Count locals of the same type.
type LocalEntry struct {
	Count uint32
	Type  ValueType
}

func (l *LocalEntry) UnmarshalWASM(r io.Reader) (err error) {
	if l.Count, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	return l.Type.UnmarshalWASM(r)
}

func (l *LocalEntry) MarshalWASM(w io.Writer) error {
	if _, err := leb128.WriteVarUint32(w, l.Count); err != nil {
		return err
	}
	return l.Type.MarshalWASM(w)
}

// FunctionBody holds the local declarations and the encoded instructions of a function. Code includes the final
// end instruction.
type FunctionBody struct {
	Locals []LocalEntry
	Code   []byte
}

func (f *FunctionBody) UnmarshalWASM(r io.Reader) error {
	body, err := readBytesUint(r)
	if err != nil {
		return err
	}

	br := bytes.NewReader(body)
	if f.Locals, err = readVec[LocalEntry](br); err != nil {
		return err
	}

	f.Code = body[len(body)-br.Len():]
	if len(f.Code) == 0 || f.Code[len(f.Code)-1] != opEnd {
		return ErrFunctionNoEnd
	}
	return nil
}

func (f *FunctionBody) MarshalWASM(w io.Writer) error {
	var body bytes.Buffer
	if err := writeVec(&body, f.Locals); err != nil {
		return err
	}
	body.Write(f.Code)
	return writeBytesUint(w, body.Bytes())
}

// SectionCode holds the body of every function defined by the module.
type SectionCode struct {
	RawSection
	Bodies []FunctionBody
}

func (*SectionCode) SectionID() SectionID {
	return SectionIDCode
}

func (s *SectionCode) ReadPayload(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}

	s.Bodies = make([]FunctionBody, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		var body FunctionBody
		if err := body.UnmarshalWASM(r); err != nil {
			return fmt.Errorf("function body %d: %w", i, err)
		}
		s.Bodies = append(s.Bodies, body)
	}
	return nil
}

func (s *SectionCode) WritePayload(w io.Writer) error {
	return writeVec(w, s.Bodies)
}
