package code

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

var (
	ErrInvalidInstruction = errors.New("wasm: invalid instruction")
	ErrMissingEnd         = errors.New("wasm: instruction sequence does not end with end")
	ErrUnexpectedElse     = errors.New("wasm: else outside of if")
)

// InvalidOpcodeError is returned for opcodes the decoder does not recognize.
type InvalidOpcodeError struct {
	Prefix byte
	Opcode uint32
}

func (e *InvalidOpcodeError) Error() string {
	if e.Prefix != 0 {
		return fmt.Sprintf("wasm: invalid opcode 0x%02x 0x%x", e.Prefix, e.Opcode)
	}
	return fmt.Sprintf("wasm: invalid opcode 0x%02x", e.Opcode)
}

func (e *InvalidOpcodeError) Unwrap() error {
	return ErrInvalidInstruction
}

func decodeBlockType(body []byte) (uint64, []byte, error) {
	if len(body) == 0 {
		return 0, nil, io.ErrUnexpectedEOF
	}

	index, read, err := leb128.GetVarint64(body)
	if err != nil {
		return 0, nil, err
	}
	if index < 0 {
		// Negative values are single-byte value types or the empty block type.
		if read != 1 {
			return 0, nil, ErrInvalidInstruction
		}
		return uint64(body[0]) | BlockTypeSpecial, body[1:], nil
	}
	if index > maxTypeidx {
		return 0, nil, ErrInvalidInstruction
	}
	return uint64(index), body[read:], nil
}

const maxTypeidx = 1<<32 - 1

func decodeIndex(body []byte) (uint64, []byte, error) {
	index, read, err := leb128.GetVarUint32(body)
	if err != nil {
		return 0, nil, err
	}
	return uint64(index), body[read:], nil
}

func decodeLabels(body []byte) (labels []int, def uint64, rest []byte, err error) {
	count, body, err := decodeIndex(body)
	if err != nil {
		return nil, 0, nil, err
	}

	labels = make([]int, 0, min(count, 1024))
	for ; count > 0; count-- {
		var label uint64
		if label, body, err = decodeIndex(body); err != nil {
			return nil, 0, nil, err
		}
		labels = append(labels, int(label))
	}

	def, rest, err = decodeIndex(body)
	return labels, def, rest, err
}

// decodeMemarg decodes the alignment and offset of a memory instruction. Explicit memory indices are rejected.
func decodeMemarg(body []byte) (uint64, []byte, error) {
	align, body, err := decodeIndex(body)
	if err != nil {
		return 0, nil, err
	}
	if align&0x40 != 0 {
		return 0, nil, ErrInvalidInstruction
	}
	offset, body, err := decodeIndex(body)
	if err != nil {
		return 0, nil, err
	}
	return memarg(uint32(offset), uint32(align)), body, nil
}

func decodeByte(body []byte) (byte, []byte, error) {
	if len(body) == 0 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return body[0], body[1:], nil
}

// skipVarUint skips an unsigned LEB128 value of at most 64 bits.
func skipVarUint(body []byte) ([]byte, error) {
	for n := 0; n < 10; n++ {
		if n >= len(body) {
			return nil, io.ErrUnexpectedEOF
		}
		if body[n]&0x80 == 0 {
			return body[n+1:], nil
		}
	}
	return nil, leb128.ErrOverflow
}

func skipVarUints(body []byte, count int) ([]byte, error) {
	var err error
	for i := 0; i < count && err == nil; i++ {
		body, err = skipVarUint(body)
	}
	return body, err
}

func skipBytes(body []byte, count int) ([]byte, error) {
	if len(body) < count {
		return nil, io.ErrUnexpectedEOF
	}
	return body[count:], nil
}

func skipMemarg(body []byte) ([]byte, error) {
	align, read, err := leb128.GetVarUint32(body)
	if err != nil {
		return nil, err
	}
	body = body[read:]
	if align&0x40 != 0 {
		// memory index
		if body, err = skipVarUint(body); err != nil {
			return nil, err
		}
	}
	return skipVarUint(body)
}

// skipPrefixed skips the immediates of a 0xfc-, 0xfd- or 0xfe-prefixed instruction.
func skipPrefixed(prefix byte, subop uint32, body []byte) ([]byte, error) {
	switch prefix {
	case OpPrefix:
		switch {
		case subop <= OpI64TruncSatF64U:
			return body, nil
		case subop == OpMemoryInit, subop == OpTableInit, subop == OpMemoryCopy, subop == OpTableCopy:
			return skipVarUints(body, 2)
		case subop <= OpTableFill:
			return skipVarUints(body, 1)
		}
	case OpSIMDPrefix:
		switch {
		case subop <= 0x0b || subop == 0x5c || subop == 0x5d:
			return skipMemarg(body)
		case subop == 0x0c || subop == 0x0d:
			return skipBytes(body, 16)
		case subop >= 0x15 && subop <= 0x22:
			return skipBytes(body, 1)
		case subop >= 0x54 && subop <= 0x5b:
			body, err := skipMemarg(body)
			if err != nil {
				return nil, err
			}
			return skipBytes(body, 1)
		case subop <= 0x113:
			return body, nil
		}
	case OpAtomicPrefix:
		switch {
		case subop == 0x03:
			return skipBytes(body, 1)
		case subop <= 0x02 || subop >= 0x10 && subop <= 0x4e:
			return skipMemarg(body)
		}
	}
	return nil, &InvalidOpcodeError{Prefix: prefix, Opcode: subop}
}

// decodeInstruction decodes the opcode and immediates of a single instruction. The bodies of structured
// instructions are decoded by the caller.
func decodeInstruction(body []byte) (Instruction, []byte, error) {
	if len(body) == 0 {
		return Instruction{}, nil, io.ErrUnexpectedEOF
	}

	opcode := body[0]
	body = body[1:]

	var immediate uint64
	var labels []int
	var extra []byte
	var err error
	switch immediateOf(opcode) {
	case immBlockType:
		immediate, body, err = decodeBlockType(body)
	case immIndex:
		immediate, body, err = decodeIndex(body)
	case immLabels:
		labels, immediate, body, err = decodeLabels(body)
	case immIndirect:
		var typeidx, tableidx uint64
		if typeidx, body, err = decodeIndex(body); err == nil {
			tableidx, body, err = decodeIndex(body)
		}
		immediate = indirect(uint32(typeidx), uint32(tableidx))
	case immValueTypes:
		start := body
		var count uint64
		if count, body, err = decodeIndex(body); err == nil {
			body, err = skipBytes(body, int(count))
		}
		if err == nil {
			extra = append([]byte(nil), start[:len(start)-len(body)]...)
		}
	case immHeapType:
		var heapType byte
		heapType, body, err = decodeByte(body)
		immediate = uint64(heapType)
	case immMemarg:
		immediate, body, err = decodeMemarg(body)
	case immI32:
		var value int32
		var read int
		if value, read, err = leb128.GetVarint32(body); err == nil {
			immediate, body = uint64(value), body[read:]
		}
	case immI64:
		var value int64
		var read int
		if value, read, err = leb128.GetVarint64(body); err == nil {
			immediate, body = uint64(value), body[read:]
		}
	case immF32:
		if len(body) < 4 {
			return Instruction{}, nil, io.ErrUnexpectedEOF
		}
		immediate, body = uint64(binary.LittleEndian.Uint32(body)), body[4:]
	case immF64:
		if len(body) < 8 {
			return Instruction{}, nil, io.ErrUnexpectedEOF
		}
		immediate, body = binary.LittleEndian.Uint64(body), body[8:]
	case immPrefixed:
		if immediate, body, err = decodeIndex(body); err != nil {
			return Instruction{}, nil, err
		}
		start := body
		if body, err = skipPrefixed(opcode, uint32(immediate), body); err == nil && len(start) != len(body) {
			extra = append([]byte(nil), start[:len(start)-len(body)]...)
		}
	default:
		if _, ok := opNames[opcode]; !ok {
			return Instruction{}, nil, &InvalidOpcodeError{Opcode: uint32(opcode)}
		}
	}
	if err != nil {
		return Instruction{}, nil, err
	}

	return Instruction{
		Opcode:    opcode,
		Immediate: immediate,
		Labels:    labels,
		Extra:     extra,
	}, body, nil
}

// decodeSequence decodes instructions up to and including the end instruction that terminates the sequence.
func decodeSequence(body []byte, inIf bool) ([]Instruction, []byte, error) {
	var seq []Instruction
	seenElse := false
	for {
		if len(body) == 0 {
			return nil, nil, ErrMissingEnd
		}

		instr, rest, err := decodeInstruction(body)
		if err != nil {
			return nil, nil, err
		}
		body = rest

		switch instr.Opcode {
		case OpBlock, OpLoop, OpIf:
			if instr.Body, body, err = decodeSequence(body, instr.Opcode == OpIf); err != nil {
				return nil, nil, err
			}
		case OpElse:
			if !inIf || seenElse {
				return nil, nil, ErrUnexpectedElse
			}
			seenElse = true
		}

		seq = append(seq, instr)
		if instr.Opcode == OpEnd {
			return seq, body, nil
		}
	}
}

// Decode decodes the instructions of a function body into a tree of instructions. The returned sequence ends with
// the end instruction that terminates the function.
func Decode(body []byte) ([]Instruction, error) {
	seq, rest, err := decodeSequence(body, false)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("wasm: %d bytes after the end of the function body", len(rest))
	}
	return seq, nil
}
