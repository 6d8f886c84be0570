package code

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, body []Instruction) []byte {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, body))
	return buf.Bytes()
}

func TestDecodeNested(t *testing.T) {
	raw := []byte{
		OpBlock, 0x40,
		OpLoop, 0x40,
		OpIf, 0x40,
		OpCall, 0x03,
		OpElse,
		OpCall, 0x04,
		OpEnd,
		OpEnd,
		OpEnd,
		OpCall, 0x05,
		OpEnd,
	}

	body, err := Decode(raw)
	require.NoError(t, err)

	expected := []Instruction{
		Block(BlockTypeEmpty,
			Loop(BlockTypeEmpty,
				If(BlockTypeEmpty, []Instruction{Call(3)}, Call(4)))),
		Call(5),
		End(),
	}
	assert.Equal(t, expected, body)
	assert.Equal(t, raw, encode(t, body))
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"consts", []byte{OpI32Const, 0xe5, 0x8e, 0x26, OpDrop, OpI64Const, 0x7f, OpDrop, OpF32Const, 0x00, 0x00, 0x80, 0x3f, OpDrop, OpEnd}},
		{"block result", []byte{OpBlock, 0x7f, OpI32Const, 0x01, OpEnd, OpDrop, OpEnd}},
		{"block typeidx", []byte{OpBlock, 0x02, OpEnd, OpEnd}},
		{"br_table", []byte{OpBlock, 0x40, OpLocalGet, 0x00, OpBrTable, 0x02, 0x00, 0x00, 0x00, OpEnd, OpEnd}},
		{"memory", []byte{OpI32Const, 0x00, OpI32Load, 0x02, 0x04, OpDrop, OpMemorySize, 0x00, OpDrop, OpEnd}},
		{"indirect", []byte{OpI32Const, 0x00, OpCallIndirect, 0x00, 0x01, OpReturnCallIndirect, 0x01, 0x00, OpEnd}},
		{"tail call", []byte{OpReturnCall, 0x05, OpEnd}},
		{"typed select", []byte{OpSelectT, 0x01, 0x7f, OpEnd}},
		{"reference types", []byte{OpRefNull, 0x70, OpRefIsNull, OpDrop, OpRefFunc, 0x07, OpDrop, OpTableGet, 0x00, OpTableSet, 0x01, OpEnd}},
		{"bulk memory", []byte{OpPrefix, OpMemoryInit, 0x01, 0x00, OpPrefix, OpDataDrop, 0x01, OpPrefix, OpMemoryCopy, 0x00, 0x00, OpPrefix, OpMemoryFill, 0x00, OpPrefix, OpI32TruncSatF32S, OpEnd}},
		{"simd", []byte{
			OpSIMDPrefix, 0x00, 0x04, 0x00,
			OpSIMDPrefix, 0x0c, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
			OpSIMDPrefix, 0x15, 0x03,
			OpSIMDPrefix, 0x54, 0x00, 0x00, 0x01,
			OpSIMDPrefix, 0x80, 0x01,
			OpEnd,
		}},
		{"atomics", []byte{OpAtomicPrefix, 0x03, 0x00, OpAtomicPrefix, 0x10, 0x02, 0x00, OpEnd}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body, err := Decode(c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.raw, encode(t, body))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name     string
		raw      []byte
		expected error
	}{
		{"missing end", []byte{OpNop}, ErrMissingEnd},
		{"unterminated block", []byte{OpBlock, 0x40, OpNop, OpEnd}, ErrMissingEnd},
		{"else outside if", []byte{OpBlock, 0x40, OpElse, OpEnd, OpEnd}, ErrUnexpectedElse},
		{"double else", []byte{OpIf, 0x40, OpElse, OpElse, OpEnd, OpEnd}, ErrUnexpectedElse},
		{"invalid opcode", []byte{0x06, OpEnd}, ErrInvalidInstruction},
		{"invalid prefixed opcode", []byte{OpPrefix, 0x7f, OpEnd}, ErrInvalidInstruction},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(c.raw)
			assert.True(t, errors.Is(err, c.expected), "unexpected error %v", err)
		})
	}

	_, err := Decode([]byte{OpEnd, OpNop})
	assert.Error(t, err)

	_, err = Decode([]byte{OpI32Const})
	assert.Error(t, err)
}

func TestEncodeMissingEnd(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ErrMissingEnd, Encode(&buf, []Instruction{Nop()}))

	block := Instruction{Opcode: OpBlock, Immediate: BlockTypeEmpty, Body: []Instruction{Nop()}}
	assert.Equal(t, ErrMissingEnd, Encode(&buf, []Instruction{block, End()}))
}

func TestString(t *testing.T) {
	cases := []struct {
		instr    Instruction
		expected string
	}{
		{Call(3), "call 3"},
		{ReturnCall(4), "return_call 4"},
		{RefFunc(2), "ref.func 2"},
		{CallIndirect(1, 0), "call_indirect (type 1)"},
		{CallIndirect(1, 2), "call_indirect 2 (type 1)"},
		{Block(BlockTypeI32), "block (result i32)"},
		{Loop(BlockType(3)), "loop (type 3)"},
		{If(BlockTypeEmpty, nil), "if"},
		{I32Load(4, 2), "i32.load offset=4 align=2"},
		{I32Const(-1), "i32.const -1"},
		{BrTable(0, 1, 2), "br_table 0 1 2"},
		{MemoryCopy(), "memory.copy"},
		{I32TruncSatF32S(), "i32.trunc_sat_f32_s"},
		{RefNull(0x70), "ref.null funcref"},
		{Instruction{Opcode: 0x06}, "invalid"},
	}
	for _, c := range cases {
		t.Run(c.expected, func(t *testing.T) {
			assert.Equal(t, c.expected, c.instr.String())
		})
	}
}

func TestWalk(t *testing.T) {
	body := []Instruction{
		Block(BlockTypeEmpty,
			Call(1),
			If(BlockTypeEmpty, []Instruction{Call(2)}, Call(3))),
		Call(4),
		End(),
	}

	var calls []uint32
	err := Walk(body, func(instr *Instruction) error {
		if instr.IsDirectCall() {
			calls = append(calls, instr.Funcidx())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, calls)

	stop := errors.New("stop")
	count := 0
	err = Walk(body, func(instr *Instruction) error {
		count++
		if instr.Opcode == OpCall {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 2, count)
}
