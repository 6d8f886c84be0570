package code

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pgavlin/wext/wasm"
)

// Instruction is a single decoded instruction.
//
// Structured instructions (block, loop and if) own their nested sequence in Body. A nested sequence always ends
// with an end instruction, and the body of an if may contain a single else instruction that separates its arms.
type Instruction struct {
	Opcode    byte          `json:"opcode"`
	Immediate uint64        `json:"immediate"`
	Labels    []int         `json:"labels,omitempty"`
	Extra     []byte        `json:"extra,omitempty"` // raw immediates of prefixed and typed select instructions
	Body      []Instruction `json:"body,omitempty"`
}

// IsBlock returns true if the instruction owns a nested instruction sequence.
func (i *Instruction) IsBlock() bool {
	return immediateOf(i.Opcode) == immBlockType
}

// IsDirectCall returns true if the instruction's immediate is the index of the function it calls.
func (i *Instruction) IsDirectCall() bool {
	return i.Opcode == OpCall || i.Opcode == OpReturnCall
}

func (i *Instruction) Labelidx() int {
	return int(i.Immediate)
}

func (i *Instruction) Funcidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) SetFuncidx(funcidx uint32) {
	i.Immediate = uint64(funcidx)
}

func (i *Instruction) Localidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) Globalidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) Typeidx() uint32 {
	return uint32(i.Immediate)
}

// Tableidx returns the table operand of call_indirect and return_call_indirect.
func (i *Instruction) Tableidx() uint32 {
	return uint32(i.Immediate >> 32)
}

func (i *Instruction) Memarg() (offset uint32, align uint32) {
	return uint32(i.Immediate), uint32(i.Immediate >> 32)
}

func (i *Instruction) I32() int32 {
	return int32(i.Immediate)
}

func (i *Instruction) I64() int64 {
	return int64(i.Immediate)
}

func (i *Instruction) F32() float32 {
	return math.Float32frombits(uint32(i.Immediate))
}

func (i *Instruction) F64() float64 {
	return math.Float64frombits(uint64(i.Immediate))
}

func (i *Instruction) Encode(w io.Writer) error {
	return encodeInstruction(w, i)
}

func memarg(offset, align uint32) uint64 {
	return uint64(align)<<32 | uint64(offset)
}

func indirect(typeidx, tableidx uint32) uint64 {
	return uint64(tableidx)<<32 | uint64(typeidx)
}

func (i *Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.OpString())
	switch immediateOf(i.Opcode) {
	case immBlockType:
		switch {
		case i.Immediate == BlockTypeEmpty:
		case i.Immediate&BlockTypeSpecial != 0:
			fmt.Fprintf(&b, " (result %v)", wasm.ValueType(i.Immediate))
		default:
			fmt.Fprintf(&b, " (type %d)", i.Typeidx())
		}
	case immIndex:
		if i.Opcode != OpMemorySize && i.Opcode != OpMemoryGrow {
			fmt.Fprintf(&b, " %d", i.Immediate)
		}
	case immLabels:
		for _, l := range i.Labels {
			fmt.Fprintf(&b, " %d", l)
		}
		fmt.Fprintf(&b, " %d", i.Labelidx())
	case immIndirect:
		if table := i.Tableidx(); table != 0 {
			fmt.Fprintf(&b, " %d", table)
		}
		fmt.Fprintf(&b, " (type %d)", i.Typeidx())
	case immHeapType:
		fmt.Fprintf(&b, " %v", wasm.ValueType(i.Immediate))
	case immMemarg:
		offset, align := i.Memarg()
		if offset != 0 {
			fmt.Fprintf(&b, " offset=%d", offset)
		}
		if align != 0 {
			fmt.Fprintf(&b, " align=%d", align)
		}
	case immI32:
		fmt.Fprintf(&b, " %d", i.I32())
	case immI64:
		fmt.Fprintf(&b, " %d", i.I64())
	case immF32:
		fmt.Fprintf(&b, " %g", i.F32())
	case immF64:
		fmt.Fprintf(&b, " %g", i.F64())
	case immPrefixed:
		if i.Opcode != OpPrefix {
			fmt.Fprintf(&b, " 0x%x", i.Immediate)
		}
	}
	return b.String()
}

func (i *Instruction) OpString() string {
	if i.Opcode == OpPrefix {
		if name, ok := prefixNames[i.Immediate]; ok {
			return name
		}
		return "invalid"
	}
	if name, ok := opNames[i.Opcode]; ok {
		return name
	}
	return "invalid"
}

// Walk calls fn for every instruction in body in order. The instructions nested in a structured instruction are
// visited after the structured instruction itself and before its successor.
func Walk(body []Instruction, fn func(*Instruction) error) error {
	for i := range body {
		instr := &body[i]
		if err := fn(instr); err != nil {
			return err
		}
		if instr.IsBlock() {
			if err := Walk(instr.Body, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
