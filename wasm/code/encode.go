package code

import (
	"encoding/binary"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

func encodeBlockType(w io.Writer, instr *Instruction) error {
	if instr.Immediate&BlockTypeSpecial != 0 {
		_, err := w.Write([]byte{byte(instr.Immediate)})
		return err
	}

	_, err := leb128.WriteVarint64(w, int64(instr.Immediate))
	return err
}

func encodeIndex(w io.Writer, index uint32) error {
	_, err := leb128.WriteVarUint32(w, index)
	return err
}

func encodeInstruction(w io.Writer, instr *Instruction) error {
	if _, err := w.Write([]byte{instr.Opcode}); err != nil {
		return err
	}

	switch immediateOf(instr.Opcode) {
	case immBlockType:
		if err := encodeBlockType(w, instr); err != nil {
			return err
		}
		return Encode(w, instr.Body)
	case immIndex:
		return encodeIndex(w, uint32(instr.Immediate))
	case immLabels:
		if err := encodeIndex(w, uint32(len(instr.Labels))); err != nil {
			return err
		}
		for _, l := range instr.Labels {
			if err := encodeIndex(w, uint32(l)); err != nil {
				return err
			}
		}
		return encodeIndex(w, uint32(instr.Immediate))
	case immIndirect:
		if err := encodeIndex(w, instr.Typeidx()); err != nil {
			return err
		}
		return encodeIndex(w, instr.Tableidx())
	case immValueTypes:
		_, err := w.Write(instr.Extra)
		return err
	case immHeapType:
		_, err := w.Write([]byte{byte(instr.Immediate)})
		return err
	case immMemarg:
		offset, align := instr.Memarg()
		if err := encodeIndex(w, align); err != nil {
			return err
		}
		return encodeIndex(w, offset)
	case immI32:
		_, err := leb128.WriteVarint64(w, int64(instr.I32()))
		return err
	case immI64:
		_, err := leb128.WriteVarint64(w, instr.I64())
		return err
	case immF32:
		_, err := w.Write(binary.LittleEndian.AppendUint32(nil, uint32(instr.Immediate)))
		return err
	case immF64:
		_, err := w.Write(binary.LittleEndian.AppendUint64(nil, instr.Immediate))
		return err
	case immPrefixed:
		if err := encodeIndex(w, uint32(instr.Immediate)); err != nil {
			return err
		}
		_, err := w.Write(instr.Extra)
		return err
	default:
		return nil
	}
}

// Encode writes the binary encoding of an instruction sequence, including the bodies of any structured
// instructions. The sequence must end with an end instruction.
func Encode(w io.Writer, body []Instruction) error {
	if len(body) == 0 || body[len(body)-1].Opcode != OpEnd {
		return ErrMissingEnd
	}
	for i := range body {
		if err := encodeInstruction(w, &body[i]); err != nil {
			return err
		}
	}
	return nil
}
