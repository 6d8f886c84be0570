package rewire

import (
	"bytes"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// shiftIndex returns the shifted form of a reference to a function definition.
func shiftIndex(funcidx uint32, space *IndexSpace, where string, args ...interface{}) (uint32, bool, error) {
	switch space.Classify(funcidx) {
	case Imported:
		return funcidx, false, nil
	case Invalid:
		return 0, false, space.check(funcidx, where, args...)
	default:
		return space.Shift(funcidx), true, nil
	}
}

// shiftExpr shifts the ref.func operands of a constant expression. The original bytes are returned if nothing
// changes.
func shiftExpr(expr []byte, space *IndexSpace) ([]byte, int, error) {
	instrs, err := code.Decode(expr)
	if err != nil {
		return nil, 0, err
	}

	shifted := 0
	err = code.Walk(instrs, func(instr *code.Instruction) error {
		if instr.Opcode != code.OpRefFunc {
			return nil
		}
		funcidx, changed, err := shiftIndex(instr.Funcidx(), space, "%v", instr)
		if err != nil {
			return err
		}
		if changed {
			instr.SetFuncidx(funcidx)
			shifted++
		}
		return nil
	})
	if err != nil || shifted == 0 {
		return expr, shifted, err
	}

	var buf bytes.Buffer
	if err := code.Encode(&buf, instrs); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), shifted, nil
}

// shiftElements returns a copy of the given element segments with every function reference shifted. Tables keep
// pointing at the local definitions of replaced functions.
func shiftElements(entries []wasm.ElementSegment, space *IndexSpace) ([]wasm.ElementSegment, int, error) {
	shifted := 0
	result := make([]wasm.ElementSegment, len(entries))
	for i, seg := range entries {
		result[i] = seg

		if len(seg.Elems) != 0 {
			elems := make([]uint32, len(seg.Elems))
			for j, funcidx := range seg.Elems {
				newidx, changed, err := shiftIndex(funcidx, space, "element segment %d, entry %d", i, j)
				if err != nil {
					return nil, 0, err
				}
				if changed {
					shifted++
				}
				elems[j] = newidx
			}
			result[i].Elems = elems
		}

		if len(seg.Exprs) != 0 {
			exprs := make([][]byte, len(seg.Exprs))
			for j, expr := range seg.Exprs {
				newexpr, n, err := shiftExpr(expr, space)
				if err != nil {
					return nil, 0, err
				}
				exprs[j], shifted = newexpr, shifted+n
			}
			result[i].Exprs = exprs
		}
	}
	return result, shifted, nil
}

// shiftGlobals returns a copy of the given globals with the ref.func operands of their initializers shifted.
func shiftGlobals(globals []wasm.GlobalEntry, space *IndexSpace) ([]wasm.GlobalEntry, int, error) {
	shifted := 0
	result := make([]wasm.GlobalEntry, len(globals))
	for i, g := range globals {
		init, n, err := shiftExpr(g.Init, space)
		if err != nil {
			return nil, 0, err
		}
		result[i] = wasm.GlobalEntry{Type: g.Type, Init: init}
		shifted += n
	}
	return result, shifted, nil
}
