package rewire

import (
	"slices"

	"github.com/willf/bitset"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// declaredFunctions returns the set of functions that may be referenced by ref.func in code: every function that is
// exported, placed in an element segment, or referenced by a global initializer.
func declaredFunctions(exports []wasm.ExportEntry, elements []wasm.ElementSegment, globals []wasm.GlobalEntry) (*bitset.BitSet, error) {
	declared := bitset.New(0)
	for _, e := range exports {
		if e.Kind == wasm.ExternalFunction {
			declared.Set(uint(e.Index))
		}
	}

	exprs := make([][]byte, 0, len(globals))
	for _, seg := range elements {
		for _, funcidx := range seg.Elems {
			declared.Set(uint(funcidx))
		}
		exprs = append(exprs, seg.Exprs...)
	}
	for _, g := range globals {
		exprs = append(exprs, g.Init)
	}

	for _, expr := range exprs {
		instrs, err := code.Decode(expr)
		if err != nil {
			return nil, err
		}
		code.Walk(instrs, func(instr *code.Instruction) error {
			if instr.Opcode == code.OpRefFunc {
				declared.Set(uint(instr.Funcidx()))
			}
			return nil
		})
	}
	return declared, nil
}

// declareReferences returns a declarative element segment for the functions in refs that nothing else declares, or
// nil if every reference is already declared. refs holds the shifted local indices of replaced functions that are
// operands of ref.func in code: their exports now name the new imports, so the local bodies lose their declaration.
func declareReferences(refs []uint32, exports []wasm.ExportEntry, elements []wasm.ElementSegment, globals []wasm.GlobalEntry) (*wasm.ElementSegment, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	declared, err := declaredFunctions(exports, elements, globals)
	if err != nil {
		return nil, err
	}

	var elems []uint32
	for _, funcidx := range refs {
		if !declared.Test(uint(funcidx)) {
			declared.Set(uint(funcidx))
			elems = append(elems, funcidx)
		}
	}
	if len(elems) == 0 {
		return nil, nil
	}
	slices.Sort(elems)

	return &wasm.ElementSegment{
		Flags:    wasm.ElemPassive | wasm.ElemTableIndex, // declarative
		ElemKind: 0x00,                                   // funcref
		Elems:    elems,
	}, nil
}
