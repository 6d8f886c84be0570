package validate

import (
	"github.com/willf/bitset"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// indexSpaces records the function, global, table and memory index spaces of a module. Imports come first in
// each space.
type indexSpaces struct {
	types []wasm.FunctionSig

	functions       []uint32 // type index of each function
	globals         int
	importedGlobals int
	tables          int
	memories        int

	// declared holds the functions that ref.func in code may name.
	declared *bitset.BitSet
}

func newIndexSpaces(m *wasm.Module) indexSpaces {
	var s indexSpaces
	if m.Types != nil {
		s.types = m.Types.Entries
	}
	if m.Import != nil {
		for _, entry := range m.Import.Entries {
			switch imp := entry.Type.(type) {
			case wasm.FuncImport:
				s.functions = append(s.functions, imp.Type)
			case wasm.TableImport:
				s.tables++
			case wasm.MemoryImport:
				s.memories++
			case wasm.GlobalVarImport:
				s.importedGlobals++
			}
		}
	}
	if m.Function != nil {
		s.functions = append(s.functions, m.Function.Types...)
	}
	s.globals = s.importedGlobals
	if m.Global != nil {
		s.globals += len(m.Global.Globals)
	}
	if m.Table != nil {
		s.tables += len(m.Table.Entries)
	}
	if m.Memory != nil {
		s.memories += len(m.Memory.Entries)
	}
	s.declared = declaredFunctions(m)
	return s
}

// declaredFunctions collects the functions named by exports, element segments and global initializers.
// Malformed expressions are skipped here and reported by the element and global checks.
func declaredFunctions(m *wasm.Module) *bitset.BitSet {
	declared := bitset.New(0)
	var exprs [][]byte
	if m.Export != nil {
		for _, e := range m.Export.Entries {
			if e.Kind == wasm.ExternalFunction {
				declared.Set(uint(e.Index))
			}
		}
	}
	if m.Elements != nil {
		for _, elem := range m.Elements.Entries {
			for _, funcidx := range elem.Elems {
				declared.Set(uint(funcidx))
			}
			exprs = append(exprs, elem.Exprs...)
		}
	}
	if m.Global != nil {
		for _, g := range m.Global.Globals {
			exprs = append(exprs, g.Init)
		}
	}
	for _, expr := range exprs {
		instrs, err := code.Decode(expr)
		if err != nil {
			continue
		}
		code.Walk(instrs, func(instr *code.Instruction) error {
			if instr.Opcode == code.OpRefFunc {
				declared.Set(uint(instr.Funcidx()))
			}
			return nil
		})
	}
	return declared
}

func (s *indexSpaces) signature(typeidx uint32) (wasm.FunctionSig, bool) {
	if uint64(typeidx) >= uint64(len(s.types)) {
		return wasm.FunctionSig{}, false
	}
	return s.types[typeidx], true
}

func (s *indexSpaces) function(funcidx uint32) (wasm.FunctionSig, bool) {
	if uint64(funcidx) >= uint64(len(s.functions)) {
		return wasm.FunctionSig{}, false
	}
	return s.signature(s.functions[funcidx])
}

func (s *indexSpaces) hasFunction(funcidx uint32) bool {
	_, ok := s.function(funcidx)
	return ok
}

func (s *indexSpaces) isDeclared(funcidx uint32) bool { return s.declared.Test(uint(funcidx)) }

func (s *indexSpaces) hasGlobal(globalidx uint32) bool { return uint64(globalidx) < uint64(s.globals) }
func (s *indexSpaces) hasTable(tableidx uint32) bool   { return uint64(tableidx) < uint64(s.tables) }
func (s *indexSpaces) hasMemory(memidx uint32) bool    { return uint64(memidx) < uint64(s.memories) }
