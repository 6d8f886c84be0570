package rewire

import (
	"fmt"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// CountCalls returns the number of direct call sites that target each function of the module, indexed by function
// index. Calls to indices outside of the function index space are ignored.
func CountCalls(m *wasm.Module) ([]int, error) {
	counts := make([]int, m.NumFunctions())
	if m.Code == nil {
		return counts, nil
	}

	imported := m.NumImportedFunctions()
	for i, body := range m.Code.Bodies {
		instrs, err := code.Decode(body.Code)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", imported+i, err)
		}
		code.Walk(instrs, func(instr *code.Instruction) error {
			if funcidx := int(instr.Funcidx()); instr.IsDirectCall() && funcidx < len(counts) {
				counts[funcidx]++
			}
			return nil
		})
	}
	return counts, nil
}
