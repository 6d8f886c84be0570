package rewire

import (
	"github.com/pgavlin/wext/wasm"
)

// synthesizeImports appends one function import per insertion to the module's import section, creating the section
// if necessary. Function imports are numbered in import order, so the insertion at plan position p becomes function
// I+p regardless of any non-function imports.
func synthesizeImports(m *wasm.Module, plan Plan, host string) {
	if m.Import == nil {
		m.AddSection(&wasm.SectionImports{})
	}
	for _, ins := range plan {
		m.Import.Entries = append(m.Import.Entries, wasm.ImportEntry{
			ModuleName: host,
			FieldName:  ins.Name,
			Type:       wasm.FuncImport{Type: ins.TypeIndex},
		})
	}
}
