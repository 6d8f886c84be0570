package rewire

import (
	"github.com/pgavlin/wext/wasm"
)

// An Insertion describes a local function that is converted into an import.
type Insertion struct {
	FuncIndex uint32
	TypeIndex uint32
	Name      string
}

// A Plan lists the functions to convert into imports. The function at position p is imported at index I+p, where
// I is the number of functions imported by the original module.
type Plan []Insertion

// Position returns the position of the given function in the plan.
func (p Plan) Position(funcidx uint32) (int, bool) {
	for i, ins := range p {
		if ins.FuncIndex == funcidx {
			return i, true
		}
	}
	return 0, false
}

// Locate resolves each target to the exported local function of the same name. The module is not modified.
func Locate(m *wasm.Module, targets []string) (Plan, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	if m.Export == nil {
		return nil, wasm.MissingSectionError(wasm.SectionIDExport)
	}
	if m.Function == nil {
		return nil, wasm.MissingSectionError(wasm.SectionIDFunction)
	}

	imported := uint32(m.NumImportedFunctions())
	seen := make(map[string]bool, len(targets))
	plan := make(Plan, 0, len(targets))
	for _, name := range targets {
		if seen[name] {
			return nil, DuplicateTargetError(name)
		}
		seen[name] = true

		export, ok := m.Export.Lookup(name)
		if !ok {
			return nil, &UnresolvedExportError{Name: name}
		}
		if export.Kind != wasm.ExternalFunction {
			return nil, &NotFunctionExportError{Name: name, Kind: export.Kind}
		}
		if export.Index < imported {
			return nil, &ImportedTargetError{Name: name, FuncIndex: export.Index}
		}

		local := export.Index - imported
		if int(local) >= len(m.Function.Types) {
			return nil, &InvalidFunctionIndexError{
				FuncIndex: export.Index,
				Functions: int(imported) + len(m.Function.Types),
				Where:     "export " + name,
			}
		}

		if p, ok := plan.Position(export.Index); ok {
			return nil, &AliasedTargetError{Name: name, Alias: plan[p].Name, FuncIndex: export.Index}
		}

		plan = append(plan, Insertion{
			FuncIndex: export.Index,
			TypeIndex: m.Function.Types[local],
			Name:      name,
		})
	}
	return plan, nil
}
