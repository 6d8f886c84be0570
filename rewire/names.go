package rewire

import (
	"errors"

	"go.uber.org/zap"

	"github.com/pgavlin/wext/wasm"
)

// renumberNames returns the module's name section updated for the new index space. Names of local functions and
// their locals move with the functions; each new import is named after its field. If the module has no name section,
// renumberNames returns nil. If the name section cannot be parsed, renumberNames returns nil and drop is true.
func renumberNames(m *wasm.Module, space *IndexSpace, plan Plan) (names *wasm.NameSection, drop bool) {
	names, err := m.Names()
	if err != nil {
		var missing wasm.MissingSectionError
		if errors.As(err, &missing) {
			return nil, false
		}
		Logger().Warn("dropping malformed name section", zap.Error(err))
		return nil, true
	}

	functions := names.Functions()
	if functions == nil {
		functions = &wasm.FunctionNamesSubsection{}
		insertSubsection(names, functions)
	}

	// Imports keep their names, new imports follow them, and shifted locals come last.
	var imported, locals []wasm.Naming
	for _, n := range functions.Names {
		if n.Index < space.Imported() {
			imported = append(imported, n)
		} else {
			locals = append(locals, wasm.Naming{Index: space.Shift(n.Index), Name: n.Name})
		}
	}
	renamed := make([]wasm.Naming, 0, len(functions.Names)+len(plan))
	renamed = append(renamed, imported...)
	for p, ins := range plan {
		renamed = append(renamed, wasm.Naming{Index: space.Imported() + uint32(p), Name: ins.Name})
	}
	functions.Names = append(renamed, locals...)

	if l := names.Locals(); l != nil {
		for i := range l.Funcs {
			l.Funcs[i].Index = space.Shift(l.Funcs[i].Index)
		}
	}

	return names, false
}

// insertSubsection inserts s into the name section, keeping subsections ordered by ID.
func insertSubsection(names *wasm.NameSection, s wasm.NameSubsection) {
	at := len(names.Entries)
	for i, e := range names.Entries {
		if e.Type() > s.Type() {
			at = i
			break
		}
	}
	names.Entries = append(names.Entries, nil)
	copy(names.Entries[at+1:], names.Entries[at:])
	names.Entries[at] = s
}
