// Package rewire converts exported local functions of a WebAssembly module into host imports.
//
// Converting a function appends a new function import with the same signature and renumbers the function index
// space: imported functions keep their indices, the new imports follow them, and every local function moves past the
// new imports. Direct calls and exports of a converted function are redirected to its import, while table entries,
// the start function, and ref.func operands keep referring to the original local definition. A local definition that
// is still the operand of ref.func in code is declared by a declarative element segment.
package rewire

import (
	"go.uber.org/zap"

	"github.com/pgavlin/wext/wasm"
)

// DefaultHostModule is the module name used for synthesized imports if none is configured.
const DefaultHostModule = "env"

// DefaultTargets returns the exports converted by the command-line tool if none are configured.
func DefaultTargets() []string {
	return []string{"_free", "_malloc"}
}

// Config describes a rewrite.
type Config struct {
	// Targets lists the names of the exported functions to convert into imports. The order of the names determines
	// the order of the new imports.
	Targets []string
	// HostModule is the module name of the new imports. Defaults to DefaultHostModule.
	HostModule string
}

// Options holds the tuning parameters of a rewrite.
type Options struct {
	// Workers is the maximum number of function bodies rewritten concurrently.
	Workers int
}

// An Option configures a rewrite.
type Option func(o *Options)

// Workers sets the maximum number of function bodies rewritten concurrently.
func Workers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// Result summarizes a rewrite.
type Result struct {
	// Plan lists the converted functions in import order.
	Plan Plan
	// ImportedFunctions is the number of functions imported by the original module.
	ImportedFunctions int
	// LocalFunctions is the number of functions defined by the module.
	LocalFunctions int

	CallsRedirected   int
	CallsShifted      int
	BodiesRewritten   int
	ExportsRedirected int
	ExportsShifted    int

	// ReferencesShifted counts the start function, element entries, and ref.func operands that were shifted.
	ReferencesShifted int
	// ReferencesDeclared counts the replaced functions added to a declarative element segment because ref.func in
	// code still refers to their local bodies.
	ReferencesDeclared int
	// NamesDropped is true if a malformed name section was removed.
	NamesDropped bool
}

// Rewrite converts the exported functions named by cfg.Targets into imports from cfg.HostModule and updates the
// module's function references to match. Rewrite modifies m in place. If Rewrite returns an error, m is unmodified.
//
// An empty target list leaves the module untouched.
func Rewrite(m *wasm.Module, cfg Config, opts ...Option) (*Result, error) {
	options := Options{Workers: 1}
	for _, o := range opts {
		o(&options)
	}
	if cfg.HostModule == "" {
		cfg.HostModule = DefaultHostModule
	}

	result := &Result{ImportedFunctions: m.NumImportedFunctions()}
	if m.Function != nil {
		result.LocalFunctions = len(m.Function.Types)
	}
	if len(cfg.Targets) == 0 {
		Logger().Debug("no rewrite targets; leaving module unchanged")
		return result, nil
	}

	plan, err := Locate(m, cfg.Targets)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	for p, ins := range plan {
		Logger().Debug("converting export",
			zap.String("name", ins.Name),
			zap.Uint32("funcidx", ins.FuncIndex),
			zap.Uint32("typeidx", ins.TypeIndex),
			zap.Int("import", result.ImportedFunctions+p))
	}

	var bodies []wasm.FunctionBody
	if m.Code != nil {
		bodies = m.Code.Bodies
	} else if result.LocalFunctions != 0 {
		return nil, wasm.MissingSectionError(wasm.SectionIDCode)
	}
	if len(bodies) != result.LocalFunctions {
		return nil, wasm.ValidationError("function and code section have inconsistent lengths")
	}

	space := NewIndexSpace(result.ImportedFunctions, result.LocalFunctions, plan)

	// Compute every change before touching the module.
	bodies, calls, changed, err := rewriteCalls(bodies, space, options.Workers)
	if err != nil {
		return nil, err
	}
	result.CallsRedirected, result.CallsShifted, result.BodiesRewritten = calls.redirected, calls.shifted, changed
	result.ReferencesShifted = calls.refs

	exports, redirected, shifted, err := patchExports(m.Export.Entries, space)
	if err != nil {
		return nil, err
	}
	result.ExportsRedirected, result.ExportsShifted = redirected, shifted

	var start uint32
	if m.Start != nil {
		idx, changed, err := shiftIndex(m.Start.Index, space, "start function")
		if err != nil {
			return nil, err
		}
		if changed {
			result.ReferencesShifted++
		}
		start = idx
	}

	var elements []wasm.ElementSegment
	if m.Elements != nil {
		segs, n, err := shiftElements(m.Elements.Entries, space)
		if err != nil {
			return nil, err
		}
		elements, result.ReferencesShifted = segs, result.ReferencesShifted+n
	}

	var globals []wasm.GlobalEntry
	if m.Global != nil {
		gs, n, err := shiftGlobals(m.Global.Globals, space)
		if err != nil {
			return nil, err
		}
		globals, result.ReferencesShifted = gs, result.ReferencesShifted+n
	}

	declare, err := declareReferences(calls.replacedRefs, exports, elements, globals)
	if err != nil {
		return nil, err
	}
	if declare != nil {
		result.ReferencesDeclared = len(declare.Elems)
	}

	names, dropNames := renumberNames(m, space, plan)
	result.NamesDropped = dropNames

	// Apply.
	synthesizeImports(m, plan, cfg.HostModule)
	if m.Code != nil {
		m.Code.Bodies = bodies
	}
	m.Export.Entries = exports
	if m.Start != nil {
		m.Start.Index = start
	}
	if m.Elements != nil {
		m.Elements.Entries = elements
	}
	if m.Global != nil {
		m.Global.Globals = globals
	}
	if declare != nil {
		if m.Elements == nil {
			m.AddSection(&wasm.SectionElements{})
		}
		m.Elements.Entries = append(m.Elements.Entries, *declare)
	}
	switch {
	case dropNames:
		m.RemoveCustom(wasm.CustomSectionName)
	case names != nil:
		if err := m.SetNames(names); err != nil {
			m.RemoveCustom(wasm.CustomSectionName)
			result.NamesDropped = true
			Logger().Warn("dropping name section", zap.Error(err))
		}
	}

	Logger().Info("rewrote module",
		zap.Int("imports", len(plan)),
		zap.Int("callsRedirected", result.CallsRedirected),
		zap.Int("callsShifted", result.CallsShifted),
		zap.Int("bodiesRewritten", result.BodiesRewritten),
		zap.Int("exportsRedirected", result.ExportsRedirected),
		zap.Int("referencesShifted", result.ReferencesShifted),
		zap.Int("referencesDeclared", result.ReferencesDeclared))

	return result, nil
}
