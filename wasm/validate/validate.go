// Package validate checks the structural integrity of a decoded module: every index refers to an entity that
// exists and the function and code sections agree. Operand types are not checked.
package validate

import (
	"fmt"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// maxPages is the largest number of 64KiB pages a 32-bit memory may declare.
const maxPages = 65536

type validator struct {
	indexSpaces

	module       *wasm.Module
	validateCode bool
}

func errorf(format string, args ...interface{}) error {
	return wasm.ValidationError(fmt.Sprintf(format, args...))
}

// ValidateModule checks that every index in the module refers to an existing entity. If validateCode is true,
// the instructions of each function body are decoded and their indices are checked as well.
func ValidateModule(m *wasm.Module, validateCode bool) error {
	v := &validator{
		indexSpaces:  newIndexSpaces(m),
		module:       m,
		validateCode: validateCode,
	}

	for _, check := range []func() error{
		v.validateImports,
		v.validateFunctions,
		v.validateTables,
		v.validateMemories,
		v.validateGlobals,
		v.validateExports,
		v.validateStart,
		v.validateElements,
		v.validateData,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateImports() error {
	if v.module.Import == nil {
		return nil
	}
	for _, entry := range v.module.Import.Entries {
		var err error
		switch imp := entry.Type.(type) {
		case wasm.FuncImport:
			if _, ok := v.signature(imp.Type); !ok {
				err = errorf("unknown type %d", imp.Type)
			}
		case wasm.TableImport:
			err = validateLimits(imp.Type.Limits)
		case wasm.MemoryImport:
			err = validateLimits(imp.Type.Limits)
		}
		if err != nil {
			return fmt.Errorf("import %s.%s: %w", entry.ModuleName, entry.FieldName, err)
		}
	}
	return nil
}

func (v *validator) validateFunctions() error {
	var types []uint32
	if v.module.Function != nil {
		types = v.module.Function.Types
	}
	var bodies []wasm.FunctionBody
	if v.module.Code != nil {
		bodies = v.module.Code.Bodies
	}
	if len(types) != len(bodies) {
		return wasm.ValidationError("function and code section have inconsistent lengths")
	}

	imported := len(v.functions) - len(types)
	for i, typeidx := range types {
		sig, ok := v.signature(typeidx)
		if !ok {
			return errorf("function %d: unknown type %d", imported+i, typeidx)
		}
		if !v.validateCode {
			continue
		}
		if err := v.validateBody(sig, bodies[i]); err != nil {
			return fmt.Errorf("function %d: %w", imported+i, err)
		}
	}
	return nil
}

func (v *validator) validateBody(sig wasm.FunctionSig, body wasm.FunctionBody) error {
	locals := uint64(len(sig.ParamTypes))
	for _, l := range body.Locals {
		locals += uint64(l.Count)
	}

	instrs, err := code.Decode(body.Code)
	if err != nil {
		return err
	}
	return v.validateInstructions(instrs, locals, 0)
}

// validateInstructions checks the indices used by an instruction sequence nested depth blocks deep.
func (v *validator) validateInstructions(body []code.Instruction, locals uint64, depth int) error {
	checkLabel := func(l int) error {
		if l > depth {
			return errorf("unknown label %d", l)
		}
		return nil
	}

	for i := range body {
		instr := &body[i]
		switch instr.Opcode {
		case code.OpBlock, code.OpLoop, code.OpIf:
			if instr.Immediate&code.BlockTypeSpecial == 0 {
				if _, ok := v.signature(instr.Typeidx()); !ok {
					return errorf("unknown type %d", instr.Typeidx())
				}
			}
			if err := v.validateInstructions(instr.Body, locals, depth+1); err != nil {
				return err
			}
		case code.OpBr, code.OpBrIf:
			if err := checkLabel(instr.Labelidx()); err != nil {
				return err
			}
		case code.OpBrTable:
			for _, l := range append(instr.Labels, instr.Labelidx()) {
				if err := checkLabel(l); err != nil {
					return err
				}
			}
		case code.OpCall, code.OpReturnCall:
			if !v.hasFunction(instr.Funcidx()) {
				return errorf("unknown function %d", instr.Funcidx())
			}
		case code.OpRefFunc:
			switch funcidx := instr.Funcidx(); {
			case !v.hasFunction(funcidx):
				return errorf("unknown function %d", funcidx)
			case !v.isDeclared(funcidx):
				return errorf("undeclared function reference %d", funcidx)
			}
		case code.OpCallIndirect, code.OpReturnCallIndirect:
			if _, ok := v.signature(instr.Typeidx()); !ok {
				return errorf("unknown type %d", instr.Typeidx())
			}
			if !v.hasTable(instr.Tableidx()) {
				return errorf("unknown table %d", instr.Tableidx())
			}
		case code.OpLocalGet, code.OpLocalSet, code.OpLocalTee:
			if uint64(instr.Localidx()) >= locals {
				return errorf("unknown local %d", instr.Localidx())
			}
		case code.OpGlobalGet, code.OpGlobalSet:
			if !v.hasGlobal(instr.Globalidx()) {
				return errorf("unknown global %d", instr.Globalidx())
			}
		case code.OpTableGet, code.OpTableSet:
			if !v.hasTable(uint32(instr.Immediate)) {
				return errorf("unknown table %d", instr.Immediate)
			}
		}
	}
	return nil
}

func validateLimits(limits wasm.ResizableLimits) error {
	if limits.HasMaximum() && limits.Initial > limits.Maximum {
		return wasm.ValidationError("size minimum must not be greater than maximum")
	}
	return nil
}

func (v *validator) validateTables() error {
	if v.module.Table == nil {
		return nil
	}
	for i, t := range v.module.Table.Entries {
		if err := validateLimits(t.Limits); err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
	}
	return nil
}

func (v *validator) validateMemories() error {
	if v.module.Memory == nil || len(v.module.Memory.Entries) == 0 {
		return nil
	}
	if v.memories > 1 {
		return wasm.ValidationError("multiple memories")
	}

	limits := v.module.Memory.Entries[0].Limits
	if err := validateLimits(limits); err != nil {
		return err
	}
	if limits.Initial > maxPages || limits.HasMaximum() && limits.Maximum > maxPages {
		return wasm.ValidationError("memory size must be at most 65536 pages (4GiB)")
	}
	return nil
}

func (v *validator) validateGlobals() error {
	if v.module.Global == nil {
		return nil
	}
	for i, g := range v.module.Global.Globals {
		// Initializers may only refer to imported globals.
		if err := v.validateInitExpr(g.Init, v.importedGlobals); err != nil {
			return fmt.Errorf("global %d: %w", v.importedGlobals+i, err)
		}
	}
	return nil
}

func (v *validator) validateExports() error {
	if v.module.Export == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(v.module.Export.Entries))
	for _, e := range v.module.Export.Entries {
		if _, ok := seen[e.FieldStr]; ok {
			return wasm.DuplicateExportError(e.FieldStr)
		}
		seen[e.FieldStr] = struct{}{}

		var ok bool
		switch e.Kind {
		case wasm.ExternalFunction:
			ok = v.hasFunction(e.Index)
		case wasm.ExternalTable:
			ok = v.hasTable(e.Index)
		case wasm.ExternalMemory:
			ok = v.hasMemory(e.Index)
		case wasm.ExternalGlobal:
			ok = v.hasGlobal(e.Index)
		}
		if !ok {
			return errorf("export %s: unknown %v %d", e.FieldStr, e.Kind, e.Index)
		}
	}
	return nil
}

func (v *validator) validateStart() error {
	if v.module.Start == nil {
		return nil
	}
	sig, ok := v.function(v.module.Start.Index)
	if !ok {
		return errorf("unknown start function %d", v.module.Start.Index)
	}
	if len(sig.ParamTypes) != 0 || len(sig.ReturnTypes) != 0 {
		return wasm.ValidationError("start function")
	}
	return nil
}

func (v *validator) validateElements() error {
	if v.module.Elements == nil {
		return nil
	}
	for i, elem := range v.module.Elements.Entries {
		if err := v.validateElementSegment(&elem); err != nil {
			return fmt.Errorf("element segment %d: %w", i, err)
		}
	}
	return nil
}

func (v *validator) validateElementSegment(elem *wasm.ElementSegment) error {
	if elem.IsActive() {
		if !v.hasTable(elem.Index) {
			return errorf("unknown table %d", elem.Index)
		}
		if err := v.validateInitExpr(elem.Offset, v.globals); err != nil {
			return err
		}
	}
	for _, funcidx := range elem.Elems {
		if !v.hasFunction(funcidx) {
			return errorf("unknown function %d", funcidx)
		}
	}
	for _, expr := range elem.Exprs {
		if err := v.validateInitExpr(expr, v.globals); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateData() error {
	segments := 0
	if v.module.Data != nil {
		segments = len(v.module.Data.Entries)
	}
	if v.module.DataCount != nil && int(v.module.DataCount.Count) != segments {
		return wasm.ValidationError("data count and data section have inconsistent lengths")
	}
	if v.module.Data == nil {
		return nil
	}

	for i, data := range v.module.Data.Entries {
		if data.Flags == wasm.DataPassive {
			continue
		}
		if !v.hasMemory(data.Index) {
			return errorf("data segment %d: unknown memory %d", i, data.Index)
		}
		if err := v.validateInitExpr(data.Offset, v.globals); err != nil {
			return fmt.Errorf("data segment %d: %w", i, err)
		}
	}
	return nil
}

// validateInitExpr checks a constant expression. Only the first globals globals may be referenced.
func (v *validator) validateInitExpr(expr []byte, globals int) error {
	instrs, err := code.Decode(expr)
	if err != nil {
		return err
	}
	return code.Walk(instrs, func(instr *code.Instruction) error {
		switch instr.Opcode {
		case code.OpI32Const, code.OpI64Const, code.OpF32Const, code.OpF64Const, code.OpRefNull, code.OpEnd,
			code.OpI32Add, code.OpI32Sub, code.OpI32Mul, code.OpI64Add, code.OpI64Sub, code.OpI64Mul:
			return nil
		case code.OpRefFunc:
			if !v.hasFunction(instr.Funcidx()) {
				return errorf("unknown function %d", instr.Funcidx())
			}
			return nil
		case code.OpGlobalGet:
			if int(instr.Globalidx()) >= globals {
				return errorf("unknown global %d", instr.Globalidx())
			}
			return nil
		default:
			return wasm.ValidationError("constant expression required")
		}
	})
}
