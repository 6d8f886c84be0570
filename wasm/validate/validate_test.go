package validate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

func body(t *testing.T, instrs ...code.Instruction) wasm.FunctionBody {
	var buf bytes.Buffer
	require.NoError(t, code.Encode(&buf, append(instrs, code.End())))
	return wasm.FunctionBody{Code: buf.Bytes()}
}

// newModule returns a valid module with one imported and two local functions.
func newModule(t *testing.T) *wasm.Module {
	m := wasm.NewModule()
	m.AddSection(&wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{Form: wasm.TypeFunc},
		{Form: wasm.TypeFunc, ParamTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}})
	m.AddSection(&wasm.SectionImports{Entries: []wasm.ImportEntry{
		{ModuleName: "env", FieldName: "log", Type: wasm.FuncImport{Type: 1}},
	}})
	m.AddSection(&wasm.SectionFunctions{Types: []uint32{0, 1}})
	m.AddSection(&wasm.SectionTables{Entries: []wasm.Table{
		{ElementType: wasm.ValueTypeFuncref, Limits: wasm.ResizableLimits{Initial: 2}},
	}})
	m.AddSection(&wasm.SectionMemories{Entries: []wasm.Memory{
		{Limits: wasm.ResizableLimits{Initial: 1}},
	}})
	m.AddSection(&wasm.SectionExports{Entries: []wasm.ExportEntry{
		{FieldStr: "main", Kind: wasm.ExternalFunction, Index: 1},
		{FieldStr: "memory", Kind: wasm.ExternalMemory, Index: 0},
	}})
	m.AddSection(&wasm.SectionStartFunction{Index: 1})
	m.AddSection(&wasm.SectionElements{Entries: []wasm.ElementSegment{
		{Offset: []byte{code.OpI32Const, 0x00, code.OpEnd}, Elems: []uint32{1, 2}},
	}})
	m.AddSection(&wasm.SectionCode{Bodies: []wasm.FunctionBody{
		body(t,
			code.Block(code.BlockTypeEmpty,
				code.I32Const(1),
				code.Call(2),
				code.Br(1)),
			code.I32Const(0),
			code.CallIndirect(1, 0)),
		body(t, code.LocalGet(0), code.Call(0)),
	}})
	return m
}

func TestValidModule(t *testing.T) {
	assert.NoError(t, ValidateModule(newModule(t), true))
	assert.NoError(t, ValidateModule(wasm.NewModule(), true))
}

func TestInvalidModules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, m *wasm.Module)
	}{
		{"call target", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[1] = body(t, code.Call(3))
		}},
		{"nested call target", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.Block(code.BlockTypeEmpty, code.Loop(code.BlockTypeEmpty, code.Call(7))))
		}},
		{"ref.func target", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.RefFunc(3), code.Drop())
		}},
		{"undeclared ref.func", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.RefFunc(0), code.Drop())
		}},
		{"label", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.Block(code.BlockTypeEmpty, code.Br(2)))
		}},
		{"local", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.LocalGet(0), code.Drop())
		}},
		{"indirect type", func(t *testing.T, m *wasm.Module) {
			m.Code.Bodies[0] = body(t, code.I32Const(0), code.CallIndirect(5, 0))
		}},
		{"function count", func(t *testing.T, m *wasm.Module) {
			m.Function.Types = append(m.Function.Types, 0)
		}},
		{"function type", func(t *testing.T, m *wasm.Module) {
			m.Function.Types[0] = 2
		}},
		{"import type", func(t *testing.T, m *wasm.Module) {
			m.Import.Entries[0].Type = wasm.FuncImport{Type: 9}
		}},
		{"export", func(t *testing.T, m *wasm.Module) {
			m.Export.Entries[0].Index = 3
		}},
		{"start", func(t *testing.T, m *wasm.Module) {
			m.Start.Index = 3
		}},
		{"start signature", func(t *testing.T, m *wasm.Module) {
			m.Start.Index = 2
		}},
		{"element", func(t *testing.T, m *wasm.Module) {
			m.Elements.Entries[0].Elems[1] = 3
		}},
		{"element expression", func(t *testing.T, m *wasm.Module) {
			m.Elements.Entries = append(m.Elements.Entries, wasm.ElementSegment{
				Flags: wasm.ElemPassive | wasm.ElemExpressions,
				Exprs: [][]byte{{code.OpRefFunc, 0x04, code.OpEnd}},
			})
		}},
		{"element table", func(t *testing.T, m *wasm.Module) {
			m.Elements.Entries[0].Flags = wasm.ElemTableIndex
			m.Elements.Entries[0].Index = 1
		}},
		{"data count", func(t *testing.T, m *wasm.Module) {
			m.AddSection(&wasm.SectionDataCount{Count: 1})
		}},
		{"memory limits", func(t *testing.T, m *wasm.Module) {
			m.Memory.Entries[0].Limits = wasm.ResizableLimits{Flags: 1, Initial: 2, Maximum: 1}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := newModule(t)
			c.mutate(t, m)

			err := ValidateModule(m, true)
			var verr wasm.ValidationError
			assert.True(t, errors.As(err, &verr), "unexpected error %v", err)
		})
	}
}

func TestDeclaredReferences(t *testing.T) {
	// Function 1 is exported and function 2 sits in the active segment.
	m := newModule(t)
	m.Code.Bodies[0] = body(t, code.RefFunc(1), code.Drop(), code.RefFunc(2), code.Drop())
	assert.NoError(t, ValidateModule(m, true))

	// The import is only reachable once a declarative segment names it.
	m.Code.Bodies[0] = body(t, code.RefFunc(0), code.Drop())
	assert.Error(t, ValidateModule(m, true))
	assert.NoError(t, ValidateModule(m, false))

	m.Elements.Entries = append(m.Elements.Entries, wasm.ElementSegment{
		Flags: wasm.ElemPassive | wasm.ElemTableIndex,
		Elems: []uint32{0},
	})
	assert.NoError(t, ValidateModule(m, true))

	// A global initializer declares its operand as well.
	m.Elements.Entries = m.Elements.Entries[:1]
	m.AddSection(&wasm.SectionGlobals{Globals: []wasm.GlobalEntry{{
		Type: wasm.GlobalVar{Type: wasm.ValueTypeFuncref},
		Init: []byte{code.OpRefFunc, 0x00, code.OpEnd},
	}}})
	assert.NoError(t, ValidateModule(m, true))
}

func TestDuplicateExport(t *testing.T) {
	m := newModule(t)
	m.Export.Entries = append(m.Export.Entries, wasm.ExportEntry{FieldStr: "main", Kind: wasm.ExternalFunction, Index: 2})
	assert.Equal(t, wasm.DuplicateExportError("main"), ValidateModule(m, false))
}

func TestSkipCode(t *testing.T) {
	m := newModule(t)
	m.Code.Bodies[1] = body(t, code.Call(3))
	assert.NoError(t, ValidateModule(m, false))
	assert.Error(t, ValidateModule(m, true))
}
