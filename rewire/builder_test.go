package rewire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

// moduleBuilder constructs in-memory modules for testing.
type moduleBuilder struct {
	t *testing.T
	m *wasm.Module
}

func newModuleBuilder(t *testing.T) *moduleBuilder {
	return &moduleBuilder{t: t, m: wasm.NewModule()}
}

// funcType adds a function type.
func (b *moduleBuilder) funcType(params, results []wasm.ValueType) *moduleBuilder {
	if b.m.Types == nil {
		b.m.AddSection(&wasm.SectionTypes{})
	}
	b.m.Types.Entries = append(b.m.Types.Entries, wasm.FunctionSig{Form: wasm.TypeFunc, ParamTypes: params, ReturnTypes: results})
	return b
}

// importFunc adds a function import.
func (b *moduleBuilder) importFunc(module, name string, typeidx uint32) *moduleBuilder {
	if b.m.Import == nil {
		b.m.AddSection(&wasm.SectionImports{})
	}
	b.m.Import.Entries = append(b.m.Import.Entries, wasm.ImportEntry{ModuleName: module, FieldName: name, Type: wasm.FuncImport{Type: typeidx}})
	return b
}

// function adds a local function. A final end instruction is appended to the body.
func (b *moduleBuilder) function(typeidx uint32, instrs ...code.Instruction) *moduleBuilder {
	return b.rawFunction(typeidx, encodeBody(b.t, instrs...))
}

// rawFunction adds a local function with a pre-encoded body.
func (b *moduleBuilder) rawFunction(typeidx uint32, body []byte) *moduleBuilder {
	if b.m.Function == nil {
		b.m.AddSection(&wasm.SectionFunctions{})
	}
	if b.m.Code == nil {
		b.m.AddSection(&wasm.SectionCode{})
	}
	b.m.Function.Types = append(b.m.Function.Types, typeidx)
	b.m.Code.Bodies = append(b.m.Code.Bodies, wasm.FunctionBody{Code: body})
	return b
}

// export adds an export.
func (b *moduleBuilder) export(name string, kind wasm.External, index uint32) *moduleBuilder {
	if b.m.Export == nil {
		b.m.AddSection(&wasm.SectionExports{})
	}
	b.m.Export.Entries = append(b.m.Export.Entries, wasm.ExportEntry{FieldStr: name, Kind: kind, Index: index})
	return b
}

func (b *moduleBuilder) exportFunc(name string, funcidx uint32) *moduleBuilder {
	return b.export(name, wasm.ExternalFunction, funcidx)
}

// memory adds a one-page memory.
func (b *moduleBuilder) memory() *moduleBuilder {
	b.m.AddSection(&wasm.SectionMemories{Entries: []wasm.Memory{{Limits: wasm.ResizableLimits{Initial: 1}}}})
	return b
}

// table adds a funcref table with the given size.
func (b *moduleBuilder) table(size uint32) *moduleBuilder {
	b.m.AddSection(&wasm.SectionTables{Entries: []wasm.Table{{ElementType: wasm.ValueTypeFuncref, Limits: wasm.ResizableLimits{Initial: size}}}})
	return b
}

func (b *moduleBuilder) start(funcidx uint32) *moduleBuilder {
	b.m.AddSection(&wasm.SectionStartFunction{Index: funcidx})
	return b
}

// elements adds an active element segment at offset 0 of table 0.
func (b *moduleBuilder) elements(funcidxs ...uint32) *moduleBuilder {
	if b.m.Elements == nil {
		b.m.AddSection(&wasm.SectionElements{})
	}
	b.m.Elements.Entries = append(b.m.Elements.Entries, wasm.ElementSegment{
		Offset: []byte{code.OpI32Const, 0x00, code.OpEnd},
		Elems:  funcidxs,
	})
	return b
}

// elementExprs adds a passive element segment of ref.func expressions.
func (b *moduleBuilder) elementExprs(funcidxs ...uint32) *moduleBuilder {
	if b.m.Elements == nil {
		b.m.AddSection(&wasm.SectionElements{})
	}
	exprs := make([][]byte, len(funcidxs))
	for i, funcidx := range funcidxs {
		exprs[i] = encodeBody(b.t, code.RefFunc(funcidx))
	}
	b.m.Elements.Entries = append(b.m.Elements.Entries, wasm.ElementSegment{
		Flags:    wasm.ElemPassive | wasm.ElemExpressions,
		ElemKind: byte(wasm.ValueTypeFuncref),
		Exprs:    exprs,
	})
	return b
}

// funcrefGlobal adds an immutable funcref global initialized with ref.func funcidx.
func (b *moduleBuilder) funcrefGlobal(funcidx uint32) *moduleBuilder {
	if b.m.Global == nil {
		b.m.AddSection(&wasm.SectionGlobals{})
	}
	b.m.Global.Globals = append(b.m.Global.Globals, wasm.GlobalEntry{
		Type: wasm.GlobalVar{Type: wasm.ValueTypeFuncref},
		Init: encodeBody(b.t, code.RefFunc(funcidx)),
	})
	return b
}

func (b *moduleBuilder) names(names *wasm.NameSection) *moduleBuilder {
	require.NoError(b.t, b.m.SetNames(names))
	return b
}

func (b *moduleBuilder) module() *wasm.Module {
	return b.m
}

func encodeBody(t *testing.T, instrs ...code.Instruction) []byte {
	var buf bytes.Buffer
	require.NoError(t, code.Encode(&buf, append(instrs, code.End())))
	return buf.Bytes()
}

func encodeModule(t *testing.T, m *wasm.Module) []byte {
	b, err := m.Encode()
	require.NoError(t, err)
	return b
}

// decodeFunction decodes the body of the local function at position i.
func decodeFunction(t *testing.T, m *wasm.Module, i int) []code.Instruction {
	instrs, err := code.Decode(m.Code.Bodies[i].Code)
	require.NoError(t, err)
	return instrs
}

// callTargets returns the targets of every direct call in the local function at position i, in order.
func callTargets(t *testing.T, m *wasm.Module, i int) []uint32 {
	var targets []uint32
	err := code.Walk(decodeFunction(t, m, i), func(instr *code.Instruction) error {
		if instr.IsDirectCall() {
			targets = append(targets, instr.Funcidx())
		}
		return nil
	})
	require.NoError(t, err)
	return targets
}
