package plan

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm"
)

func testModule() *wasm.Module {
	m := wasm.NewModule()
	m.AddSection(&wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{Form: wasm.TypeFunc, ParamTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}})
	m.AddSection(&wasm.SectionImports{Entries: []wasm.ImportEntry{
		{ModuleName: "env", FieldName: "log", Type: wasm.FuncImport{Type: 0}},
	}})
	m.AddSection(&wasm.SectionFunctions{Types: []uint32{0, 0}})
	m.AddSection(&wasm.SectionExports{Entries: []wasm.ExportEntry{
		{FieldStr: "_free", Kind: wasm.ExternalFunction, Index: 1},
		{FieldStr: "_malloc", Kind: wasm.ExternalFunction, Index: 2},
	}})
	m.AddSection(&wasm.SectionCode{Bodies: []wasm.FunctionBody{
		{Code: []byte{0x0b}},
		// local.get 0; call 1; local.get 0; call 1
		{Code: []byte{0x20, 0x00, 0x10, 0x01, 0x20, 0x00, 0x10, 0x01, 0x0b}},
	}})
	return m
}

func TestWritePlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, testModule(), rewire.DefaultTargets(), "host"))

	expected := "position,name,funcidx,typeidx,signature,module,import,call sites\n" +
		"0,_free,1,0,(i32) -> (),host,1,2\n" +
		"1,_malloc,2,0,(i32) -> (),host,2,0\n"
	assert.Equal(t, expected, buf.String())
}

func TestWritePlanEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, testModule(), nil, "env"))
	assert.Equal(t, "position,name,funcidx,typeidx,signature,module,import,call sites\n", buf.String())
}

func TestWritePlanError(t *testing.T) {
	var buf bytes.Buffer
	err := WritePlan(&buf, testModule(), []string{"_realloc"}, "env")
	assert.True(t, errors.Is(err, rewire.ErrInvalidTarget))
	assert.Empty(t, buf.String())
}
