package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wext/load"
	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm"
)

// allocModule exports _malloc, _free, and main, which calls both.
func allocModule() *wasm.Module {
	i32 := []wasm.ValueType{wasm.ValueTypeI32}

	m := wasm.NewModule()
	m.AddSection(&wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{Form: wasm.TypeFunc, ParamTypes: i32, ReturnTypes: i32},
		{Form: wasm.TypeFunc, ParamTypes: i32},
		{Form: wasm.TypeFunc},
	}})
	m.AddSection(&wasm.SectionImports{Entries: []wasm.ImportEntry{
		{ModuleName: "wasi_snapshot_preview1", FieldName: "proc_exit", Type: wasm.FuncImport{Type: 1}},
	}})
	m.AddSection(&wasm.SectionFunctions{Types: []uint32{0, 1, 2}})
	m.AddSection(&wasm.SectionMemories{Entries: []wasm.Memory{{Limits: wasm.ResizableLimits{Initial: 1}}}})
	m.AddSection(&wasm.SectionExports{Entries: []wasm.ExportEntry{
		{FieldStr: "memory", Kind: wasm.ExternalMemory, Index: 0},
		{FieldStr: "_malloc", Kind: wasm.ExternalFunction, Index: 1},
		{FieldStr: "_free", Kind: wasm.ExternalFunction, Index: 2},
		{FieldStr: "main", Kind: wasm.ExternalFunction, Index: 3},
	}})
	m.AddSection(&wasm.SectionCode{Bodies: []wasm.FunctionBody{
		// _malloc: local.get 0
		{Code: []byte{0x20, 0x00, 0x0b}},
		// _free: nop
		{Code: []byte{0x01, 0x0b}},
		// main: i32.const 16; call _malloc; call _free
		{Code: []byte{0x41, 0x10, 0x10, 0x01, 0x10, 0x02, 0x0b}},
	}})
	return m
}

func writeModule(t *testing.T, m *wasm.Module) string {
	path := filepath.Join(t.TempDir(), "in.wasm")
	require.NoError(t, load.WriteFile(path, m))
	return path
}

func defaultOptions() rewriteOptions {
	return rewriteOptions{
		targets:  rewire.DefaultTargets(),
		host:     rewire.DefaultHostModule,
		workers:  2,
		validate: true,
		check:    true,
	}
}

func TestRunRewrite(t *testing.T) {
	input := writeModule(t, allocModule())
	output := filepath.Join(t.TempDir(), "out.wasm")

	var stderr bytes.Buffer
	require.NoError(t, runRewrite(context.Background(), &stderr, input, output, defaultOptions()))
	assert.Contains(t, stderr.String(), "env._free: function 2 -> import 1")
	assert.Contains(t, stderr.String(), "env._malloc: function 1 -> import 2")

	m, err := load.LoadFile(output)
	require.NoError(t, err)
	require.Len(t, m.Import.Entries, 3)
	assert.Equal(t, "_free", m.Import.Entries[1].FieldName)
	assert.Equal(t, "_malloc", m.Import.Entries[2].FieldName)

	// main: i32.const 16; call 2; call 1
	assert.Equal(t, []byte{0x41, 0x10, 0x10, 0x02, 0x10, 0x01, 0x0b}, m.Code.Bodies[2].Code)

	main, ok := m.Export.Lookup("main")
	require.True(t, ok)
	assert.Equal(t, uint32(5), main.Index)
}

func TestRunRewriteErrors(t *testing.T) {
	input := writeModule(t, allocModule())
	output := filepath.Join(t.TempDir(), "out.wasm")

	options := defaultOptions()
	options.targets = []string{"_realloc"}

	err := runRewrite(context.Background(), &bytes.Buffer{}, input, output, options)
	assert.True(t, errors.Is(err, rewire.ErrInvalidTarget))

	// Nothing is written on failure.
	_, err = os.Stat(output)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunRewriteNoTargets(t *testing.T) {
	m := allocModule()
	input := writeModule(t, m)
	output := filepath.Join(t.TempDir(), "out.wasm")

	options := defaultOptions()
	options.targets = nil

	var stderr bytes.Buffer
	require.NoError(t, runRewrite(context.Background(), &stderr, input, output, options))
	assert.Contains(t, stderr.String(), "module unchanged")

	expected, err := m.Encode()
	require.NoError(t, err)
	actual, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestUsage(t *testing.T) {
	command := configureCLI()

	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(&out)
	command.SetArgs([]string{"only-one.wasm"})

	assert.NoError(t, command.Execute())
	assert.Contains(t, out.String(), "Usage:")
}
