// Package load reads and writes binary WebAssembly modules.
package load

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pgavlin/wext/wasm"
)

// ErrNotBinary is returned when the input does not begin with the binary module magic number.
var ErrNotBinary = errors.New("not a binary WebAssembly module")

// LoadModule decodes a binary module from r.
func LoadModule(r io.Reader) (*wasm.Module, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4)
	if err != nil {
		if err == io.EOF {
			return nil, ErrNotBinary
		}
		return nil, err
	}
	if binary.LittleEndian.Uint32(buf) != wasm.Magic {
		return nil, ErrNotBinary
	}
	return wasm.DecodeModule(br)
}

// LoadFile decodes the binary module stored at path. The file is mapped into memory where possible.
func LoadFile(path string) (*wasm.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, unmap, err := mapFile(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer unmap()

	m, err := LoadModule(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return m, nil
}

func readFile(f *os.File) ([]byte, func() error, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
