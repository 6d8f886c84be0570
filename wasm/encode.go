// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"fmt"
	"io"
)

// EncodeModule writes the binary encoding of m to w. Sections are written in the order in which they appear in
// m.Sections.
func EncodeModule(w io.Writer, m *Module) error {
	version := m.Version
	if version == 0 {
		version = Version
	}
	if err := writeU32(w, Magic); err != nil {
		return err
	}
	if err := writeU32(w, version); err != nil {
		return err
	}

	var payload bytes.Buffer
	for _, s := range m.Sections {
		payload.Reset()
		if err := s.WritePayload(&payload); err != nil {
			return fmt.Errorf("encoding %v section: %w", s.SectionID(), err)
		}
		if _, err := w.Write([]byte{byte(s.SectionID())}); err != nil {
			return err
		}
		if err := writeBytesUint(w, payload.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Encode returns the binary encoding of the module.
func (m *Module) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeModule(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
