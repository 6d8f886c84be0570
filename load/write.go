package load

import (
	"os"
	"path/filepath"

	"github.com/pgavlin/wext/wasm"
)

// WriteFile encodes m and writes it to path. The module is fully encoded before the file is touched, and the file is
// replaced atomically.
func WriteFile(path string, m *wasm.Module) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return WriteBytes(path, data)
}

// WriteBytes atomically replaces the contents of path with data.
func WriteBytes(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
