//go:build unix

package load

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps the contents of f into memory. The returned function unmaps the data.
func mapFile(f *os.File) ([]byte, func() error, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	size := info.Size()
	if size == 0 || !info.Mode().IsRegular() {
		return readFile(f)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return readFile(f)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
