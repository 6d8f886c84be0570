//go:build !unix

package load

import "os"

func mapFile(f *os.File) ([]byte, func() error, error) {
	return readFile(f)
}
