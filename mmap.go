//go:build unix

package dwg

import (
	"os"

	"golang.org/x/sys/unix"
)

// ReadMmap decodes path the same as Read, but maps the file into memory
// read-only instead of copying it, avoiding the allocation for large
// drawings. The mapping is released before ReadMmap returns; Decode never
// retains the buffer it's given.
func ReadMmap(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, newError(Truncated, 0, nil)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(data)

	return Decode(data)
}
