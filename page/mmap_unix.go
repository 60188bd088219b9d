//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package page

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile opens path (creating and truncating it to size if it does not
// exist or is smaller) and maps it read-write, shared.
func mmapFile(path string, size int64) (*os.File, []byte, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, nil, err
	}

	if fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()

			return nil, nil, err
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()

		return nil, nil, err
	}

	return f, data, nil
}

func munmap(data []byte) error {
	return unix.Munmap(data)
}

// mprotectReadonly revokes write access to the mapping in place, used
// when a volume is rotated out of the active slot.
func mprotectReadonly(data []byte) error {
	return unix.Mprotect(data, unix.PROT_READ)
}

// mprotectWritable restores write access, used when a volume is reused.
func mprotectWritable(data []byte) error {
	return unix.Mprotect(data, unix.PROT_READ|unix.PROT_WRITE)
}

func msync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
