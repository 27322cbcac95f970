package flash

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a [Store] backed by a memory-mapped disk image, the production
// counterpart to [Sim]. It models a NOR chip as a plain file: byte-addressed
// reads and AND-semantics programs hit the mapping directly, and
// EraseSector memsets the sector's span to 0xFF. Nothing flushes the
// mapping explicitly; changes reach the file through the shared mapping.
//
// File is meant for host-side development and golden-image testing, not as
// a claim about any particular real flash controller's timing; the actual
// hardware driver is treated as an external collaborator.
type File struct {
	f           *os.File
	data        []byte
	sectorBases []sectorBound
}

// SetSectorSizes tells File the (base, size) span of each sector, the same
// contract as [Sim.SetSectorSizes].
func (fl *File) SetSectorSizes(bounds ...[2]int) {
	fl.sectorBases = fl.sectorBases[:0]
	for _, b := range bounds {
		fl.sectorBases = append(fl.sectorBases, sectorBound{base: b[0], size: b[1]})
	}
}

// OpenFile mmaps path (created and 0xFF-filled to size if it doesn't
// already exist or is empty) for use as a flash image.
func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("flash: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flash: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		blank := make([]byte, size)
		for i := range blank {
			blank[i] = 0xFF
		}
		if _, err := f.Write(blank); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("flash: initialize %s: %w", path, err)
		}
	} else if int(info.Size()) != size {
		_ = f.Close()
		return nil, fmt.Errorf("flash: %s has size %d, want %d", path, info.Size(), size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flash: mmap %s: %w", path, err)
	}

	return &File{f: f, data: data}, nil
}

// Close unmaps the image and closes the underlying file.
func (fl *File) Close() error {
	if err := unix.Munmap(fl.data); err != nil {
		_ = fl.f.Close()
		return fmt.Errorf("flash: munmap: %w", err)
	}
	return fl.f.Close()
}

func (fl *File) Read(offset int, dst []byte) {
	copy(dst, fl.data[offset:offset+len(dst)])
}

func (fl *File) DataAt(offset, length int) []byte {
	return fl.data[offset : offset+length]
}

func (fl *File) Program(offset int, src []byte) int {
	for i, b := range src {
		fl.data[offset+i] &= b
	}
	for i, b := range src {
		if fl.data[offset+i] != b {
			return -1
		}
	}
	return 0
}

func (fl *File) EraseSector(base int) int {
	size := len(fl.data) - base
	for _, b := range fl.sectorBases {
		if b.base == base {
			size = b.size
			break
		}
	}
	for i := base; i < base+size; i++ {
		fl.data[i] = 0xFF
	}
	return 0
}

var _ Store = (*File)(nil)
var _ Store = (*Sim)(nil)
