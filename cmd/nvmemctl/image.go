package main

import (
	"fmt"
	"os"

	"github.com/siliconforge/nvmem/pkg/flash"
	"github.com/siliconforge/nvmem/pkg/nvmem"
)

// defaultSectorSize is used to synthesize a two-equal-sector Layout when the
// caller doesn't supply a --layout file.
const defaultSectorSize = 4096

// openEmulator opens (creating if needed) the flash image at imagePath and
// wires it into a ready-to-use Emulator. If layoutPath is empty, a default
// symmetric two-sector layout of sectorSize bytes each is used.
func openEmulator(imagePath, layoutPath string, sectorSize int) (*flash.File, *nvmem.Emulator, error) {
	layout := nvmem.Layout{Base1: 0, Size1: sectorSize, Base2: sectorSize, Size2: sectorSize}

	if layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading layout: %w", err)
		}
		layout, err = nvmem.ParseLayout(data)
		if err != nil {
			return nil, nil, err
		}
	}

	total := layout.Base1 + layout.Size1
	if end2 := layout.Base2 + layout.Size2; end2 > total {
		total = end2
	}

	store, err := flash.OpenFile(imagePath, total)
	if err != nil {
		return nil, nil, fmt.Errorf("opening image: %w", err)
	}

	e := nvmem.New(nvmem.Options{Store: store, Layout: layout})
	e.Init()

	return store, e, nil
}
