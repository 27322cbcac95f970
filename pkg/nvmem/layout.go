package nvmem

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// Layout places the two sectors on a flash.Store: byte offsets and sizes,
// with no further alignment assumptions.
type Layout struct {
	Base1 int `json:"base1"`
	Size1 int `json:"size1"`
	Base2 int `json:"base2"`
	Size2 int `json:"size2"`
}

// ParseLayout decodes a JWCC (JSON-with-Comments) layout document: comments
// and trailing commas are accepted via hujson.Standardize before the strict
// encoding/json.Unmarshal pass.
func ParseLayout(data []byte) (Layout, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return Layout{}, fmt.Errorf("nvmem: parse layout: %w", err)
	}

	var l Layout
	if err := json.Unmarshal(std, &l); err != nil {
		return Layout{}, fmt.Errorf("nvmem: decode layout: %w", err)
	}
	if err := l.validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (l Layout) validate() error {
	if l.Size1 <= sectorHeaderSize || l.Size2 <= sectorHeaderSize {
		return fmt.Errorf("nvmem: sector size must exceed the %d-byte header", sectorHeaderSize)
	}
	s1end := l.Base1 + l.Size1
	s2end := l.Base2 + l.Size2
	if l.Base1 < s2end && l.Base2 < s1end {
		return fmt.Errorf("nvmem: sector1 [%d,%d) overlaps sector2 [%d,%d)", l.Base1, s1end, l.Base2, s2end)
	}
	return nil
}
