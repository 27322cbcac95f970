package nvmem

import "github.com/siliconforge/nvmem/pkg/flash"

// SectorID identifies one of the two physical sectors, or the absence of
// one.
type SectorID int

const (
	// SectorNone denotes "no valid sector".
	SectorNone SectorID = iota
	Sector1
	Sector2
)

func (id SectorID) String() string {
	switch id {
	case Sector1:
		return "sector1"
	case Sector2:
		return "sector2"
	default:
		return "none"
	}
}

// sectorHeaderSize is the fixed 4-byte header at the start of every sector;
// only the 16-bit status field (the first two bytes) is meaningful.
const sectorHeaderSize = 4

// recordSize is the fixed width of a record: id(2) + status(1) + data(1).
const recordSize = 4

// sectorStatus is the 16-bit status field of a sector header. Each valid
// transition only clears bits, matching the NOR AND-programming rule, so
// any status can be reached from any earlier one with a single program of
// the status field.
type sectorStatus uint16

const (
	statusERASED   sectorStatus = 0xFFFF
	statusCOPY     sectorStatus = 0x0FFF
	statusACTIVE   sectorStatus = 0x00FF
	statusINACTIVE sectorStatus = 0x000F
)

// sectorDesc is the in-memory descriptor of one physical sector: its base
// offset and size on the flash store. It carries no other state - every
// other fact about the sector (status, records) lives on flash and is
// re-derived on demand.
type sectorDesc struct {
	base int
	size int
}

func (d sectorDesc) recordOffset(slot int) int {
	return d.base + sectorHeaderSize + slot*recordSize
}

// slotCapacity is the number of record slots in this sector:
// (size - header) / record size.
func (d sectorDesc) slotCapacity() int {
	return (d.size - sectorHeaderSize) / recordSize
}

func readSectorStatus(store flash.Store, d sectorDesc) sectorStatus {
	buf := make([]byte, 2)
	store.Read(d.base, buf)
	return sectorStatus(uint16(buf[0]) | uint16(buf[1])<<8)
}

// programSectorStatus flips only the two status bytes of the header; the
// remaining two reserved bytes are never touched.
func programSectorStatus(store flash.Store, d sectorDesc, status sectorStatus) int {
	buf := []byte{byte(status), byte(status >> 8)}
	return store.Program(d.base, buf)
}

// sectorState owns the two-sector lifecycle: which sector is active, which
// is the alternate, and the transitions between them.
type sectorState struct {
	store flash.Store
	s1    sectorDesc
	s2    sectorDesc

	active    SectorID
	alternate SectorID
}

func newSectorState(store flash.Store, s1, s2 sectorDesc) *sectorState {
	return &sectorState{store: store, s1: s1, s2: s2}
}

func (s *sectorState) desc(id SectorID) sectorDesc {
	switch id {
	case Sector1:
		return s.s1
	case Sector2:
		return s.s2
	default:
		return sectorDesc{}
	}
}

func (s *sectorState) other(id SectorID) SectorID {
	switch id {
	case Sector1:
		return Sector2
	case Sector2:
		return Sector1
	default:
		return SectorNone
	}
}

// resolveActive implements the deterministic status-pair-to-active mapping.
// It reads both sector headers and sets s.active/s.alternate, returning
// false (ErrNoActiveSector) when the pair is unrecognized and the caller
// must invoke clear().
func (s *sectorState) resolveActive() bool {
	st1 := readSectorStatus(s.store, s.s1)
	st2 := readSectorStatus(s.store, s.s2)

	switch {
	case st1 == statusACTIVE && st2 != statusACTIVE:
		s.active, s.alternate = Sector1, Sector2
	case st1 != statusACTIVE && st2 == statusACTIVE:
		s.active, s.alternate = Sector2, Sector1
	case st1 == statusACTIVE && st2 == statusACTIVE:
		// Tie-break: first sector wins.
		s.active, s.alternate = Sector1, Sector2
	case st1 == statusCOPY && st2 == statusINACTIVE:
		// A completed-but-unpromoted copy: S1 is the known-good result.
		programSectorStatus(s.store, s.s1, statusACTIVE)
		s.active, s.alternate = Sector1, Sector2
	case st1 == statusINACTIVE && st2 == statusCOPY:
		programSectorStatus(s.store, s.s2, statusACTIVE)
		s.active, s.alternate = Sector2, Sector1
	default:
		s.active, s.alternate = SectorNone, SectorNone
		return false
	}
	return true
}

// clear erases both sectors and programs Sector1 ACTIVE, then re-resolves.
// Post-condition: S1.status = ACTIVE, S2.status = ERASED, no records.
func (s *sectorState) clear() {
	s.store.EraseSector(s.s1.base)
	s.store.EraseSector(s.s2.base)
	programSectorStatus(s.store, s.s1, statusACTIVE)
	s.resolveActive()
}

// pendingErase returns the alternate sector iff its status is not ERASED.
func (s *sectorState) pendingErase() (SectorID, bool) {
	if s.alternate == SectorNone {
		return SectorNone, false
	}
	if readSectorStatus(s.store, s.desc(s.alternate)) != statusERASED {
		return s.alternate, true
	}
	return SectorNone, false
}

// performPendingErase erases the alternate sector if pendingErase reports
// one is outstanding.
func (s *sectorState) performPendingErase() {
	id, ok := s.pendingErase()
	if !ok {
		return
	}
	s.store.EraseSector(s.desc(id).base)
}

// capacity is the public capacity() operation: note this intentionally uses
// a different formula from slotCapacity - see DESIGN.md "Dual capacity
// formulas".
func (s *sectorState) capacity() int {
	sz1, sz2 := s.s1.size, s.s2.size
	minSize := sz1
	if sz2 < minSize {
		minSize = sz2
	}
	return (minSize - 2) / recordSize
}
