package flash

import "fmt"

// ErrSimCrash is the panic value used by [Sim] to simulate a power-loss
// reset partway through a call sequence. Tests should recover it and
// continue against a freshly constructed component wrapping the same Sim,
// the way a real restart re-enters resolveActive() with whatever bits
// happen to be on media. This is a single-process-friendly way to stop
// execution mid-operation without tearing down the process.
type ErrSimCrash struct {
	// Op names the operation that would have run had the crash not fired
	// (e.g. "program", "erase").
	Op string
}

func (e *ErrSimCrash) Error() string {
	return fmt.Sprintf("flash: simulated power loss during %s", e.Op)
}

type sectorBound struct {
	base, size int
}

// Sim is a RAM-backed [Store] with fault-injection knobs for exercising the
// torn-write and marginal-erase recovery paths of pkg/nvmem.
//
// The zero value (after [NewSim]) behaves like healthy flash: every Program
// and EraseSector call succeeds. Crash/marginal injection is opt-in via
// CrashAfter / FailProgramAt, a discard-writes-after-N hook for driving
// recovery paths deliberately.
//
// Sim is not safe for concurrent use; the emulator it backs is single-
// threaded by design.
type Sim struct {
	data        []byte
	sectorBases []sectorBound

	// CrashAfter, if non-zero, panics with *ErrSimCrash on the
	// (CrashAfter+1)-th mutating call (Program or EraseSector), simulating
	// a reset after exactly CrashAfter such calls completed. 0 disables.
	CrashAfter uint64

	// FailProgramAt, if non-zero, makes the FailProgramAt-th Program call
	// (1-indexed) a marginal write: it returns a negative result. Unless
	// MarginalPartial is set, the target bytes are left untouched, as if
	// the device never accepted the command at all; with MarginalPartial
	// set, only the first byte of the word is applied before "failing",
	// modeling a torn program that affected some but not all bytes.
	FailProgramAt   uint64
	MarginalPartial bool

	mutCount     uint64
	programCount uint64
}

// NewSim creates a blank (all-0xFF) simulated flash of the given total size,
// matching the combined span of the two sectors an emulator will place on it.
func NewSim(size int) *Sim {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &Sim{data: data}
}

// NewSimFromImage wraps an existing byte slice directly (no copy), useful
// for constructing a Sim that already holds on-media state left over from a
// prior (simulated) session, to test recovery across a restart.
func NewSimFromImage(data []byte) *Sim {
	return &Sim{data: data}
}

// Image returns the raw backing bytes. Intended for tests that want to
// inspect state directly, or hand the bytes to a fresh Sim via
// [NewSimFromImage] to simulate a restart.
func (s *Sim) Image() []byte { return s.data }

// ProgramCallsSoFar returns how many Program calls have been made, so a
// test can compute a FailProgramAt that lands on a specific future call.
func (s *Sim) ProgramCallsSoFar() uint64 { return s.programCount }

// MutCount returns how many mutating calls (Program or EraseSector) have
// been made, so a test can compute a CrashAfter that lands exactly after a
// known sequence of future calls.
func (s *Sim) MutCount() uint64 { return s.mutCount }

// SetSectorSizes tells Sim the (base, size) span of each sector so
// EraseSector knows how far to erase. The Store interface has no notion of
// sector geometry itself, so the nvmem layer that owns the Sim calls this
// once up front.
func (s *Sim) SetSectorSizes(bounds ...[2]int) {
	s.sectorBases = s.sectorBases[:0]
	for _, b := range bounds {
		s.sectorBases = append(s.sectorBases, sectorBound{base: b[0], size: b[1]})
	}
}

func (s *Sim) Read(offset int, dst []byte) {
	copy(dst, s.data[offset:offset+len(dst)])
}

func (s *Sim) DataAt(offset, length int) []byte {
	return s.data[offset : offset+length]
}

func (s *Sim) maybeCrash(op string) {
	s.mutCount++
	if s.CrashAfter != 0 && s.mutCount > s.CrashAfter {
		panic(&ErrSimCrash{Op: op})
	}
}

func (s *Sim) Program(offset int, src []byte) int {
	s.maybeCrash("program")

	s.programCount++
	if s.FailProgramAt != 0 && s.programCount == s.FailProgramAt {
		if s.MarginalPartial && len(src) > 0 {
			s.data[offset] &= src[0]
		}
		return -1
	}

	for i, b := range src {
		s.data[offset+i] &= b
	}
	return 0
}

func (s *Sim) EraseSector(base int) int {
	s.maybeCrash("erase")

	sz := s.sectorSizeAt(base)
	for i := base; i < base+sz; i++ {
		s.data[i] = 0xFF
	}
	return 0
}

func (s *Sim) sectorSizeAt(base int) int {
	for _, b := range s.sectorBases {
		if b.base == base {
			return b.size
		}
	}
	// Sizes should always be configured via SetSectorSizes before use;
	// fall back to erasing to the end of the image rather than panicking.
	return len(s.data) - base
}
