package nvmem

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying the internal failure kinds the emulator
// recovers from on its own. None of these escape the public [Emulator] API
// directly - Get/Put/Clear return only payload values and recover silently
// - but they back the [Error] values handed to an optional
// [Options.Trace] hook. The tagging is coarse: Put reports every
// compaction it starts with ErrTornWrite and every failed compaction with
// ErrMarginalWrite, whatever the cause, and reports a write rejected by the
// range check with ErrOutOfSpace.
var (
	// ErrMarginalWrite means a flash Program call returned failure or a
	// verifying read-back did not match what was requested.
	ErrMarginalWrite = errors.New("nvmem: marginal write")

	// ErrOutOfSpace means the active sector had no EMPTY slot left for
	// the next record append.
	ErrOutOfSpace = errors.New("nvmem: sector out of space")

	// ErrTornWrite means the active sector already held an INVALID
	// record when a new range write began.
	ErrTornWrite = errors.New("nvmem: torn prior write")

	// ErrNoActiveSector means resolve_active() could not identify a
	// live sector from on-media status bits.
	ErrNoActiveSector = errors.New("nvmem: no active sector")
)

// Error wraps one of the sentinels above with structured context: the
// operation prints first, followed by the underlying message and the
// sector/id context.
type Error struct {
	// Err is one of the package sentinel errors.
	Err error

	// Op names the operation that observed the failure (e.g. "put",
	// "compact").
	Op string

	// Sector identifies which sector was involved, when applicable.
	Sector SectorID

	// ID is the logical byte offset involved, when applicable.
	ID uint16
}

func (e *Error) Error() string {
	if e.Sector == SectorNone {
		return fmt.Sprintf("%s: %v (id=%d)", e.Op, e.Err, e.ID)
	}
	return fmt.Sprintf("%s: %v (sector=%v id=%d)", e.Op, e.Err, e.Sector, e.ID)
}

func (e *Error) Unwrap() error { return e.Err }
