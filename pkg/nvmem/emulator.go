// Package nvmem implements a power-fail-safe byte-addressable EEPROM
// emulator on top of two NOR-flash erase sectors (see SPEC_FULL.md).
//
// The emulator never returns an error to callers: flash-level failures are
// handled internally by retrying through compaction, and a range write that
// cannot be made to fit is dropped silently. An optional [Options.Trace]
// hook lets a caller or test observe what happened anyway.
package nvmem

import "github.com/siliconforge/nvmem/pkg/flash"

// Options configures a new [Emulator].
type Options struct {
	// Store is the flash collaborator. Required.
	Store flash.Store

	// Layout places the two sectors on Store.
	Layout Layout

	// Trace, if non-nil, is called at points a caller might want to
	// observe: sector swaps, marginal writes, torn-write recovery. It is
	// never required for correctness.
	Trace func(event string, attrs ...any)
}

// Emulator is the public handle: two sector descriptors, which one is
// active, and the owned flash store. No other durable state survives a
// reset - everything else is re-derived from on-media status bits.
type Emulator struct {
	store flash.Store
	ss    *sectorState
	trace func(event string, attrs ...any)
}

// New constructs an Emulator from opts. Call [Emulator.Init] before use.
func New(opts Options) *Emulator {
	s1 := sectorDesc{base: opts.Layout.Base1, size: opts.Layout.Size1}
	s2 := sectorDesc{base: opts.Layout.Base2, size: opts.Layout.Size2}

	if sizer, ok := opts.Store.(flash.SectorSizer); ok {
		sizer.SetSectorSizes([2]int{s1.base, s1.size}, [2]int{s2.base, s2.size})
	}

	trace := opts.Trace
	if trace == nil {
		trace = func(string, ...any) {}
	}

	return &Emulator{
		store: opts.Store,
		ss:    newSectorState(opts.Store, s1, s2),
		trace: trace,
	}
}

// Init resolves the active sector from on-media status bits, running
// clear() if no sector can be identified as active. Safe to call
// repeatedly: once a sector is ACTIVE, a second Init is a no-op re-resolve.
func (e *Emulator) Init() {
	if !e.ss.resolveActive() {
		e.trace("no_active_sector", "err", &Error{Err: ErrNoActiveSector, Op: "init"}, "action", "clear")
		e.ss.clear()
	}
}

// Capacity returns the maximum number of distinct logical ids the
// emulator can address.
func (e *Emulator) Capacity() int {
	return e.ss.capacity()
}

// Get fills dst with the latest committed value of each id in
// [id, id+len(dst)), or 0xFF for any id never written.
func (e *Emulator) Get(id uint16, dst []byte) {
	log := newRecordLog(e.store, e.ss.desc(e.ss.active))
	rangeGet(log, id, dst)
}

// GetByte returns the latest committed value of id, or 0xFF if never
// written.
func (e *Emulator) GetByte(id uint16) byte {
	var b [1]byte
	e.Get(id, b[:])
	return b[0]
}

// Put writes src atomically across [id, id+len(src)): after Put returns,
// every byte in range reads its new value or every byte reads its pre-Put
// value, even across an arbitrary reset. Silently drops the write if it
// would end at or beyond Capacity().
func (e *Emulator) Put(id uint16, src []byte) {
	active := e.ss.desc(e.ss.active)
	log := newRecordLog(e.store, active)

	switch rangePut(log, e.ss.capacity(), id, src) {
	case putCommitted:
		return
	case putOutOfRange:
		e.trace("put_out_of_range", "err", &Error{Err: ErrOutOfSpace, Op: "put", Sector: e.ss.active, ID: id})
	case putNeedsCompaction:
		e.trace("compacting", "err", &Error{Err: ErrTornWrite, Op: "put", Sector: e.ss.active, ID: id})
		if !compact(e.ss, id, src) {
			e.trace("compaction_failed", "err", &Error{Err: ErrMarginalWrite, Op: "compact", Sector: e.ss.active, ID: id})
			return
		}
		// The compactor already republished src as VALID on the new
		// active sector as part of the swap; nothing left to retry.
	}
}

// PutByte writes a single byte atomically: it reuses the same range-write
// protocol with n=1.
func (e *Emulator) PutByte(id uint16, b byte) {
	e.Put(id, []byte{b})
}

// Clear erases both sectors and reinitializes Sector1 as ACTIVE.
// Post-condition: S1.status = ACTIVE, S2.status = ERASED, no records.
func (e *Emulator) Clear() {
	e.ss.clear()
}

// HasPendingErase reports whether the alternate sector still needs
// erasing.
func (e *Emulator) HasPendingErase() bool {
	_, ok := e.ss.pendingErase()
	return ok
}

// PerformPendingErase erases the alternate sector if HasPendingErase is
// true. Intended to be called during idle time to avoid a user-visible
// stall on the next compaction.
func (e *Emulator) PerformPendingErase() {
	e.ss.performPendingErase()
}

// Active returns which physical sector is currently serving reads and
// writes, mostly useful for tests and diagnostics.
func (e *Emulator) Active() SectorID { return e.ss.active }
