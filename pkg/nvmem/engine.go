package nvmem

// rangeGet materializes dst from the valid-record view of the given
// sector's log.
func rangeGet(log *recordLog, startID uint16, dst []byte) {
	for i := range dst {
		dst[i] = 0xFF
	}

	log.validEach(func(r record) bool {
		if r.id >= startID && int(r.id) < int(startID)+len(dst) {
			dst[int(r.id)-int(startID)] = r.data
		}
		return true
	})
}

// putOutcome reports what a range write actually did, for callers (the
// Emulator and its Trace hook) that need to distinguish a clean commit from
// one that had to fall through to compaction.
type putOutcome int

const (
	putCommitted putOutcome = iota
	putNeedsCompaction
	putOutOfRange
)

// rangePut runs the two-phase invalid-then-valid range write protocol
// against the active sector's log. It never touches the alternate sector
// or the sector state machine - that is the compactor's job, invoked by
// the caller when putOutcome is putNeedsCompaction.
func rangePut(log *recordLog, capacity int, startID uint16, src []byte) putOutcome {
	n := len(src)

	// Step 1: range check. This intentionally rejects start+n >= capacity,
	// not start+n > capacity - see DESIGN.md "Range-write bound check".
	if int(startID)+n >= capacity {
		return putOutOfRange
	}

	// Step 2: read existing.
	existing := make([]byte, n)
	rangeGet(log, startID, existing)

	// Step 3: pre-check - any torn prior write forces a compaction first.
	if log.hasInvalid() {
		return putNeedsCompaction
	}

	// Step 4: Phase A - append INVALID records for every byte that
	// actually changes.
	for i := 0; i < n; i++ {
		if src[i] == existing[i] {
			continue
		}
		if _, ok := log.append(startID+uint16(i), recordInvalid, src[i]); !ok {
			return putNeedsCompaction
		}
	}

	// Step 5: Phase B - commit in reverse append order via the backward-
	// invalid iterator, so a crash mid-commit always leaves the oldest
	// (innermost) record still INVALID, hiding the whole group.
	success := true
	log.backwardInvalidEach(func(r record) bool {
		if !log.commitInvalid(r) {
			success = false
			return false
		}
		return true
	})

	if !success {
		return putNeedsCompaction
	}
	return putCommitted
}
