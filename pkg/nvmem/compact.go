package nvmem

// maxCompactAttempts bounds the compactor's erase-retry loop: the second
// attempt exists to recover from marginal-erase cells that read back 0xFF
// immediately after erase but program unreliably.
const maxCompactAttempts = 2

// verifyErased scans an entire sector and confirms every byte reads 0xFF.
func verifyErased(ss *sectorState, d sectorDesc) bool {
	buf := make([]byte, d.size)
	ss.store.Read(d.base, buf)
	for _, b := range buf {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// compact performs a sector swap, moving every live id except
// those in [startID, startID+len(src)) to the alternate sector, then
// appending the pending write on the destination before promoting it.
// startID/src may describe an empty range when compaction was triggered by
// something other than a range write (an out-of-space append).
//
// Returns true if the swap completed and the pending write (if any) is now
// durably committed on the new active sector.
func compact(ss *sectorState, startID uint16, src []byte) bool {
	for attempt := 1; attempt <= maxCompactAttempts; attempt++ {
		if !runCompactAttempt(ss, startID, src, attempt) {
			continue
		}
		return true
	}
	return false
}

func runCompactAttempt(ss *sectorState, startID uint16, src []byte, attempt int) bool {
	dstID := ss.alternate
	dst := ss.desc(dstID)
	srcID := ss.active
	source := ss.desc(srcID)

	// Step 1: ensure the destination is blank. A retry always re-erases, to
	// recover from a marginal-erase cell the first verify scan missed; even
	// when the header already reads ERASED, the full-sector scan still
	// runs, since the header's two bytes say nothing about the rest of the
	// sector's cells.
	if attempt > 1 || readSectorStatus(ss.store, dst) != statusERASED {
		if ss.store.EraseSector(dst.base) != 0 {
			return false
		}
	}
	if !verifyErased(ss, dst) {
		return false
	}

	// Step 2: claim the destination.
	if programSectorStatus(ss.store, dst, statusCOPY) < 0 {
		return false
	}

	dstLog := newRecordLog(ss.store, dst)
	srcLog := newRecordLog(ss.store, source)

	// Step 3: copy every surviving id, in ascending order, skipping the
	// pending range (it is superseded by src below) and eliding bytes
	// that are still at their default 0xFF.
	end := int(startID) + len(src)
	ok := true
	srcLog.sortedByID(func(r record) bool {
		if int(r.id) >= int(startID) && int(r.id) < end {
			return true
		}
		if r.data == 0xFF {
			return true
		}
		if _, appended := dstLog.append(r.id, recordValid, r.data); !appended {
			ok = false
			return false
		}
		return true
	})
	if !ok {
		return false
	}

	// Step 4: append the pending write directly as VALID.
	for i, b := range src {
		if b == 0xFF {
			continue
		}
		if _, appended := dstLog.append(startID+uint16(i), recordValid, b); !appended {
			return false
		}
	}

	// Step 5: promote the destination.
	if programSectorStatus(ss.store, dst, statusACTIVE) < 0 {
		return false
	}

	// Step 6: retire the source via the INACTIVE transition (the byte-
	// oriented variant chosen in DESIGN.md), rather than erasing it
	// immediately, so pendingErase() can still defer the slow erase.
	_ = programSectorStatus(ss.store, source, statusINACTIVE)

	// Step 7: flip in-memory active/alternate. Even if step 6's program
	// above failed, resolve_active()'s ACTIVE/ACTIVE tie-break or its
	// COPY/INACTIVE promotion branch will reconcile this on the next
	// restart, and the next compaction trigger will redo the retirement.
	ss.active, ss.alternate = dstID, srcID
	return true
}
