package nvmem

import "github.com/siliconforge/nvmem/pkg/flash"

// recordStatus is the 8-bit status byte of a record. Like sectorStatus,
// each transition only clears bits: EMPTY -> INVALID -> VALID, with no path
// back short of a sector erase.
type recordStatus uint8

const (
	recordEmpty   recordStatus = 0xFF
	recordInvalid recordStatus = 0x0F
	recordValid   recordStatus = 0x00
)

// emptyID marks an erased record's id field; it is never a valid logical id
// because capacity() always leaves id space well below 0xFFFF.
const emptyID = 0xFFFF

// record is the decoded form of one 4-byte on-media record.
type record struct {
	offset int
	id     uint16
	status recordStatus
	data   byte
}

func decodeRecord(buf []byte, offset int) record {
	return record{
		offset: offset,
		id:     uint16(buf[0]) | uint16(buf[1])<<8,
		status: recordStatus(buf[2]),
		data:   buf[3],
	}
}

func encodeRecord(id uint16, status recordStatus, data byte) []byte {
	return []byte{byte(id), byte(id >> 8), byte(status), data}
}

// recordLog provides append and scan operations over the records of a
// single sector. It holds no state of its own beyond the sector descriptor
// and store handle - every scan re-reads from flash.
type recordLog struct {
	store flash.Store
	sect  sectorDesc
}

func newRecordLog(store flash.Store, sect sectorDesc) *recordLog {
	return &recordLog{store: store, sect: sect}
}

func (l *recordLog) readAt(slot int) record {
	buf := l.store.DataAt(l.sect.recordOffset(slot), recordSize)
	return decodeRecord(buf, l.sect.recordOffset(slot))
}

// forwardEach calls fn for every record from the first slot until an EMPTY
// slot is observed or the sector's capacity is exhausted, stopping as soon
// as fn returns false.
func (l *recordLog) forwardEach(fn func(r record) bool) {
	slotCap := l.sect.slotCapacity()
	for slot := 0; slot < slotCap; slot++ {
		r := l.readAt(slot)
		if r.status == recordEmpty {
			return
		}
		if !fn(r) {
			return
		}
	}
}

// append finds the first EMPTY slot by forward scan - no cached cursor,
// since no in-memory state survives a real reset - and programs a new
// record there. Returns ok=false when the sector is full or the program
// call reports a marginal write.
func (l *recordLog) append(id uint16, status recordStatus, data byte) (record, bool) {
	slotCap := l.sect.slotCapacity()
	for slot := 0; slot < slotCap; slot++ {
		r := l.readAt(slot)
		if r.status != recordEmpty {
			continue
		}
		offset := l.sect.recordOffset(slot)
		buf := encodeRecord(id, status, data)
		if l.store.Program(offset, buf) < 0 {
			return record{}, false
		}
		return decodeRecord(buf, offset), true
	}
	return record{}, false
}

// hasInvalid reports whether any record in the sector currently has status
// INVALID - the pre-check a range write uses to detect a torn prior write.
func (l *recordLog) hasInvalid() bool {
	found := false
	l.forwardEach(func(r record) bool {
		if r.status == recordInvalid {
			found = true
		}
		return true
	})
	return found
}

// lastInvalidSlot returns the slot index of the last record (in append
// order) whose status is INVALID, found by forward scan, and whether one
// exists at all.
func (l *recordLog) lastInvalidSlot() (int, bool) {
	slot, found := -1, false
	slotCap := l.sect.slotCapacity()
	for i := 0; i < slotCap; i++ {
		r := l.readAt(i)
		if r.status == recordEmpty {
			break
		}
		if r.status == recordInvalid {
			slot, found = i, true
		}
	}
	return slot, found
}

// backwardInvalidEach walks backwards in 4-byte steps from the last INVALID
// record, yielding each still-INVALID record until the first non-invalid
// one is reached. This is what Phase B of a range write uses to commit in
// reverse order.
func (l *recordLog) backwardInvalidEach(fn func(r record) bool) {
	slot, ok := l.lastInvalidSlot()
	if !ok {
		return
	}
	for i := slot; i >= 0; i-- {
		r := l.readAt(i)
		if r.status != recordInvalid {
			return
		}
		if !fn(r) {
			return
		}
	}
}

// commitInvalid flips a single record's status from INVALID to VALID by
// programming only the status byte.
func (l *recordLog) commitInvalid(r record) bool {
	return l.store.Program(r.offset+2, []byte{byte(recordValid)}) >= 0
}

// validEach iterates forward, yielding only VALID records, and stops
// entirely (without yielding) at the first INVALID or EMPTY record: a torn
// write hides everything after it until the next compaction.
func (l *recordLog) validEach(fn func(r record) bool) {
	l.forwardEach(func(r record) bool {
		if r.status != recordValid {
			return false
		}
		return fn(r)
	})
}

// sortedByID yields the valid-record view in ascending id order, "latest
// wins" per id. The O(n^2) repeated-sweep shape is acceptable because this
// only runs during compaction.
func (l *recordLog) sortedByID(fn func(r record) bool) {
	var have bool
	var lastID uint16

	for {
		// Pass 1: find the smallest id strictly greater than lastID.
		var minID uint16
		minSet := false
		l.validEach(func(r record) bool {
			if have && r.id <= lastID {
				return true
			}
			if !minSet || r.id < minID {
				minID, minSet = r.id, true
			}
			return true
		})

		if !minSet {
			return
		}

		// Pass 2: the latest (last-appended) record carrying minID is
		// authoritative - keep overwriting as we sweep forward.
		var latest record
		l.validEach(func(r record) bool {
			if r.id == minID {
				latest = r
			}
			return true
		})

		if !fn(latest) {
			return
		}
		have, lastID = true, minID
	}
}
