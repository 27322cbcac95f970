package nvmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siliconforge/nvmem/pkg/flash"
)

func newTestLog(t *testing.T, size int) (*flash.Sim, *recordLog) {
	t.Helper()
	sim := flash.NewSim(size)
	sim.SetSectorSizes([2]int{0, size})
	d := sectorDesc{base: 0, size: size}
	return sim, newRecordLog(sim, d)
}

func TestRecordLog_AppendFillsFirstEmptySlot(t *testing.T) {
	_, log := newTestLog(t, 4+4*4)

	r1, ok := log.append(10, recordInvalid, 0xAB)
	require.True(t, ok)
	require.Equal(t, sectorHeaderSize, r1.offset)

	r2, ok := log.append(11, recordInvalid, 0xCD)
	require.True(t, ok)
	require.Equal(t, sectorHeaderSize+recordSize, r2.offset)
}

func TestRecordLog_AppendFailsWhenFull(t *testing.T) {
	_, log := newTestLog(t, 4+4) // exactly one slot
	_, ok := log.append(1, recordInvalid, 0x01)
	require.True(t, ok)

	_, ok = log.append(2, recordInvalid, 0x02)
	require.False(t, ok)
}

func TestRecordLog_HasInvalidAndCommit(t *testing.T) {
	_, log := newTestLog(t, 4+4*4)

	require.False(t, log.hasInvalid())
	r, _ := log.append(1, recordInvalid, 0x01)
	require.True(t, log.hasInvalid())

	require.True(t, log.commitInvalid(r))
	require.False(t, log.hasInvalid())
}

func TestRecordLog_BackwardInvalidEachVisitsMostRecentFirst(t *testing.T) {
	_, log := newTestLog(t, 4+4*4)

	log.append(1, recordInvalid, 0x01)
	log.append(2, recordInvalid, 0x02)
	log.append(3, recordInvalid, 0x03)

	var seen []uint16
	log.backwardInvalidEach(func(r record) bool {
		seen = append(seen, r.id)
		return true
	})
	require.Equal(t, []uint16{3, 2, 1}, seen)
}

func TestRecordLog_BackwardInvalidEachStopsAtValid(t *testing.T) {
	_, log := newTestLog(t, 4+4*4)

	r1, _ := log.append(1, recordInvalid, 0x01)
	log.commitInvalid(r1)
	log.append(2, recordInvalid, 0x02)

	var seen []uint16
	log.backwardInvalidEach(func(r record) bool {
		seen = append(seen, r.id)
		return true
	})
	require.Equal(t, []uint16{2}, seen)
}

func TestRecordLog_ValidEachStopsAtFirstNonValid(t *testing.T) {
	_, log := newTestLog(t, 4+4*4)

	r1, _ := log.append(1, recordInvalid, 0x01)
	log.commitInvalid(r1)
	log.append(2, recordInvalid, 0x02) // left invalid

	var seen []uint16
	log.validEach(func(r record) bool {
		seen = append(seen, r.id)
		return true
	})
	require.Equal(t, []uint16{1}, seen)
}

func TestRecordLog_SortedByIDYieldsAscendingLatestWins(t *testing.T) {
	_, log := newTestLog(t, 4+4*8)

	for _, rec := range []struct {
		id   uint16
		data byte
	}{
		{2, 0x20}, {1, 0x10}, {2, 0x21}, {3, 0x30}, {1, 0x11},
	} {
		r, ok := log.append(rec.id, recordInvalid, rec.data)
		require.True(t, ok)
		require.True(t, log.commitInvalid(r))
	}

	type pair struct {
		id   uint16
		data byte
	}
	var got []pair
	log.sortedByID(func(r record) bool {
		got = append(got, pair{r.id, r.data})
		return true
	})

	require.Equal(t, []pair{{1, 0x11}, {2, 0x21}, {3, 0x30}}, got)
}
