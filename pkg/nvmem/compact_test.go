package nvmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siliconforge/nvmem/pkg/flash"
)

func newCompactFixture(t *testing.T, sectorSize int) (*flash.Sim, *sectorState) {
	t.Helper()
	sim := flash.NewSim(sectorSize * 2)
	sim.SetSectorSizes([2]int{0, sectorSize}, [2]int{sectorSize, sectorSize})
	s1 := sectorDesc{base: 0, size: sectorSize}
	s2 := sectorDesc{base: sectorSize, size: sectorSize}
	ss := newSectorState(sim, s1, s2)
	ss.clear()
	return sim, ss
}

func TestCompact_CarriesForwardSurvivingRecordsAndSwaps(t *testing.T) {
	_, ss := newCompactFixture(t, 4+4*4) // 4 slots

	active := newRecordLog(ss.store, ss.desc(ss.active))
	for i, b := range []struct {
		id   uint16
		data byte
	}{{0, 0x11}, {1, 0x22}, {2, 0x33}} {
		r, ok := active.append(b.id, recordInvalid, b.data)
		require.True(t, ok, "append %d", i)
		require.True(t, active.commitInvalid(r))
	}

	prevActive := ss.active
	require.True(t, compact(ss, 9, nil)) // no pending write, just reclaim space
	require.NotEqual(t, prevActive, ss.active)

	got := make([]byte, 3)
	newActive := newRecordLog(ss.store, ss.desc(ss.active))
	rangeGet(newActive, 0, got)
	require.Equal(t, []byte{0x11, 0x22, 0x33}, got)

	require.Equal(t, statusINACTIVE, readSectorStatus(ss.store, ss.desc(prevActive)))
	require.Equal(t, statusACTIVE, readSectorStatus(ss.store, ss.desc(ss.active)))
}

func TestCompact_ElidesSupersededRangeAndAppendsPendingWrite(t *testing.T) {
	_, ss := newCompactFixture(t, 4+4*4)

	active := newRecordLog(ss.store, ss.desc(ss.active))
	r, ok := active.append(5, recordInvalid, 0xAA)
	require.True(t, ok)
	require.True(t, active.commitInvalid(r))

	require.True(t, compact(ss, 5, []byte{0xBB}))

	newActive := newRecordLog(ss.store, ss.desc(ss.active))
	got := make([]byte, 1)
	rangeGet(newActive, 5, got)
	require.Equal(t, []byte{0xBB}, got, "pending write must win over the superseded old value")
}

func TestCompact_RetriesAfterMarginalProgramThenSucceeds(t *testing.T) {
	sectorSize := 4 + 4*4
	sim := flash.NewSim(sectorSize * 2)
	sim.SetSectorSizes([2]int{0, sectorSize}, [2]int{sectorSize, sectorSize})
	s1 := sectorDesc{base: 0, size: sectorSize}
	s2 := sectorDesc{base: sectorSize, size: sectorSize}
	ss := newSectorState(sim, s1, s2)
	ss.clear()

	// The first Program call after clear() is the COPY-claim on the
	// alternate; make exactly that one marginal so attempt 1 fails and
	// attempt 2 (which unconditionally re-erases first) must succeed.
	// FailProgramAt counts every Program call, including clear()'s own.
	sim.FailProgramAt = sim.ProgramCallsSoFar() + 1
	require.True(t, compact(ss, 0, []byte{0x01}))

	got := make([]byte, 1)
	rangeGet(newRecordLog(sim, ss.desc(ss.active)), 0, got)
	require.Equal(t, []byte{0x01}, got)
}
