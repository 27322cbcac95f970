package nvmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siliconforge/nvmem/pkg/flash"
)

func newTestSectors(t *testing.T, size int) (*flash.Sim, sectorDesc, sectorDesc) {
	t.Helper()
	sim := flash.NewSim(size * 2)
	sim.SetSectorSizes([2]int{0, size}, [2]int{size, size})
	s1 := sectorDesc{base: 0, size: size}
	s2 := sectorDesc{base: size, size: size}
	return sim, s1, s2
}

func TestResolveActive_SingleActiveSector(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusACTIVE)

	ss := newSectorState(sim, s1, s2)
	require.True(t, ss.resolveActive())
	require.Equal(t, Sector1, ss.active)
	require.Equal(t, Sector2, ss.alternate)
}

func TestResolveActive_BothActiveTieBreaksToSector1(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusACTIVE)
	programSectorStatus(sim, s2, statusACTIVE)

	ss := newSectorState(sim, s1, s2)
	require.True(t, ss.resolveActive())
	require.Equal(t, Sector1, ss.active)
}

func TestResolveActive_CopyInactivePromotesCopy(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusCOPY)
	programSectorStatus(sim, s2, statusINACTIVE)

	ss := newSectorState(sim, s1, s2)
	require.True(t, ss.resolveActive())
	require.Equal(t, Sector1, ss.active)
	require.Equal(t, statusACTIVE, readSectorStatus(sim, s1))
}

func TestResolveActive_InactiveCopyPromotesOtherWay(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusINACTIVE)
	programSectorStatus(sim, s2, statusCOPY)

	ss := newSectorState(sim, s1, s2)
	require.True(t, ss.resolveActive())
	require.Equal(t, Sector2, ss.active)
	require.Equal(t, statusACTIVE, readSectorStatus(sim, s2))
}

func TestResolveActive_BothErasedIsUnresolved(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	ss := newSectorState(sim, s1, s2)
	require.False(t, ss.resolveActive())
	require.Equal(t, SectorNone, ss.active)
}

func TestClear_ResetsToSector1Active(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusINACTIVE)
	programSectorStatus(sim, s2, statusACTIVE)

	ss := newSectorState(sim, s1, s2)
	ss.clear()

	require.Equal(t, Sector1, ss.active)
	require.Equal(t, statusACTIVE, readSectorStatus(sim, s1))
	require.Equal(t, statusERASED, readSectorStatus(sim, s2))
}

func TestPendingErase_ReportsNonErasedAlternate(t *testing.T) {
	sim, s1, s2 := newTestSectors(t, 64)
	programSectorStatus(sim, s1, statusACTIVE)
	programSectorStatus(sim, s2, statusINACTIVE)

	ss := newSectorState(sim, s1, s2)
	require.True(t, ss.resolveActive())

	id, ok := ss.pendingErase()
	require.True(t, ok)
	require.Equal(t, Sector2, id)

	ss.performPendingErase()
	_, ok = ss.pendingErase()
	require.False(t, ok)
}

func TestCapacity_UsesMinSectorSizeMinusTwo(t *testing.T) {
	sim := flash.NewSim(128)
	sim.SetSectorSizes([2]int{0, 64}, [2]int{64, 40})
	ss := newSectorState(sim, sectorDesc{base: 0, size: 64}, sectorDesc{base: 64, size: 40})

	require.Equal(t, (40-2)/recordSize, ss.capacity())
}
