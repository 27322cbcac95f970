package flash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siliconforge/nvmem/pkg/flash"
)

func TestSim_ProgramIsANDSemantics(t *testing.T) {
	t.Parallel()

	s := flash.NewSim(16)
	require.Equal(t, 0, s.Program(0, []byte{0x0F}))
	require.Equal(t, byte(0x0F), s.Image()[0])

	// Programming again can only clear further bits, never set them.
	require.Equal(t, 0, s.Program(0, []byte{0xF0}))
	require.Equal(t, byte(0x00), s.Image()[0])
}

func TestSim_EraseSectorResetsToFF(t *testing.T) {
	t.Parallel()

	s := flash.NewSim(16)
	s.SetSectorSizes([2]int{0, 16})
	require.Equal(t, 0, s.Program(4, []byte{0x00, 0x00}))
	require.Equal(t, 0, s.EraseSector(0))

	got := make([]byte, 16)
	s.Read(0, got)
	for _, b := range got {
		require.Equal(t, byte(0xFF), b)
	}
}

func TestSim_FailProgramAtInjectsMarginalWrite(t *testing.T) {
	t.Parallel()

	s := flash.NewSim(16)
	s.FailProgramAt = 2

	require.Equal(t, 0, s.Program(0, []byte{0x00}))
	require.Less(t, s.Program(1, []byte{0x00}), 0)
	require.Equal(t, byte(0xFF), s.Image()[1], "marginal write must not apply")
}

func TestSim_CrashAfterPanicsOnNextMutatingCall(t *testing.T) {
	t.Parallel()

	s := flash.NewSim(16)
	s.CrashAfter = 1

	require.Equal(t, 0, s.Program(0, []byte{0x00}))

	require.Panics(t, func() {
		s.Program(1, []byte{0x00})
	})
	require.Equal(t, byte(0xFF), s.Image()[1], "bytes are untouched when the crash fires before the write")
}
