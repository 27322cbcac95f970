package flash

// Store is the flash-interface contract consumed by pkg/nvmem.
//
// Implementations must behave as a single-threaded, blocking device: all
// methods complete atomically with respect to each other, and there are no
// reads concurrent with an in-flight EraseSector on the same region.
type Store interface {
	// Read copies len(dst) bytes starting at offset into dst. Always
	// succeeds for offsets within range; out-of-range access is a caller
	// bug and may panic.
	Read(offset int, dst []byte)

	// DataAt returns a view of length bytes starting at offset. The
	// returned slice may alias the store's backing memory (zero-copy) and
	// must not be retained past the next mutating call.
	DataAt(offset, length int) []byte

	// Program writes src at offset under the NOR constraint: the
	// resulting byte is (current byte) AND (src byte) - bits can only be
	// cleared, never set, until the containing sector is erased.
	//
	// Returns a value >= 0 on a verified success and a value < 0 if the
	// program was marginal (the device reported failure, or a verifying
	// read-back did not match src).
	Program(offset int, src []byte) int

	// EraseSector sets every byte in the sector containing base to 0xFF.
	// Returns 0 on success. Slow; stalls reads of the affected region for
	// the duration of the call.
	EraseSector(base int) int
}

// SectorSizer is implemented by Store backends ([Sim], [File]) that need to
// be told sector geometry up front so EraseSector knows how far to erase.
// The Store contract itself carries no notion of sector boundaries - a
// real device infers them from its own fixed geometry - so callers that own
// one of these backends (pkg/nvmem's constructor) call SetSectorSizes once
// before use.
type SectorSizer interface {
	SetSectorSizes(bounds ...[2]int)
}
