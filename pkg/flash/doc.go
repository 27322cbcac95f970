// Package flash models the byte-addressable NOR flash contract consumed by
// pkg/nvmem: range reads, word-granular programming under the one-way
// bit-transition rule (erased 0xFF -> programmed 0), and whole-sector erase.
//
// Two implementations are provided:
//   - [Sim]: an in-memory store with crash/marginal-write injection, for
//     tests that need to reach the torn-write recovery paths deterministically.
//   - [File]: a memory-mapped disk image, for host-side tooling and golden
//     image testing outside of a test binary.
//
// Real hardware drivers (SPI/parallel NOR controllers) are external
// collaborators and out of scope for this package; anything satisfying
// [Store] can stand in for one.
package flash
