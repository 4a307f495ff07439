// Package store implements the out-of-core data point store.
//
// Chromatograms and spectra do not hold their numeric arrays. They hold
// opaque Handles issued by a Store and materialize the arrays on demand.
//
// # Tiers
//
// Arrays are kept on the heap while the store's memory budget allows it.
// Once the budget is exhausted, new arrays spill to scratch segment files that
// are memory-mapped, so the kernel can page them out. Each spill record carries
// an xxHash64 checksum and may be compressed with one of the compress codecs.
// With spilling disabled an exhausted budget yields ErrStorageExhausted.
//
// # Handles
//
// A Handle packs a 32-bit slot index with a 32-bit generation. Removing an
// array bumps its slot's generation, so stale handles are detected and
// reported as ErrInvalidHandle. A slot whose generation would wrap is
// retired, so a handle value is never reused within one store.
//
// Slots are untyped: an array stored as float64 must be loaded as float64.
// Loading it as float32 reinterprets the bytes.
//
// # Sessions
//
// A Session scopes handles to one file ingestion. Release removes every
// array the session stored and is still live, so long-running processes can
// ingest many files without unbounded growth.
//
// All Store and Session methods are safe for concurrent use.
package store
