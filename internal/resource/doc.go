// Package resource governs the two shared budgets of an ingestion session.
//
//   - Memory: bytes of data point arrays held on the heap by the store. The
//     budget is fail-fast; a refused reservation makes the store spill the
//     array to a scratch segment instead.
//   - IO: raw read throughput from the source file, a token bucket that
//     blocks readers until enough bytes are available.
//
// A nil *Controller is valid and imposes no limits.
package resource
