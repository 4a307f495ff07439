// Package errs defines the sentinel errors shared by all mzarray packages.
//
// Errors are returned wrapped with context (descriptor offset, handle, sizes),
// so callers should match them with errors.Is:
//
//	if errors.Is(err, errs.ErrCorruptData) {
//	    // skip the array, the source block is damaged
//	}
//
// None of these errors is retryable: they indicate either a programming error
// (handle misuse, inconsistent arrays) or unrecoverable source data.
package errs

import "errors"

var (
	// ErrInvalidHandle is returned when an unknown or removed store handle is used.
	ErrInvalidHandle = errors.New("invalid data point store handle")

	// ErrCorruptData is returned when an encoded array cannot be decoded: truncated
	// streams, checksum failures, bad numpress framing or element count mismatch.
	ErrCorruptData = errors.New("corrupt binary array data")

	// ErrUnsupportedCompression is returned for compression accessions or values
	// outside the supported closed set.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrInconsistentArrays is returned when the arrays passed to SetDataPoints
	// disagree with the declared point count.
	ErrInconsistentArrays = errors.New("inconsistent data point arrays")

	// ErrUnsupportedBitLength is returned for binary data type accessions or values
	// outside the supported set.
	ErrUnsupportedBitLength = errors.New("unsupported bit length")

	// ErrInvalidDescriptor is returned when a descriptor has negative offsets or counts.
	ErrInvalidDescriptor = errors.New("invalid binary array descriptor")

	// ErrStorageExhausted is returned when the store cannot hold more data.
	// It is fatal for the ingestion session.
	ErrStorageExhausted = errors.New("data point storage exhausted")

	// ErrStoreClosed is returned when a closed store or released session is used.
	ErrStoreClosed = errors.New("data point store is closed")
)
