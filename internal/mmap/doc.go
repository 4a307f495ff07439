// Package mmap provides read-write memory-mapped scratch segment files.
//
// A Segment is a temporary file of fixed size mapped MAP_SHARED, so pages
// written through Bytes are backed by the file and can be evicted by the
// kernel under memory pressure. The data point store appends spilled arrays
// to segments and reads them back by offset.
//
// Segments are private to the process: the backing file is removed on Close.
// On platforms without mmap support the segment falls back to a heap buffer
// of the same size.
package mmap
