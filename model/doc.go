// Package model provides the array-owning entities, Chromatogram and Spectrum.
//
// An entity keeps small scalar metadata in memory and refers to its numeric
// arrays through handles into a store.DataPointStore. Arrays are materialized
// only when a getter is called.
//
// # Publishing
//
// SetDataPoints is serialized per entity. It removes the previous handles,
// stores the new arrays and then publishes the new handle set with a single
// atomic pointer swap. Getters load the published set without locking, so a
// reader racing a writer sees either the old or the new arrays, never a mix.
// A reader that loses the race against the removal of the old handles
// retries under the entity's write lock.
//
// Entities never release their handles on their own. Release them with a
// store.Session at the end of an ingestion run, or call Clear.
package model
