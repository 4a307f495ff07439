// Package ingest loads the binary arrays of chromatograms and spectra into
// their entities.
//
// An Ingestor runs one task per entity on a bounded errgroup: each task
// reads its encoded blocks from an io.ReaderAt, decodes them and hands the
// arrays to the entity's SetDataPoints. Entities are independent, so tasks
// run in parallel up to the worker limit.
//
// Cancelling the context stops scheduling new tasks. Tasks already running
// complete, so no entity is left half-ingested by a cancellation.
//
// Example:
//
//	st, _ := store.NewStore(store.WithMemoryLimit(512 << 20))
//	defer st.Close()
//	session := st.NewSession()
//	defer session.Release()
//
//	dec, _ := decode.NewDecoder()
//	in, _ := ingest.NewIngestor(file, dec, ingest.WithWorkers(8))
//
//	c := model.NewChromatogram(session, 1, model.ChromatogramTIC, model.SeparationLC)
//	summary, err := in.RunAll(ctx, &ingest.ChromatogramTask{Chromatogram: c, RT: rtDesc, Intensity: intDesc})
package ingest
