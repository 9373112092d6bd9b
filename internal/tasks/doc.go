// Package tasks orchestrates recommendation requests and catalog ingestion.
//
// # Recommendation
//
// [Engine] runs one request end to end:
//
//  1. Optionally rewrites normalized names in the store ([CatalogStore.NormalizeNames])
//  2. Loads the catalog in catalog order ([CatalogStore.LoadCatalog])
//  3. Wraps it in a [recommend.Snapshot] and ranks it against the preferred artists
//
// A store failure aborts the call and is returned as an error. An input that matches nothing
// is a successful call whose [recommend.Result] has kind [recommend.ResultNoMatch].
//
// # Ingestion
//
// [Ingester] writes artists into the catalog from a parsed file ([Ingester.Import]) or from an
// [services.ArtistSource] such as Spotify ([Ingester.Sync]), then normalizes names so new rows
// are matchable right away. Records without a name are skipped with a warning.
//
// # Progress Reporting
//
// Long-running operations accept an optional channel of [ProgressUpdate].
// Updates use select with default to prevent blocking.
package tasks
