// Package repositories implements SQLite persistence for the artist catalog.
//
// Repositories handle CRUD operations with atomic sequence generation for catalog ordering.
// They support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ArtistRepository] : Catalog persistence with normalized-name lookups, bulk loading, and name normalization
//   - [CatalogWriter] : Ingestion adapter that upserts imported or synced artists
//
// Sequence numbers define catalog order. The recommender breaks score ties by it, so
// the order artists were first added is the order they are returned in.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
