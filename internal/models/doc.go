// Package models defines domain entities and persistence interfaces for the soundalike recommender.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between the store, the recommender and the front ends
//   - [Artist] : Catalog entry with a single genre label, popularity, and songs
//   - [Recommendation] : Scored catalog entry returned to callers (name, popularity, songs)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedArtist] : Catalog row with ID, catalog sequence, timestamps and soft delete
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
