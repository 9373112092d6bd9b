// Package recommend scores catalog artists against a listener's preferred artists.
//
// Each artist is one-hot encoded over the snapshot's genre [Vocabulary]. The matched preferred
// artists are averaged into a profile vector and every artist in the catalog is ranked by cosine
// similarity to that profile. Equal scores keep catalog order.
//
// The package is pure: it never touches the store. Callers load a catalog, wrap it in a
// [Snapshot], and call [Recommend] or [RecommendWith]. An input that matches nothing is a
// [ResultNoMatch] value rather than an error.
package recommend
