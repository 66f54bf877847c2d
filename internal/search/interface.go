package search

import "github.com/pders01/gallr/internal/storage"

// Result is a favorite matched by a query.
type Result struct {
	Favorite *storage.Favorite
	Score    float64
	Matches  []Match
}

// Searcher is the favorites search API used by the TUI and CLI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// FavoriteSource is the part of the store the engines read from.
type FavoriteSource interface {
	Favorites() ([]*storage.Favorite, error)
	GetFavorite(url string) (*storage.Favorite, error)
}

// UpdateListener is implemented by engines that keep an external index and
// need to hear about favorite changes.
type UpdateListener interface {
	OnFavoriteSaved(fav *storage.Favorite)
	OnFavoriteDeleted(url string)
}

// DebugStatser provides lightweight stats for debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Closer is implemented by engines holding an open index.
type Closer interface {
	Close() error
}
