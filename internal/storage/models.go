package storage

import (
	"time"

	"github.com/pders01/gallr/internal/gallery"
)

// HistoryEntry is a query the user has submitted.
type HistoryEntry struct {
	Query    string    `json:"query"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
	// Seq orders entries by last use; timestamps can collide.
	Seq uint64 `json:"seq"`
}

// Favorite is a saved image together with the query that found it.
type Favorite struct {
	Image   gallery.ImageRecord `json:"image"`
	Query   string              `json:"query"`
	Caption string              `json:"caption,omitempty"`
	SavedAt time.Time           `json:"saved_at"`
}

// Key is the bucket key of a favorite. Image IDs are only unique per
// provider, so the full-size URL is used instead.
func (f *Favorite) Key() string {
	return f.Image.FullSizeURL
}
