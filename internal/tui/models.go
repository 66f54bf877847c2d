package tui

import (
	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/storage"
)

type View int

const (
	ViewGallery View = iota
	ViewHistory
	ViewFavorites
)

func (v View) String() string {
	switch v {
	case ViewGallery:
		return "gallery"
	case ViewHistory:
		return "history"
	case ViewFavorites:
		return "favorites"
	default:
		return "unknown"
	}
}

type fetchDoneMsg struct {
	fetch  gallery.Fetch
	images []gallery.RawImage
	err    error
}

type previewMsg struct {
	url string
	art string
	err error
}

type detailsRenderedMsg struct {
	url     string
	content string
}

type historyLoadedMsg struct {
	entries []*storage.HistoryEntry
}

type favoritesLoadedMsg struct {
	items []favoriteItem
}

type favoritesDebounceMsg struct {
	seq int
}

type favoriteToggledMsg struct {
	url   string
	saved bool
	err   error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}

type historyClearedMsg struct{}
