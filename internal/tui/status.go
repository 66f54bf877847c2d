package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching       = "Searching…"
	MsgLoadingMore     = "Loading more…"
	MsgNoResults       = "No results"
	MsgFavoriteSaved   = "Saved to favorites"
	MsgFavoriteRemoved = "Removed from favorites"
	MsgHistoryCleared  = "History cleared"
	MsgPreviewDisabled = "Preview disabled"
	MsgPreviewLoading  = "Loading preview…"
	MsgPreviewFailed   = "Preview unavailable"
	MsgNothingSelected = "No image selected"
	MsgNoHistory       = "No searches yet"
	MsgNoFavorites     = "No favorites yet"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgResultsSummary reports the gallery size after a page has arrived.
func MsgResultsSummary(query string, n int, endReached bool) string {
	if n == 0 {
		return MsgNoResults
	}
	base := MsgResultsCount(n)
	if q := strings.TrimSpace(query); q != "" {
		base = fmt.Sprintf("%s for '%s'", base, q)
	}
	if endReached {
		base += " • end of results"
	}
	return base
}

func MsgOpened(viewer string) string {
	return fmt.Sprintf("Opened in %s", viewer)
}

func MsgFavoritesSummary(n, docCount int) string {
	base := MsgResultsCount(n)
	if docCount >= 0 {
		base += fmt.Sprintf(" • idx: %d docs", docCount)
	}
	return base
}
