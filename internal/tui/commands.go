package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/search"
	"github.com/pders01/gallr/internal/storage"
)

const favoritesSearchLimit = 50

// submitQuery hands raw to the session and starts the first page fetch.
// It returns nil when the session declined the query.
func (a *App) submitQuery(raw string) tea.Cmd {
	a.notifier.Clear()
	a.err = nil

	f, ok := a.session.SubmitQuery(raw)
	if !ok {
		return nil
	}
	// the status was cleared above, so a warning now came from the session
	a.submitWarned = a.notifier.Current().Kind == StatusWarn
	a.galleryList.ResetSelected()
	cmd := a.startFetch(f)
	a.syncGallery()
	return tea.Batch(cmd, a.recordQuery(raw))
}

// loadMore requests the next page when the gallery offers it.
func (a *App) loadMore() tea.Cmd {
	if !a.session.ShowLoadMore() {
		return nil
	}
	f := a.session.RequestNextPage()
	cmd := a.startFetch(f)
	a.syncGallery()
	a.setStatus(MsgLoadingMore, StatusInfo)
	return cmd
}

func (a *App) startFetch(f gallery.Fetch) tea.Cmd {
	a.session.Begin(f)
	return tea.Batch(a.spinner.Tick, a.runFetch(f))
}

func (a *App) runFetch(f gallery.Fetch) tea.Cmd {
	images := a.images
	return func() tea.Msg {
		raws, err := images.Search(context.Background(), f.Query, f.Page)
		return fetchDoneMsg{fetch: f, images: raws, err: err}
	}
}

func (a *App) recordQuery(query string) tea.Cmd {
	if a.store == nil || query == "" {
		return nil
	}
	store, limit := a.store, a.config.Database.HistoryLimit
	return func() tea.Msg {
		if err := storage.Retry(func() error { return store.RecordQuery(query, limit) }); err != nil {
			return errorMsg{err: wrapErr("recording history", err)}
		}
		return nil
	}
}

// openModal selects rec in the session and starts rendering its details and
// preview. query is the search that found the image.
func (a *App) openModal(rec gallery.ImageRecord, query string) tea.Cmd {
	a.session.SelectImage(rec.FullSizeURL)
	a.modalRecord = rec
	a.modalQuery = query
	a.modalDetails = ""
	if a.previewer == nil {
		a.modalPreview = renderMuted(MsgPreviewDisabled)
	} else {
		a.modalPreview = renderMuted(MsgPreviewLoading)
	}
	a.layoutModal()
	a.refreshModal()
	a.modal.GotoTop()
	return tea.Batch(a.renderDetails(rec, query), a.loadPreview(rec))
}

// detailsMarkdown describes an image for the modal.
func detailsMarkdown(rec gallery.ImageRecord, query string, favorite bool) string {
	var b strings.Builder

	if tags := splitTags(rec.Tags); len(tags) > 0 {
		quoted := make([]string, len(tags))
		for i, t := range tags {
			quoted[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(quoted, " "))
	}

	if caption := strings.TrimSpace(rec.Caption); caption != "" {
		b.WriteString(caption + "\n\n")
	}

	fmt.Fprintf(&b, "- **ID:** %s\n", rec.ID)
	if rec.User != "" {
		fmt.Fprintf(&b, "- **By:** %s\n", rec.User)
	}
	if rec.PageURL != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", rec.PageURL)
	}
	if query != "" {
		fmt.Fprintf(&b, "- **Found by:** %s\n", query)
	}
	fmt.Fprintf(&b, "- **Full size:** [%s](%s)\n", rec.FullSizeURL, rec.FullSizeURL)
	if rec.ThumbnailURL != "" {
		fmt.Fprintf(&b, "- **Thumbnail:** %s\n", rec.ThumbnailURL)
	}
	if favorite {
		b.WriteString("\n★ *In favorites*\n")
	}

	return b.String()
}

func (a *App) renderDetails(rec gallery.ImageRecord, query string) tea.Cmd {
	md := detailsMarkdown(rec, query, a.isFavorite(rec.FullSizeURL))
	r, err := a.getRenderer()
	return func() tea.Msg {
		if err != nil {
			return detailsRenderedMsg{url: rec.FullSizeURL, content: md}
		}
		rendered, err := r.Render(md)
		if err != nil {
			return detailsRenderedMsg{url: rec.FullSizeURL, content: md}
		}
		return detailsRenderedMsg{url: rec.FullSizeURL, content: strings.TrimRight(rendered, "\n")}
	}
}

func (a *App) previewSize() (int, int) {
	w := a.config.UI.Preview.Width
	if a.modal.Width > 0 && a.modal.Width < w {
		w = a.modal.Width
	}
	return w, a.config.UI.Preview.Height
}

func (a *App) loadPreview(rec gallery.ImageRecord) tea.Cmd {
	if a.previewer == nil || rec.ThumbnailURL == "" {
		return nil
	}
	r, timeout := a.previewer, a.config.API.HTTPTimeout
	w, h := a.previewSize()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		art, err := r.RenderSize(ctx, rec.ThumbnailURL, w, h)
		return previewMsg{url: rec.FullSizeURL, art: art, err: err}
	}
}

func (a *App) openImage(url string) tea.Cmd {
	if url == "" {
		return func() tea.Msg { return statusMsg{text: MsgNothingSelected, kind: StatusWarn} }
	}
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(url); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", url, err)}
		}
		return statusMsg{text: MsgOpened(launcher.Viewer()), kind: StatusSuccess}
	}
}

// toggleFavorite saves rec, or removes it when it is already a favorite,
// and keeps the favorites index in step.
func (a *App) toggleFavorite(rec gallery.ImageRecord, query string) tea.Cmd {
	if a.store == nil || rec.FullSizeURL == "" {
		return nil
	}
	store := a.store
	listener, _ := a.favorites.(search.UpdateListener)
	return func() tea.Msg {
		url := rec.FullSizeURL
		if store.IsFavorite(url) {
			if err := storage.Retry(func() error { return store.DeleteFavorite(url) }); err != nil {
				return favoriteToggledMsg{url: url, err: wrapErr("removing favorite", err)}
			}
			if listener != nil {
				listener.OnFavoriteDeleted(url)
			}
			return favoriteToggledMsg{url: url}
		}

		fav := &storage.Favorite{Image: rec, Query: query, Caption: rec.Caption}
		if err := storage.Retry(func() error { return store.SaveFavorite(fav) }); err != nil {
			return favoriteToggledMsg{url: url, err: wrapErr("saving favorite", err)}
		}
		if listener != nil {
			listener.OnFavoriteSaved(fav)
		}
		return favoriteToggledMsg{url: url, saved: true}
	}
}

func (a *App) loadHistory() tea.Cmd {
	store, limit := a.store, a.config.Database.HistoryLimit
	return func() tea.Msg {
		entries, err := store.History(limit)
		if err != nil {
			return errorMsg{err: wrapErr("loading history", err)}
		}
		return historyLoadedMsg{entries: entries}
	}
}

func (a *App) clearHistory() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		if err := storage.Retry(store.ClearHistory); err != nil {
			return errorMsg{err: wrapErr("clearing history", err)}
		}
		return historyClearedMsg{}
	}
}

// scheduleFavoritesSearch debounces typing in the favorites view.
func (a *App) scheduleFavoritesSearch() tea.Cmd {
	a.favoriteSeq++
	seq := a.favoriteSeq
	return tea.Tick(a.debounce, func(time.Time) tea.Msg { return favoritesDebounceMsg{seq: seq} })
}

// searchFavorites ranks favorites against query. Queries shorter than two
// characters list every favorite, newest first.
func (a *App) searchFavorites(query string) tea.Cmd {
	store, engine := a.store, a.favorites
	return func() tea.Msg {
		query = strings.TrimSpace(query)
		if engine == nil || len([]rune(query)) < 2 {
			favs, err := store.Favorites()
			if err != nil {
				return errorMsg{err: wrapErr("loading favorites", err)}
			}
			items := make([]favoriteItem, len(favs))
			for i, f := range favs {
				items[i] = favoriteItem{fav: f}
			}
			return favoritesLoadedMsg{items: items}
		}

		results, err := engine.Search(query, favoritesSearchLimit)
		if err != nil {
			return errorMsg{err: wrapErr("searching favorites", err)}
		}
		items := make([]favoriteItem, len(results))
		for i, r := range results {
			items[i] = favoriteItemFromResult(r)
		}
		return favoritesLoadedMsg{items: items}
	}
}
