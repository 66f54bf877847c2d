package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/search"
	"github.com/pders01/gallr/internal/storage"
)

// renderHeader returns a styled header with an optional muted subtitle,
// both truncated to width.
func renderHeader(title, subtitle string, width int) string {
	rows := []string{HeaderStyle.Render(truncateEnd(title, width-2))}
	if subtitle != "" {
		rows = append(rows, renderMuted(truncateEnd(subtitle, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded border around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

type imageItem struct {
	record   gallery.ImageRecord
	index    int
	favorite bool
}

func (i imageItem) Title() string {
	title := fmt.Sprintf("%d. %s", i.index+1, tagsTitle(i.record.Tags, 4))
	if i.favorite {
		return FavoriteStyle.Render("★ " + title)
	}
	return title
}

func (i imageItem) Description() string {
	return renderMuted(truncateMiddle(i.record.ThumbnailURL, 72))
}

func (i imageItem) FilterValue() string { return i.record.Tags }

// loadMoreItem is the footer entry that requests the next page.
type loadMoreItem struct {
	nextPage int
}

func (i loadMoreItem) Title() string { return LoadMoreStyle.Render("↓ Load more") }

func (i loadMoreItem) Description() string {
	return renderMuted(fmt.Sprintf("fetch page %d", i.nextPage))
}

func (i loadMoreItem) FilterValue() string { return "" }

type historyItem struct {
	entry *storage.HistoryEntry
}

func (i historyItem) Title() string { return i.entry.Query }

func (i historyItem) Description() string {
	times := "once"
	if i.entry.Count > 1 {
		times = fmt.Sprintf("%d times", i.entry.Count)
	}
	return renderMuted("searched "+times) + TimeStyle.Render(" • "+i.entry.LastUsed.Format("Jan 2, 15:04"))
}

func (i historyItem) FilterValue() string { return i.entry.Query }

type favoriteItem struct {
	fav     *storage.Favorite
	snippet string
}

func favoriteItemFromResult(r *search.Result) favoriteItem {
	item := favoriteItem{fav: r.Favorite}
	if len(r.Matches) > 0 {
		item.snippet = r.Matches[0].Text
	}
	return item
}

func (i favoriteItem) Title() string {
	return FavoriteStyle.Render("★ ") + tagsTitle(i.fav.Image.Tags, 4)
}

func (i favoriteItem) Description() string {
	desc := i.snippet
	if desc == "" && i.fav.Query != "" {
		desc = "from '" + i.fav.Query + "'"
	}
	if desc == "" {
		desc = truncateMiddle(i.fav.Key(), 60)
	}
	return renderMuted(truncateEnd(desc, 60)) + TimeStyle.Render(" • "+i.fav.SavedAt.Format("Jan 2"))
}

func (i favoriteItem) FilterValue() string { return i.fav.Image.Tags + " " + i.fav.Query }
