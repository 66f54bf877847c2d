package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/media"
	"github.com/pders01/gallr/internal/preview"
	"github.com/pders01/gallr/internal/search"
	"github.com/pders01/gallr/internal/storage"
)

const favoritesDebounce = 150 * time.Millisecond

type App struct {
	config     *config.Config
	store      *storage.Store
	session    *gallery.Session
	images     gallery.Searcher
	favorites  search.Searcher
	launcher   *media.Launcher
	previewer  *preview.Renderer
	notifier   *Notifier
	keyHandler *KeyHandler

	galleryList    list.Model
	historyList    list.Model
	favoritesList  list.Model
	searchInput    textinput.Model
	favoritesInput textinput.Model
	modal          viewport.Model
	spinner        spinner.Model
	view           View

	// The modal shows modalRecord while the session has it selected.
	modalRecord  gallery.ImageRecord
	modalQuery   string
	modalDetails string
	modalPreview string

	favoriteSeq int
	debounce    time.Duration

	// submitWarned keeps the last submit's warning on screen in place of
	// its fetch's result summary.
	submitWarned bool

	width           int
	height          int
	err             error
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp wires a gallery session over images. favorites may be nil, in
// which case the favorites view lists everything without ranking.
func NewApp(store *storage.Store, cfg *config.Config, images gallery.Searcher, favorites search.Searcher) *App {
	galleryList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	galleryList.Title = "› results"
	galleryList.SetShowStatusBar(false)
	galleryList.SetFilteringEnabled(false)
	galleryList.SetShowHelp(false)

	historyList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	historyList.Title = "› recent searches"
	historyList.SetShowStatusBar(false)
	historyList.SetFilteringEnabled(true)
	historyList.SetShowHelp(true)

	favoritesList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	favoritesList.Title = "› favorites"
	favoritesList.SetShowStatusBar(false)
	favoritesList.SetFilteringEnabled(false)
	favoritesList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search images..."
	si.CharLimit = 256
	si.Focus()

	fi := textinput.New()
	fi.Placeholder = "Search favorites by tag or query..."
	fi.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	notifier := NewNotifier()

	var previewer *preview.Renderer
	if cfg.UI.Preview.Enabled {
		r, err := preview.NewRenderer(cfg)
		if err != nil {
			debuglog.Warnf("tui: previews disabled: %v", err)
		} else {
			previewer = r
		}
	}

	app := &App{
		config:    cfg,
		store:     store,
		images:    images,
		favorites: favorites,
		session: gallery.NewSession(images, gallery.Options{
			Notifier:     notifier,
			DiscardStale: cfg.Session.DiscardStale,
		}),
		launcher:       media.NewLauncher(cfg),
		previewer:      previewer,
		notifier:       notifier,
		galleryList:    galleryList,
		historyList:    historyList,
		favoritesList:  favoritesList,
		searchInput:    si,
		favoritesInput: fi,
		modal:          viewport.New(0, 0),
		spinner:        sp,
		view:           ViewGallery,
		debounce:       favoritesDebounce,
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	debuglog.Infof("tui: session %s started", app.session.ID())

	return app
}

// getRenderer returns a glamour renderer sized for the modal, rebuilding it
// only when the width changed noticeably.
func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	boxWidth, _ := a.modalSize()
	wordWrapWidth := boxWidth - 6
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case spinner.TickMsg:
		if !a.session.ShowLoader() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case fetchDoneMsg:
		a.applyFetch(msg)

	case previewMsg:
		if a.session.ShowModal() && msg.url == a.modalRecord.FullSizeURL {
			if msg.err != nil {
				debuglog.Warnf("tui: preview %s: %v", msg.url, msg.err)
				a.modalPreview = renderMuted(MsgPreviewFailed)
			} else {
				a.modalPreview = msg.art
			}
			a.refreshModal()
		}

	case detailsRenderedMsg:
		if a.session.ShowModal() && msg.url == a.modalRecord.FullSizeURL {
			a.modalDetails = msg.content
			a.refreshModal()
		}

	case historyLoadedMsg:
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = historyItem{entry: e}
		}
		a.historyList.SetItems(items)
		if len(items) == 0 {
			a.setStatus(MsgNoHistory, StatusInfo)
		}

	case historyClearedMsg:
		a.historyList.SetItems([]list.Item{})
		a.setStatus(MsgHistoryCleared, StatusSuccess)

	case favoritesLoadedMsg:
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = it
		}
		a.favoritesList.SetItems(items)
		if a.view == ViewFavorites {
			if len(items) == 0 {
				a.setStatus(MsgNoFavorites, StatusInfo)
			} else {
				a.setStatus(MsgFavoritesSummary(len(items), a.favoritesDocCount()), StatusInfo)
			}
		}

	case favoritesDebounceMsg:
		if msg.seq == a.favoriteSeq && a.view == ViewFavorites {
			cmds = append(cmds, a.searchFavorites(a.favoritesInput.Value()))
		}

	case favoriteToggledMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.err = nil
		if msg.saved {
			a.setStatus(MsgFavoriteSaved, StatusSuccess)
		} else {
			a.setStatus(MsgFavoriteRemoved, StatusSuccess)
		}
		a.syncGallery()
		if a.view == ViewFavorites {
			cmds = append(cmds, a.searchFavorites(a.favoritesInput.Value()))
		}
		if a.session.ShowModal() && msg.url == a.modalRecord.FullSizeURL {
			cmds = append(cmds, a.renderDetails(a.modalRecord, a.modalQuery))
		}

	case statusMsg:
		a.setStatus(msg.text, msg.kind)

	case errorMsg:
		a.err = msg.err
	}

	switch a.view {
	case ViewGallery:
		newSearchInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newSearchInput
		cmds = append(cmds, cmd)
	case ViewFavorites:
		newFavoritesInput, cmd := a.favoritesInput.Update(msg)
		a.favoritesInput = newFavoritesInput
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	// header, input frame and status bar
	listHeight := height - 9
	if listHeight < 5 {
		listHeight = 5
	}
	a.galleryList.SetSize(width, listHeight)
	a.favoritesList.SetSize(width, listHeight)
	a.historyList.SetSize(width, height-3)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
	a.favoritesInput.Width = inputWidth

	a.layoutModal()
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.notifier.post(text, kind)
}

func (a *App) applyFetch(msg fetchDoneMsg) {
	if !a.session.Complete(msg.fetch, msg.images, msg.err) {
		debuglog.Debugf("tui: dropped result for %q page %d", msg.fetch.Query, msg.fetch.Page)
		return
	}
	a.syncGallery()
	warned := a.submitWarned
	a.submitWarned = false
	if msg.err != nil || warned {
		return
	}
	snap := a.session.Snapshot()
	a.setStatus(MsgResultsSummary(snap.Query, len(snap.Results), snap.IsEndReached), StatusInfo)
}

// syncGallery rebuilds the gallery list from the session.
func (a *App) syncGallery() {
	snap := a.session.Snapshot()
	items := make([]list.Item, 0, len(snap.Results)+1)
	for i, rec := range snap.Results {
		items = append(items, imageItem{
			record:   rec,
			index:    i,
			favorite: a.isFavorite(rec.FullSizeURL),
		})
	}
	if a.session.ShowLoadMore() {
		items = append(items, loadMoreItem{nextPage: snap.Page + 1})
	}
	a.galleryList.SetItems(items)

	if snap.Query == "" {
		a.galleryList.Title = "› results"
	} else {
		a.galleryList.Title = fmt.Sprintf("› results for '%s'", truncateEnd(snap.Query, 40))
	}
}

func (a *App) isFavorite(url string) bool {
	if a.store == nil {
		return false
	}
	return a.store.IsFavorite(url)
}

func (a *App) favoritesDocCount() int {
	if ds, ok := a.favorites.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			return n
		}
	}
	return -1
}

// modalSize is the outer size of the modal box.
func (a *App) modalSize() (int, int) {
	w := (a.width * 4) / 5
	if w > 96 {
		w = 96
	}
	if w < 30 {
		w = a.width - 2
	}
	h := a.height - 6
	if h < 8 {
		h = a.height - 3
	}
	return w, h
}

func (a *App) layoutModal() {
	w, h := a.modalSize()
	// border, padding, title and help rows
	a.modal.Width = max(w-4, 1)
	a.modal.Height = max(h-4, 1)
}

func (a *App) refreshModal() {
	parts := []string{}
	if a.modalPreview != "" {
		parts = append(parts, a.modalPreview, "")
	}
	if a.modalDetails != "" {
		parts = append(parts, a.modalDetails)
	} else {
		parts = append(parts, detailsMarkdown(a.modalRecord, a.modalQuery, a.isFavorite(a.modalRecord.FullSizeURL)))
	}
	a.modal.SetContent(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (a *App) closeModal() {
	a.modalRecord = gallery.ImageRecord{}
	a.modalQuery = ""
	a.modalDetails = ""
	a.modalPreview = ""
	a.modal.SetContent("")
}

func (a *App) renderModalBox() string {
	w, _ := a.modalSize()
	title := ModalTitleStyle.Render(truncateEnd(tagsTitle(a.modalRecord.Tags, 0), w-6))
	if a.isFavorite(a.modalRecord.FullSizeURL) {
		title = FavoriteStyle.Render("★ ") + title
	}
	help := renderHelp(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • "))
	return ModalBoxStyle.
		Width(max(w-2, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, a.modal.View(), help))
}

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// centerOffset matches how lipgloss.Place splits the gap around content:
// the rounded share goes after it, so an odd gap leaves the smaller half
// before it.
func centerOffset(outer, inner int) int {
	gap := outer - inner
	if gap <= 0 {
		return 0
	}
	return gap - int(math.Round(float64(gap)*float64(lipgloss.Center)))
}

func (a *App) contentHeight() int {
	return max(a.height-3, 0)
}

// modalBounds is where the modal box is drawn by View.
func (a *App) modalBounds() rect {
	box := a.renderModalBox()
	bw, bh := lipgloss.Width(box), lipgloss.Height(box)
	return rect{
		x: centerOffset(a.width, bw),
		y: centerOffset(a.contentHeight(), bh),
		w: bw,
		h: bh,
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.session.ShowModal() {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Update(msg)
		return a, cmd
	}

	a.session.DismissModalOnBackdropClick(!a.modalBounds().contains(msg.X, msg.Y))
	if !a.session.ShowModal() {
		a.closeModal()
	}
	return a, nil
}

func (a *App) View() string {
	var content string
	height := a.contentHeight()

	switch {
	case a.session.ShowModal():
		content = lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, a.renderModalBox())

	case a.view == ViewHistory:
		if len(a.historyList.Items()) == 0 {
			content = renderCentered(a.width, height, renderMuted(MsgNoHistory))
		} else {
			content = a.historyList.View()
		}

	case a.view == ViewFavorites:
		content = ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› favorites", "", a.width),
			"",
			renderInputFrame(a.favoritesInput.View(), a.favoritesInput.Focused(), a.favoritesInput.Width),
			"",
			a.favoritesList.View(),
		))

	default:
		content = a.galleryView(height)
	}

	customStatus := a.getCustomStatusBar()
	if customStatus != "" {
		separatorWidth := a.width - 2
		if separatorWidth < 0 {
			separatorWidth = 0
		}
		separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

		return lipgloss.JoinVertical(lipgloss.Top, content, separator, customStatus)
	}

	return content
}

func (a *App) galleryView(height int) string {
	subtitle := ""
	if q := a.session.Query(); q != "" {
		subtitle = "showing '" + q + "'"
	}

	var body string
	switch {
	case a.session.ShowGallery():
		body = a.galleryList.View()
	case a.session.ShowLoader():
		body = renderCentered(a.width, max(height-6, 1), a.spinner.View()+" "+MsgSearching)
	case a.session.Snapshot().LastError != nil:
		body = renderCentered(a.width, max(height-6, 1), ErrorMessageStyle.Render(describeErr(a.session.Snapshot().LastError)))
	case a.session.Query() != "":
		body = renderCentered(a.width, max(height-6, 1), renderMuted(MsgNoResults))
	default:
		body = renderCentered(a.width, max(height-6, 1), GetWelcomeMessage())
	}

	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader(CompactLogo+" search", subtitle, a.width),
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		body,
	))
}

func (a *App) getCustomStatusBar() string {
	commands := a.keyHandler.GetHelpForCurrentView()

	if len(commands) == 0 {
		return ""
	}

	if a.err != nil {
		errorMsg := ErrorMessageStyle.Render(fmt.Sprintf("✗ %s", describeErr(a.err)))

		return lipgloss.NewStyle().
			Width(a.width).
			Padding(0, 1).
			Foreground(MutedColor).
			Render(errorMsg)
	}

	var parts []string
	if a.session.ShowLoader() {
		parts = append(parts, a.spinner.View()+" "+MsgSearching)
	}
	if st := a.notifier.Current(); st.Text != "" {
		parts = append(parts, st.Kind.style().Render(st.Kind.icon()+truncateEnd(st.Text, max(a.width/2, 10))))
	}
	parts = append(parts, strings.Join(commands, " • "))

	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(MutedColor).
		Render(strings.Join(parts, "  "))
}
