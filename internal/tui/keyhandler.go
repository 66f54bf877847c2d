package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/validation"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.app.session.ShowModal() {
		return kh.handleModalKeys(msg)
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	// the history filter owns every key while it is being edited
	if kh.app.view == ViewHistory && kh.app.historyList.SettingFilter() {
		return kh.delegateToCharm(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewGallery:
		return kh.app.searchInput.Focused()
	case ViewFavorites:
		return kh.app.favoritesInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		if kh.focusList() {
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	case kh.modifierKey + "h", kh.modifierKey + "s", kh.modifierKey + "l":
		model, cmd, _ := kh.handleCustomKeys(key)
		return model, cmd
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewGallery:
		raw := validation.SanitizeQuery(kh.app.searchInput.Value())
		cmd := kh.app.submitQuery(raw)
		if cmd != nil {
			kh.app.searchInput.Blur()
		}
		return kh.app, cmd

	case ViewFavorites:
		if items := kh.app.favoritesList.Items(); len(items) > 0 {
			if item, ok := items[0].(favoriteItem); ok {
				return kh.app, kh.app.openModal(item.fav.Image, item.fav.Query)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// focusList moves focus from the view's input to its list. It reports false
// when there is nothing to focus.
func (kh *KeyHandler) focusList() bool {
	switch kh.app.view {
	case ViewGallery:
		if len(kh.app.galleryList.Items()) == 0 {
			return false
		}
		kh.app.searchInput.Blur()
		return true
	case ViewFavorites:
		if len(kh.app.favoritesList.Items()) == 0 {
			return false
		}
		kh.app.favoritesInput.Blur()
		kh.app.favoritesList.Select(0)
		return true
	default:
		return false
	}
}

// delegateToTextInput passes the key to the appropriate text input
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewGallery:
		newSearchInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newSearchInput
		return kh.app, cmd

	case ViewFavorites:
		prev := kh.app.favoritesInput.Value()
		newInput, cmd := kh.app.favoritesInput.Update(msg)
		kh.app.favoritesInput = newInput
		if kh.app.favoritesInput.Value() != prev {
			return kh.app, tea.Batch(cmd, kh.app.scheduleFavoritesSearch())
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "q":
		return kh.app, tea.Quit, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + "h":
		model, cmd := kh.enterHistory()
		return model, cmd, true
	case kh.modifierKey + "s":
		model, cmd := kh.enterFavorites()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewGallery:
		return kh.handleGalleryCustomKeys(key)
	case ViewHistory:
		return kh.handleHistoryCustomKeys(key)
	case ViewFavorites:
		return kh.handleFavoritesCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleGalleryCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter":
		switch item := kh.app.galleryList.SelectedItem().(type) {
		case imageItem:
			return kh.app, kh.app.openModal(item.record, kh.app.session.Query()), true
		case loadMoreItem:
			return kh.app, kh.app.loadMore(), true
		}
		return kh.app, nil, true
	case kh.modifierKey + "l":
		return kh.app, kh.app.loadMore(), true
	case "/", "i":
		kh.app.searchInput.Focus()
		return kh.app, textinput.Blink, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleHistoryCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter":
		item, ok := kh.app.historyList.SelectedItem().(historyItem)
		if !ok {
			return kh.app, nil, true
		}
		kh.app.view = ViewGallery
		kh.app.searchInput.SetValue(item.entry.Query)
		cmd := kh.app.submitQuery(item.entry.Query)
		if cmd != nil {
			kh.app.searchInput.Blur()
		} else {
			kh.app.searchInput.Focus()
		}
		return kh.app, cmd, true
	case kh.modifierKey + "x":
		return kh.app, kh.app.clearHistory(), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleFavoritesCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	item, selected := kh.app.favoritesList.SelectedItem().(favoriteItem)

	switch key {
	case "enter":
		if !selected {
			return kh.app, nil, true
		}
		return kh.app, kh.app.openModal(item.fav.Image, item.fav.Query), true
	case kh.modifierKey + "o":
		if !selected {
			return kh.app, nil, true
		}
		return kh.app, kh.app.openImage(item.fav.Key()), true
	case kh.modifierKey + "x":
		if !selected {
			return kh.app, nil, true
		}
		return kh.app, kh.app.toggleFavorite(item.fav.Image, item.fav.Query), true
	case "/", "i":
		kh.app.favoritesInput.Focus()
		return kh.app, textinput.Blink, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return kh.app, tea.Quit
	case "esc":
		kh.app.session.DismissModal()
		kh.app.closeModal()
		return kh.app, nil
	case kh.modifierKey + "o":
		return kh.app, kh.app.openImage(kh.app.modalRecord.FullSizeURL)
	case kh.modifierKey + "f":
		return kh.app, kh.app.toggleFavorite(kh.app.modalRecord, kh.app.modalQuery)
	}

	newModal, cmd := kh.app.modal.Update(msg)
	kh.app.modal = newModal
	return kh.app, cmd
}

// delegateToCharm hands navigation keys to the active list.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewGallery:
		if msg.String() == "up" && kh.app.galleryList.Index() == 0 {
			kh.app.searchInput.Focus()
			return kh.app, textinput.Blink
		}
		kh.app.galleryList, cmd = kh.app.galleryList.Update(msg)

	case ViewHistory:
		kh.app.historyList, cmd = kh.app.historyList.Update(msg)

	case ViewFavorites:
		switch msg.String() {
		case "up", "shift+tab":
			if kh.app.favoritesList.Index() == 0 {
				kh.app.favoritesInput.Focus()
				return kh.app, textinput.Blink
			}
		}
		kh.app.favoritesList, cmd = kh.app.favoritesList.Update(msg)
	}

	return kh.app, cmd
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewHistory, ViewFavorites:
		kh.app.view = ViewGallery
		kh.app.favoritesInput.Reset()
		kh.app.favoritesInput.Blur()
		kh.app.notifier.Clear()
		return kh.app, nil

	case ViewGallery:
		if !kh.app.searchInput.Focused() {
			kh.app.searchInput.Focus()
			return kh.app, textinput.Blink
		}
		return kh.app, tea.Quit

	default:
		return kh.app, tea.Quit
	}
}

func (kh *KeyHandler) enterHistory() (tea.Model, tea.Cmd) {
	kh.app.view = ViewHistory
	kh.app.searchInput.Blur()
	kh.app.historyList.ResetFilter()
	return kh.app, kh.app.loadHistory()
}

func (kh *KeyHandler) enterFavorites() (tea.Model, tea.Cmd) {
	kh.app.view = ViewFavorites
	kh.app.searchInput.Blur()
	kh.app.favoritesInput.Reset()
	kh.app.favoritesInput.Focus()
	kh.app.favoritesList.SetItems(nil)
	return kh.app, tea.Batch(textinput.Blink, kh.app.searchFavorites(""))
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	if kh.app.session.ShowModal() {
		return []string{"esc: close", kh.modifierKey + "o: open", kh.modifierKey + "f: favorite", "↑↓: scroll"}
	}

	switch kh.app.view {
	case ViewGallery:
		if kh.app.searchInput.Focused() {
			help := []string{"enter: search"}
			if len(kh.app.galleryList.Items()) > 0 {
				help = append(help, "tab: results")
			}
			return append(help, kh.modifierKey+"h: history", kh.modifierKey+"s: favorites")
		}
		help := []string{"enter: view", "/: search"}
		if kh.app.session.ShowLoadMore() {
			help = append(help, kh.modifierKey+"l: more")
		}
		return append(help, kh.modifierKey+"h: history", kh.modifierKey+"s: favorites")

	case ViewHistory:
		return []string{"enter: search again", kh.modifierKey + "x: clear", "esc: back"}

	case ViewFavorites:
		if kh.app.favoritesInput.Focused() {
			return []string{"enter: view first", "tab: results", "esc: back"}
		}
		return []string{"enter: view", kh.modifierKey + "o: open", kh.modifierKey + "x: remove", "esc: back"}

	default:
		return []string{}
	}
}
