package gallery

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pders01/gallr/internal/debuglog"
)

// Fetch identifies one page request. It is returned by SubmitQuery and
// RequestNextPage and must be passed back to Begin/Complete or FetchPage.
type Fetch struct {
	Query      string
	Page       int
	generation uint64
}

// Snapshot is a copy of the session state taken under the lock.
type Snapshot struct {
	Query         string
	Page          int
	Results       []ImageRecord
	SelectedImage string
	IsLoading     bool
	IsEndReached  bool
	LastError     error
}

// Options tunes a Session.
type Options struct {
	Notifier Notifier
	// DiscardStale drops responses for a query that has since been replaced.
	// When false a late response is appended to whatever results the
	// session holds at arrival time.
	DiscardStale bool
}

// Session owns the query, pagination and result state of one gallery.
// All methods are safe for concurrent use; the provider call in FetchPage
// runs outside the lock.
type Session struct {
	id       string
	searcher Searcher
	notifier Notifier
	discard  bool
	log      *debuglog.FieldLogger

	mu            sync.Mutex
	query         string
	page          int
	results       []ImageRecord
	selectedImage string
	inFlight      int
	endReached    bool
	lastErr       error
	generation    uint64
}

func NewSession(searcher Searcher, opts Options) *Session {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	id := uuid.New().String()
	return &Session{
		id:       id,
		searcher: searcher,
		notifier: notifier,
		discard:  opts.DiscardStale,
		log:      debuglog.WithFields(map[string]interface{}{"session": id}),
		page:     1,
		results:  []ImageRecord{},
	}
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// SubmitQuery replaces the current query. It reports false when raw equals
// the current query, in which case nothing changes and no fetch is needed.
func (s *Session) SubmitQuery(raw string) (Fetch, bool) {
	s.mu.Lock()
	warnEmpty := raw == "" && len(s.results) == 0
	if raw == s.query {
		s.mu.Unlock()
		if warnEmpty {
			s.notifier.Warn(MsgEmptyQuery)
		}
		s.notifier.Info(MsgSameQuery)
		s.log.Debugf("ignoring repeated query %q", raw)
		return Fetch{}, false
	}

	s.query = raw
	s.results = []ImageRecord{}
	s.page = 1
	s.endReached = false
	s.lastErr = nil
	s.generation++
	f := Fetch{Query: s.query, Page: s.page, generation: s.generation}
	s.mu.Unlock()

	if warnEmpty {
		s.notifier.Warn(MsgEmptyQuery)
	}
	s.log.Infof("query submitted: %q", raw)
	return f, true
}

// RequestNextPage advances the page cursor. Callers only offer this when
// ShowLoadMore reports true.
func (s *Session) RequestNextPage() Fetch {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page++
	return Fetch{Query: s.query, Page: s.page, generation: s.generation}
}

// Begin marks f as in flight.
func (s *Session) Begin(f Fetch) {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	s.log.Debugf("fetch started query=%q page=%d", f.Query, f.Page)
}

// Complete ends f with the provider's answer. It reports whether the answer
// was applied; stale answers are dropped when DiscardStale is set.
func (s *Session) Complete(f Fetch, raws []RawImage, err error) bool {
	s.mu.Lock()
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.discard && f.generation != s.generation {
		current := s.query
		s.mu.Unlock()
		s.log.Warnf("discarding stale fetch query=%q page=%d (current %q)", f.Query, f.Page, current)
		return false
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.log.Errorf("fetch failed query=%q page=%d: %v", f.Query, f.Page, err)
		s.notifier.Failure(FailureMessage(err))
		return true
	}

	for _, raw := range raws {
		s.results = append(s.results, project(raw))
	}
	if len(raws) < PageSize {
		s.endReached = true
	}
	s.lastErr = nil
	total := len(s.results)
	s.mu.Unlock()

	s.log.Infof("fetch done query=%q page=%d got=%d total=%d", f.Query, f.Page, len(raws), total)
	return true
}

// FetchPage runs f against the session's searcher and applies the result.
// The returned error is the provider error, or ErrStaleFetch when the result
// was discarded.
func (s *Session) FetchPage(ctx context.Context, f Fetch) error {
	s.Begin(f)
	raws, err := s.searcher.Search(ctx, f.Query, f.Page)
	if !s.Complete(f, raws, err) {
		return ErrStaleFetch
	}
	return err
}

// SelectImage opens the modal for the given full-size URL.
func (s *Session) SelectImage(fullSizeURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedImage = fullSizeURL
}

// DismissModal closes the modal.
func (s *Session) DismissModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedImage = ""
}

// DismissModalOnBackdropClick closes the modal only when the click landed on
// the backdrop rather than on the image.
func (s *Session) DismissModalOnBackdropClick(isBackdropTarget bool) {
	if isBackdropTarget {
		s.DismissModal()
	}
}

func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]ImageRecord, len(s.results))
	copy(results, s.results)
	return Snapshot{
		Query:         s.query,
		Page:          s.page,
		Results:       results,
		SelectedImage: s.selectedImage,
		IsLoading:     s.inFlight > 0,
		IsEndReached:  s.endReached,
		LastError:     s.lastErr,
	}
}

// Lookup returns the result whose full-size URL is url.
func (s *Session) Lookup(url string) (ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.FullSizeURL == url {
			return r, true
		}
	}
	return ImageRecord{}, false
}

func (s *Session) ShowGallery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results) > 0
}

func (s *Session) ShowModal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedImage != ""
}

func (s *Session) ShowLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight == 0 && len(s.results) > 0 && !s.endReached
}

func (s *Session) ShowLoader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}
