package gallery

import (
	"context"
	"errors"
	"fmt"
)

// PageSize is the number of images requested per page. A page shorter than
// this is the only signal that a query has no further results.
const PageSize = 12

// RawImage is a search hit as returned by a provider, before projection.
type RawImage struct {
	ID            string `json:"id"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	Tags          string `json:"tags"`
	PageURL       string `json:"pageURL"`
	User          string `json:"user"`
	Caption       string `json:"caption"`
}

// ImageRecord is the projection of a RawImage kept in a session. Caption,
// PageURL and User are display details and never affect session state.
type ImageRecord struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnail_url"`
	FullSizeURL  string `json:"full_size_url"`
	Tags         string `json:"tags"`
	Caption      string `json:"caption,omitempty"`
	PageURL      string `json:"page_url,omitempty"`
	User         string `json:"user,omitempty"`
}

func project(raw RawImage) ImageRecord {
	return ImageRecord{
		ID:           raw.ID,
		ThumbnailURL: raw.WebformatURL,
		FullSizeURL:  raw.LargeImageURL,
		Tags:         raw.Tags,
		Caption:      raw.Caption,
		PageURL:      raw.PageURL,
		User:         raw.User,
	}
}

// Searcher fetches one page of results for a query.
type Searcher interface {
	Search(ctx context.Context, query string, page int) ([]RawImage, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, page int) ([]RawImage, error)

func (f SearcherFunc) Search(ctx context.Context, query string, page int) ([]RawImage, error) {
	return f(ctx, query, page)
}

// Notifier displays one-shot messages to the user. Calls must not block.
type Notifier interface {
	Warn(message string)
	Info(message string)
	Failure(message string)
}

type nopNotifier struct{}

func (nopNotifier) Warn(string)    {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Failure(string) {}

// Notification messages shown by the session.
const (
	MsgEmptyQuery    = "Please enter a search query"
	MsgSameQuery     = "You are already looking at these results, enter a different query"
	msgFailureFormat = "Something went wrong: %s. Please reload and try again."
)

// FailureMessage is the user-facing text for a failed fetch.
func FailureMessage(err error) string {
	return fmt.Sprintf(msgFailureFormat, err.Error())
}

// ErrStaleFetch is returned by FetchPage when the response arrived after the
// query it was issued for had been replaced.
var ErrStaleFetch = errors.New("stale fetch discarded")

// FetchError is the single failure kind of a provider call. Status is zero
// for transport failures.
type FetchError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: HTTP %d", e.Provider, e.Status)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
