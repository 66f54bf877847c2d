package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/storage"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeErr shortens well known errors for the status bar.
func describeErr(err error) string {
	var fetchErr *gallery.FetchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, storage.ErrNotFound):
		return "not found"
	case errors.As(err, &fetchErr) && fetchErr.Status != 0:
		return fmt.Sprintf("%s returned HTTP %d", fetchErr.Provider, fetchErr.Status)
	default:
		return err.Error()
	}
}
