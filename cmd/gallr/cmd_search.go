package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/preview"
	"github.com/pders01/gallr/internal/provider"
	"github.com/pders01/gallr/internal/storage"
	"github.com/pders01/gallr/internal/tui"
	"github.com/pders01/gallr/internal/validation"
)

// previewConcurrency bounds parallel thumbnail downloads.
const previewConcurrency = 4

// errReported marks a failure the notifier has already shown.
var errReported = errors.New("already reported")

var (
	searchPages   int
	searchPreview bool
)

func init() {
	searchCmd.Flags().IntVar(&searchPages, "pages", 1, "Maximum number of pages to fetch")
	searchCmd.Flags().BoolVar(&searchPreview, "preview", false, "Render thumbnails as terminal art")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search images and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := validation.SanitizeQuery(strings.Join(args, " "))
		if strings.TrimSpace(query) == "" {
			return errors.New(gallery.MsgEmptyQuery)
		}
		if searchPages < 1 {
			return fmt.Errorf("--pages must be at least 1, got %d", searchPages)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		images, err := provider.Default(cfg).Resolve(cfg.API.Provider)
		if err != nil {
			return err
		}

		var thumbs thumbnailRenderer
		if searchPreview {
			r, err := preview.NewRenderer(cfg)
			if err != nil {
				return err
			}
			thumbs = r
		}

		session := gallery.NewSession(images, gallery.Options{
			Notifier:     newCLINotifier(cmd.ErrOrStderr()),
			DiscardStale: cfg.Session.DiscardStale,
		})

		runErr := runSearch(cmd.Context(), cmd.OutOrStdout(), session, query, searchPages, thumbs)
		if session.ShowGallery() {
			recordSearch(cfg, query)
		}
		return runErr
	},
}

type thumbnailRenderer interface {
	RenderAll(ctx context.Context, urls []string, limit int) ([]preview.Result, error)
}

// runSearch drives session through up to pages pages of query, printing each
// page as it arrives. It stops early once the provider runs out of results.
func runSearch(ctx context.Context, w io.Writer, session *gallery.Session, query string, pages int, thumbs thumbnailRenderer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	f, ok := session.SubmitQuery(query)
	if !ok {
		return nil
	}

	printed := 0
	for i := 0; i < pages; i++ {
		if i > 0 {
			f = session.RequestNextPage()
		}
		if err := session.FetchPage(ctx, f); err != nil {
			var fe *gallery.FetchError
			if errors.As(err, &fe) {
				return errReported
			}
			return fmt.Errorf("fetching page %d: %w", f.Page, err)
		}

		snap := session.Snapshot()
		batch := snap.Results[printed:]
		if err := printPage(ctx, w, batch, printed, thumbs); err != nil {
			return err
		}
		printed = len(snap.Results)

		if snap.IsEndReached {
			break
		}
	}

	snap := session.Snapshot()
	fmt.Fprintln(w, tui.MsgResultsSummary(snap.Query, len(snap.Results), snap.IsEndReached))
	return nil
}

func printPage(ctx context.Context, w io.Writer, batch []gallery.ImageRecord, offset int, thumbs thumbnailRenderer) error {
	if len(batch) == 0 {
		return nil
	}

	if thumbs == nil {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for i, rec := range batch {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", offset+i+1, rec.Tags, rec.FullSizeURL)
		}
		return tw.Flush()
	}

	urls := make([]string, len(batch))
	for i, rec := range batch {
		urls[i] = rec.ThumbnailURL
	}
	arts, err := thumbs.RenderAll(ctx, urls, previewConcurrency)
	if err != nil {
		return fmt.Errorf("rendering previews: %w", err)
	}

	for i, rec := range batch {
		fmt.Fprintf(w, "%d. %s\n%s\n", offset+i+1, rec.Tags, rec.FullSizeURL)
		if arts[i].Err != nil {
			fmt.Fprintf(w, "(%s: %v)\n\n", tui.MsgPreviewFailed, arts[i].Err)
			continue
		}
		fmt.Fprintf(w, "%s\n\n", arts[i].Art)
	}
	return nil
}

// recordSearch adds query to history. A history failure never fails the
// search itself.
func recordSearch(cfg *config.Config, query string) {
	store, err := openStore(cfg)
	if err != nil {
		debuglog.Warnf("history not recorded: %v", err)
		return
	}
	defer store.Close()

	if err := storage.Retry(func() error {
		return store.RecordQuery(query, cfg.Database.HistoryLimit)
	}); err != nil {
		debuglog.Warnf("history not recorded: %v", err)
	}
}
