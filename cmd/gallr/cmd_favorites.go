package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/search"
	"github.com/pders01/gallr/internal/storage"
	"github.com/pders01/gallr/internal/tui"
)

const favoritesLimit = 50

func init() {
	rootCmd.AddCommand(favoritesCmd)
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites [query]",
	Short: "List or search saved images",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return printFavorites(cmd.OutOrStdout(), store)
		}

		engine := search.New(store, cfg.Database.SearchIndex)
		if c, ok := engine.(search.Closer); ok {
			defer c.Close()
		}
		return printFavoriteMatches(cmd.OutOrStdout(), engine, query)
	},
}

func printFavorites(w io.Writer, store *storage.Store) error {
	favs, err := store.Favorites()
	if err != nil {
		return fmt.Errorf("list favorites: %w", err)
	}
	if len(favs) == 0 {
		fmt.Fprintln(w, tui.MsgNoFavorites)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAGS\tQUERY\tSAVED\tURL")
	for _, f := range favs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Image.Tags, f.Query, f.SavedAt.Format("2006-01-02"), f.Key())
	}
	return tw.Flush()
}

func printFavoriteMatches(w io.Writer, engine search.Searcher, query string) error {
	results, err := engine.Search(query, favoritesLimit)
	if err != nil {
		return fmt.Errorf("search favorites: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, tui.MsgNoResults)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTAGS\tMATCH\tURL")
	for _, r := range results {
		match := ""
		if len(r.Matches) > 0 {
			match = r.Matches[0].Field + ": " + r.Matches[0].Text
		}
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", r.Score, r.Favorite.Image.Tags, match, r.Favorite.Key())
	}
	return tw.Flush()
}
