package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/storage"
	"github.com/pders01/gallr/internal/tui"
)

var historyClear bool

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all recorded searches")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Args:  cobra.NoArgs,
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

		if historyClear {
			if err := storage.Retry(store.ClearHistory); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.MsgHistoryCleared)
			return nil
		}
		return printHistory(cmd.OutOrStdout(), store, cfg.Database.HistoryLimit)
	},
}

func printHistory(w io.Writer, store *storage.Store, limit int) error {
	entries, err := store.History(limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, tui.MsgNoHistory)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tCOUNT\tLAST USED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Query, e.Count, e.LastUsed.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
