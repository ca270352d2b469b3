package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/gitbot-link/internal/repository"
	sqliteRepo "github.com/sakif/gitbot-link/internal/repository/sqlite"
)

func newEventsCmd() *cobra.Command {
	var (
		dbPath    string
		discordID string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List link journal events, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				return errors.New("--db is required (or set DB_PATH)")
			}
			// Opening a missing path would silently create an empty journal.
			if dbPath != ":memory:" {
				if _, err := os.Stat(dbPath); err != nil {
					return fmt.Errorf("opening journal: %w", err)
				}
			}

			db, err := sqliteRepo.New(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			events, err := db.List(cmd.Context(), repository.ListOptions{
				Limit:     limit,
				Offset:    offset,
				DiscordID: discordID,
			})
			if err != nil {
				return err
			}

			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no events")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tDISCORD\tPHASE\tOUTCOME\tID")
			for _, e := range events {
				discord := e.DiscordID
				if discord == "" {
					discord = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.UTC().Format(time.RFC3339), discord, e.Phase, e.Outcome, e.ID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", os.Getenv("DB_PATH"), "Path to the link journal")
	cmd.Flags().StringVar(&discordID, "discord", "", "Only show events for this discord id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events (max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of events to skip")

	return cmd
}
