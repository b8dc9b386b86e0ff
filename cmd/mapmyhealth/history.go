package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/provlog"
)

func historyCmd() *cobra.Command {
	var dbPath, sessionID string
	var last int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required (or set MAPMYHEALTH_DB)")
			}
			store, err := provlog.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var recs []provlog.Record
			if sessionID != "" {
				recs, err = store.BySession(sessionID)
			} else {
				recs, err = store.Recent(last)
			}
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stderr, "no evaluations found")
				return nil
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			fmt.Printf("%-36s  %-20s  %-6s  %-24s  %-6s  %s\n",
				"EVAL", "CREATED", "URGENT", "TOP CONDITION", "PROB", "RECOMMENDATION")
			for _, rec := range recs {
				urgent := ""
				if rec.Urgent {
					urgent = "YES"
				}
				fmt.Printf("%-36s  %-20s  %-6s  %-24s  %5.1f%%  %s\n",
					rec.EvalID, rec.CreatedAt.Format("2006-01-02 15:04:05"), urgent,
					rec.TopCondition, rec.TopProbability*100, rec.Recommendation)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOr("MAPMYHEALTH_DB", ""), "evaluation log database")
	cmd.Flags().StringVar(&sessionID, "session", "", "show one session chronologically")
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent evaluations")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of a table")
	return cmd
}
