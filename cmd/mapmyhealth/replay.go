package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/provlog"
	"github.com/jaxwc/mapmyhealth/internal/replay"
)

func replayCmd() *cobra.Command {
	var dbPath, packPath, sessionID string
	var last int

	cmd := &cobra.Command{
		Use:   "replay [fixture.json ...]",
		Short: "Replay fixtures or logged evaluations and check expectations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (dbPath == "") {
				return fmt.Errorf("pass fixture files, or --db (not both)")
			}

			var results []replay.Result
			if dbPath != "" {
				if packPath == "" {
					return fmt.Errorf("--pack is required in --db mode (the log stores pack names, not paths)")
				}
				dbResults, err := replayFromDB(dbPath, packPath, sessionID, last)
				if err != nil {
					return err
				}
				results = dbResults
			} else {
				reg, err := pack.NewRegistry(8)
				if err != nil {
					return err
				}
				for _, path := range args {
					res, err := replay.RunFile(path, reg)
					if err != nil {
						return err
					}
					results = append(results, res)
				}
			}

			for _, res := range results {
				if res.Passed {
					fmt.Printf("PASS  %s\n", res.Description)
					continue
				}
				fmt.Printf("FAIL  %s\n", res.Description)
				for _, reason := range res.Failures {
					fmt.Printf("      %s\n", reason)
				}
			}

			s := replay.Summarize(results)
			fmt.Printf("%d replayed: %d passed, %d failed\n", s.Total, s.Passed, s.Failed)
			if s.Failed > 0 {
				return fmt.Errorf("%d fixture(s) failed", s.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "replay rows from an evaluation log instead of fixture files")
	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "content pack YAML path (db mode)")
	cmd.Flags().StringVar(&sessionID, "session", "", "restrict db mode to one session")
	cmd.Flags().IntVar(&last, "last", 50, "max rows to replay in db mode")
	return cmd
}

// replayFromDB re-checks logged evaluations against the current pack: each
// row becomes a fixture asserting the verdict recorded at the time, so pack
// edits that change old verdicts surface as failures.
func replayFromDB(dbPath, packPath, sessionID string, last int) ([]replay.Result, error) {
	store, err := provlog.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var recs []provlog.Record
	if sessionID != "" {
		recs, err = store.BySession(sessionID)
	} else {
		recs, err = store.Recent(last)
	}
	if err != nil {
		return nil, err
	}

	p, err := pack.Load(packPath)
	if err != nil {
		return nil, err
	}

	var results []replay.Result
	for _, rec := range recs {
		f, err := replay.FromRecord(rec, packPath)
		if err != nil {
			return nil, err
		}
		results = append(results, replay.Run(f, p))
	}
	return results, nil
}
