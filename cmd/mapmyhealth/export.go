package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/provlog"
	"github.com/jaxwc/mapmyhealth/internal/replay"
)

func exportCmd() *cobra.Command {
	var dbPath, evalID, outPath, packPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a logged evaluation as a replay fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" || evalID == "" || outPath == "" {
				return fmt.Errorf("--db, --id and --out are all required")
			}

			store, err := provlog.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, ok, err := store.ByID(evalID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("evaluation %s not found in %s", evalID, dbPath)
			}

			f, err := replay.FromRecord(rec, packPath)
			if err != nil {
				return err
			}
			if err := replay.WriteFixture(outPath, f); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOr("MAPMYHEALTH_DB", ""), "evaluation log database")
	cmd.Flags().StringVar(&evalID, "id", "", "evaluation id to export")
	cmd.Flags().StringVar(&outPath, "out", "", "fixture JSON output path")
	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "pack path to embed in the fixture")
	return cmd
}
