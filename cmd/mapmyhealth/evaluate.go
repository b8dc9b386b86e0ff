package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/provlog"
	"github.com/jaxwc/mapmyhealth/internal/view"
)

func evaluateCmd() *cobra.Command {
	var packPath, casePath, dbPath string
	var jsonOut, branches bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Build the engine view for one case",
		RunE: func(cmd *cobra.Command, args []string) error {
			if packPath == "" {
				return fmt.Errorf("--pack is required (or set MAPMYHEALTH_PACK)")
			}
			p, err := pack.Load(packPath)
			if err != nil {
				return err
			}
			c, err := loadCase(casePath)
			if err != nil {
				return err
			}

			cfg := view.DefaultConfig()
			cfg.IncludeBranches = branches

			start := time.Now()
			v := view.BuildView(c, p, cfg)
			elapsed := time.Since(start)

			if dbPath != "" {
				store, err := provlog.NewStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				rec, err := store.Log(recordView(uuid.New().String(), c, p, v, elapsed))
				if err != nil {
					return err
				}
				log.Printf("[EVAL] logged evaluation %s", rec.EvalID)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			renderView(os.Stdout, v)
			if branches {
				fmt.Println()
				renderBranches(os.Stdout, v.Bottom.Branches)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "content pack YAML path")
	cmd.Flags().StringVar(&casePath, "case", "", "case state JSON path (empty case when omitted)")
	cmd.Flags().StringVar(&dbPath, "db", envOr("MAPMYHEALTH_DB", ""), "evaluation log database (no logging when empty)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full view as JSON")
	cmd.Flags().BoolVar(&branches, "branches", false, "include multi-step plan branches")
	return cmd
}
