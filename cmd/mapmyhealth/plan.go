package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/view"
)

func planCmd() *cobra.Command {
	var packPath, casePath string
	var depth, beam int
	var noRedFlagStop bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview multi-step action plans for a case",
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
			cfg.IncludeBranches = true
			cfg.Plan.Depth = depth
			cfg.Plan.BeamWidth = beam
			cfg.Plan.StopOnRedFlag = !noRedFlagStop

			v := view.BuildView(c, p, cfg)
			if v.Triage.Urgent {
				fmt.Printf("TRIAGE: URGENT — %s; no plan produced\n", v.Triage.Reason)
				return nil
			}
			renderBranches(os.Stdout, v.Bottom.Branches)
			return nil
		},
	}

	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "content pack YAML path")
	cmd.Flags().StringVar(&casePath, "case", "", "case state JSON path")
	cmd.Flags().IntVar(&depth, "depth", 2, "search depth (steps per branch)")
	cmd.Flags().IntVar(&beam, "beam", 3, "beam width (branches kept per level)")
	cmd.Flags().BoolVar(&noRedFlagStop, "no-redflag-stop", false, "keep expanding branches past simulated red flags")
	return cmd
}
