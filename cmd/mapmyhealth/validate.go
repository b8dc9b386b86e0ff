package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/pack"
)

func validateCmd() *cobra.Command {
	var packPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run semantic checks on a content pack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if packPath == "" {
				return fmt.Errorf("--pack is required (or set MAPMYHEALTH_PACK)")
			}
			p, err := pack.Load(packPath)
			if err != nil {
				return err
			}

			result := pack.Validate(p)
			for _, check := range result.Checks {
				status := "ok"
				if !check.Passed {
					status = "FAIL"
				}
				fmt.Printf("%-32s %-4s %s\n", check.Name, status, check.Detail)
			}
			if !result.Passed {
				return fmt.Errorf("pack %s failed validation: %s", p.Name, result.Reason)
			}
			fmt.Printf("pack %s %s: all checks passed\n", p.Name, p.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "content pack YAML path")
	return cmd
}
