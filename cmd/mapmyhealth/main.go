package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "mapmyhealth",
		Short:         "Clinical belief inference and action planning engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(consoleCmd())
	root.AddCommand(evaluateCmd())
	root.AddCommand(planCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(replayCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// envOr reads an environment default for a flag.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
