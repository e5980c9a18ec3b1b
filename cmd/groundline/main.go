package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundline-ai/groundline/internal/cli"
	"github.com/groundline-ai/groundline/internal/cli/commands"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "groundline",
		Short: "Groundline CLI - Retrieval tools for AI agents",
		Long: `Groundline CLI searches a pre-embedded vector corpus and manages a
dynamic knowledge store.

Environment variables:
  GROUNDLINE_OPENAI_API_KEY   OpenAI API key for embeddings
  GROUNDLINE_VECTOR_FILES     Comma-separated vector corpus files`,
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(commands.SearchCmd())
	rootCmd.AddCommand(commands.KBCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
