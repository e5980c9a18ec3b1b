package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundline-ai/groundline/internal/cli"
	"github.com/groundline-ai/groundline/internal/cli/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "groundlined",
		Short: "Groundline daemon",
		Long:  "Groundline daemon exposing the corpus search and knowledge tools over HTTP",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(commands.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
