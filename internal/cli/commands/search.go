package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundline-ai/groundline/internal/service"
	"github.com/groundline-ai/groundline/internal/tools"
)

// SearchCmd creates the corpus search command.
func SearchCmd() *cobra.Command {
	var (
		vectorFiles []string
		topK        int
		threshold   float32
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the static vector corpus",
		Long: `Search the pre-embedded vector corpus for passages relevant to a query.

Vector files come from GROUNDLINE_VECTOR_FILES or the --vector-file flag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}

			corpusTool := eng.corpusTool
			if len(vectorFiles) > 0 {
				corpusTool = tools.NewCorpusSearchTool(eng.searchSvc, vectorFiles, eng.cfg.HasOpenAI())
			}

			result := corpusTool.Handle(cmd.Context(), tools.CorpusSearchRequest{
				Query:     args[0],
				TopK:      topK,
				Threshold: threshold,
			})
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&vectorFiles, "vector-file", nil, "Vector corpus file (repeatable, overrides env)")
	cmd.Flags().IntVar(&topK, "top-k", service.DefaultTopK, "Maximum number of results")
	cmd.Flags().Float32Var(&threshold, "threshold", service.DefaultScoreThreshold, "Minimum similarity score")

	return cmd
}
