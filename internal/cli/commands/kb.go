package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groundline-ai/groundline/internal/service"
	"github.com/groundline-ai/groundline/internal/tools"
)

// KBCmd creates the knowledge store command group. Each invocation starts
// from an empty store, so the stateful workflow is load, operate, save.
func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage the dynamic knowledge store",
		Long: `Manage dynamically added knowledge items.

The store is in-memory; use "kb load" and "kb save" to work with files
or s3:// destinations across invocations.`,
	}

	cmd.AddCommand(kbAddCmd())
	cmd.AddCommand(kbSearchCmd())
	cmd.AddCommand(kbListCmd())
	cmd.AddCommand(kbDeleteCmd())
	cmd.AddCommand(kbClearCmd())
	cmd.AddCommand(kbLoadCmd())
	cmd.AddCommand(kbExportCmd())
	cmd.AddCommand(kbSaveCmd())

	return cmd
}

// runKB dispatches one knowledge action and prints the envelope as JSON.
func runKB(cmd *cobra.Command, req tools.KnowledgeRequest) error {
	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	envelope := eng.knowledgeTool.Handle(cmd.Context(), req)
	output, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func kbAddCmd() *cobra.Command {
	var meta []string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			return runKB(cmd, tools.KnowledgeRequest{
				Action:   tools.ActionAdd,
				Content:  args[0],
				Metadata: metadata,
			})
		},
	}

	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Metadata entry as key=value (repeatable)")
	return cmd
}

func kbSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search knowledge items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{
				Action: tools.ActionSearch,
				Query:  args[0],
				Limit:  limit,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", service.DefaultTopK, "Maximum number of results")
	return cmd
}

func kbListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all knowledge items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{Action: tools.ActionList})
		},
	}
}

func kbDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge item by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{Action: tools.ActionDelete, ID: args[0]})
		},
	}
}

func kbClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all knowledge items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{Action: tools.ActionClear})
		},
	}
}

func kbLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <path>",
		Short: "Load knowledge items from a file or s3:// path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{Action: tools.ActionLoadFile, FilePath: args[0]})
		},
	}
}

func kbExportCmd() *cobra.Command {
	var (
		format            string
		includeEmbeddings bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the knowledge store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{
				Action:            tools.ActionExport,
				Format:            format,
				IncludeEmbeddings: includeEmbeddings,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", service.ExportFormatJSON, `Export format ("json" or "buffer")`)
	cmd.Flags().BoolVar(&includeEmbeddings, "include-embeddings", false, "Include embedding vectors in the export")
	return cmd
}

func kbSaveCmd() *cobra.Command {
	var includeEmbeddings bool

	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Save the knowledge store to a file or s3:// path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKB(cmd, tools.KnowledgeRequest{
				Action:            tools.ActionSaveToFile,
				FilePath:          args[0],
				IncludeEmbeddings: includeEmbeddings,
			})
		},
	}

	cmd.Flags().BoolVar(&includeEmbeddings, "include-embeddings", false, "Include embedding vectors in the saved file")
	return cmd
}

func parseMetadata(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q (expected key=value)", entry)
		}
		metadata[key] = value
	}
	return metadata, nil
}
