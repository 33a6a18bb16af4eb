package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/graph"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Write the session's argument graph as a markdown narrative",
	Long: `Linearizes the argument graph in reading order: chronological main
debates, each followed by its branches, with contradictions and
elaborations cross-referenced. Writes to --out, or stdout when --out is
"-", or <session-dir>/<session>_narrative.md by default.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		store, err := OpenDatabase(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.GetSession(args[0])
		if err != nil {
			return err
		}
		g, err := graph.Load(record.GraphPath)
		if err != nil {
			return err
		}

		narrative := graph.Render(g)
		if exportOut == "-" {
			fmt.Print(narrative)
			return nil
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.OutputDir, record.Name, record.Name+"_narrative.md")
		}
		if err := os.WriteFile(path, []byte(narrative), 0644); err != nil {
			return fmt.Errorf("writing narrative: %w", err)
		}
		fmt.Fprintf(os.Stderr, "[dialectic] narrative written to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (\"-\" for stdout)")
	rootCmd.AddCommand(exportCmd)
}
