package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/infer"
)

var reinferDryRun bool

var reinferCmd = &cobra.Command{
	Use:   "reinfer <session>",
	Short: "Re-run edge inference across a session's whole graph",
	Long: `Loads the session's graph and re-runs relationship inference over
every node pair, picking up edges that config changes to the inference
weights or thresholds now admit. Existing edges are kept; duplicates are
dropped by the graph.`,
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

		before := g.EdgeCount()
		edges := infer.New(cfg.Inference).InferAll(g)
		for _, e := range edges {
			if err := g.AddEdge(e); err != nil {
				return err
			}
		}
		added := g.EdgeCount() - before
		fmt.Fprintf(os.Stderr, "[dialectic] %d edge(s) proposed, %d new\n", len(edges), added)

		if reinferDryRun {
			for _, e := range edges {
				fmt.Printf("%s: %s\n", e.Kind, e.Description)
			}
			return nil
		}
		return g.Save(record.GraphPath)
	},
}

func init() {
	reinferCmd.Flags().BoolVar(&reinferDryRun, "dry-run", false, "Print proposed edges without saving")
	rootCmd.AddCommand(reinferCmd)
}
