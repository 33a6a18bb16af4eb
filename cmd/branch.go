package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/session"
)

var (
	branchQuestion string
	branchParent   string
)

var branchCmd = &cobra.Command{
	Use:   "branch <session>",
	Short: "Run a branch debate inside an existing session",
	Long: `Resumes the named session and debates a focused question as a branch
of an existing node. Without --question, a continuation question is derived
from the most recent main node. Without --parent, the branch attaches to
the most recent main node.`,
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

		gen := NewGenerator(cfg)
		s, err := session.Resume(cfg, gen, store, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		ag, _, err := buildEnsemble(cfg, gen, s.Passage())
		if err != nil {
			return err
		}

		if branchQuestion == "" && branchParent == "" {
			node, err := s.ContinueDebate(ag)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "[dialectic] branch %s (%s): %s\n", node.ID, node.Kind, node.Topic)
			return s.ExportNarrative("")
		}

		parentID := branchParent
		if parentID == "" {
			main := s.CurrentMain()
			if main == nil {
				return fmt.Errorf("session %s has no main node to branch from", s.Name)
			}
			parentID = main.ID
		}
		question := branchQuestion
		if question == "" {
			parent := s.Graph.Node(parentID)
			if parent == nil {
				return fmt.Errorf("parent node %s not found", parentID)
			}
			question = session.GenerateContinuation(gen, cfg.Model, parent).Question
		}

		node, err := s.ProcessBranch(question, parentID, ag)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[dialectic] branch %s (%s): %s\n", node.ID, node.Kind, node.Topic)
		return s.ExportNarrative("")
	},
}

func init() {
	branchCmd.Flags().StringVar(&branchQuestion, "question", "", "Question to debate (derived from the parent node when empty)")
	branchCmd.Flags().StringVar(&branchParent, "parent", "", "Node ID to branch from (most recent main node when empty)")
	rootCmd.AddCommand(branchCmd)
}
