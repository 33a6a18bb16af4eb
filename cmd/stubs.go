package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/db"
	"agora/dialectic/internal/session"
)

var (
	stubsStatus          string
	stubsChecks          bool
	stubsSupersedeReason string
)

var stubsCmd = &cobra.Command{
	Use:   "stubs",
	Short: "Inspect and manage deferred tension questions",
}

var stubsListCmd = &cobra.Command{
	Use:   "list <session>",
	Short: "List a session's stubs",
	Args:  cobra.ExactArgs(1),
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

		stubs, err := store.ListStubs(args[0], stubsStatus)
		if err != nil {
			return err
		}
		if len(stubs) == 0 {
			fmt.Println("no stubs")
			return nil
		}

		for _, st := range stubs {
			fmt.Printf("%s  [%s]  urgency %.2f  turn %d  %s\n", st.ID, st.Status, st.Urgency, st.FlaggedAtTurn, st.ObserverName)
			fmt.Printf("    %s\n", st.Question)
			if st.ExploredNodeID != "" {
				fmt.Printf("    explored as %s\n", st.ExploredNodeID)
			}
			if stubsChecks {
				checks, err := store.ListRevisitChecks(st.ID)
				if err != nil {
					return err
				}
				for _, c := range checks {
					line := fmt.Sprintf("    %s %s", c.CheckedAt.Format("2006-01-02 15:04"), c.Action)
					if c.RelevanceScore.Valid {
						line += fmt.Sprintf(" (relevance %.2f)", c.RelevanceScore.Float64)
					}
					fmt.Printf("%s: %s\n", line, c.Reason)
				}
			}
		}
		return nil
	},
}

var stubsRevisitCmd = &cobra.Command{
	Use:   "revisit <session>",
	Short: "Re-evaluate pending stubs and debate the relevant ones",
	Args:  cobra.ExactArgs(1),
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

		explored, err := s.RevisitStubs(ag)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[dialectic] %d stub(s) explored\n", len(explored))
		for _, n := range explored {
			fmt.Fprintf(os.Stderr, "[dialectic] node %s (%s): %s\n", n.ID, n.Kind, n.Topic)
		}
		return s.ExportNarrative("")
	},
}

var stubsSupersedeCmd = &cobra.Command{
	Use:   "supersede <stub-id>",
	Short: "Mark a stub as overtaken by later debate",
	Args:  cobra.ExactArgs(1),
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

		st, err := store.GetStub(args[0])
		if err != nil {
			return err
		}
		if st.Status != db.StatusStub {
			return fmt.Errorf("stub %s is already %s", st.ID, st.Status)
		}

		if err := store.UpdateStubStatus(st.ID, db.StatusSuperseded, ""); err != nil {
			return err
		}
		check := &db.RevisitCheck{
			StubID: st.ID,
			Action: db.ActionSuperseded,
			Reason: stubsSupersedeReason,
		}
		if err := store.AppendRevisitCheck(check); err != nil {
			return err
		}
		fmt.Printf("superseded %s\n", st.ID)
		return nil
	},
}

func init() {
	stubsListCmd.Flags().StringVar(&stubsStatus, "status", "", "Filter by status (stub, explored, superseded)")
	stubsListCmd.Flags().BoolVar(&stubsChecks, "checks", false, "Show the revisit audit trail per stub")
	stubsSupersedeCmd.Flags().StringVar(&stubsSupersedeReason, "reason", "superseded manually", "Reason recorded in the audit trail")
	stubsCmd.AddCommand(stubsListCmd, stubsRevisitCmd, stubsSupersedeCmd)
	rootCmd.AddCommand(stubsCmd)
}
