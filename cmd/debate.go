package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/agents"
	"agora/dialectic/internal/config"
	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/llm"
	"agora/dialectic/internal/session"
)

var (
	debateSession     string
	debatePassage     string
	debateSkipTension bool
	debateSkipRevisit bool
)

var debateCmd = &cobra.Command{
	Use:   "debate [passage-file]",
	Short: "Run a main debate on a passage, then explore flagged tensions",
	Long: `Reads a passage from the given file, --passage, or stdin, runs a
multi-round debate between the configured agents, synthesizes the outcome
into a graph node, and branches into the tensions the observers flagged.

Without --session a new session is created with a generated name. With
--session the passage is debated inside the existing session, with prior
nodes as context.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		passage, err := readPassage(args)
		if err != nil {
			return err
		}

		store, err := OpenDatabase(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		gen := NewGenerator(cfg)

		var s *session.Session
		if debateSession != "" {
			s, err = session.Resume(cfg, gen, store, debateSession)
		} else {
			name := session.GenerateSessionName(gen, cfg.Model, passage)
			fmt.Fprintf(os.Stderr, "[dialectic] session: %s\n", name)
			s, err = session.New(cfg, gen, store, name, passage)
		}
		if err != nil {
			return err
		}
		defer s.Close()

		ag, observers, err := buildEnsemble(cfg, gen, passage)
		if err != nil {
			return err
		}

		monitor := debate.NewMonitor(observers)
		node, err := s.ProcessPassage(passage, ag, monitor)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[dialectic] node %s (%s): %s\n", node.ID, node.Kind, node.Topic)

		if !debateSkipTension {
			flags := monitor.Flags()
			fmt.Fprintf(os.Stderr, "[dialectic] %d tension(s) flagged\n", len(flags))
			branches, err := s.ExploreTensions(flags, node.ID, ag)
			if err != nil {
				return err
			}
			for _, b := range branches {
				fmt.Fprintf(os.Stderr, "[dialectic] branch %s (%s): %s\n", b.ID, b.Kind, b.Topic)
			}
		}

		if !debateSkipRevisit {
			revisited, err := s.RevisitStubs(ag)
			if err != nil {
				return err
			}
			if len(revisited) > 0 {
				fmt.Fprintf(os.Stderr, "[dialectic] %d stub(s) explored\n", len(revisited))
			}
		}

		if err := s.ExportNarrative(""); err != nil {
			return err
		}
		fmt.Println(s.Name)
		return nil
	},
}

func init() {
	debateCmd.Flags().StringVar(&debateSession, "session", "", "Existing session to continue")
	debateCmd.Flags().StringVar(&debatePassage, "passage", "", "Passage text (instead of a file)")
	debateCmd.Flags().BoolVar(&debateSkipTension, "skip-tensions", false, "Do not branch into flagged tensions")
	debateCmd.Flags().BoolVar(&debateSkipRevisit, "skip-revisit", false, "Do not re-evaluate pending stubs")
	rootCmd.AddCommand(debateCmd)
}

func readPassage(args []string) (string, error) {
	if debatePassage != "" {
		return debatePassage, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading passage file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading passage from stdin: %w", err)
	}
	passage := strings.TrimSpace(string(data))
	if passage == "" {
		return "", fmt.Errorf("empty passage: pass a file, --passage, or pipe text to stdin")
	}
	return passage, nil
}

// buildEnsemble returns the debate agents and tension observers, generated
// per passage when configured, otherwise the fixed defaults. Generation
// failures fall back to the defaults.
func buildEnsemble(cfg *config.Config, gen llm.Generator, passage string) ([]agents.Agent, []debate.Observer, error) {
	ag := agents.DefaultAgents()
	profiles := agents.DefaultObservers()

	if cfg.Agents.Generate {
		generated, err := agents.GenerateAgents(gen, cfg.Model, passage, cfg.Agents.Agents)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[dialectic] agent generation failed, using defaults: %v\n", err)
		} else {
			ag = generated
		}

		generatedObs, err := agents.GenerateObservers(gen, cfg.Model, passage, cfg.Agents.Observers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[dialectic] observer generation failed, using defaults: %v\n", err)
		} else {
			profiles = generatedObs
		}
	}

	observers := make([]debate.Observer, len(profiles))
	for i := range profiles {
		observers[i] = agents.NewLLMObserver(profiles[i], gen, cfg.Model, passage)
	}
	return ag, observers, nil
}
