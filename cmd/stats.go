package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/db"
	"agora/dialectic/internal/graph"
)

var (
	statsJSON         bool
	statsHubThreshold int
)

// sessionStats is the full report for one session: graph shape,
// connectivity, and the stub backlog.
type sessionStats struct {
	Session  string         `json:"session"`
	Graph    graph.Stats    `json:"graph"`
	Topology graph.Topology `json:"topology"`
	Stubs    statusCount    `json:"stubs"`
}

type statusCount struct {
	Pending    int `json:"pending"`
	Explored   int `json:"explored"`
	Superseded int `json:"superseded"`
}

func buildSessionStats(name string, g *graph.ArgumentGraph, stubs []*db.Stub, hubThreshold int) sessionStats {
	report := sessionStats{
		Session:  name,
		Graph:    g.Summary(),
		Topology: graph.ComputeTopology(g, hubThreshold),
	}
	for _, st := range stubs {
		switch st.Status {
		case db.StatusExplored:
			report.Stubs.Explored++
		case db.StatusSuperseded:
			report.Stubs.Superseded++
		default:
			report.Stubs.Pending++
		}
	}
	return report
}

var statsCmd = &cobra.Command{
	Use:   "stats <session>",
	Short: "Show node, edge, connectivity, and stub counts for a session",
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

		record, err := store.GetSession(args[0])
		if err != nil {
			return err
		}
		g, err := graph.Load(record.GraphPath)
		if err != nil {
			return err
		}
		stubs, err := store.ListStubs(record.Name, "")
		if err != nil {
			return err
		}

		report := buildSessionStats(record.Name, g, stubs, statsHubThreshold)

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Session: %s\n", report.Session)
		fmt.Printf("Nodes:   %d (%d main, %d branch)\n",
			report.Graph.Nodes, report.Topology.RootNodes, report.Topology.BranchNodes)
		for _, k := range sortedKeys(report.Graph.NodeKinds) {
			fmt.Printf("  %-14s %d\n", k, report.Graph.NodeKinds[k])
		}
		fmt.Printf("Edges:   %d\n", report.Graph.Edges)
		for _, k := range sortedKeys(report.Graph.EdgeKinds) {
			fmt.Printf("  %-14s %d\n", k, report.Graph.EdgeKinds[k])
		}
		fmt.Printf("Components: %d (largest %d, %d orphan(s))\n",
			report.Topology.Components, report.Topology.LargestComponent, len(report.Topology.Orphans))
		for _, h := range report.Topology.Hubs {
			fmt.Printf("  hub %s (%d edges): %s\n", h.ID, h.Degree, h.Topic)
		}
		fmt.Printf("Stubs:   %d pending, %d explored, %d superseded\n",
			report.Stubs.Pending, report.Stubs.Explored, report.Stubs.Superseded)
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Args:  cobra.NoArgs,
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

		records, err := store.ListSessions()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no sessions")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %s  %s\n", r.UpdatedAt.Format("2006-01-02 15:04"), r.Name, r.GraphPath)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().IntVar(&statsHubThreshold, "hub-threshold", 4, "Edge count above which a node is reported as a hub")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
