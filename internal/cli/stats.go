package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tree statistics",
		Long:  "Count nodes, tags, versions and pages, overall and per owner.",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		fmt.Printf("db: %s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Printf("nodes: %d (%d folders, %d documents)\n",
			stats.Nodes, stats.Folders, stats.Documents)
		fmt.Printf("tags: %d, versions: %d, pages: %d\n",
			stats.Tags, stats.Versions, stats.Pages)
		for _, o := range stats.Owners {
			fmt.Printf("  %s: %d nodes, %d documents\n", o.OwnerID, o.Nodes, o.Documents)
		}
		return
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
