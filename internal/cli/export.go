package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tree as JSON",
		Long:  "Export nodes, tags, versions and pages as one JSON archive. --all ignores the owner filter.",
		Run:   runExport,
	}

	cmd.Flags().Bool("all", false, "Export every owner's nodes")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	owner := getOwner()
	if all {
		owner = ""
	}

	archive, err := s.ExportAll(cmd.Context(), owner)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(archive, "", "  ")
	fmt.Println(string(b))
}
