package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "path [id]",
		Short: "Show a node's breadcrumb",
		Args:  cobra.ExactArgs(1),
		Run:   runPath,
	}

	RootCmd.AddCommand(cmd)
}

func runPath(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	crumbs, err := s.Breadcrumb(cmd.Context(), args[0])
	if err != nil {
		exitErr("path", err)
	}

	if formatFlag == "text" {
		parts := make([]string, len(crumbs))
		for i, c := range crumbs {
			parts[i] = c.Title
		}
		fmt.Println("/" + strings.Join(parts, "/"))
		return
	}

	b, _ := json.MarshalIndent(crumbs, "", "  ")
	fmt.Println(string(b))
}
