package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rename [id] [title]",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		Run:   runRename,
	}

	RootCmd.AddCommand(cmd)
}

func runRename(cmd *cobra.Command, args []string) {
	m, s, err := openManager()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := m.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		exitErr("rename", err)
	}

	b, _ := json.Marshal(n)
	fmt.Println(string(b))
}
