package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mv [id] [target-folder-id]",
		Short: "Move a node",
		Long:  "Move a node under a target folder. Without a target the node moves to the top level.",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runMv,
	}

	RootCmd.AddCommand(cmd)
}

func runMv(cmd *cobra.Command, args []string) {
	m, s, err := openManager()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var target *string
	if len(args) == 2 {
		target = &args[1]
	}

	n, err := m.Move(cmd.Context(), args[0], target)
	if err != nil {
		exitErr("mv", err)
	}

	b, _ := json.Marshal(n)
	fmt.Println(string(b))
}
