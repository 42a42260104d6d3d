package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [id...]",
		Short: "Delete nodes and their subtrees",
		Long:  "Delete nodes with everything below them. A single id must exist; with several ids, already deleted ones are skipped.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	m, s, err := openManager()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var removed int
	if len(args) == 1 {
		removed, err = m.Delete(cmd.Context(), args[0])
	} else {
		removed, err = m.DeleteMany(cmd.Context(), args)
	}
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"removed":%d}`+"\n", removed)
}
