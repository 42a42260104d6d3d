package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/model"
	"github.com/paperbase/paperbase/internal/nodes"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mkdir [title]",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		Run:   runMkdir,
	}

	cmd.Flags().StringP("parent", "p", "", "Parent folder id (default: top level)")

	RootCmd.AddCommand(cmd)
}

func runMkdir(cmd *cobra.Command, args []string) {
	parent, _ := cmd.Flags().GetString("parent")

	m, s, err := openManager()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := nodes.CreateParams{
		Kind:    model.KindFolder,
		Title:   args[0],
		OwnerID: getOwner(),
	}
	if parent != "" {
		p.ParentID = &parent
	}

	n, err := m.Create(cmd.Context(), p)
	if err != nil {
		exitErr("mkdir", err)
	}

	b, _ := json.Marshal(n)
	fmt.Println(string(b))
}
