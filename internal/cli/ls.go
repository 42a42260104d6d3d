package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/model"
	"github.com/paperbase/paperbase/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List child nodes",
		Long:  "List the children of a folder, folders first. Without --parent, lists the owner's top level.",
		Run:   runLs,
	}

	cmd.Flags().StringP("parent", "p", "", "Parent folder id (default: top level)")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("size", 20, "Page size")
	cmd.Flags().Bool("titles-only", false, "Only output titles, folders with a trailing slash")

	RootCmd.AddCommand(cmd)
}

func runLs(cmd *cobra.Command, args []string) {
	parent, _ := cmd.Flags().GetString("parent")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	titlesOnly, _ := cmd.Flags().GetBool("titles-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := store.ChildrenParams{
		OwnerID: getOwner(),
		Page:    store.PageParams{Number: page, Size: size},
	}
	if parent != "" {
		p.ParentID = &parent
	}

	res, err := s.ListChildren(cmd.Context(), p)
	if err != nil {
		exitErr("ls", err)
	}

	if titlesOnly {
		for _, n := range res.Items {
			if n.Kind == model.KindFolder {
				fmt.Println(n.Title + "/")
			} else {
				fmt.Println(n.Title)
			}
		}
		return
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
