package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tree [id]",
		Short: "Show a subtree",
		Long:  "Print the subtree rooted at a node. Text format draws an indented tree; json lists the nodes.",
		Args:  cobra.ExactArgs(1),
		Run:   runTree,
	}

	RootCmd.AddCommand(cmd)
}

func runTree(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	subtree, err := s.Descendants(cmd.Context(), args[0], true)
	if err != nil {
		exitErr("tree", err)
	}

	if formatFlag == "text" {
		printTree(os.Stdout, subtree, args[0])
		return
	}

	b, _ := json.MarshalIndent(subtree, "", "  ")
	fmt.Println(string(b))
}

func printTree(w io.Writer, subtree []model.Node, rootID string) {
	byID := make(map[string]model.Node, len(subtree))
	children := make(map[string][]model.Node)
	for _, n := range subtree {
		byID[n.ID] = n
		if n.ID == rootID || n.ParentID == nil {
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool {
			if kids[i].Kind != kids[j].Kind {
				return kids[i].Kind == model.KindFolder
			}
			return kids[i].Title < kids[j].Title
		})
	}

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n := byID[id]
		label := n.Title
		if n.Kind == model.KindFolder {
			label += "/"
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
		for _, c := range children[id] {
			walk(c.ID, depth+1)
		}
	}
	walk(rootID, 0)
}
