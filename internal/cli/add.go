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
		Use:   "add [title]",
		Short: "Create a document",
		Long:  "Create a document node. With --pages the document also gets a first version holding that many blank pages.",
		Args:  cobra.ExactArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("parent", "p", "", "Parent folder id (default: top level)")
	cmd.Flags().StringP("lang", "l", "", "OCR language (default: deu)")
	cmd.Flags().Int("pages", 0, "Page count for the first version")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	parent, _ := cmd.Flags().GetString("parent")
	lang, _ := cmd.Flags().GetString("lang")
	pages, _ := cmd.Flags().GetInt("pages")

	m, s, err := openManager()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := nodes.CreateParams{
		Kind:    model.KindDocument,
		Title:   args[0],
		OwnerID: getOwner(),
		Lang:    lang,
	}
	if parent != "" {
		p.ParentID = &parent
	}

	n, err := m.Create(cmd.Context(), p)
	if err != nil {
		exitErr("add", err)
	}

	if pages > 0 {
		if _, err := s.AddVersion(cmd.Context(), n.ID, pages, lang); err != nil {
			exitErr("add version", err)
		}
	}

	b, _ := json.Marshal(n)
	fmt.Println(string(b))
}
