package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/model"
)

func init() {
	pagesCmd := &cobra.Command{
		Use:   "pages",
		Short: "Document page access",
	}

	listCmd := &cobra.Command{
		Use:   "list [doc-id]",
		Short: "List the pages of a document's latest version",
		Args:  cobra.ExactArgs(1),
		Run:   runPagesList,
	}

	setTextCmd := &cobra.Command{
		Use:   "set-text [page-id] [text]",
		Short: "Store extracted text for a page",
		Long:  "Store extracted text for a page, as produced by the OCR pipeline. With one argument the text is read from stdin.",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runPagesSetText,
	}

	pagesCmd.AddCommand(listCmd, setTextCmd)
	RootCmd.AddCommand(pagesCmd)
}

func runPagesList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	version, err := s.LatestVersion(cmd.Context(), args[0])
	if err != nil {
		exitErr("pages list", err)
	}
	pages, err := s.LatestVersionPages(cmd.Context(), args[0])
	if err != nil {
		exitErr("pages list", err)
	}

	out := struct {
		Version *model.DocumentVersion `json:"version"`
		Pages   []model.Page           `json:"pages"`
	}{version, pages}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runPagesSetText(cmd *cobra.Command, args []string) {
	var text string
	if len(args) == 2 {
		text = args[1]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetPageText(cmd.Context(), args[0], text); err != nil {
		exitErr("pages set-text", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"page_id":%q}`+"\n", args[0])
}
