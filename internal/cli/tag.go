package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Tag a node",
	}

	setCmd := &cobra.Command{
		Use:   "set [node-id] [name...]",
		Short: "Replace a node's tags",
		Long:  "Replace the node's tag set with the given names. Unknown names become new tags for the node's owner.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runTagSet,
	}

	clearCmd := &cobra.Command{
		Use:   "clear [node-id]",
		Short: "Remove all tags from a node",
		Args:  cobra.ExactArgs(1),
		Run:   runTagClear,
	}

	listCmd := &cobra.Command{
		Use:   "list [node-id]",
		Short: "List a node's tags",
		Args:  cobra.ExactArgs(1),
		Run:   runTagList,
	}

	tagCmd.AddCommand(setCmd, clearCmd, listCmd)
	RootCmd.AddCommand(tagCmd)
}

func runTagSet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tags, err := s.AssignTags(cmd.Context(), args[0], args[1:])
	if err != nil {
		exitErr("tag set", err)
	}

	b, _ := json.MarshalIndent(tags, "", "  ")
	fmt.Println(string(b))
}

func runTagClear(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if _, err := s.AssignTags(cmd.Context(), args[0], nil); err != nil {
		exitErr("tag clear", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}

func runTagList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tags, err := s.NodeTags(cmd.Context(), args[0])
	if err != nil {
		exitErr("tag list", err)
	}

	b, _ := json.MarshalIndent(tags, "", "  ")
	fmt.Println(string(b))
}
