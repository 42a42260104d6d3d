package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/store"
)

func init() {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Tag management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the owner's tags",
		Run:   runTagsList,
	}
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("size", 20, "Page size")

	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		Run:   runTagsAdd,
	}
	addCmd.Flags().String("fg", "", "Foreground color (default: #ffffff)")
	addCmd.Flags().String("bg", "", "Background color (default: #c41fff)")

	updateCmd := &cobra.Command{
		Use:   "update [name]",
		Short: "Rename or recolor a tag",
		Args:  cobra.ExactArgs(1),
		Run:   runTagsUpdate,
	}
	updateCmd.Flags().String("name", "", "New name")
	updateCmd.Flags().String("fg", "", "New foreground color")
	updateCmd.Flags().String("bg", "", "New background color")

	rmCmd := &cobra.Command{
		Use:   "rm [name]",
		Short: "Delete a tag and its assignments",
		Args:  cobra.ExactArgs(1),
		Run:   runTagsRm,
	}

	nodesCmd := &cobra.Command{
		Use:   "nodes [name]",
		Short: "List nodes carrying a tag",
		Args:  cobra.ExactArgs(1),
		Run:   runTagsNodes,
	}

	tagsCmd.AddCommand(listCmd, addCmd, updateCmd, rmCmd, nodesCmd)
	RootCmd.AddCommand(tagsCmd)
}

func runTagsList(cmd *cobra.Command, args []string) {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.ListTags(cmd.Context(), getOwner(), store.PageParams{Number: page, Size: size})
	if err != nil {
		exitErr("tags list", err)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}

func runTagsAdd(cmd *cobra.Command, args []string) {
	fg, _ := cmd.Flags().GetString("fg")
	bg, _ := cmd.Flags().GetString("bg")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tag, err := s.CreateTag(cmd.Context(), store.TagParams{
		Name:    args[0],
		FgColor: fg,
		BgColor: bg,
		OwnerID: getOwner(),
	})
	if err != nil {
		exitErr("tags add", err)
	}

	b, _ := json.Marshal(tag)
	fmt.Println(string(b))
}

func runTagsUpdate(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	fg, _ := cmd.Flags().GetString("fg")
	bg, _ := cmd.Flags().GetString("bg")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tag, err := s.GetTagByName(cmd.Context(), getOwner(), args[0])
	if err != nil {
		exitErr("tags update", err)
	}

	updated, err := s.UpdateTag(cmd.Context(), tag.ID, store.TagParams{
		Name:    name,
		FgColor: fg,
		BgColor: bg,
	})
	if err != nil {
		exitErr("tags update", err)
	}

	b, _ := json.Marshal(updated)
	fmt.Println(string(b))
}

func runTagsRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tag, err := s.GetTagByName(cmd.Context(), getOwner(), args[0])
	if err != nil {
		exitErr("tags rm", err)
	}
	if err := s.DeleteTag(cmd.Context(), tag.ID); err != nil {
		exitErr("tags rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"name":%q}`+"\n", args[0])
}

func runTagsNodes(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	found, err := s.NodesByTag(cmd.Context(), getOwner(), args[0])
	if err != nil {
		exitErr("tags nodes", err)
	}

	b, _ := json.MarshalIndent(found, "", "  ")
	fmt.Println(string(b))
}
