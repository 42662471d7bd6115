package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/presentation"
)

func newToolingListsCmd(c *cli) *cobra.Command {
	tlCmd := &cobra.Command{
		Use:     "tooling-lists",
		Aliases: []string{"tl"},
		Short:   "Assign assemblies to tool numbers",
	}
	tlCmd.AddCommand(
		newToolingListsAddCmd(c),
		newToolingListsListCmd(c),
		newToolingListsShowCmd(c),
		newToolingListsUpdateCmd(c),
		newToolingListsAddItemCmd(c),
		newToolingListsRemoveItemCmd(c),
		newToolingListsReplaceCmd(c),
		newHistoryCmd(c, domain.TargetToolingList, "<list-code>"),
	)
	return tlCmd
}

func newToolingListsAddCmd(c *cli) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an empty tooling list and print its code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			code, err := svc.ToolingLists.AddToolingList(cmd.Context(), title, optionalString(cmd, "note"))
			if err != nil {
				return err
			}
			return c.formatter(cmd).Created("list_code", code)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "list title (required)")
	cmd.Flags().String("note", "", "free note")
	return cmd
}

func newToolingListsListCmd(c *cli) *cobra.Command {
	var filter domain.ToolingListFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tooling lists, most recently changed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			lists, err := svc.ToolingLists.ListToolingLists(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return c.formatter(cmd).ToolingLists(lists)
		},
	}
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "substring match on code, title or note")
	cmd.Flags().IntVar(&filter.Limit, "limit", domain.DefaultPartListLimit, "maximum number of rows")
	return cmd
}

func newToolingListsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list-code>",
		Short: "Show a tooling list with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			return showToolingList(cmd, c, svc.ToolingLists, args[0])
		},
	}
}

type toolingListReader interface {
	GetToolingList(ctx context.Context, code string) (*domain.ToolingList, error)
	ListToolingListItems(ctx context.Context, code string, limit int) ([]*domain.ToolingListItem, error)
}

func showToolingList(cmd *cobra.Command, c *cli, lists toolingListReader, code string) error {
	l, err := lists.GetToolingList(cmd.Context(), code)
	if err != nil {
		return err
	}
	items, err := lists.ListToolingListItems(cmd.Context(), code, 0)
	if err != nil {
		return err
	}
	return c.formatter(cmd).ToolingList(presentation.ToolingListDetail{ToolingList: l, Items: items})
}

func newToolingListsUpdateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <list-code>",
		Short: "Update the title or note of a tooling list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			u := domain.ToolingListUpdate{
				Title: optionalString(cmd, "title"),
				Note:  optionalString(cmd, "note"),
			}
			if err := svc.ToolingLists.UpdateToolingList(cmd.Context(), args[0], u); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("updated %s", args[0]))
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("note", "", "new note (empty clears)")
	return cmd
}

func newToolingListsAddItemCmd(c *cli) *cobra.Command {
	var in domain.ToolingListItemInput
	cmd := &cobra.Command{
		Use:   "add-item <list-code> <tool-no> <assembly-code>",
		Short: "Put an assembly at a tool number and print the item id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			in.ToolNo = args[1]
			in.AssemblyCode = args[2]
			in.Note = domain.BlankToNil(optionalString(cmd, "note"))
			id, err := svc.ToolingLists.AddToolingListItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Value(map[string]int64{"item_id": id})
			}
			return f.Done(fmt.Sprintf("added item %d (T%s) to %s", id, in.ToolNo, args[0]))
		},
	}
	cmd.Flags().Float64Var(&in.Qty, "qty", 1, "quantity")
	cmd.Flags().String("note", "", "item note")
	return cmd
}

func newToolingListsRemoveItemCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <list-code> <item-id>",
		Short: "Remove an item from a tooling list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[1])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.ToolingLists.RemoveToolingListItem(cmd.Context(), args[0], id); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("removed item %d from %s", id, args[0]))
		},
	}
}

func newToolingListsReplaceCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "replace <list-code>",
		Short: "Replace all items of a tooling list from a JSON batch",
		Long: `Replace all items of a tooling list in one transaction. The batch is a JSON
array read from --file, or from stdin when --file is "-" or omitted:

  [{"tool_no": "1", "assembly_code": "ASM_00000001", "qty": 1, "note": "roughing"},
   {"tool_no": 2, "assembly_code": "ASM_00000002"}]

Every row needs a tool number and an assembly code, and neither may repeat.
Any violation, or an unknown assembly, rejects the whole batch and leaves the
list unchanged. An empty array clears the list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readBatch(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.ToolingLists.ReplaceToolingListItems(cmd.Context(), args[0], entries); err != nil {
				return err
			}
			return showToolingList(cmd, c, svc.ToolingLists, args[0])
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON batch file (- for stdin)")
	return cmd
}

func readBatch(stdin io.Reader, file string) ([]domain.BatchEntry, error) {
	r := stdin
	if file != "" && file != "-" {
		f, err := os.Open(file) //nolint:gosec // G304: path is an explicit CLI argument
		if err != nil {
			return nil, fmt.Errorf("opening batch: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var entries []domain.BatchEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, domain.Invalid("items", "batch is not a JSON array of items: %v", err)
	}
	return entries, nil
}
