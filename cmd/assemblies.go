package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/presentation"
)

// parseItemSpec parses "PART_CODE:qty[:role]" as given to --item.
func parseItemSpec(spec string) (domain.AssemblyItemInput, error) {
	parts := strings.SplitN(spec, ":", 3)
	in := domain.AssemblyItemInput{PartAssetCode: strings.TrimSpace(parts[0]), Qty: 1}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		qty, err := cast.ToFloat64E(strings.TrimSpace(parts[1]))
		if err != nil {
			return in, domain.Invalid("qty", "not a number in %q", spec)
		}
		in.Qty = qty
	}
	if len(parts) > 2 {
		in.Role = domain.BlankToNil(&parts[2])
	}
	return in, nil
}

func newAssembliesCmd(c *cli) *cobra.Command {
	asmCmd := &cobra.Command{
		Use:     "assemblies",
		Aliases: []string{"asm"},
		Short:   "Compose parts into tool assemblies",
	}
	asmCmd.AddCommand(
		newAssembliesAddCmd(c),
		newAssembliesListCmd(c),
		newAssembliesShowCmd(c),
		newAssembliesUpdateCmd(c),
		newAssembliesAddItemCmd(c),
		newAssembliesRemoveItemCmd(c),
		newAssembliesSignatureCmd(c),
		newHistoryCmd(c, domain.TargetAssembly, "<assembly-code>"),
	)
	return asmCmd
}

func newAssembliesAddCmd(c *cli) *cobra.Command {
	var specs []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an assembly and print its code",
		Long: `Create an assembly, optionally with its parts in the same transaction.
Without --name an assembly created with items is named after its signature.

Examples:
  toolasset assemblies add --name "face mill 63" --diameter 63
  toolasset assemblies add --item HOLDER_00000001:1 --item INSERT_00000003:5:insert`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := make([]domain.AssemblyItemInput, 0, len(specs))
			for _, spec := range specs {
				in, err := parseItemSpec(spec)
				if err != nil {
					return err
				}
				items = append(items, in)
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			in := domain.NewAssembly{
				DisplayName:       optionalString(cmd, "name"),
				ToolOverallLength: optionalFloat(cmd, "length"),
				ToolDiameter:      optionalFloat(cmd, "diameter"),
				Note:              optionalString(cmd, "note"),
			}
			code, err := svc.Assemblies.ComposeAssembly(cmd.Context(), in, items)
			if err != nil {
				return err
			}
			return c.formatter(cmd).Created("assembly_code", code)
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().Float64("length", 0, "tool overall length (mm)")
	cmd.Flags().Float64("diameter", 0, "tool diameter (mm)")
	cmd.Flags().String("note", "", "free note")
	cmd.Flags().StringArrayVar(&specs, "item", nil, "part to include as CODE:qty[:role] (repeatable)")
	return cmd
}

func newAssembliesListCmd(c *cli) *cobra.Command {
	var filter domain.AssemblyFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assemblies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			assemblies, err := svc.Assemblies.ListAssemblies(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return c.formatter(cmd).Assemblies(assemblies)
		},
	}
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "substring match on code, name or note")
	cmd.Flags().IntVar(&filter.Limit, "limit", domain.DefaultPartListLimit, "maximum number of rows")
	return cmd
}

func newAssembliesShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <assembly-code>",
		Short: "Show an assembly with its parts and signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			asm, err := svc.Assemblies.GetAssembly(ctx, args[0])
			if err != nil {
				return err
			}
			items, err := svc.Assemblies.ListAssemblyItems(ctx, args[0], domain.AllItems)
			if err != nil {
				return err
			}
			return c.formatter(cmd).Assembly(presentation.AssemblyDetail{
				Assembly:  asm,
				Signature: domain.SignatureOf(items),
				Items:     items,
			})
		},
	}
}

func newAssembliesUpdateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <assembly-code>",
		Short: "Update assembly fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			u := domain.AssemblyUpdate{
				DisplayName:       optionalString(cmd, "name"),
				ToolOverallLength: optionalFloat(cmd, "length"),
				ToolDiameter:      optionalFloat(cmd, "diameter"),
				Note:              optionalString(cmd, "note"),
			}
			if err := svc.Assemblies.UpdateAssembly(cmd.Context(), args[0], u); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("updated %s", args[0]))
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().Float64("length", 0, "tool overall length (mm)")
	cmd.Flags().Float64("diameter", 0, "tool diameter (mm)")
	cmd.Flags().String("note", "", "free note (empty clears)")
	return cmd
}

func newAssembliesAddItemCmd(c *cli) *cobra.Command {
	var in domain.AssemblyItemInput
	cmd := &cobra.Command{
		Use:   "add-item <assembly-code> <part-code>",
		Short: "Attach a part to an assembly and print the item id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			in.PartAssetCode = args[1]
			in.Role = domain.BlankToNil(optionalString(cmd, "role"))
			in.Note = domain.BlankToNil(optionalString(cmd, "note"))
			id, err := svc.Assemblies.AddAssemblyItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Value(map[string]int64{"item_id": id})
			}
			return f.Done(fmt.Sprintf("added item %d to %s", id, args[0]))
		},
	}
	cmd.Flags().Float64Var(&in.Qty, "qty", 1, "quantity")
	cmd.Flags().String("role", "", "role of the part in the assembly")
	cmd.Flags().String("note", "", "item note")
	return cmd
}

func newAssembliesRemoveItemCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <assembly-code> <item-id>",
		Short: "Detach an item from an assembly",
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
			if err := svc.Assemblies.RemoveAssemblyItem(cmd.Context(), args[0], id); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("removed item %d from %s", id, args[0]))
		},
	}
}

func newAssembliesSignatureCmd(c *cli) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "signature <assembly-code>",
		Short: "Print the signature derived from the assembly's parts",
		Long: `Print the signature derived from the assembly's parts, ordered by layer.
With --apply the assembly is renamed to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			var sig string
			if apply {
				sig, err = svc.Assemblies.ApplySignature(cmd.Context(), args[0])
			} else {
				sig, err = svc.Assemblies.Signature(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Value(map[string]string{"signature": sig})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sig)
			return err
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "rename the assembly to its signature")
	return cmd
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("item_id", "must be a positive integer, got %q", s)
	}
	return id, nil
}
