package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// optionalString returns the flag value when the flag was given, else nil.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func newPartsCmd(c *cli) *cobra.Command {
	partsCmd := &cobra.Command{
		Use:     "parts",
		Aliases: []string{"part"},
		Short:   "Register and maintain tool parts",
	}
	partsCmd.AddCommand(
		newPartsAddCmd(c),
		newPartsListCmd(c),
		newPartsShowCmd(c),
		newPartsUpdateCmd(c),
		newPartsArchiveCmd(c),
		newPartsRestoreCmd(c),
		newHistoryCmd(c, domain.TargetPart, "<asset-code>"),
	)
	return partsCmd
}

func newPartsAddCmd(c *cli) *cobra.Command {
	var in domain.NewPart
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a part and print its asset code",
		Long: `Register a part under the sequence of its layer.

Examples:
  toolasset parts add --layer INSERT --category MILLING_INSERT --part-no APMT1135 --maker SANDVIK
  toolasset parts add --layer SCREW --free-text "clamp screw M3" --part-no S3x8 --maker SANDVIK`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			in.CategoryCode = optionalString(cmd, "category")
			in.CategoryFreeText = optionalString(cmd, "free-text")
			in.MakerPartName = optionalString(cmd, "maker-part-name")
			in.DisplayName = optionalString(cmd, "name")

			code, err := svc.Parts.AddPart(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.formatter(cmd).Created("asset_code", code)
		},
	}
	cmd.Flags().StringVar(&in.LayerCode, "layer", "", "layer code, e.g. INSERT (required)")
	cmd.Flags().String("category", "", "category code within the layer")
	cmd.Flags().String("free-text", "", "category text when no category code applies")
	cmd.Flags().StringVar(&in.PartNo, "part-no", "", "maker part number (required)")
	cmd.Flags().StringVar(&in.Maker, "maker", "", "maker name (required)")
	cmd.Flags().String("maker-part-name", "", "maker's product name")
	cmd.Flags().String("name", "", "display name (default: part number)")
	cmd.Flags().StringVar(&in.StockUnit, "unit", "", "stock unit (default: EA)")
	return cmd
}

func newPartsListCmd(c *cli) *cobra.Command {
	var filter domain.PartFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			parts, err := svc.Parts.ListParts(cmd.Context(), filter)
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Parts(parts, nil)
			}
			labels, err := svc.Audit.Labels(cmd.Context())
			if err != nil {
				return err
			}
			return f.Parts(parts, labels)
		},
	}
	cmd.Flags().StringVar(&filter.LayerCode, "layer", "", "only parts of this layer")
	cmd.Flags().StringVar(&filter.CategoryCode, "category", "", "only parts of this category")
	cmd.Flags().StringVar(&filter.Status, "status", "", "only parts with this status (ACTIVE, ARCHIVED)")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "substring match on code, part number, maker or name")
	cmd.Flags().IntVar(&filter.Limit, "limit", domain.DefaultPartListLimit, "maximum number of rows")
	return cmd
}

func newPartsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <asset-code>",
		Short: "Show one part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			part, err := svc.Parts.GetPart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Part(part, nil)
			}
			labels, err := svc.Audit.Labels(cmd.Context())
			if err != nil {
				return err
			}
			return f.Part(part, labels)
		},
	}
}

func newPartsUpdateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <asset-code> <field=value>...",
		Short: "Update part fields",
		Long: `Update allow-listed part fields. An empty value ("note=") clears a nullable field.

Examples:
  toolasset parts update INSERT_00000001 stock_qty=12 supplier="Tool Center"
  toolasset parts update INSERT_00000001 note= --reason "typo"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := domain.ParseAssignments(args[1:])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Parts.UpdatePart(cmd.Context(), args[0], patch, domain.BlankToNil(optionalString(cmd, "reason"))); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("updated %s", args[0]))
		},
	}
	cmd.Flags().String("reason", "", "reason recorded in the operation log")
	return cmd
}

func newPartsArchiveCmd(c *cli) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "archive <asset-code>",
		Short: "Archive a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Parts.ArchivePart(cmd.Context(), args[0], reason); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("archived %s", args[0]))
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the part is archived (required)")
	return cmd
}

func newPartsRestoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <asset-code>",
		Short: "Restore an archived part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Parts.RestorePart(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("restored %s", args[0]))
		},
	}
}

// newHistoryCmd lists the operation log of one target.
func newHistoryCmd(c *cli, targetType, argName string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history " + argName,
		Short: "Show the operation log of one target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			logs, err := svc.Audit.History(cmd.Context(), targetType, args[0], limit)
			if err != nil {
				return err
			}
			return c.formatter(cmd).History(logs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0: all)")
	return cmd
}
