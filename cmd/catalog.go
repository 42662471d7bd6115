package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

func newCatalogCmd(c *cli) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the layer and category dictionary",
	}

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "layers",
		Short: "List layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.formatter(cmd).Layers(c.dict.Layers())
		},
	})

	var layer string
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories, optionally of one layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layer = strings.TrimSpace(layer)
			if layer == "" {
				return c.formatter(cmd).Categories(c.dict.AllCategories())
			}
			if !c.dict.ValidateLayer(layer) {
				return domain.Invalid("layer_code", "unknown layer %q", layer)
			}
			return c.formatter(cmd).Categories(c.dict.Categories(layer))
		},
	}
	categoriesCmd.Flags().StringVar(&layer, "layer", "", "layer code")
	catalogCmd.AddCommand(categoriesCmd)

	return catalogCmd
}
