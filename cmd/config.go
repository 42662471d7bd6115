package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/config"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

func newConfigCmd(c *cli) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or edit the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.configPath()
			f := c.formatter(cmd)
			if _, err := os.Stat(path); err == nil && !force {
				return f.Done(fmt.Sprintf("config already exists at %s (use --force to overwrite)", path))
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			return f.Done(fmt.Sprintf("wrote %s", path))
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one config value, keeping comments",
		Long: `Set one dotted config key in the config file. Comments and the layout of
the rest of the file are kept.

Examples:
  toolasset config set db_path /srv/tools/tool_asset.db
  toolasset config set web.label_cache_ttl 30m
  toolasset config set tracing.enabled true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.IsSettable(args[0]) {
				return domain.Invalid("key", "unknown config key %q", args[0])
			}
			path := c.configPath()
			if err := config.SaveValue(path, args[0], args[1]); err != nil {
				return err
			}
			return c.formatter(cmd).Done(fmt.Sprintf("set %s in %s", args[0], path))
		},
	}

	configCmd.AddCommand(initCmd, setCmd)
	return configCmd
}
