package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/toolasset/internal/catalog"
	"github.com/zjrosen/toolasset/internal/config"
	"github.com/zjrosen/toolasset/internal/infrastructure/sqlite"
	"github.com/zjrosen/toolasset/internal/inventory/application"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/presentation"
	"github.com/zjrosen/toolasset/internal/tracing"
)

// defaultConfigPath is where a commented config is written on first run.
const defaultConfigPath = ".toolasset/config.yaml"

// annotationLog marks commands whose log lines also go to stderr.
const annotationLog = "toolasset/log"

var version = "dev"

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	v       *viper.Viper
	cfg     config.Config
	cfgFile string
	dbPath  string
	jsonOut bool
	noColor bool
	debug   bool

	dict     *catalog.Dictionary
	db       *sqlite.DB
	tracer   *tracing.Provider
	svc      *application.Services
	closers  []func()
	errOut   io.Writer
	logToErr bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "toolasset",
		Short: "Track cutting tool parts, assemblies and tooling lists",
		Long: `toolasset registers tool parts (holders, bodies, inserts, screws...) under
sequential asset codes, composes them into assemblies and groups assemblies
into tooling lists. Every change is recorded in an operation log.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: .toolasset/config.yaml or ~/.config/toolasset/config.yaml)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database file (overrides db_path)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "write debug logs to log.path")

	root.AddCommand(
		newPartsCmd(c),
		newAssembliesCmd(c),
		newToolingListsCmd(c),
		newCatalogCmd(c),
		newDBCmd(c),
		newConfigCmd(c),
		newServeCmd(c),
	)
	return root
}

// init loads configuration and logging. The database is opened lazily by
// the commands that need it.
func (c *cli) init(cmd *cobra.Command) error {
	if c.errOut == nil {
		c.errOut = cmd.ErrOrStderr()
	}
	c.logToErr = cmd.Annotations[annotationLog] == "stderr"
	if c.noColor {
		presentation.DisableColor()
	}
	c.dict = catalog.Default()

	if err := c.loadConfig(); err != nil {
		return err
	}
	if c.dbPath != "" {
		c.cfg.DBPath = c.dbPath
	}
	if c.cfg.Tracing.FilePath == "" {
		c.cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if c.cfg.Log.Path == "" {
		c.cfg.Log.Path = config.DefaultLogPath()
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.initLog()
}

func (c *cli) loadConfig() error {
	v := c.v
	defaults := config.Defaults()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("actor", defaults.Actor)
	v.SetDefault("codes.width", defaults.Codes.Width)
	v.SetDefault("codes.separator", defaults.Codes.Separator)
	v.SetDefault("web.addr", defaults.Web.Addr)
	v.SetDefault("web.label_cache_ttl", defaults.Web.LabelCacheTTL)
	v.SetDefault("log.debug", defaults.Log.Debug)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	v.SetEnvPrefix("TOOLASSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else {
		// Config lookup order:
		// 1. .toolasset/config.yaml (current directory)
		// 2. ~/.config/toolasset/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			v.SetConfigFile(defaultConfigPath)
		} else {
			v.AddConfigPath(config.Dir())
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && c.cfgFile == "":
			// No config file found anywhere - create default at .toolasset/config.yaml
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				v.SetConfigFile(defaultConfigPath)
				_ = v.ReadInConfig()
			}
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			// An explicit --config that does not exist yet; `config init` creates it.
		default:
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&c.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// configPath is the file `config init` and `config set` write to.
func (c *cli) configPath() string {
	if c.cfgFile != "" {
		return c.cfgFile
	}
	if used := c.v.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

func (c *cli) initLog() error {
	debug := c.debug || c.cfg.Log.Debug || os.Getenv("TOOLASSET_DEBUG") != ""
	switch {
	case debug:
		var extra []io.Writer
		if c.logToErr {
			extra = append(extra, c.errOut)
		}
		cleanup, err := log.Init(c.cfg.Log.Path, extra...)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		c.closers = append(c.closers, cleanup)
		log.Info(log.CatConfig, "toolasset starting", "version", version, "config", c.v.ConfigFileUsed())
	case c.logToErr:
		log.InitWriter(c.errOut, log.LevelInfo)
		c.closers = append(c.closers, log.Reset)
	}
	return nil
}

// services opens the database (applying pending migrations) and wires the
// application services on first use.
func (c *cli) services(ctx context.Context) (*application.Services, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	db, err := c.openDB(ctx, true)
	if err != nil {
		return nil, err
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      c.cfg.Tracing.Enabled,
		Exporter:     c.cfg.Tracing.Exporter,
		FilePath:     c.cfg.Tracing.FilePath,
		OTLPEndpoint: c.cfg.Tracing.OTLPEndpoint,
		SampleRate:   c.cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	c.tracer = provider
	c.closers = append(c.closers, func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "tracer shutdown failed", err)
		}
	})

	store := db.Store(domain.CodeFormat{Width: c.cfg.Codes.Width, Separator: c.cfg.Codes.Separator})
	c.svc = application.New(store, c.dict, application.Options{
		Actor:  c.cfg.Actor,
		Tracer: provider.Tracer(),
	})
	return c.svc, nil
}

func (c *cli) openDB(ctx context.Context, migrate bool) (*sqlite.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	path := c.resolvedDBPath()
	db, err := sqlite.Open(ctx, path, migrate)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	c.db = db
	c.closers = append(c.closers, func() { _ = db.Close() })
	return db, nil
}

func (c *cli) resolvedDBPath() string {
	if abs, err := filepath.Abs(c.cfg.DBPath); err == nil {
		return abs
	}
	return c.cfg.DBPath
}

func (c *cli) formatter(cmd *cobra.Command) *presentation.Formatter {
	return presentation.NewFormatter(cmd.OutOrStdout(), presentation.WithJSON(c.jsonOut))
}

// close releases resources in reverse acquisition order.
func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// run executes one invocation with its own viper instance and state.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{v: viper.New(), errOut: stderr}
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// Execute runs the root command
func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrInvalidArgument):
		return 2
	case errors.Is(err, domain.ErrNotFound):
		return 3
	default:
		return 1
	}
}
