package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/userdesk/pkg/config"
	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/recordstore"
	"github.com/getmockd/userdesk/pkg/remote"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	flagURL       string
	flagResource  string
	flagConfig    string
	flagTimeout   time.Duration
	flagLogLevel  string
	flagLogFormat string
	flagLogFile   string
	jsonOutput    bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// Resolved per invocation by setup.
var (
	settings = config.NewDefault()
	logger   = logging.Nop()
	logFile  io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "userdesk",
	Short: "userdesk manages user records held by a remote REST collection",
	Long: `userdesk lists, adds, edits and deletes user records stored in a remote
json-server style collection (GET/POST /Users, PUT/DELETE /Users/{id}).

Every change is sent to the remote store first and applied to the local list
only once the store confirms it.

Configuration can be provided via flags, environment variables (USERDESK_*),
or a configuration file. By default userdesk looks for userdesk.yaml in the
current directory and $XDG_CONFIG_HOME/userdesk/config.yaml.`,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Run()
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { teardown() },
}

// Run executes the command line and returns the process exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		return 1
	}
	return 0
}

// Execute runs the command line and exits. It is called by main.main().
func Execute() {
	os.Exit(Run())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagURL, "url", config.DefaultURL, "Remote store base URL")
	flags.StringVar(&flagResource, "resource", config.DefaultResource, "Collection name on the remote store")
	flags.StringVarP(&flagConfig, "config", "c", "", "Config file (default: ./userdesk.yaml)")
	flags.DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "Timeout for each remote call")
	flags.StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&flagLogFormat, "log-format", config.DefaultLogFormat, "Log format: text, json")
	flags.StringVar(&flagLogFile, "log-file", "", "Also write JSON logs to this file")
	flags.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// setup resolves configuration and logging before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadAll(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, closer, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	settings = cfg
	logger = log
	logFile = closer
	jsonOutput = cfg.JSON
	logger.Debug("configuration resolved", "url", cfg.URL, "resource", cfg.Resource, "urlSource", cfg.Source("url"))
	return nil
}

func teardown() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// applyFlags overrides cfg with flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = flagURL
		cfg.Mark("url", config.SourceFlag)
	}
	if flags.Changed("resource") {
		cfg.Resource = flagResource
		cfg.Mark("resource", config.SourceFlag)
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
		cfg.Mark("timeout", config.SourceFlag)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
		cfg.Mark("log.level", config.SourceFlag)
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = flagLogFormat
		cfg.Mark("log.format", config.SourceFlag)
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
		cfg.Mark("log.file", config.SourceFlag)
	}
	if flags.Changed("json") {
		cfg.JSON = jsonOutput
		cfg.Mark("json", config.SourceFlag)
	}
}

// newLogger builds the process logger. When a log file is configured every
// record is also appended to it as JSON.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	logCfg := logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: stderr,
	}
	if cfg.Log.File == "" {
		return logging.New(logCfg), nil, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logCfg.File = f
	return logging.New(logCfg), f, nil
}

// newStore builds a record store talking to the configured remote.
func newStore(opts ...recordstore.Option) *recordstore.Store {
	client := remote.NewClient(settings.URL,
		remote.WithTimeout(settings.Timeout),
		remote.WithResource(settings.Resource),
		remote.WithLogger(logger),
	)
	opts = append([]recordstore.Option{recordstore.WithLogger(logger)}, opts...)
	return recordstore.New(client, opts...)
}
