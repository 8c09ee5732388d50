package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fortuna/propline/internal/config"
	"github.com/fortuna/propline/internal/logger"
	"github.com/spf13/cobra"
)

// Exit codes returned by ExecuteContext.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	configPath string
	outputDir  string
	useMock    bool
	verbose    bool
	strict     bool
	render     bool
)

var errUsage = errors.New("usage")

var timeNow = time.Now

var rootCmd = &cobra.Command{
	Use:   "propscraper",
	Short: "propscraper collects today's NBA player props into a CSV file.",
	Long: `propscraper collects today's NBA player prop lines from PrizePicks and writes
them to <output-dir>/nba_props_<date>.csv. The live API is tried first, then the
public board page, then a fixed mock slate.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml).")
	flags.StringVar(&outputDir, "output-dir", "data", "Directory CSV files are written to.")
	flags.BoolVar(&useMock, "mock", false, "Use mock data only, without network access.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level.")

	rootCmd.Flags().BoolVar(&strict, "strict", false, "Fail when no record survives validation.")
	rootCmd.Flags().BoolVar(&render, "render", false, "Render the board page in headless Chrome.")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitFailure
	}
	return ExitOK
}

// setup loads configuration, applies explicitly set flags on top of it and
// builds the process logger.
func setup(cmd *cobra.Command) (*config.AppConfig, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("mock") {
		cfg.Mock = useMock
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("render") {
		cfg.PrizePicks.Render = render
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "propscraper",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
