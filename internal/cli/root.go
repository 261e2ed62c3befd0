// Package cli implements the space-missions CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/space-missions/internal/catalog"
	"github.com/rcliao/space-missions/internal/config"
	"github.com/rcliao/space-missions/internal/effects"
	"github.com/rcliao/space-missions/internal/spacex"
	"github.com/rcliao/space-missions/internal/state"
	"github.com/rcliao/space-missions/internal/view"
)

var (
	configPath string
	dataFile   string
	apiURL     string
	formatFlag string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "space-missions",
	Short: "Search SpaceX launch missions",
	Long:  "Load SpaceX launches and launch pads, then filter them by keyword, launch pad and year range.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dataFile != "" {
			c.DataFile = dataFile
		}
		if apiURL != "" {
			c.APIURL = apiURL
		}
		cfg = c

		l, err := newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file (default: $SPACE_MISSIONS_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&dataFile, "data-file", "", "Read launches from a JSON dump instead of the API")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "SpaceX API base URL")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// app is one wired search page.
type app struct {
	view    *view.SpaceMissions
	catalog *catalog.Catalog
}

func (a *app) Close() {
	a.view.Deactivate()
	a.catalog.Close()
}

func newSource() spacex.Source {
	if cfg.DataFile != "" {
		return spacex.FileSource{Path: cfg.DataFile}
	}
	return spacex.NewClient(spacex.ClientConfig{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    logger.Named("spacex"),
	})
}

// openApp wires the page, activates it and waits for the data load.
func openApp(ctx context.Context) (*app, view.Props, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, view.Props{}, err
	}

	cat, err := catalog.Open(cfg.CatalogDSN, loc)
	if err != nil {
		return nil, view.Props{}, err
	}

	store := state.NewStore(state.Reduce, logger.Named("store"))
	loader := effects.NewLoader(newSource(), cat, logger.Named("loader"))
	v, err := view.New(store, loader, view.Options{Location: loc, Logger: logger.Named("view")})
	if err != nil {
		cat.Close()
		return nil, view.Props{}, err
	}

	a := &app{view: v, catalog: cat}
	v.Activate(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout+5*time.Second)
	defer cancel()
	props, err := v.WaitLoaded(waitCtx)
	if err != nil {
		a.Close()
		return nil, view.Props{}, err
	}
	return a, props, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
