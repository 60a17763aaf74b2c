package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/app"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/config"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/logging"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, c := newRootCmd(os.Stdout, os.Stderr)
	if err := c.execute(ctx, root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildMetadataFunc constructs the cached metadata provider for a run.
type buildMetadataFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*cache.Provider, app.CloseFunc, error)

// cli carries state shared by the subcommands. It is populated in the root's pre-run hook.
type cli struct {
	providerKind string
	datasetPath  string
	verbose      bool
	jsonOutput   bool

	out    io.Writer
	build  buildMetadataFunc
	logger *slog.Logger
	svc    *service.PathService
	close  app.CloseFunc
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{out: stdout, build: app.BuildMetadata}

	root := &cobra.Command{
		Use:           "moviepath",
		Short:         "Find chains of movies linked by shared cast and crew",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.providerKind, "provider", "", "metadata provider: tmdb, catalog or dataset (overrides PROVIDER)")
	flags.StringVar(&c.datasetPath, "dataset", "", "catalogue file for the dataset provider (overrides DATASET_PATH)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(c.pathCmd(), c.searchCmd())
	return root, c
}

// execute runs root and then releases the metadata provider. Cobra skips post-run hooks when a
// command fails, so the provider is closed here on every path.
func (c *cli) execute(ctx context.Context, root *cobra.Command) error {
	runErr := root.ExecuteContext(ctx)
	if c.close == nil {
		return runErr
	}
	closeErr := c.close(context.Background())
	c.close = nil
	if closeErr == nil {
		return runErr
	}
	return errors.Join(runErr, fmt.Errorf("close metadata provider: %w", closeErr))
}

func (c *cli) setup(cmd *cobra.Command, stderr io.Writer) error {
	if c.providerKind != "" {
		if err := os.Setenv("PROVIDER", c.providerKind); err != nil {
			return err
		}
	}
	if c.datasetPath != "" {
		if err := os.Setenv("DATASET_PATH", c.datasetPath); err != nil {
			return err
		}
		if c.providerKind == "" {
			if err := os.Setenv("PROVIDER", config.ProviderDataset); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	c.logger = logging.NewWithWriter(cfg.Logging, stderr).With("component", "moviepath")

	metadata, closeFn, err := c.build(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	c.close = closeFn
	c.svc = service.NewPathService(metadata, c.logger, app.ServiceOptions(cfg.Search))
	return nil
}
