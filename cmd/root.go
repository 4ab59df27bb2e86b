// Package cmd defines and implements the CLI commands for the newsroom executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/api"
	"github.com/JakeFAU/renewables-newsroom/internal/app"
	"github.com/JakeFAU/renewables-newsroom/internal/config"
	"github.com/JakeFAU/renewables-newsroom/internal/logging"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

// Exit codes returned by Execute.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitInputError = 2
)

// App is the slice of app.App the commands use. Tests swap in their own.
type App interface {
	Close() error
	Logger() *zap.Logger
	Workflow() *workflow.Orchestrator
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

type runtimeKey struct{}

// runtime is everything PersistentPreRunE builds for a single command.
type runtime struct {
	app    App
	logger *zap.Logger
	state  *api.State
	status *api.Server

	stopOnce sync.Once
}

type rootOptions struct {
	configPath string
	statusAddr string
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "newsroom",
		Short: "Renewable-energy news pipeline for the INGLAT blog.",
		Long: `newsroom discovers renewable-energy headlines on Spanish-language portals,
rewrites them as original articles, optionally enriches them with an analysis
section and publishes them to the blog's content store.

Stages hand off through JSON session artifacts, so each one can be re-run on
its own.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsRuntime(cmd) {
				return nil
			}
			rt, err := opts.start(cmd.Context(), cmd.Name())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok && rt != nil {
				rt.stop()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (YAML, JSON or TOML)")
	cmd.PersistentFlags().StringVar(&opts.statusAddr, "status-addr", "", "serve /healthz, /metrics and /v1/status on this address while the command runs")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &pipeline.InputError{What: "flags", Err: err}
	})
	cmd.AddCommand(
		newDiscoverCmd(),
		newEnrichCmd(),
		newPublishCmd(),
		newRunAllCmd(),
		newPruneCmd(),
	)
	return cmd
}

func needsRuntime(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (o *rootOptions) start(ctx context.Context, command string) (*runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, &pipeline.InputError{What: "config", Err: err}
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, &pipeline.InputError{What: "logging", Err: err}
	}
	logger = logger.With(zap.String("command", command))

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to initialize application services: %w", err)
	}
	rt := &runtime{app: a, logger: logger, state: api.NewState(command, time.Now().UTC())}

	addr := cfg.Status.Addr
	if o.statusAddr != "" {
		addr = o.statusAddr
	}
	if addr != "" {
		rt.status = api.NewServer(rt.state, logger.Named("status"))
		if _, err := rt.status.Start(addr); err != nil {
			rt.stop()
			return nil, &pipeline.InputError{What: "status-addr", Err: err}
		}
	}
	return rt, nil
}

func (rt *runtime) stop() {
	rt.stopOnce.Do(rt.shutdown)
}

func (rt *runtime) shutdown() {
	if rt.status != nil {
		rt.state.SetReady(false)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.status.Shutdown(ctx); err != nil {
			rt.logger.Warn("status server shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if err := rt.app.Close(); err != nil {
		rt.logger.Warn("error closing application services", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// record feeds finished reports into the status endpoint.
func (rt *runtime) record(reports ...workflow.Report) {
	for _, r := range reports {
		rt.state.SetStage(r.Stage)
		rt.state.Add(r.Outcomes)
	}
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("application runtime not initialized")
	}
	return rt, nil
}

// Execute runs the CLI with args and returns the process exit code. Per-item
// failures inside a stage still exit 0.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	executed, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}
	// PersistentPostRun is skipped when RunE fails.
	if executed != nil && executed.Context() != nil {
		if rt, ok := executed.Context().Value(runtimeKey{}).(*runtime); ok && rt != nil {
			rt.stop()
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		return ExitInputError
	}
	return ExitFailure
}
