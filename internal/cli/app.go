// Package cli is the urmart command-line storefront. Commands consume the
// session store and the API client; they hold no state of their own.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MarkoPoloResearchLab/storefront/internal/apiclient"
	"github.com/MarkoPoloResearchLab/storefront/internal/session"
	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var errNotLoggedIn = errors.New("not logged in; run `urmart login` first")

// Option customizes the root command, mainly for tests.
type Option func(*options)

type options struct {
	stdout io.Writer
	stderr io.Writer
	tokens tokenstore.Store
}

// WithOutput redirects command output and diagnostics.
func WithOutput(stdout io.Writer, stderr io.Writer) Option {
	return func(opts *options) {
		opts.stdout = stdout
		opts.stderr = stderr
	}
}

// WithTokenStore bypasses --token-db and uses tokens directly.
func WithTokenStore(tokens tokenstore.Store) Option {
	return func(opts *options) {
		opts.tokens = tokens
	}
}

// runtime is the per-invocation wiring shared by every command.
type runtime struct {
	cfg      Config
	logger   *zap.Logger
	client   *apiclient.Client
	store    *session.Store
	registry *prometheus.Registry
	printer  printer
	stderr   io.Writer
	cleanup  func() error
}

// Run executes the command line args and releases every resource the
// invocation opened, whether or not the command succeeded.
func Run(ctx context.Context, args []string, opts ...Option) error {
	settings := &options{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}
	root, app := newRootCommand(settings)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, app.finish())
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	loadLocalEnv()
	return Run(ctx, os.Args[1:])
}

func newRootCommand(settings *options) (*cobra.Command, *runtime) {
	app := &runtime{}

	root := &cobra.Command{
		Use:           "urmart",
		Short:         "Grocery storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.start(cmd, settings)
		},
	}
	root.SetOut(settings.stdout)
	root.SetErr(settings.stderr)
	registerPersistentFlags(root)

	root.AddCommand(
		newLoginCommand(app),
		newRegisterCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newProfileCommand(app),
		newAddressCommand(app),
		newCategoriesCommand(app),
		newProductsCommand(app),
		newCartCommand(app),
		newWishlistCommand(app),
		newCouponCommand(app),
		newCheckoutCommand(app),
		newOrdersCommand(app),
		newAdminCommand(app),
	)
	return root, app
}

func (app *runtime) start(cmd *cobra.Command, settings *options) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.stderr = settings.stderr
	app.printer = newPrinter(settings.stdout, cfg.Output)

	logger, err := newLogger(cfg.LogLevel, settings.stderr)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	app.logger = logger

	ctx := cmd.Context()
	tokens := settings.tokens
	app.cleanup = func() error { return nil }
	if tokens == nil {
		opened, cleanup, err := openTokenStore(ctx, cfg.TokenDB, cfg.TokenStoreDriver)
		if err != nil {
			return err
		}
		tokens, app.cleanup = opened, cleanup
	}

	clientOptions := []apiclient.Option{}
	app.registry = prometheus.NewRegistry()
	metrics, err := apiclient.NewMetrics(app.registry)
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}
	clientOptions = append(clientOptions, apiclient.WithMetrics(metrics))
	if cfg.RateLimit > 0 {
		clientOptions = append(clientOptions, apiclient.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Logger:  logger.Named("apiclient"),
	}, clientOptions...)
	if err != nil {
		return err
	}
	app.client = client

	store, err := session.NewClientStore(client, tokens, session.WithOperationLogger(session.NewZapOperationLogger(logger.Named("session"))))
	if err != nil {
		return err
	}
	app.store = store
	return store.RestoreSession(ctx)
}

func (app *runtime) finish() error {
	if app.cfg.MetricsDump && app.registry != nil {
		app.dumpMetrics()
	}
	if app.logger != nil {
		_ = app.logger.Sync()
	}
	if app.cleanup == nil {
		return nil
	}
	cleanup := app.cleanup
	app.cleanup = nil
	return cleanup()
}

// requireUser returns the signed-in user or errNotLoggedIn.
func (app *runtime) requireUser() error {
	if !app.store.Snapshot().Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (app *runtime) dumpMetrics() {
	families, err := app.registry.Gather()
	if err != nil {
		app.logger.Warn("metrics gather failed", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := ""
			for _, pair := range metric.GetLabel() {
				if labels != "" {
					labels += ","
				}
				labels += fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				fmt.Fprintf(app.stderr, "%s{%s} %g\n", family.GetName(), labels, metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				histogram := metric.GetHistogram()
				fmt.Fprintf(app.stderr, "%s{%s} count=%d sum=%g\n", family.GetName(), labels, histogram.GetSampleCount(), histogram.GetSampleSum())
			}
		}
	}
}

func newLogger(level string, sink io.Writer) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(sink), parsed)
	return zap.New(core), nil
}
