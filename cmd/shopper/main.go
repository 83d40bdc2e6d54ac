package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"beatstore/internal/cart"
	cartmetrics "beatstore/internal/cart/metrics"
	"beatstore/internal/client"
	"beatstore/internal/jwttoken"
	"beatstore/internal/localstore"
	"beatstore/internal/platform/config"
	"beatstore/internal/platform/logger"
	"beatstore/internal/platform/redis"
	"beatstore/internal/reconcile"
	reconcilemetrics "beatstore/internal/reconcile/metrics"
	"beatstore/internal/session"
)

// shopper is one CLI invocation: a storefront session for a visitor,
// optionally signed in with a bearer token.
type shopper struct {
	cfg         config.Client
	logLevel    string
	showMetrics bool

	stdout io.Writer
	stderr io.Writer

	// local overrides the Redis/in-memory choice; tests use it to share state
	// across invocations.
	local localstore.Store

	log      *slog.Logger
	registry *prometheus.Registry
	session  *session.Session
	products *client.Products
	closers  []func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &shopper{cfg: config.ClientFromEnv(), stdout: os.Stdout, stderr: os.Stderr}
	if err := run(ctx, s, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes one command line and always releases the session, including
// when the command fails.
func run(ctx context.Context, s *shopper, args []string) error {
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if closeErr := s.close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(s *shopper) *cobra.Command {
	root := &cobra.Command{
		Use:   "shopper",
		Short: "Browse the beatstore cart and saved items from the terminal",
		Long: `shopper drives a storefront session against the beatstore API.

Cart and saved items live in the visitor's local state (Redis when REDIS_URL
is set, memory otherwise). Passing a token signs the visitor in, which merges
locally saved items into the account before the command runs.

Items are addressed as <type>:<id>, for example beat:10 or sound_kit:3.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd.Context())
		},
	}
	root.SetOut(s.stdout)
	root.SetErr(s.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&s.cfg.APIBaseURL, "api", s.cfg.APIBaseURL, "storefront API base URL (API_BASE_URL)")
	flags.StringVar(&s.cfg.Token, "token", s.cfg.Token, "bearer token of the signed-in user (SHOPPER_TOKEN)")
	flags.StringVar(&s.cfg.Visitor, "visitor", s.cfg.Visitor, "local state namespace (SHOPPER_VISITOR)")
	flags.IntVar(&s.cfg.SyncConcurrency, "sync-concurrency", s.cfg.SyncConcurrency, "parallel saved-item sync calls")
	flags.StringVar(&s.logLevel, "log-level", s.cfg.LogLevel, "log level written to stderr")
	flags.BoolVar(&s.showMetrics, "metrics", false, "print session metrics to stderr on exit")

	root.AddCommand(newStatusCmd(s))
	root.AddCommand(newSavedCmd(s))
	root.AddCommand(newSaveCmd(s))
	root.AddCommand(newUnsaveCmd(s))
	root.AddCommand(newMoveCmd(s))
	root.AddCommand(newCartCmd(s))
	root.AddCommand(newCheckoutCmd(s))
	return root
}

// open builds the session and applies the auth state implied by the token.
func (s *shopper) open(ctx context.Context) error {
	s.log = logger.NewTo(s.stderr, s.logLevel)
	s.registry = prometheus.NewRegistry()

	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: s.cfg.RequestTimeout}),
		client.WithLogger(s.log),
	}
	if s.cfg.Token != "" {
		opts = append(opts, client.WithToken(s.cfg.Token))
	}
	api, err := client.New(s.cfg.APIBaseURL, opts...)
	if err != nil {
		return err
	}
	s.products = api.Products()

	local, err := s.openLocal()
	if err != nil {
		return err
	}

	c, err := cart.New(local,
		cart.WithLogger(s.log),
		cart.WithMetrics(cartmetrics.New(s.registry)),
	)
	if err != nil {
		return err
	}
	saved, err := reconcile.New(api.SavedItems(), api.Products(), local,
		reconcile.WithLogger(s.log),
		reconcile.WithMetrics(reconcilemetrics.New(s.registry)),
		reconcile.WithConcurrency(s.cfg.SyncConcurrency),
	)
	if err != nil {
		return err
	}
	s.session, err = session.New(ctx, c, saved, session.WithLogger(s.log))
	if err != nil {
		return err
	}

	signal := session.AuthSignal{State: session.AuthUnauthenticated}
	if s.cfg.Token != "" {
		userID, err := jwttoken.SubjectOf(s.cfg.Token)
		if err != nil {
			return fmt.Errorf("read token subject: %w", err)
		}
		signal = session.AuthSignal{State: session.AuthAuthenticated, UserID: userID}
	}
	return s.session.Observe(ctx, signal)
}

func (s *shopper) openLocal() (localstore.Store, error) {
	if s.local != nil {
		return s.local, nil
	}
	rc, err := redis.New(s.cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		s.log.Warn("REDIS_URL not set, cart and saved items will not outlive this command")
		return localstore.NewInMemory(), nil
	}
	s.closers = append(s.closers, rc.Close)
	return localstore.NewRedis(rc.Client, s.cfg.Visitor, localstore.WithTTL(s.cfg.LocalStateTTL))
}

func (s *shopper) close() error {
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.log.Warn("failed to close session", "error", err)
		}
		s.session = nil
	}
	if s.showMetrics && s.registry != nil {
		s.printMetrics()
		s.registry = nil
	}
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

func (s *shopper) printMetrics() {
	families, err := s.registry.Gather()
	if err != nil {
		s.log.Warn("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(s.stderr, mf); err != nil {
			s.log.Warn("failed to print metrics", "error", err)
			return
		}
	}
}
