// Package session is the per-visitor application state: the cart and the
// saved-items reconciler, driven by the observed authentication state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"beatstore/internal/cart"
	"beatstore/internal/reconcile"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// AuthState is the authentication signal as seen by the storefront.
type AuthState int

const (
	AuthLoading AuthState = iota
	AuthAuthenticated
	AuthUnauthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthLoading:
		return "loading"
	case AuthAuthenticated:
		return "authenticated"
	case AuthUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthSignal is one observation of the auth state. UserID is set only when
// State is AuthAuthenticated.
type AuthSignal struct {
	State  AuthState
	UserID id.UserID
}

// OrderSubmitter places an order for the cart contents.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, items []cart.Item, total decimal.Decimal) error
}

// Session owns the cart and saved items for one visitor from session start
// to Close.
type Session struct {
	cart   *cart.Store
	saved  *reconcile.Reconciler
	logger *slog.Logger

	mu     sync.Mutex
	auth   AuthSignal
	closed bool
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New starts a session and restores the locally persisted cart and saved
// items.
func New(ctx context.Context, c *cart.Store, saved *reconcile.Reconciler, opts ...Option) (*Session, error) {
	if c == nil {
		return nil, errors.New("cart is required")
	}
	if saved == nil {
		return nil, errors.New("reconciler is required")
	}
	s := &Session{
		cart:   c,
		saved:  saved,
		logger: slog.New(slog.DiscardHandler),
		auth:   AuthSignal{State: AuthLoading},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	c.Load(ctx)
	saved.Load(ctx)
	return s, nil
}

func (s *Session) Cart() *cart.Store {
	return s.cart
}

func (s *Session) Saved() *reconcile.Reconciler {
	return s.saved
}

// Observe applies an auth signal. Loading is ignored. Becoming authenticated
// reconciles; becoming unauthenticated switches to local mode without
// reconciling.
func (s *Session) Observe(ctx context.Context, signal AuthSignal) error {
	if signal.State == AuthAuthenticated && signal.UserID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "authenticated signal without user id")
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	prev := s.auth
	if signal.State != AuthLoading {
		s.auth = signal
	}
	s.mu.Unlock()

	switch signal.State {
	case AuthLoading:
		return nil
	case AuthAuthenticated:
		if prev.State == AuthAuthenticated && prev.UserID == signal.UserID {
			return nil
		}
		result := s.saved.SignIn(ctx, signal.UserID)
		s.logger.InfoContext(ctx, "saved items reconciled",
			"user_id", signal.UserID.String(),
			"outcome", result.Outcome,
			"synced", result.Synced,
			"failed", result.Failed,
			"visible", result.Visible,
		)
	case AuthUnauthenticated:
		if prev.State == AuthAuthenticated {
			s.saved.SignOut(ctx)
			s.logger.InfoContext(ctx, "signed out, saved items back to local mode")
		}
	}
	return nil
}

// MoveToCart moves a saved item into this session's cart.
func (s *Session) MoveToCart(ctx context.Context, key id.ItemKey) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.saved.MoveToCart(ctx, key, s.cart)
}

// Checkout submits the cart and clears it once the order is accepted.
func (s *Session) Checkout(ctx context.Context, orders OrderSubmitter) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "cart is empty")
	}
	if err := orders.SubmitOrder(ctx, items, s.cart.Total()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to submit order")
	}
	s.cart.Clear(ctx)
	return nil
}

// Close ends the session. Persisted state survives; later calls fail with
// ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
