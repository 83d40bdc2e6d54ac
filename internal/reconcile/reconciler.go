// Package reconcile owns the shopper's saved items across the local snapshot
// store (anonymous) and the server list (authenticated), and merges the two
// when a visitor signs in.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	catalog "beatstore/internal/catalog/models"
	"beatstore/internal/localstore"
	saved "beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/sentinel"
)

const (
	defaultConcurrency = 4

	outcomeSynced     = "synced"
	outcomeFallback   = "fallback"
	outcomeSkipped    = "skipped"
	outcomeSuperseded = "superseded"

	fallbackLookup   = "lookup"
	fallbackSnapshot = "snapshot"
)

// State is the reconciler's session phase.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticatedPending
	StateAuthenticatedSynced
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedPending:
		return "authenticated_pending"
	case StateAuthenticatedSynced:
		return "authenticated_synced"
	default:
		return "unknown"
	}
}

// PassResult summarizes one reconciliation pass.
type PassResult struct {
	Outcome string
	Synced  int
	Failed  int
	Visible int
}

// Reconciler is safe for concurrent use. Passes for the same user and session
// generation are collapsed; a pass whose session ended before it finished is
// discarded.
type Reconciler struct {
	api         SavedItemsAPI
	products    ProductLookup
	snapshots   snapshotStore
	logger      *slog.Logger
	metrics     Metrics
	tracer      trace.Tracer
	concurrency int

	passes singleflight.Group

	mu         sync.Mutex
	state      State
	userID     id.UserID
	generation uint64
	visible    []catalog.Product
	lastSynced *id.KeySet
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = tracer
	}
}

// WithConcurrency bounds the number of in-flight server adds during a pass.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func New(api SavedItemsAPI, products ProductLookup, local localstore.Store, opts ...Option) (*Reconciler, error) {
	if api == nil {
		return nil, errors.New("saved items API is required")
	}
	if products == nil {
		return nil, errors.New("product lookup is required")
	}
	if local == nil {
		return nil, errors.New("local store is required")
	}
	r := &Reconciler{
		api:         api,
		products:    products,
		snapshots:   snapshotStore{local: local},
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("beatstore/reconcile"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Load fills the visible set from local snapshots. Call once at session start.
func (r *Reconciler) Load(ctx context.Context) {
	local := r.loadSnapshots(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateUnauthenticated {
		r.visible = local
	}
}

// State returns the current phase.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Items returns the visible saved items in display order.
func (r *Reconciler) Items() []catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.visible)
}

// IsSaved reports whether key is in the visible set.
func (r *Reconciler) IsSaved(key id.ItemKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return indexOf(r.visible, key) >= 0
}

// SignIn enters the authenticated phase for userID and runs a pass. Signing
// in again as the same user only re-runs the pass.
func (r *Reconciler) SignIn(ctx context.Context, userID id.UserID) PassResult {
	r.mu.Lock()
	if r.state == StateUnauthenticated || r.userID != userID {
		r.state = StateAuthenticatedPending
		r.userID = userID
		r.generation++
		r.lastSynced = nil
	}
	r.mu.Unlock()
	return r.Reconcile(ctx)
}

// SignOut returns to local-only mode. Nothing is reconciled; the visible set
// reverts to the local snapshots.
func (r *Reconciler) SignOut(ctx context.Context) {
	local := r.loadSnapshots(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateUnauthenticated
	r.userID = id.UserID{}
	r.generation++
	r.lastSynced = nil
	r.visible = local
}

// Reconcile runs a pass for the signed-in user. Concurrent calls within one
// sign-in share a pass; a sign-in that starts while an older pass is still
// running gets its own. Transient failures are logged and counted, never
// returned.
func (r *Reconciler) Reconcile(ctx context.Context) PassResult {
	r.mu.Lock()
	if r.state == StateUnauthenticated {
		r.mu.Unlock()
		return PassResult{Outcome: outcomeSkipped}
	}
	userID := r.userID
	generation := r.generation
	r.mu.Unlock()

	flight := userID.String() + ":" + strconv.FormatUint(generation, 10)
	v, _, _ := r.passes.Do(flight, func() (any, error) {
		return r.runPass(ctx, generation), nil
	})
	return v.(PassResult)
}

func (r *Reconciler) runPass(ctx context.Context, generation uint64) PassResult {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "reconcile.pass")
	defer span.End()

	result := r.pass(ctx, generation)

	span.SetAttributes(
		attribute.String("reconcile.outcome", result.Outcome),
		attribute.Int("reconcile.synced", result.Synced),
		attribute.Int("reconcile.failed", result.Failed),
		attribute.Int("reconcile.visible", result.Visible),
	)
	if result.Outcome == outcomeFallback {
		span.SetStatus(codes.Error, "server list unavailable")
	}
	if r.metrics != nil {
		r.metrics.ObservePass(result.Outcome, time.Since(start).Seconds())
		r.metrics.AddSynced(result.Synced)
		r.metrics.AddSyncFailures(result.Failed)
	}
	return result
}

func (r *Reconciler) pass(ctx context.Context, generation uint64) PassResult {
	local := r.loadSnapshots(ctx)
	localIDs := keysOf(local)
	localByKey := catalog.ByKey(local)

	r.mu.Lock()
	skip := r.state == StateAuthenticatedSynced && r.lastSynced != nil && localIDs.SubsetOf(r.lastSynced)
	visible := len(r.visible)
	r.mu.Unlock()
	if skip {
		return PassResult{Outcome: outcomeSkipped, Visible: visible}
	}

	dbItems, err := r.api.List(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to fetch saved items, using local list",
			"error", err,
			"unauthorized", errors.Is(err, sentinel.ErrUnauthorized),
		)
		products := r.resolve(ctx, localIDs.Keys(), localByKey)
		n, ok := r.commit(generation, products, nil)
		if !ok {
			return PassResult{Outcome: outcomeSuperseded, Visible: n}
		}
		return PassResult{Outcome: outcomeFallback, Visible: n}
	}
	if n, ok := r.current(generation); !ok {
		return PassResult{Outcome: outcomeSuperseded, Visible: n}
	}

	idsToSync := localIDs.Difference(keysOfViews(dbItems))
	synced, failed := r.push(ctx, idsToSync)

	if synced > 0 {
		refreshed, err := r.api.List(ctx)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to refresh saved items after sync", "error", err)
		} else {
			dbItems = refreshed
		}
	}

	finalDB := keysOfViews(dbItems)
	products := make([]catalog.Product, 0, len(dbItems)+len(idsToSync))
	for _, item := range dbItems {
		products = append(products, snapshotOf(item))
	}
	products = append(products, r.resolve(ctx, localIDs.Difference(finalDB), localByKey)...)

	onServer := id.NewKeySet()
	for _, key := range localIDs.Keys() {
		if finalDB.Has(key) {
			onServer.Add(key)
		}
	}
	n, ok := r.commit(generation, products, onServer)
	if !ok {
		return PassResult{Outcome: outcomeSuperseded, Synced: synced, Failed: failed, Visible: n}
	}
	return PassResult{Outcome: outcomeSynced, Synced: synced, Failed: failed, Visible: n}
}

// push adds each key to the server independently. Failures never cancel the
// remaining adds.
func (r *Reconciler) push(ctx context.Context, keys []id.ItemKey) (synced, failed int) {
	var ok, bad atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := r.api.Add(ctx, key); err != nil {
				bad.Add(1)
				r.logger.WarnContext(ctx, "failed to sync saved item",
					"item", key.String(),
					"error", err,
				)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load()), int(bad.Load())
}

// resolve returns products for keys in key order: current detail from the
// product lookup where available, otherwise the local snapshot.
func (r *Reconciler) resolve(ctx context.Context, keys []id.ItemKey, snapshots map[id.ItemKey]catalog.Product) []catalog.Product {
	if len(keys) == 0 {
		return nil
	}
	byType := make(map[id.ProductType][]id.ProductID)
	for _, key := range keys {
		byType[key.Type] = append(byType[key.Type], key.ID)
	}

	var mu sync.Mutex
	fetched := make(map[id.ItemKey]catalog.Product, len(keys))
	var g errgroup.Group
	for t, ids := range byType {
		g.Go(func() error {
			products, err := r.products.ByIDs(ctx, t, ids)
			if err != nil {
				r.logger.WarnContext(ctx, "product lookup failed, using snapshots",
					"product_type", t.String(),
					"error", err,
				)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, p := range products {
				fetched[p.Key()] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]catalog.Product, 0, len(keys))
	for _, key := range keys {
		if p, ok := fetched[key]; ok {
			out = append(out, p)
			r.countFallback(fallbackLookup)
			continue
		}
		if p, ok := snapshots[key]; ok {
			out = append(out, p)
			r.countFallback(fallbackSnapshot)
			continue
		}
		r.logger.WarnContext(ctx, "saved item has no product data", "item", key.String())
	}
	return out
}

// current reports whether generation is still the live authenticated
// session, along with the visible count.
func (r *Reconciler) current(generation uint64) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visible), r.generation == generation && r.state != StateUnauthenticated
}

// commit installs the pass result unless the session changed meanwhile, and
// reports whether it did. Items saved while the pass ran are kept after the
// pass result. synced holds the local keys known to be on the server; keys
// outside it are pushed again by the next pass. A nil synced set leaves the
// state unchanged.
func (r *Reconciler) commit(generation uint64, products []catalog.Product, synced *id.KeySet) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation || r.state == StateUnauthenticated {
		return len(r.visible), false
	}
	merged := dedupe(products)
	for _, p := range r.visible {
		if indexOf(merged, p.Key()) < 0 {
			merged = append(merged, p)
		}
	}
	r.visible = merged
	if synced != nil {
		r.state = StateAuthenticatedSynced
		r.lastSynced = synced
	}
	return len(r.visible), true
}

// Save adds p to the visible set. Anonymous saves go to the local store;
// authenticated saves go to the server, and a failed server write is kept
// locally so the next pass retries it.
func (r *Reconciler) Save(ctx context.Context, p catalog.Product) error {
	if !p.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid product type")
	}
	r.mu.Lock()
	state := r.state
	if indexOf(r.visible, p.Key()) < 0 {
		r.visible = append(r.visible, p)
	}
	r.mu.Unlock()

	if state != StateUnauthenticated {
		err := r.api.Add(ctx, p.Key())
		if err == nil {
			return nil
		}
		r.logger.WarnContext(ctx, "failed to save item on server, keeping local copy",
			"item", p.Key().String(),
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.IncrementServerWriteFailure("add")
		}
	}
	if err := r.snapshots.put(ctx, p); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist saved item locally",
			"item", p.Key().String(),
			"error", err,
		)
	}
	return nil
}

// Unsave removes key from the visible set and the local store, and from the
// server when authenticated.
func (r *Reconciler) Unsave(ctx context.Context, key id.ItemKey) error {
	if !key.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid product type")
	}
	r.mu.Lock()
	state := r.state
	if i := indexOf(r.visible, key); i >= 0 {
		r.visible = slices.Delete(r.visible, i, i+1)
	}
	r.mu.Unlock()

	if err := r.snapshots.remove(ctx, key); err != nil {
		r.logger.ErrorContext(ctx, "failed to remove saved item locally",
			"item", key.String(),
			"error", err,
		)
	}
	if state == StateUnauthenticated {
		return nil
	}
	if err := r.api.Remove(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "failed to remove saved item on server",
			"item", key.String(),
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.IncrementServerWriteFailure("remove")
		}
	}
	return nil
}

func (r *Reconciler) loadSnapshots(ctx context.Context) []catalog.Product {
	local, err := r.snapshots.load(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to read local saved items", "error", err)
	}
	return dedupe(local)
}

func (r *Reconciler) countFallback(source string) {
	if r.metrics != nil {
		r.metrics.IncrementFallback(source)
	}
}

func snapshotOf(v saved.SavedItemView) catalog.Product {
	p := v.ItemData
	p.ID = v.ItemID
	p.Type = v.ItemType
	return p
}

func keysOf(products []catalog.Product) *id.KeySet {
	set := id.NewKeySet()
	for _, p := range products {
		set.Add(p.Key())
	}
	return set
}

func keysOfViews(items []saved.SavedItemView) *id.KeySet {
	set := id.NewKeySet()
	for _, item := range items {
		set.Add(item.Key())
	}
	return set
}

func indexOf(products []catalog.Product, key id.ItemKey) int {
	return slices.IndexFunc(products, func(p catalog.Product) bool {
		return p.Key() == key
	})
}

func dedupe(products []catalog.Product) []catalog.Product {
	seen := id.NewKeySet()
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if seen.Add(p.Key()) {
			out = append(out, p)
		}
	}
	return out
}
