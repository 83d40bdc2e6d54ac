package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	catalog "beatstore/internal/catalog/models"
	catalogstore "beatstore/internal/catalog/store"
	"beatstore/internal/localstore"
	reconcilemetrics "beatstore/internal/reconcile/metrics"
	saved "beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/sentinel"
)

// fakeServer is an in-memory saved-items API backed by a catalog.
type fakeServer struct {
	mu       sync.Mutex
	catalog  *catalogstore.InMemoryStore
	order    []id.ItemKey
	failAdd  map[id.ItemKey]error
	listErrs []error
	addCalls map[id.ItemKey]int
	removed  []id.ItemKey
	lists    int
	hold     *listHold
}

// listHold parks the next List call until release is closed.
type listHold struct {
	entered chan struct{}
	release chan struct{}
}

func (f *fakeServer) holdNextList() *listHold {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = &listHold{entered: make(chan struct{}), release: make(chan struct{})}
	return f.hold
}

func newFakeServer(c *catalogstore.InMemoryStore) *fakeServer {
	return &fakeServer{
		catalog:  c,
		failAdd:  make(map[id.ItemKey]error),
		addCalls: make(map[id.ItemKey]int),
	}
}

func (f *fakeServer) List(ctx context.Context) ([]saved.SavedItemView, error) {
	f.mu.Lock()
	f.lists++
	if hold := f.hold; hold != nil {
		f.hold = nil
		f.mu.Unlock()
		close(hold.entered)
		<-hold.release
		f.mu.Lock()
	}
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		f.mu.Unlock()
		return nil, err
	}
	keys := append([]id.ItemKey(nil), f.order...)
	f.mu.Unlock()

	out := make([]saved.SavedItemView, 0, len(keys))
	for _, key := range keys {
		products, err := f.catalog.ByIDs(ctx, key.Type, []id.ProductID{key.ID})
		if err != nil || len(products) == 0 {
			continue
		}
		out = append(out, saved.SavedItemView{ItemID: key.ID, ItemType: key.Type, ItemData: products[0]})
	}
	return out, nil
}

func (f *fakeServer) Add(_ context.Context, key id.ItemKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls[key]++
	if err := f.failAdd[key]; err != nil {
		return err
	}
	for _, existing := range f.order {
		if existing == key {
			return nil
		}
	}
	f.order = append(f.order, key)
	return nil
}

func (f *fakeServer) Remove(_ context.Context, key id.ItemKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	for i, existing := range f.order {
		if existing == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeServer) seed(keys ...id.ItemKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, keys...)
}

func (f *fakeServer) keys() []id.ItemKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]id.ItemKey(nil), f.order...)
}

func (f *fakeServer) totalAdds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.addCalls {
		n += c
	}
	return n
}

type ReconcilerSuite struct {
	suite.Suite
	ctx     context.Context
	catalog *catalogstore.InMemoryStore
	server  *fakeServer
	local   *localstore.InMemoryStore
	metrics *reconcilemetrics.Metrics
	r       *Reconciler
	userID  id.UserID
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func product(pid id.ProductID, t id.ProductType, title string) catalog.Product {
	return catalog.Product{
		ID:       pid,
		Type:     t,
		Title:    title,
		Price:    decimal.RequireFromString("19.99"),
		Variants: []catalog.Variant{{Name: "mp3 lease", Stock: 5}},
	}
}

func beatKey(pid id.ProductID) id.ItemKey {
	return id.NewItemKey(pid, id.ProductTypeBeat)
}

func keysOfProducts(products []catalog.Product) []id.ItemKey {
	out := make([]id.ItemKey, len(products))
	for i, p := range products {
		out[i] = p.Key()
	}
	return out
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctx = context.Background()
	s.catalog = catalogstore.NewInMemory()
	for _, pid := range []id.ProductID{1, 2, 3, 5, 7, 9} {
		s.Require().NoError(s.catalog.Upsert(s.ctx, product(pid, id.ProductTypeBeat, "Beat "+pid.String())))
	}
	s.Require().NoError(s.catalog.Upsert(s.ctx, product(5, id.ProductTypeSoundKit, "Kit 5")))
	s.server = newFakeServer(s.catalog)
	s.local = localstore.NewInMemory()
	s.metrics = reconcilemetrics.New(prometheus.NewRegistry())
	s.userID = id.UserID(uuid.New())

	var err error
	s.r, err = New(s.server, s.catalog, s.local, WithMetrics(s.metrics), WithConcurrency(2))
	s.Require().NoError(err)
}

func (s *ReconcilerSuite) saveAnonymously(products ...catalog.Product) {
	for _, p := range products {
		s.Require().NoError(s.r.Save(s.ctx, p))
	}
}

func (s *ReconcilerSuite) TestNewValidation() {
	_, err := New(nil, s.catalog, s.local)
	s.Error(err)
	_, err = New(s.server, nil, s.local)
	s.Error(err)
	_, err = New(s.server, s.catalog, nil)
	s.Error(err)
}

func (s *ReconcilerSuite) TestAnonymousSaveAndUnsave() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"), product(5, id.ProductTypeSoundKit, "Kit 5"))
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))

	s.Equal([]id.ItemKey{beatKey(5), id.NewItemKey(5, id.ProductTypeSoundKit)}, keysOfProducts(s.r.Items()))

	beats, err := localstore.LoadJSON[[]catalog.Product](s.ctx, s.local, localstore.KeySavedBeats)
	s.Require().NoError(err)
	s.Len(beats, 1)
	kits, err := localstore.LoadJSON[[]catalog.Product](s.ctx, s.local, localstore.KeySavedSoundKits)
	s.Require().NoError(err)
	s.Len(kits, 1)

	s.Require().NoError(s.r.Unsave(s.ctx, beatKey(5)))
	s.Require().NoError(s.r.Unsave(s.ctx, beatKey(5)))
	s.False(s.r.IsSaved(beatKey(5)))
	s.True(s.r.IsSaved(id.NewItemKey(5, id.ProductTypeSoundKit)))

	s.Zero(s.server.totalAdds())
	s.Empty(s.server.removed)
	s.Equal(StateUnauthenticated, s.r.State())
}

func (s *ReconcilerSuite) TestSaveRejectsInvalidType() {
	err := s.r.Save(s.ctx, product(1, "vinyl", "x"))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Empty(s.r.Items())
}

func (s *ReconcilerSuite) TestLoadRestoresLocalSnapshots() {
	s.saveAnonymously(product(1, id.ProductTypeBeat, "Beat 1"))

	fresh, err := New(s.server, s.catalog, s.local)
	s.Require().NoError(err)
	fresh.Load(s.ctx)

	s.Equal([]id.ItemKey{beatKey(1)}, keysOfProducts(fresh.Items()))
}

func (s *ReconcilerSuite) TestSignInMergesLocalAndServer() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"), product(7, id.ProductTypeBeat, "Beat 7"))
	s.server.seed(beatKey(7), beatKey(9))

	result := s.r.SignIn(s.ctx, s.userID)

	s.Equal(outcomeSynced, result.Outcome)
	s.Equal(1, result.Synced)
	s.Zero(result.Failed)
	s.Equal(1, s.server.addCalls[beatKey(5)])
	s.Zero(s.server.addCalls[beatKey(7)])
	s.Equal([]id.ItemKey{beatKey(7), beatKey(9), beatKey(5)}, s.server.keys())
	s.Equal([]id.ItemKey{beatKey(7), beatKey(9), beatKey(5)}, keysOfProducts(s.r.Items()))
	s.Equal(StateAuthenticatedSynced, s.r.State())
	s.Equal(2, s.server.lists)
}

func (s *ReconcilerSuite) TestNoRefetchWhenNothingSynced() {
	s.saveAnonymously(product(7, id.ProductTypeBeat, "Beat 7"))
	s.server.seed(beatKey(7))

	result := s.r.SignIn(s.ctx, s.userID)

	s.Zero(result.Synced)
	s.Equal(1, s.server.lists)
	s.Equal([]id.ItemKey{beatKey(7)}, keysOfProducts(s.r.Items()))
}

func (s *ReconcilerSuite) TestReconcileIsIdempotent() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.server.seed(beatKey(9))
	s.r.SignIn(s.ctx, s.userID)
	before := s.r.Items()
	listsBefore := s.server.lists

	again := s.r.Reconcile(s.ctx)
	signInAgain := s.r.SignIn(s.ctx, s.userID)

	s.Equal(outcomeSkipped, again.Outcome)
	s.Equal(outcomeSkipped, signInAgain.Outcome)
	s.Equal(before, s.r.Items())
	s.Equal(1, s.server.totalAdds())
	s.Equal(listsBefore, s.server.lists)
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.ReconcilePasses.WithLabelValues(outcomeSkipped)))
}

func (s *ReconcilerSuite) TestPartialSyncFailure() {
	s.saveAnonymously(
		product(1, id.ProductTypeBeat, "Beat 1"),
		product(2, id.ProductTypeBeat, "Local Beat 2"),
		product(3, id.ProductTypeBeat, "Beat 3"),
	)
	s.server.failAdd[beatKey(2)] = errors.New("503 from api")

	result := s.r.SignIn(s.ctx, s.userID)

	s.Equal(2, result.Synced)
	s.Equal(1, result.Failed)
	s.ElementsMatch([]id.ItemKey{beatKey(1), beatKey(3)}, s.server.keys())
	s.ElementsMatch([]id.ItemKey{beatKey(1), beatKey(2), beatKey(3)}, keysOfProducts(s.r.Items()))

	// The failed item shows current catalog detail, not the stale snapshot.
	items := s.r.Items()
	s.Equal("Beat 2", items[len(items)-1].Title)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ReconcileSyncFailures))

	s.Run("next trigger retries the failed id", func() {
		delete(s.server.failAdd, beatKey(2))
		retry := s.r.Reconcile(s.ctx)

		s.Equal(outcomeSynced, retry.Outcome)
		s.Equal(1, retry.Synced)
		s.ElementsMatch([]id.ItemKey{beatKey(1), beatKey(2), beatKey(3)}, s.server.keys())
	})
}

func (s *ReconcilerSuite) TestUnknownProductFallsBackToSnapshot() {
	ghost := product(404, id.ProductTypeBeat, "Deleted Beat")
	s.saveAnonymously(ghost)
	s.server.failAdd[beatKey(404)] = errors.New("unknown product")

	s.r.SignIn(s.ctx, s.userID)

	items := s.r.Items()
	s.Require().Len(items, 1)
	s.Equal("Deleted Beat", items[0].Title)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ReconcileFallbacks.WithLabelValues(fallbackSnapshot)))
}

func (s *ReconcilerSuite) TestServerListFailureKeepsLocalAuthoritative() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"), product(7, id.ProductTypeBeat, "Beat 7"))
	s.server.seed(beatKey(9))
	s.server.listErrs = []error{sentinel.ErrUnavailable}

	result := s.r.SignIn(s.ctx, s.userID)

	s.Equal(outcomeFallback, result.Outcome)
	s.Equal([]id.ItemKey{beatKey(5), beatKey(7)}, keysOfProducts(s.r.Items()))
	s.Zero(s.server.totalAdds())
	s.Equal(StateAuthenticatedPending, s.r.State())

	s.Run("next trigger completes the merge", func() {
		retry := s.r.Reconcile(s.ctx)

		s.Equal(outcomeSynced, retry.Outcome)
		s.Equal(StateAuthenticatedSynced, s.r.State())
		s.ElementsMatch([]id.ItemKey{beatKey(5), beatKey(7), beatKey(9)}, keysOfProducts(s.r.Items()))
	})
}

func (s *ReconcilerSuite) TestUnauthorizedFallsBackToLocal() {
	s.saveAnonymously(product(3, id.ProductTypeBeat, "Beat 3"))
	s.server.listErrs = []error{sentinel.ErrUnauthorized}

	result := s.r.SignIn(s.ctx, s.userID)

	s.Equal(outcomeFallback, result.Outcome)
	s.Equal([]id.ItemKey{beatKey(3)}, keysOfProducts(s.r.Items()))
}

func (s *ReconcilerSuite) TestConcurrentTriggersSyncOnce() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"), product(7, id.ProductTypeBeat, "Beat 7"))
	s.r.SignIn(s.ctx, s.userID)

	s.Require().NoError(s.r.snapshots.put(s.ctx, product(1, id.ProductTypeBeat, "Beat 1")))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.r.Reconcile(s.ctx)
		}()
	}
	wg.Wait()

	s.Equal(1, s.server.addCalls[beatKey(1)])
	s.Equal(1, s.server.addCalls[beatKey(5)])
	s.Len(s.r.Items(), 3)
}

func (s *ReconcilerSuite) TestAuthenticatedSave() {
	s.r.SignIn(s.ctx, s.userID)

	s.Run("server save", func() {
		s.Require().NoError(s.r.Save(s.ctx, product(9, id.ProductTypeBeat, "Beat 9")))

		s.Equal([]id.ItemKey{beatKey(9)}, s.server.keys())
		s.True(s.r.IsSaved(beatKey(9)))
		_, err := s.local.Get(s.ctx, localstore.KeySavedBeats)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("failed server save is kept locally and retried", func() {
		s.server.failAdd[beatKey(3)] = sentinel.ErrUnavailable
		s.Require().NoError(s.r.Save(s.ctx, product(3, id.ProductTypeBeat, "Beat 3")))

		s.True(s.r.IsSaved(beatKey(3)))
		beats, err := localstore.LoadJSON[[]catalog.Product](s.ctx, s.local, localstore.KeySavedBeats)
		s.Require().NoError(err)
		s.Equal([]id.ItemKey{beatKey(3)}, keysOfProducts(beats))

		delete(s.server.failAdd, beatKey(3))
		result := s.r.Reconcile(s.ctx)
		s.Equal(1, result.Synced)
		s.Contains(s.server.keys(), beatKey(3))
	})
}

func (s *ReconcilerSuite) TestAuthenticatedUnsave() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.r.SignIn(s.ctx, s.userID)

	s.Require().NoError(s.r.Unsave(s.ctx, beatKey(5)))

	s.False(s.r.IsSaved(beatKey(5)))
	s.Empty(s.server.keys())
	s.Equal([]id.ItemKey{beatKey(5)}, s.server.removed)
	beats, err := localstore.LoadJSON[[]catalog.Product](s.ctx, s.local, localstore.KeySavedBeats)
	s.Require().NoError(err)
	s.Empty(beats)

	result := s.r.Reconcile(s.ctx)
	s.Equal(outcomeSkipped, result.Outcome)
	s.False(s.r.IsSaved(beatKey(5)))
}

func (s *ReconcilerSuite) TestSignOutDoesNotReconcile() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.server.seed(beatKey(9))
	s.r.SignIn(s.ctx, s.userID)
	adds := s.server.totalAdds()
	lists := s.server.lists

	s.r.SignOut(s.ctx)

	s.Equal(StateUnauthenticated, s.r.State())
	s.Equal([]id.ItemKey{beatKey(5)}, keysOfProducts(s.r.Items()))
	s.Equal(adds, s.server.totalAdds())
	s.Equal(lists, s.server.lists)
	s.Equal(outcomeSkipped, s.r.Reconcile(s.ctx).Outcome)
}

func (s *ReconcilerSuite) TestSignInAsAnotherUserRunsFreshPass() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.r.SignIn(s.ctx, s.userID)

	other := s.r.SignIn(s.ctx, id.UserID(uuid.New()))

	s.Equal(outcomeSynced, other.Outcome)
	s.Equal(3, s.server.lists)
	s.Equal(1, s.server.addCalls[beatKey(5)])
}

func (s *ReconcilerSuite) TestSignInAgainWhileOldPassRunsMergesServerItems() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.server.seed(beatKey(7), beatKey(9))
	hold := s.server.holdNextList()

	first := make(chan PassResult, 1)
	go func() {
		first <- s.r.SignIn(s.ctx, s.userID)
	}()
	<-hold.entered

	s.r.SignOut(s.ctx)
	second := s.r.SignIn(s.ctx, s.userID)
	close(hold.release)
	stale := <-first

	s.Equal(outcomeSynced, second.Outcome)
	s.Equal(outcomeSuperseded, stale.Outcome)
	s.Equal(StateAuthenticatedSynced, s.r.State())
	s.Equal([]id.ItemKey{beatKey(7), beatKey(9), beatKey(5)}, keysOfProducts(s.r.Items()))
	s.Equal(1, s.server.addCalls[beatKey(5)])
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ReconcilePasses.WithLabelValues(outcomeSuperseded)))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ReconcilePasses.WithLabelValues(outcomeSynced)))
}

func (s *ReconcilerSuite) TestSignOutDuringPassKeepsLocalItems() {
	s.saveAnonymously(product(5, id.ProductTypeBeat, "Beat 5"))
	s.server.seed(beatKey(7), beatKey(9))
	hold := s.server.holdNextList()

	done := make(chan PassResult, 1)
	go func() {
		done <- s.r.SignIn(s.ctx, s.userID)
	}()
	<-hold.entered

	s.r.SignOut(s.ctx)
	close(hold.release)
	result := <-done

	s.Equal(outcomeSuperseded, result.Outcome)
	s.Equal(StateUnauthenticated, s.r.State())
	s.Equal([]id.ItemKey{beatKey(5)}, keysOfProducts(s.r.Items()))
	s.Equal([]id.ItemKey{beatKey(7), beatKey(9)}, s.server.keys())
	s.Zero(s.server.totalAdds())
	s.Zero(testutil.ToFloat64(s.metrics.ReconcilePasses.WithLabelValues(outcomeSynced)))
}
