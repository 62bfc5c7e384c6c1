package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
)

// callLog records cross-collaborator call order for sequencing
// assertions.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeStore scripts store behavior per test through function fields.
// Unscripted endpoints succeed with zero-value responses.
type fakeStore struct {
	log *callLog

	createMany           func(ctx context.Context, list []contacts.Contact, opts CreateOptions) (CreationOutcome, error)
	updateOne            func(ctx context.Context, c contacts.Contact) (UpdateResult, error)
	updateUnencryptedOne func(ctx context.Context, c contacts.Contact) (UpdateResult, error)
	removeMany           func(ctx context.Context, ids []contacts.ID) (RemoveOutcome, error)
	removeAll            func(ctx context.Context) error

	mu                     sync.Mutex
	createManyCalls        int
	updateOneCalls         int
	updateUnencryptedCalls int
	removeManyCalls        int
	removeAllCalls         int
}

func (s *fakeStore) count(field *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*field++
}

func (s *fakeStore) CreateMany(ctx context.Context, list []contacts.Contact, opts CreateOptions) (CreationOutcome, error) {
	s.count(&s.createManyCalls)
	if s.log != nil {
		s.log.add("store.create_many")
	}
	if s.createMany != nil {
		return s.createMany(ctx, list, opts)
	}
	return CreationOutcome{}, nil
}

func (s *fakeStore) UpdateOne(ctx context.Context, c contacts.Contact) (UpdateResult, error) {
	s.count(&s.updateOneCalls)
	if s.updateOne != nil {
		return s.updateOne(ctx, c)
	}
	return UpdateResult{Contact: c}, nil
}

func (s *fakeStore) UpdateUnencryptedOne(ctx context.Context, c contacts.Contact) (UpdateResult, error) {
	s.count(&s.updateUnencryptedCalls)
	if s.updateUnencryptedOne != nil {
		return s.updateUnencryptedOne(ctx, c)
	}
	return UpdateResult{Contact: c}, nil
}

func (s *fakeStore) RemoveMany(ctx context.Context, ids []contacts.ID) (RemoveOutcome, error) {
	s.count(&s.removeManyCalls)
	if s.log != nil {
		s.log.add("store.remove_many")
	}
	if s.removeMany != nil {
		return s.removeMany(ctx, ids)
	}
	return RemoveOutcome{Removed: ids}, nil
}

func (s *fakeStore) RemoveAll(ctx context.Context) error {
	s.count(&s.removeAllCalls)
	if s.log != nil {
		s.log.add("store.remove_all")
	}
	if s.removeAll != nil {
		return s.removeAll(ctx)
	}
	return nil
}

type fakeEncryptor struct {
	process func(ctx context.Context, list []contacts.Contact) ([]contacts.Contact, error)
}

func (f fakeEncryptor) Process(ctx context.Context, list []contacts.Contact) ([]contacts.Contact, error) {
	if f.process != nil {
		return f.process(ctx, list)
	}
	return list, nil
}

// mockSyncer uses testify's mock so tests can assert exact call
// counts against the sync hook.
type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) Sync(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type recordingBus struct {
	mu     sync.Mutex
	events []Event
}

func (b *recordingBus) Emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

type fakeLoader struct {
	mu          sync.Mutex
	activations []LoaderConfig
	deactivated int

	// onActivate simulates the user interacting with the surface as
	// soon as it appears, such as pressing cancel immediately.
	onActivate func(LoaderConfig)
}

func (l *fakeLoader) Activate(cfg LoaderConfig) {
	l.mu.Lock()
	l.activations = append(l.activations, cfg)
	l.mu.Unlock()
	if l.onActivate != nil {
		l.onActivate(cfg)
	}
}

func (l *fakeLoader) Deactivate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deactivated++
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *fakeNotifier) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeConfirmer struct {
	accept bool

	mu       sync.Mutex
	calls    int
	last     Confirmation
	declined bool
}

func (f *fakeConfirmer) Confirm(ctx context.Context, c Confirmation) error {
	f.mu.Lock()
	f.calls++
	f.last = c
	f.mu.Unlock()

	if f.accept {
		if c.OnConfirm != nil {
			return c.OnConfirm(ctx)
		}
		return nil
	}
	if c.OnCancel != nil {
		c.OnCancel()
	}
	f.mu.Lock()
	f.declined = true
	f.mu.Unlock()
	return nil
}

type fakeTracker struct {
	mu       sync.Mutex
	started  []string
	released int
}

func (f *fakeTracker) Track(name string) func() {
	f.mu.Lock()
	f.started = append(f.started, name)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.released++
	}
}

type fakeNavigator struct {
	mu    sync.Mutex
	shown int
}

func (f *fakeNavigator) ShowContactList() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown++
}

type fakeCache struct {
	name     string
	log      *callLog
	failWith error

	mu      sync.Mutex
	evicted [][]contacts.ID
	cleared int
}

func (c *fakeCache) Evict(ids []contacts.ID) error {
	c.mu.Lock()
	c.evicted = append(c.evicted, ids)
	c.mu.Unlock()
	if c.log != nil {
		c.log.add("cache.evict:" + c.name)
	}
	return c.failWith
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	c.cleared++
	c.mu.Unlock()
	if c.log != nil {
		c.log.add("cache.clear:" + c.name)
	}
	return c.failWith
}

type progressRecorder struct {
	mu     sync.Mutex
	values []float64
}

func (p *progressRecorder) record(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, v)
}

func (p *progressRecorder) snapshot() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.values...)
}

// fixture bundles an engine with all its fake collaborators.
type fixture struct {
	store     *fakeStore
	encryptor Encryptor
	bus       *recordingBus
	syncer    *mockSyncer
	loader    *fakeLoader
	notifier  *fakeNotifier
	tracker   *fakeTracker
	confirmer *fakeConfirmer
	navigator *fakeNavigator
	snapshots *fakeCache
	emails    *fakeCache
	progress  *progressRecorder
	log       *callLog
}

func newFixture() *fixture {
	log := &callLog{}
	return &fixture{
		store:     &fakeStore{log: log},
		bus:       &recordingBus{},
		syncer:    &mockSyncer{},
		loader:    &fakeLoader{},
		notifier:  &fakeNotifier{},
		tracker:   &fakeTracker{},
		confirmer: &fakeConfirmer{accept: true},
		navigator: &fakeNavigator{},
		snapshots: &fakeCache{name: "snapshots", log: log},
		emails:    &fakeCache{name: "emails", log: log},
		progress:  &progressRecorder{},
		log:       log,
	}
}

func (f *fixture) build(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{
		Store:             f.store,
		Encryptor:         f.encryptor,
		Syncer:            f.syncer,
		Notifier:          f.notifier,
		Confirmer:         f.confirmer,
		Loader:            f.loader,
		Bus:               f.bus,
		Tracker:           f.tracker,
		Navigator:         f.navigator,
		Caches:            []ContactCache{f.snapshots, f.emails},
		ProgressListeners: []ProgressFunc{f.progress.record},
	})
	require.NoError(t, err)
	return e
}
