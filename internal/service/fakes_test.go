package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/parceltrack/parceltrack/internal/cache"
	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/payment"
	"github.com/parceltrack/parceltrack/internal/repository"
	"github.com/parceltrack/parceltrack/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCache struct {
	mu       sync.Mutex
	parcels  map[string]*model.Parcel
	negative map[string]bool
	versions map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		parcels:  map[string]*model.Parcel{},
		negative: map[string]bool{},
		versions: map[string]int64{},
	}
}

func (c *fakeCache) GetParcel(_ context.Context, id string) (*model.Parcel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parcels[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	cp := *p
	return &cp, nil
}

func (c *fakeCache) ParcelVersion(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *fakeCache) FillParcel(_ context.Context, p *model.Parcel, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[p.ID] != version {
		return false, nil
	}
	cp := *p
	c.parcels[p.ID] = &cp
	delete(c.negative, p.ID)
	return true, nil
}

func (c *fakeCache) DeleteParcel(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[id]++
	delete(c.parcels, id)
	delete(c.negative, id)
	return nil
}

func (c *fakeCache) IsNegativelyCached(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negative[id], nil
}

func (c *fakeCache) SetNegativeCache(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negative[id] = true
	return nil
}

func (c *fakeCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.parcels[id]
	return ok
}

// pausingParcelStore holds GetParcelByID after the read completes until
// release is closed, so writes can land between the read and the cache fill.
type pausingParcelStore struct {
	*memory.Repository
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingParcelStore(repo *memory.Repository) *pausingParcelStore {
	return &pausingParcelStore{
		Repository: repo,
		read:       make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (s *pausingParcelStore) GetParcelByID(ctx context.Context, id string) (*model.Parcel, error) {
	parcel, err := s.Repository.GetParcelByID(ctx, id)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return parcel, err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) PublishAsync(evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeGateway struct {
	secret string
	err    error
	calls  []int64
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64) (*payment.Intent, error) {
	g.calls = append(g.calls, amount)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Intent{ID: "pi_test", ClientSecret: g.secret, Amount: amount, Currency: "usd"}, nil
}

// racingUserStore never sees existing users, so the unique index is the only guard.
type racingUserStore struct {
	repository.UserStore
}

func (racingUserStore) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

// countingParcelStore counts reads that reach storage.
type countingParcelStore struct {
	repository.ParcelStore
	mu    sync.Mutex
	reads int
}

func (s *countingParcelStore) GetParcelByID(ctx context.Context, id string) (*model.Parcel, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.ParcelStore.GetParcelByID(ctx, id)
}

func (s *countingParcelStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
