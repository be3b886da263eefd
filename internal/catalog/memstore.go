package catalog

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Compile-time assertion: *MemStore satisfies Catalog.
var _ Catalog = (*MemStore)(nil)

// Latency is the artificial delay MemStore adds before each kind of
// operation, so loading states can be exercised without a backend.
type Latency struct {
	List   time.Duration
	Get    time.Duration
	Write  time.Duration // create and update
	Delete time.Duration
	Search time.Duration
}

// DefaultLatency mirrors the response times of the real API closely enough
// for manual UI testing.
var DefaultLatency = Latency{
	List:   300 * time.Millisecond,
	Get:    200 * time.Millisecond,
	Write:  300 * time.Millisecond,
	Delete: 200 * time.Millisecond,
	Search: 400 * time.Millisecond,
}

// MemStore implements Catalog with process-local slices.
// Each instance is independent; state is lost when the process exits.
type MemStore struct {
	mu         sync.Mutex
	users      []User
	items      []Item
	nextUserID int64
	nextItemID int64
	latency    Latency
}

// MemOption configures a MemStore.
type MemOption func(*MemStore)

// WithLatency replaces DefaultLatency.
func WithLatency(l Latency) MemOption {
	return func(m *MemStore) {
		m.latency = l
	}
}

// WithoutLatency disables the artificial delay. Tests use this.
func WithoutLatency() MemOption {
	return WithLatency(Latency{})
}

// WithSeed loads SeedUsers and SeedItems.
func WithSeed() MemOption {
	return WithData(SeedUsers, SeedItems)
}

// WithData loads the given rows. Id counters continue after the largest ids.
func WithData(users []User, items []Item) MemOption {
	return func(m *MemStore) {
		m.users = slices.Clone(users)
		m.items = slices.Clone(items)
		m.nextUserID = nextIDAfter(m.users, func(u User) int64 { return u.ID })
		m.nextItemID = nextIDAfter(m.items, func(it Item) int64 { return it.ID })
	}
}

// NewMemStore returns an empty MemStore with DefaultLatency unless
// options say otherwise.
func NewMemStore(opts ...MemOption) *MemStore {
	m := &MemStore{
		nextUserID: 1,
		nextItemID: 1,
		latency:    DefaultLatency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSeededMemStore is NewMemStore with WithSeed applied first.
func NewSeededMemStore(opts ...MemOption) *MemStore {
	return NewMemStore(append([]MemOption{WithSeed()}, opts...)...)
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListUsers returns a copy of all users in creation order.
func (m *MemStore) ListUsers(ctx context.Context) ([]User, error) {
	if err := wait(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users), nil
}

// GetUser returns the user with id, or ErrNotFound.
func (m *MemStore) GetUser(ctx context.Context, id int64) (*User, error) {
	if err := wait(ctx, m.latency.Get); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.userIndex(id)
	if i < 0 {
		return nil, userNotFound(id)
	}
	u := m.users[i]
	return &u, nil
}

// CreateUser appends a user with the next id.
func (m *MemStore) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	if err := wait(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := User{ID: m.nextUserID, Name: user.Name, Email: user.Email}
	m.nextUserID++
	m.users = append(m.users, u)
	return &u, nil
}

// UpdateUser applies patch to the user with id.
func (m *MemStore) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if err := wait(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.userIndex(id)
	if i < 0 {
		return nil, userNotFound(id)
	}
	m.users[i] = patch.Apply(m.users[i])
	u := m.users[i]
	return &u, nil
}

// DeleteUser removes the user and every item it owns. Deleting an unknown
// id is a no-op.
func (m *MemStore) DeleteUser(ctx context.Context, id int64) error {
	if err := wait(ctx, m.latency.Delete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = slices.DeleteFunc(m.users, func(u User) bool { return u.ID == id })
	m.items = slices.DeleteFunc(m.items, func(it Item) bool { return it.OwnerID == id })
	return nil
}

// ListItems returns the items passing owner, in creation order.
func (m *MemStore) ListItems(ctx context.Context, owner OwnerFilter) ([]Item, error) {
	if err := wait(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterItems(m.items, owner.Includes), nil
}

// GetItem returns the item with id, or ErrNotFound.
func (m *MemStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	if err := wait(ctx, m.latency.Get); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.itemIndex(id)
	if i < 0 {
		return nil, itemNotFound(id)
	}
	it := m.items[i]
	return &it, nil
}

// CreateItem appends an item owned by ownerID. The owner must exist.
func (m *MemStore) CreateItem(ctx context.Context, ownerID int64, item NewItem) (*Item, error) {
	if err := wait(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userIndex(ownerID) < 0 {
		return nil, userNotFound(ownerID)
	}
	it := Item{
		ID:          m.nextItemID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     ownerID,
	}
	m.nextItemID++
	m.items = append(m.items, it)
	return &it, nil
}

// UpdateItem applies patch when ownerID owns the item; otherwise it
// returns ErrForbidden and changes nothing. A patch that moves the item to
// another owner requires that owner to exist.
func (m *MemStore) UpdateItem(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*Item, error) {
	if err := wait(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.itemIndex(itemID)
	if i < 0 {
		return nil, itemNotFound(itemID)
	}
	if m.items[i].OwnerID != ownerID {
		return nil, notOwner(itemID, ownerID)
	}
	if patch.OwnerID != nil && m.userIndex(*patch.OwnerID) < 0 {
		return nil, userNotFound(*patch.OwnerID)
	}
	m.items[i] = patch.Apply(m.items[i])
	it := m.items[i]
	return &it, nil
}

// DeleteItem removes the item with id. Unknown ids are ignored.
func (m *MemStore) DeleteItem(ctx context.Context, id int64) error {
	if err := wait(ctx, m.latency.Delete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.DeleteFunc(m.items, func(it Item) bool { return it.ID == id })
	return nil
}

// SearchItems returns the items matching text (see Matches).
func (m *MemStore) SearchItems(ctx context.Context, text string) ([]Item, error) {
	if err := wait(ctx, m.latency.Search); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterItems(m.items, func(it Item) bool { return Matches(it, text) }), nil
}

func (m *MemStore) userIndex(id int64) int {
	return slices.IndexFunc(m.users, func(u User) bool { return u.ID == id })
}

func (m *MemStore) itemIndex(id int64) int {
	return slices.IndexFunc(m.items, func(it Item) bool { return it.ID == id })
}
