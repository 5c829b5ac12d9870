package session

import (
	"context"
	"errors"
	"sync"

	"github.com/anupamar/intake/types"
)

// Snapshot is the advisory convenience copy of a session. The wizard never
// depends on it for correctness; it only lets a host restore an interrupted
// session, and it is cleared on every terminal state.
type Snapshot struct {
	ID             string             `json:"id"`
	Phase          types.Phase        `json:"phase"`
	CurrentField   string             `json:"current_field"`
	Record         types.FormRecord   `json:"record"`
	Attachments    []types.Attachment `json:"attachments,omitempty"`
	Transcript     []types.Turn       `json:"transcript,omitempty"`
	SubmitAttempts int                `json:"submit_attempts,omitempty"`
}

// Cache is the minimal key/value surface the snapshot store needs. The
// in-memory implementation suits tests and single-process hosts; a host can
// plug anything else in.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
}

type MemoryCache[S any] struct {
	mu sync.RWMutex
	m  map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}}
}

func (m *MemoryCache[S]) Set(_ context.Context, key string, val S) error {
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(_ context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

// SnapshotStore namespaces snapshots in a Cache by session id.
type SnapshotStore struct {
	cache Cache[Snapshot]
}

func NewSnapshotStore(cache Cache[Snapshot]) *SnapshotStore {
	return &SnapshotStore{cache: cache}
}

func NewMemorySnapshotStore() *SnapshotStore {
	return NewSnapshotStore(NewMemoryCache[Snapshot]())
}

func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.ID == "" {
		return errors.New("snapshot has no session id")
	}
	return s.cache.Set(ctx, "session:"+snap.ID, snap)
}

func (s *SnapshotStore) Load(ctx context.Context, id string) (Snapshot, bool, error) {
	return s.cache.Get(ctx, "session:"+id)
}

func (s *SnapshotStore) Clear(ctx context.Context, id string) error {
	return s.cache.Del(ctx, "session:"+id)
}
