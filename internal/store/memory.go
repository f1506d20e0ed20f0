// Package store holds the concrete persistence adapters the engines
// stay agnostic of: in-memory repositories, Redis-backed reputation and
// engagement stores, and the feed memoization cache.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kurral/feedengine/internal/domain"
)

// ChirpRepository yields candidate chirps with their current claims and
// fact-checks.
type ChirpRepository interface {
	Get(ctx context.Context, id string) (domain.Chirp, bool, error)
	ListCandidates(ctx context.Context) ([]domain.Chirp, error)
	Upsert(ctx context.Context, chirp domain.Chirp) error
	// Version changes whenever the candidate set changes; feed cache
	// entries are keyed by it.
	Version(ctx context.Context) (int64, error)
}

// UserRepository resolves users for ranking and config lookups.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, bool, error)
	Upsert(ctx context.Context, user domain.User) error
}

// EngagementLog accumulates the events the tuner folds over.
type EngagementLog interface {
	Append(ctx context.Context, ev domain.EngagementEvent) error
	History(ctx context.Context, viewerID string, limit int) ([]domain.EngagementEvent, error)
}

// MemoryStore is the in-process implementation of every repository,
// used by the one-shot CLI commands and as the test double everywhere.
type MemoryStore struct {
	mu      sync.RWMutex
	chirps  map[string]domain.Chirp
	users   map[string]domain.User
	scores  map[string]domain.KurralScore
	events  map[string][]domain.EngagementEvent
	version int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chirps: make(map[string]domain.Chirp),
		users:  make(map[string]domain.User),
		scores: make(map[string]domain.KurralScore),
		events: make(map[string][]domain.EngagementEvent),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Chirp, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chirp, ok := s.chirps[id]
	return chirp, ok, nil
}

// ListCandidates returns a snapshot copy sorted newest first, so
// concurrent rank passes never observe mid-write state.
func (s *MemoryStore) ListCandidates(ctx context.Context) ([]domain.Chirp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chirp, 0, len(s.chirps))
	for _, chirp := range s.chirps {
		out = append(out, chirp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, chirp domain.Chirp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chirps[chirp.ID] = chirp
	s.version++
	return nil
}

func (s *MemoryStore) Version(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

// UserGet implements UserRepository.Get under a distinct name so
// MemoryStore can satisfy both repositories; Users() adapts it.
func (s *MemoryStore) UserGet(ctx context.Context, id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok, nil
}

func (s *MemoryStore) UserUpsert(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Get(ctx context.Context, id string) (domain.User, bool, error) {
	return m.s.UserGet(ctx, id)
}

func (m memoryUsers) Upsert(ctx context.Context, user domain.User) error {
	return m.s.UserUpsert(ctx, user)
}

// LoadScore implements reputation.Store.
func (s *MemoryStore) LoadScore(ctx context.Context, authorID string) (domain.KurralScore, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[authorID]
	return score, ok, nil
}

// SaveScore implements reputation.Store.
func (s *MemoryStore) SaveScore(ctx context.Context, score domain.KurralScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.AuthorID] = score
	return nil
}

// Append implements EngagementLog.
func (s *MemoryStore) Append(ctx context.Context, ev domain.EngagementEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ViewerID] = append(s.events[ev.ViewerID], ev)
	return nil
}

// History implements EngagementLog, newest events last.
func (s *MemoryStore) History(ctx context.Context, viewerID string, limit int) ([]domain.EngagementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[viewerID]
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]domain.EngagementEvent, len(events))
	copy(out, events)
	return out, nil
}
