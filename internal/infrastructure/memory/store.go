// Package memory implements the interaction log in process memory. It
// backs STORE_DRIVER=memory (demo/dev runs without Postgres) and the unit
// tests; it honors the same append-only contract as the postgres driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
)

type Store struct {
	mu  sync.RWMutex
	log []domain.Interaction

	// secondary indexes into log, in append order
	byUser    map[string][]int
	byProduct map[int64][]int

	now func() time.Time
}

func New() *Store {
	return &Store{
		byUser:    make(map[string][]int),
		byProduct: make(map[int64][]int),
		now:       time.Now,
	}
}

// NewWithClock pins the timestamp source, for deterministic tests.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) Record(ctx context.Context, userID string, productID int64, typ domain.InteractionType) (domain.Interaction, error) {
	in := domain.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      typ,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamp assigned under the lock so log order and timestamp order
	// never diverge.
	in.RecordedAt = s.now().UTC()
	idx := len(s.log)
	s.log = append(s.log, in)
	s.byUser[userID] = append(s.byUser[userID], idx)
	s.byProduct[productID] = append(s.byProduct[productID], idx)
	return in, nil
}

func (s *Store) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(s.byUser[userID], limit), nil
}

func (s *Store) RecentByProduct(ctx context.Context, productID int64, limit int) ([]domain.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(s.byProduct[productID], limit), nil
}

// newestFirst walks an index backwards; indexes are append-ordered so the
// tail is the most recent entry.
func (s *Store) newestFirst(idx []int, limit int) []domain.Interaction {
	n := len(idx)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]domain.Interaction, 0, n)
	for i := len(idx) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.log[idx[i]])
	}
	return out
}

func (s *Store) CoOccurrenceCounts(ctx context.Context, productID int64, window time.Duration) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().UTC().Add(-window)

	// Users who touched the subject inside the window.
	users := make(map[string]struct{})
	for _, i := range s.byProduct[productID] {
		if in := s.log[i]; !in.RecordedAt.Before(cutoff) {
			users[in.UserID] = struct{}{}
		}
	}

	// For each such user, count each other product once.
	counts := make(map[int64]int64)
	for u := range users {
		seen := make(map[int64]struct{})
		for _, i := range s.byUser[u] {
			in := s.log[i]
			if in.ProductID == productID || in.RecordedAt.Before(cutoff) {
				continue
			}
			if _, dup := seen[in.ProductID]; dup {
				continue
			}
			seen[in.ProductID] = struct{}{}
			counts[in.ProductID]++
		}
	}
	return counts, nil
}

func (s *Store) PopularityCounts(ctx context.Context) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int64, len(s.byProduct))
	for id, idx := range s.byProduct {
		counts[id] = int64(len(idx))
	}
	return counts, nil
}

// Len reports the number of recorded interactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}
