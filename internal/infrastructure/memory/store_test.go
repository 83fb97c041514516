package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock hands out strictly increasing timestamps.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestRecord_AssignsServerTimestampNewestFirst(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s := memory.NewWithClock(tickingClock(start))

	for _, pid := range []int64{1, 2, 3} {
		_, err := s.Record(ctx, "u1", pid, domain.InteractionView)
		require.NoError(t, err)
	}

	got, err := s.RecentByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(3), got[0].ProductID)
	assert.Equal(t, int64(1), got[2].ProductID)
	assert.True(t, got[0].RecordedAt.After(got[1].RecordedAt))
	assert.True(t, got[1].RecordedAt.After(got[2].RecordedAt))
}

func TestRecentByUser_Limit(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for i := int64(1); i <= 5; i++ {
		_, err := s.Record(ctx, "u1", i, domain.InteractionView)
		require.NoError(t, err)
	}

	got, err := s.RecentByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ProductID)
	assert.Equal(t, int64(4), got[1].ProductID)
}

func TestRecentByProduct(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, _ = s.Record(ctx, "u1", 7, domain.InteractionView)
	_, _ = s.Record(ctx, "u2", 7, domain.InteractionCart)
	_, _ = s.Record(ctx, "u1", 8, domain.InteractionView)

	got, err := s.RecentByProduct(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].UserID)
}

func TestCoOccurrenceCounts_DistinctUsersOncePerProduct(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	// u1 and u2 both touch product 1; u1 touches product 2 twice (counts
	// once), u2 touches product 2 once. u3 never touches product 1.
	_, _ = s.Record(ctx, "u1", 1, domain.InteractionView)
	_, _ = s.Record(ctx, "u1", 2, domain.InteractionView)
	_, _ = s.Record(ctx, "u1", 2, domain.InteractionCart)
	_, _ = s.Record(ctx, "u2", 1, domain.InteractionPurchase)
	_, _ = s.Record(ctx, "u2", 2, domain.InteractionView)
	_, _ = s.Record(ctx, "u3", 2, domain.InteractionView)

	counts, err := s.CoOccurrenceCounts(ctx, 1, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{2: 2}, counts)
}

func TestCoOccurrenceCounts_WindowExcludesOldEvents(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s := memory.NewWithClock(tickingClock(start))

	_, _ = s.Record(ctx, "u1", 1, domain.InteractionView)
	_, _ = s.Record(ctx, "u1", 2, domain.InteractionView)

	// Window of zero puts every event before the cutoff.
	counts, err := s.CoOccurrenceCounts(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPopularityCounts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, _ = s.Record(ctx, "u1", 1, domain.InteractionView)
	_, _ = s.Record(ctx, "u2", 1, domain.InteractionView)
	_, _ = s.Record(ctx, "u1", 9, domain.InteractionPurchase)

	counts, err := s.PopularityCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 2, 9: 1}, counts)
}

func TestRecord_ConcurrentAppendsLoseNothing(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.Record(ctx, "u1", int64(w+1), domain.InteractionView)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, s.Len())

	got, err := s.RecentByUser(ctx, "u1", workers*perWorker)
	require.NoError(t, err)
	assert.Len(t, got, workers*perWorker)
}
