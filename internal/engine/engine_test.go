package engine_test

import (
	"testing"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/chunwon/market/services/recommendation-service/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProducts = []domain.Product{
	{ID: 1, Name: "텀블러", Price: 3000, CategoryID: "주방"},
	{ID: 2, Name: "주방장갑", Price: 3000, CategoryID: "주방"},
	{ID: 3, Name: "청소포", Price: 2000, CategoryID: "청소"},
	{ID: 4, Name: "형광펜", Price: 1000, CategoryID: "문구"},
	{ID: 5, Name: "무드등", Price: 5000, CategoryID: "인테리어"},
}

func at(now time.Time, ago time.Duration) time.Time { return now.Add(-ago) }

func TestPersonalized_SharedCategoryRanksFirst(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	history := []domain.Interaction{
		{UserID: "u1", ProductID: 1, Type: domain.InteractionPurchase, RecordedAt: at(now, time.Hour)},
		{UserID: "u1", ProductID: 2, Type: domain.InteractionView, RecordedAt: at(now, 30*time.Minute)},
	}

	var p engine.Params
	recs := p.Personalized(now, history, testProducts, nil, 5)
	require.Len(t, recs, 5)

	// Both 주방 products must outrank every unrelated category.
	assert.Equal(t, "주방", recs[0].CategoryID)
	assert.Equal(t, "주방", recs[1].CategoryID)
	// Equal affinity ties break by ascending productId.
	assert.Equal(t, int64(1), recs[0].ProductID)
	assert.Equal(t, int64(2), recs[1].ProductID)

	// The dominant signal for 주방 is the purchase.
	assert.Contains(t, recs[0].Reason, "purchases")
	assert.Contains(t, recs[0].Reason, "주방")
}

func TestPersonalized_Deterministic(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	history := []domain.Interaction{
		{UserID: "u1", ProductID: 3, Type: domain.InteractionCart, RecordedAt: at(now, 2*time.Hour)},
		{UserID: "u1", ProductID: 4, Type: domain.InteractionLike, RecordedAt: at(now, 3*time.Hour)},
	}
	pop := map[int64]int64{1: 5, 2: 3, 3: 8, 4: 1, 5: 2}

	var p engine.Params
	a := p.Personalized(now, history, testProducts, pop, 10)
	b := p.Personalized(now, history, testProducts, pop, 10)
	assert.Equal(t, a, b)
}

func TestPersonalized_SortedAndTruncated(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	history := []domain.Interaction{
		{UserID: "u1", ProductID: 5, Type: domain.InteractionPurchase, RecordedAt: at(now, time.Hour)},
	}

	var p engine.Params
	recs := p.Personalized(now, history, testProducts, nil, 3)
	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Score == recs[i].Score {
			assert.Less(t, recs[i-1].ProductID, recs[i].ProductID)
		} else {
			assert.Greater(t, recs[i-1].Score, recs[i].Score)
		}
	}
}

func TestPersonalized_RecencyDecayFavorsFreshSignal(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	// An old purchase in 청소 vs a fresh purchase in 문구: with a 14-day
	// half-life the 90-day-old signal has decayed well below the fresh one.
	history := []domain.Interaction{
		{UserID: "u1", ProductID: 3, Type: domain.InteractionPurchase, RecordedAt: at(now, 90*24*time.Hour)},
		{UserID: "u1", ProductID: 4, Type: domain.InteractionPurchase, RecordedAt: at(now, time.Hour)},
	}

	var p engine.Params
	recs := p.Personalized(now, history, testProducts, nil, 5)
	require.NotEmpty(t, recs)
	assert.Equal(t, "문구", recs[0].CategoryID)
}

func TestPersonalized_RepeatedInteractionsAmplifyNotReorder(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	once := []domain.Interaction{
		{UserID: "u1", ProductID: 1, Type: domain.InteractionPurchase, RecordedAt: at(now, time.Hour)},
		{UserID: "u1", ProductID: 3, Type: domain.InteractionView, RecordedAt: at(now, time.Hour)},
	}
	twice := append([]domain.Interaction{
		{UserID: "u1", ProductID: 1, Type: domain.InteractionPurchase, RecordedAt: at(now, 2*time.Hour)},
	}, once...)

	var p engine.Params
	a := p.Personalized(now, once, testProducts, nil, 5)
	b := p.Personalized(now, twice, testProducts, nil, 5)

	// The dominant-category ordering is unchanged; only scores grow.
	require.Equal(t, a[0].ProductID, b[0].ProductID)
	assert.Greater(t, b[0].Score, a[0].Score)
}

func TestSimilar_NoHistoryFallsBackToCategoryMatch(t *testing.T) {
	subject := testProducts[0] // 주방

	var p engine.Params
	recs := p.Similar(subject, nil, nil, testProducts, 6)
	require.Len(t, recs, 4) // subject excluded

	assert.Equal(t, int64(2), recs[0].ProductID) // the other 주방 product
	assert.Contains(t, recs[0].Reason, "주방")
	for _, r := range recs {
		assert.NotEqual(t, subject.ID, r.ProductID)
	}
}

func TestSimilar_CoOccurrenceOutranksCategory(t *testing.T) {
	subject := testProducts[0] // 주방
	co := map[int64]int64{3: 4}
	pop := map[int64]int64{2: 100, 3: 4}

	var p engine.Params
	recs := p.Similar(subject, co, pop, testProducts, 6)
	require.NotEmpty(t, recs)

	assert.Equal(t, int64(3), recs[0].ProductID)
	assert.Equal(t, "frequently viewed together", recs[0].Reason)
}

func TestSimilar_PopularityNormalization(t *testing.T) {
	subject := testProducts[4] // 인테리어, no category siblings
	// Same co-occurrence count, but product 3 is globally much more
	// popular, so product 4 should score higher.
	co := map[int64]int64{3: 3, 4: 3}
	pop := map[int64]int64{3: 1000, 4: 3}

	var p engine.Params
	recs := p.Similar(subject, co, pop, testProducts, 6)
	require.True(t, len(recs) >= 2)
	assert.Equal(t, int64(4), recs[0].ProductID)
}

func TestRankByPopularity_DeterministicWithZeroCounts(t *testing.T) {
	recs := engine.RankByPopularity(testProducts, nil, 10)
	require.Len(t, recs, 5)
	for i, r := range recs {
		assert.Equal(t, testProducts[i].ID, r.ProductID)
		assert.Zero(t, r.Score)
	}
}

func TestRankByPopularity_CountOrder(t *testing.T) {
	pop := map[int64]int64{4: 9, 2: 5}
	recs := engine.RankByPopularity(testProducts, pop, 2)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(4), recs[0].ProductID)
	assert.Equal(t, int64(2), recs[1].ProductID)
}
