package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
)

// Params tune the scoring functions. Zero values fall back to defaults so
// a zero Params is usable in tests.
type Params struct {
	// DecayHalfLife controls exponential recency decay of interaction
	// weights. Default 14 days.
	DecayHalfLife time.Duration
}

const defaultHalfLife = 14 * 24 * time.Hour

// typeWeight orders interaction strength: a purchase says more about a
// user than a view.
func typeWeight(t domain.InteractionType) float64 {
	switch t {
	case domain.InteractionPurchase:
		return 1.0
	case domain.InteractionCart:
		return 0.6
	case domain.InteractionLike:
		return 0.5
	case domain.InteractionView:
		return 0.2
	}
	return 0
}

func (p Params) halfLife() time.Duration {
	if p.DecayHalfLife > 0 {
		return p.DecayHalfLife
	}
	return defaultHalfLife
}

// decay halves an interaction's weight every half-life. Future timestamps
// clamp to weight 1.
func (p Params) decay(now, at time.Time) float64 {
	age := now.Sub(at)
	if age <= 0 {
		return 1
	}
	return math.Exp2(-age.Hours() / p.halfLife().Hours())
}

// popularityPrior is a small additive signal keeping scores non-zero for
// products with traffic. Log-damped so runaway hits don't drown affinity.
func popularityPrior(count int64) float64 {
	if count <= 0 {
		return 0
	}
	return 0.01 * math.Log1p(float64(count))
}

// Personalized scores candidates for a user from their recent history.
// History carries the user's interactions (any order); candidates is the
// full product set under consideration; popularity is aggregate
// interaction counts per product. Deterministic given identical inputs.
func (p Params) Personalized(now time.Time, history []domain.Interaction, candidates []domain.Product, popularity map[int64]int64, limit int) []domain.Recommendation {
	byID := make(map[int64]domain.Product, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	// Per-category affinity, and per-(category, type) contribution so the
	// reason can name the dominant signal.
	affinity := make(map[string]float64)
	signal := make(map[string]map[domain.InteractionType]float64)
	for _, in := range history {
		prod, ok := byID[in.ProductID]
		if !ok {
			continue // product left the catalog; its signal is gone too
		}
		w := typeWeight(in.Type) * p.decay(now, in.RecordedAt)
		affinity[prod.CategoryID] += w
		if signal[prod.CategoryID] == nil {
			signal[prod.CategoryID] = make(map[domain.InteractionType]float64)
		}
		signal[prod.CategoryID][in.Type] += w
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		score := affinity[c.CategoryID] + popularityPrior(popularity[c.ID])
		recs = append(recs, toRecommendation(c, score, personalizedReason(c.CategoryID, affinity, signal)))
	}
	return rank(recs, limit)
}

func personalizedReason(category string, affinity map[string]float64, signal map[string]map[domain.InteractionType]float64) string {
	if affinity[category] <= 0 {
		return "popular with other shoppers"
	}
	dominant := dominantSignal(signal[category])
	switch dominant {
	case domain.InteractionPurchase:
		return fmt.Sprintf("based on your recent purchases in %s", category)
	case domain.InteractionCart:
		return fmt.Sprintf("based on items in your cart from %s", category)
	case domain.InteractionLike:
		return fmt.Sprintf("based on items you liked in %s", category)
	default:
		return fmt.Sprintf("based on your recent views in %s", category)
	}
}

// dominantSignal picks the interaction type with the largest accumulated
// weight; ties resolve by type strength so the outcome is deterministic.
func dominantSignal(byType map[domain.InteractionType]float64) domain.InteractionType {
	order := []domain.InteractionType{
		domain.InteractionPurchase,
		domain.InteractionCart,
		domain.InteractionLike,
		domain.InteractionView,
	}
	best := domain.InteractionView
	bestW := -1.0
	for _, t := range order {
		if w := byType[t]; w > bestW {
			best, bestW = t, w
		}
	}
	return best
}

// Similar scores candidates against a subject product by co-occurrence,
// normalized by candidate popularity so generic bestsellers don't
// dominate. Sparse co-occurrence falls back to category match, then to a
// popularity prior, so the list fills whenever candidates exist.
func (p Params) Similar(subject domain.Product, coCounts, popularity map[int64]int64, candidates []domain.Product, limit int) []domain.Recommendation {
	const categoryBase = 0.1

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == subject.ID {
			continue
		}
		var score float64
		var reason string
		switch {
		case coCounts[c.ID] > 0:
			score = float64(coCounts[c.ID]) / math.Sqrt(float64(popularity[c.ID]+1))
			reason = "frequently viewed together"
		case c.CategoryID == subject.CategoryID:
			score = categoryBase + popularityPrior(popularity[c.ID])
			reason = fmt.Sprintf("same category: %s", subject.CategoryID)
		default:
			score = popularityPrior(popularity[c.ID])
			reason = "popular with other shoppers"
		}
		recs = append(recs, toRecommendation(c, score, reason))
	}
	return rank(recs, limit)
}

// RankByPopularity is the cold-start fallback: a deterministic ranking by
// aggregate interaction count. Never empty while candidates exist.
func RankByPopularity(candidates []domain.Product, popularity map[int64]int64, limit int) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recs = append(recs, toRecommendation(c, float64(popularity[c.ID]), "popular with other shoppers"))
	}
	return rank(recs, limit)
}

// rank sorts score descending, productId ascending on ties, and truncates.
func rank(recs []domain.Recommendation, limit int) []domain.Recommendation {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func toRecommendation(p domain.Product, score float64, reason string) domain.Recommendation {
	return domain.Recommendation{
		ProductID:  p.ID,
		Score:      score,
		Reason:     reason,
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		Price:      p.Price,
		CategoryID: p.CategoryID,
	}
}
