package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/audit"
	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/chunwon/market/services/recommendation-service/internal/engine"
	"github.com/chunwon/market/services/recommendation-service/internal/pkg/logger"
)

const (
	DefaultPersonalizedLimit = 10
	DefaultSimilarLimit      = 6
)

type Options struct {
	// HistorySampleLimit bounds how much history feeds one computation.
	HistorySampleLimit int
	DecayHalfLife      time.Duration
	CoOccurrenceWindow time.Duration
	// RequestDeadline caps one read operation end to end.
	RequestDeadline time.Duration
}

func (o Options) withDefaults() Options {
	if o.HistorySampleLimit <= 0 {
		o.HistorySampleLimit = 200
	}
	if o.CoOccurrenceWindow <= 0 {
		o.CoOccurrenceWindow = 30 * 24 * time.Hour
	}
	if o.RequestDeadline <= 0 {
		o.RequestDeadline = 3 * time.Second
	}
	return o
}

// RecommendationService orchestrates store, engine, cache and catalog:
// reads are cache-then-compute, writes append then invalidate.
type RecommendationService struct {
	store   domain.InteractionRepository
	cache   domain.RecommendationCache
	catalog domain.ProductCatalog
	events  domain.EventPublisher // optional
	audit   *audit.Logger         // optional
	opts    Options
	eng     engine.Params
}

func New(store domain.InteractionRepository, cache domain.RecommendationCache, catalog domain.ProductCatalog, opts Options) *RecommendationService {
	opts = opts.withDefaults()
	return &RecommendationService{
		store:   store,
		cache:   cache,
		catalog: catalog,
		opts:    opts,
		eng:     engine.Params{DecayHalfLife: opts.DecayHalfLife},
	}
}

// WithEvents attaches the interaction fan-out publisher.
func (s *RecommendationService) WithEvents(p domain.EventPublisher) *RecommendationService {
	s.events = p
	return s
}

// WithAudit attaches the audit logger.
func (s *RecommendationService) WithAudit(a *audit.Logger) *RecommendationService {
	s.audit = a
	return s
}

// Personalized returns a ranked list for a user. A user with no history
// gets the popularity fallback; the list is only empty when the catalog
// itself is.
func (s *RecommendationService) Personalized(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}
	limit, err := normalizeLimit(limit, DefaultPersonalizedLimit)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestDeadline)
	defer cancel()

	if items, ok := s.cacheGet(ctx, domain.KindPersonalized, userID, limit); ok {
		return items, nil
	}

	history, err := s.store.RecentByUser(ctx, userID, s.opts.HistorySampleLimit)
	if err != nil {
		return nil, mapDeadline(err)
	}
	candidates, err := s.catalog.All(ctx)
	if err != nil {
		return nil, mapDeadline(err)
	}
	popularity, err := s.store.PopularityCounts(ctx)
	if err != nil {
		return nil, mapDeadline(err)
	}

	var items []domain.Recommendation
	if len(history) == 0 {
		// Cold start: deterministic popularity ranking, never empty while
		// candidates exist.
		items = engine.RankByPopularity(candidates, popularity, limit)
	} else {
		items = s.eng.Personalized(time.Now().UTC(), history, candidates, popularity, limit)
	}

	s.cachePut(ctx, domain.KindPersonalized, userID, limit, items)
	if s.audit != nil {
		s.audit.RecommendationServed(ctx, domain.KindPersonalized, userID, len(items), false)
	}
	return items, nil
}

// Similar returns products related to productID: co-occurrence first,
// category match when co-occurrence is sparse, popularity last.
func (s *RecommendationService) Similar(ctx context.Context, productID int64, limit int) ([]domain.Recommendation, error) {
	if productID <= 0 {
		return nil, domain.ErrBadProductID
	}
	limit, err := normalizeLimit(limit, DefaultSimilarLimit)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestDeadline)
	defer cancel()

	subjectKey := productSubject(productID)
	if items, ok := s.cacheGet(ctx, domain.KindSimilar, subjectKey, limit); ok {
		return items, nil
	}

	subject, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return nil, mapDeadline(err)
	}
	coCounts, err := s.store.CoOccurrenceCounts(ctx, productID, s.opts.CoOccurrenceWindow)
	if err != nil {
		return nil, mapDeadline(err)
	}
	candidates, err := s.catalog.All(ctx)
	if err != nil {
		return nil, mapDeadline(err)
	}
	popularity, err := s.store.PopularityCounts(ctx)
	if err != nil {
		return nil, mapDeadline(err)
	}

	items := s.eng.Similar(subject, coCounts, popularity, candidates, limit)
	s.cachePut(ctx, domain.KindSimilar, subjectKey, limit, items)
	if s.audit != nil {
		s.audit.RecommendationServed(ctx, domain.KindSimilar, subjectKey, len(items), false)
	}
	return items, nil
}

// RecordInteraction validates, appends to the log, then invalidates every
// cached list depending on the affected user or product. Invalidation
// runs after the write is durable so a read in the same causal chain
// never sees the pre-write list for those subjects.
func (s *RecommendationService) RecordInteraction(ctx context.Context, userID string, productID int64, typ domain.InteractionType) error {
	if userID == "" {
		return domain.ErrEmptyUserID
	}
	if productID <= 0 {
		return domain.ErrBadProductID
	}
	if !domain.ValidInteractionType(typ) {
		return fmt.Errorf("%w: %q", domain.ErrBadInteraction, typ)
	}

	in, err := s.store.Record(ctx, userID, productID, typ)
	if err != nil {
		return mapDeadline(err)
	}

	subjects := []string{userID, productSubject(productID)}
	if err := s.cache.Invalidate(ctx, subjects...); err != nil {
		// The write is durable; a failed invalidation only delays
		// recomputation until the freshness window lapses.
		logger.WithCtx(ctx).Warn().Err(err).Msg("cache invalidation failed")
	} else if s.audit != nil {
		s.audit.CacheInvalidated(ctx, subjects)
	}

	if s.events != nil {
		s.events.PublishInteraction(ctx, in)
	}
	if s.audit != nil {
		s.audit.InteractionRecorded(ctx, in)
	}
	return nil
}

// cacheGet returns a fresh cached list. Stale-but-alive entries and cache
// errors both fall through to recomputation: a degraded cache must never
// degrade correctness.
func (s *RecommendationService) cacheGet(ctx context.Context, kind domain.RecKind, subject string, limit int) ([]domain.Recommendation, bool) {
	cached, err := s.cache.Get(ctx, kind, subject, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.WithCtx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("cache read failed")
		}
		return nil, false
	}
	if cached.Stale {
		return nil, false
	}
	if s.audit != nil {
		s.audit.RecommendationServed(ctx, kind, subject, len(cached.Items), true)
	}
	return cached.Items, true
}

func (s *RecommendationService) cachePut(ctx context.Context, kind domain.RecKind, subject string, limit int, items []domain.Recommendation) {
	if err := s.cache.Put(ctx, kind, subject, limit, items); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("cache write failed")
	}
}

func normalizeLimit(limit, def int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > 100 {
		return 0, domain.ErrBadLimit
	}
	return limit, nil
}

func productSubject(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// mapDeadline folds context expiry into the dependency-timeout sentinel so
// the transport layer can mark it retryable.
func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrDependencyTimeout
	}
	return err
}
