package audit

import (
	"context"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	appCtx "github.com/chunwon/market/services/recommendation-service/internal/pkg/context"
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// InteractionRecorded logs one accepted interaction event.
func (l *Logger) InteractionRecorded(ctx context.Context, in domain.Interaction) {
	l.log.Info().
		Str("action", "interaction_recorded").
		Str("user_id", in.UserID).
		Int64("product_id", in.ProductID).
		Str("interaction_type", string(in.Type)).
		Time("recorded_at", in.RecordedAt).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Interaction recorded")
}

// CacheInvalidated logs the invalidation fan-out after a write.
func (l *Logger) CacheInvalidated(ctx context.Context, subjects []string) {
	l.log.Debug().
		Str("action", "cache_invalidated").
		Strs("subjects", subjects).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Recommendation cache invalidated")
}

// RecommendationServed logs a computed (non-cached) recommendation list.
func (l *Logger) RecommendationServed(ctx context.Context, kind domain.RecKind, subject string, count int, cached bool) {
	l.log.Debug().
		Str("action", "recommendation_served").
		Str("kind", string(kind)).
		Str("subject", subject).
		Int("count", count).
		Bool("cached", cached).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Recommendation list served")
}
