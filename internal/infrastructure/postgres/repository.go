package postgres

import (
	"context"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the interaction log if missing. The table is
// append-only; rows are never updated or deleted by the service.
// Retention/rollup is an operational concern handled outside the request
// path.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	// One statement per Exec: pgx's extended protocol rejects
	// multi-statement strings.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			id               BIGSERIAL PRIMARY KEY,
			user_id          TEXT        NOT NULL,
			product_id       BIGINT      NOT NULL,
			interaction_type TEXT        NOT NULL,
			recorded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user
			ON interactions (user_id, recorded_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_product
			ON interactions (product_id, recorded_at DESC, id DESC)`,
	}
	for _, q := range stmts {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one interaction. The timestamp comes from NOW() on the
// server and the bigserial id gives a total order, so concurrent appends
// cannot reorder or lose entries.
func (r *Repository) Record(ctx context.Context, userID string, productID int64, typ domain.InteractionType) (domain.Interaction, error) {
	in := domain.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      typ,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO interactions (user_id, product_id, interaction_type)
		VALUES ($1, $2, $3)
		RETURNING recorded_at
	`, userID, productID, string(typ)).Scan(&in.RecordedAt)
	if err != nil {
		return domain.Interaction{}, err
	}
	return in, nil
}

func (r *Repository) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, product_id, interaction_type, recorded_at
		FROM interactions
		WHERE user_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`, userID, clampSample(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInteractions(rows)
}

func (r *Repository) RecentByProduct(ctx context.Context, productID int64, limit int) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, product_id, interaction_type, recorded_at
		FROM interactions
		WHERE product_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`, productID, clampSample(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInteractions(rows)
}

// CoOccurrenceCounts: distinct users who touched productID inside the
// window, counted once per other product they also touched.
func (r *Repository) CoOccurrenceCounts(ctx context.Context, productID int64, window time.Duration) (map[int64]int64, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := r.pool.Query(ctx, `
		SELECT b.product_id, COUNT(DISTINCT b.user_id)
		FROM interactions a
		JOIN interactions b
		  ON b.user_id = a.user_id
		 AND b.product_id <> a.product_id
		 AND b.recorded_at >= $2
		WHERE a.product_id = $1
		  AND a.recorded_at >= $2
		GROUP BY b.product_id
	`, productID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCounts(rows)
}

func (r *Repository) PopularityCounts(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, COUNT(*)
		FROM interactions
		GROUP BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCounts(rows)
}

// clampSample bounds how much history a single query can pull; the engine
// samples the most recent N anyway.
func clampSample(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
