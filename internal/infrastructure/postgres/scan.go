package postgres

import (
	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func scanInteractions(rows pgx.Rows) ([]domain.Interaction, error) {
	var out []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		var typ string
		if err := rows.Scan(&in.UserID, &in.ProductID, &typ, &in.RecordedAt); err != nil {
			return nil, err
		}
		in.Type = domain.InteractionType(typ)
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanCounts(rows pgx.Rows) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
