package domain

import (
	"context"
	"errors"
	"time"
)

type InteractionType string

const (
	InteractionView     InteractionType = "VIEW"
	InteractionCart     InteractionType = "CART"
	InteractionPurchase InteractionType = "PURCHASE"
	InteractionLike     InteractionType = "LIKE"
)

// ValidInteractionType reports whether t is one of the enumerated types.
func ValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionView, InteractionCart, InteractionPurchase, InteractionLike:
		return true
	}
	return false
}

// RecKind distinguishes the two recommendation list families. The subject
// of a personalized list is a userId; the subject of a similar list is a
// productId rendered as a string. Cache keys are polymorphic over both.
type RecKind string

const (
	KindPersonalized RecKind = "personalized"
	KindSimilar      RecKind = "similar"
)

var (
	ErrEmptyUserID       = errors.New("userId must not be empty")
	ErrBadProductID      = errors.New("productId must be positive")
	ErrBadInteraction    = errors.New("invalid interactionType")
	ErrBadLimit          = errors.New("limit must be between 1 and 100")
	ErrProductNotFound   = errors.New("product not found")
	ErrCacheMiss         = errors.New("cache miss")
	ErrDependencyTimeout = errors.New("dependency timed out")
)

// Interaction is one append-only log entry. RecordedAt is always
// server-assigned; client timestamps are never trusted for ordering.
type Interaction struct {
	UserID     string          `json:"userId"`
	ProductID  int64           `json:"productId"`
	Type       InteractionType `json:"interactionType"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Product is read-only reference data owned by the catalog.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	ImageURL    string  `json:"image"`
	Rating      float64 `json:"rating"`
	ReviewCount int64   `json:"reviewCount"`
	CategoryID  string  `json:"category"`
}

// Recommendation is the wire shape the storefront consumes: a scored,
// reasoned product reference with denormalized product fields.
type Recommendation struct {
	ProductID  int64   `json:"productId"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"imageUrl"`
	Price      int64   `json:"price"`
	CategoryID string  `json:"categoryId"`
}

// CachedList is a cache read result. Stale marks an entry past the soft
// freshness window but not yet hard-evicted; callers may serve it while
// recomputing, or recompute inline.
type CachedList struct {
	Items      []Recommendation
	ComputedAt time.Time
	Stale      bool
}

// InteractionRepository is the append-only interaction log. Appends must
// be safe under concurrent use; reads return newest-first.
type InteractionRepository interface {
	Record(ctx context.Context, userID string, productID int64, typ InteractionType) (Interaction, error)
	RecentByUser(ctx context.Context, userID string, limit int) ([]Interaction, error)
	RecentByProduct(ctx context.Context, productID int64, limit int) ([]Interaction, error)

	// CoOccurrenceCounts returns, for users who interacted with productID
	// inside the window, how many of them also touched each other product.
	CoOccurrenceCounts(ctx context.Context, productID int64, window time.Duration) (map[int64]int64, error)

	// PopularityCounts returns aggregate interaction counts per product.
	PopularityCounts(ctx context.Context) (map[int64]int64, error)
}

// RecommendationCache memoizes computed lists per (kind, subject, limit).
type RecommendationCache interface {
	Get(ctx context.Context, kind RecKind, subject string, limit int) (CachedList, error)
	Put(ctx context.Context, kind RecKind, subject string, limit int, items []Recommendation) error
	Invalidate(ctx context.Context, subjects ...string) error

	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}

// ProductCatalog is the read-only product collaborator.
type ProductCatalog interface {
	Product(ctx context.Context, id int64) (Product, error)
	Products(ctx context.Context, ids []int64) ([]Product, error)
	All(ctx context.Context) ([]Product, error)
}

// EventPublisher fans recorded interactions out to downstream consumers
// (training pipelines, analytics). Best-effort: implementations must not
// block the request path.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, in Interaction)
}
