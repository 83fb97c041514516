package event

import "time"

// DomainEventEnvelope is the canonical envelope published across the
// platform's services.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	TraceID    string    `json:"trace_id,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// InteractionPayload is the fan-out shape consumed by the training and
// analytics pipelines downstream of this service.
type InteractionPayload struct {
	UserID          string    `json:"user_id"`
	ProductID       int64     `json:"product_id"`
	InteractionType string    `json:"interaction_type"`
	RecordedAt      time.Time `json:"recorded_at"`
}
