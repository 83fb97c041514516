// Package rabbitmq publishes recorded interactions to a topic exchange
// for downstream training and analytics consumers. Publishing is strictly
// best-effort: the request path only enqueues into a buffered channel and
// a background goroutine owns the connection. A full buffer or a down
// broker drops events with a warning; recommendation serving never waits
// on the broker.
package rabbitmq

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/contracts/event"
	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	appCtx "github.com/chunwon/market/services/recommendation-service/internal/pkg/context"
	"github.com/chunwon/market/services/recommendation-service/internal/pkg/logger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	producerName = "recommendation-service"
	bufferSize   = 256
	redialWait   = 5 * time.Second
)

type queued struct {
	traceID string
	in      domain.Interaction
}

type Publisher struct {
	url      string
	exchange string
	ch       chan queued
}

func NewPublisher(url, exchange string) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		ch:       make(chan queued, bufferSize),
	}
}

// PublishInteraction enqueues; it never blocks.
func (p *Publisher) PublishInteraction(ctx context.Context, in domain.Interaction) {
	select {
	case p.ch <- queued{traceID: appCtx.GetRequestID(ctx), in: in}:
	default:
		logger.Logger.Warn().
			Str("component", "interaction_publisher").
			Msg("event buffer full, dropping interaction event")
	}
}

// Start runs the publishing loop until ctx is canceled.
func (p *Publisher) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Publisher) run(ctx context.Context) {
	log := logger.Logger.With().Str("component", "interaction_publisher").Logger()

	for {
		if ctx.Err() != nil {
			return
		}

		conn, ch, err := p.dial()
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq connect failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialWait):
			}
			continue
		}

		log.Info().Str("exchange", p.exchange).Msg("interaction publisher connected")
		p.drain(ctx, ch, log)

		_ = ch.Close()
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
	}
}

func (p *Publisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// drain publishes queued events until the channel errors or ctx ends.
func (p *Publisher) drain(ctx context.Context, ch *amqp.Channel, log zerolog.Logger) {
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			log.Warn().Msg("rabbitmq channel closed, reconnecting")
			return
		case q := <-p.ch:
			if err := p.publishOne(ctx, ch, q); err != nil {
				log.Warn().Err(err).
					Str("user_id", q.in.UserID).
					Int64("product_id", q.in.ProductID).
					Msg("interaction event publish failed, dropping")
			}
		}
	}
}

func (p *Publisher) publishOne(ctx context.Context, ch *amqp.Channel, q queued) error {
	env := event.DomainEventEnvelope[event.InteractionPayload]{
		Version:    1,
		Producer:   producerName,
		TraceID:    q.traceID,
		MessageID:  uuid.NewString(),
		OccurredAt: q.in.RecordedAt,
		Payload: event.InteractionPayload{
			UserID:          q.in.UserID,
			ProductID:       q.in.ProductID,
			InteractionType: string(q.in.Type),
			RecordedAt:      q.in.RecordedAt,
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	routingKey := "interaction." + strings.ToLower(string(q.in.Type))
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return ch.PublishWithContext(pubCtx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.MessageID,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
}
