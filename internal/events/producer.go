package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

const (
	ListingCreated  = "listing.created"
	ListingApproved = "listing.approved"
	ListingRejected = "listing.rejected"
	ListingSold     = "listing.sold"
)

// LifecycleEvent is what downstream consumers (the notification service)
// receive whenever a listing changes state.
type LifecycleEvent struct {
	Type       string    `json:"type"`
	ListingID  string    `json:"listing_id"`
	Title      string    `json:"title"`
	OwnerID    uint      `json:"owner_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer builds a lifecycle-event producer. An empty broker address
// returns a producer that silently drops events, so environments without
// Kafka keep working.
func NewProducer(broker, topic, username, password string, logger *zap.Logger) *Producer {
	p := &Producer{logger: logger.With(zap.String("component", "event_producer"))}
	if broker == "" {
		p.logger.Info("No Kafka broker configured, lifecycle events disabled")
		return p
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}

	if username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: username, Password: password},
			TLS:  &tls.Config{},
		}
	}

	p.writer = writer
	return p
}

// Publish sends one lifecycle event keyed by listing id. Failures are
// logged and swallowed: event delivery must never fail the user action
// that produced it.
func (p *Producer) Publish(eventType string, listingID, title string, ownerID uint, status string) {
	if p == nil || p.writer == nil {
		return
	}

	event := LifecycleEvent{
		Type:       eventType,
		ListingID:  listingID,
		Title:      title,
		OwnerID:    ownerID,
		Status:     status,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode lifecycle event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(listingID),
		Value: payload,
		Time:  time.Now(),
	}); err != nil {
		p.logger.Warn("Failed to publish lifecycle event",
			zap.String("type", eventType),
			zap.String("listing_id", listingID),
			zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
