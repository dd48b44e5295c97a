package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// EngagementEvent is the payload published for downstream consumers
// (notifications, analytics).
type EngagementEvent struct {
	Kind      string    `json:"kind"` // like, unlike, favorite, unfavorite, follow, unfollow, comment, share
	VideoID   string    `json:"videoId,omitempty"`
	AuthorID  string    `json:"authorId,omitempty"`
	ViewerID  string    `json:"viewerId"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher emits engagement events to Kafka, fire-and-forget. With no
// brokers configured the writer is nil and publishing is a no-op.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokers, topic string) *EventPublisher {
	if brokers == "" {
		log.Println("events: no brokers configured, publishing disabled")
		return &EventPublisher{}
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	log.Printf("events: publishing to %s", topic)
	return &EventPublisher{writer: writer}
}

// Publish emits one engagement event. Failures are logged only; engagement
// writes never depend on the event stream.
func (p *EventPublisher) Publish(ctx context.Context, ev EngagementEvent) {
	if p.writer == nil {
		return
	}

	ev.Timestamp = time.Now().UTC()
	value, err := json.Marshal(ev)
	if err != nil {
		log.Printf("events: marshal error: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.VideoID),
		Value: value,
	})
	if err != nil {
		log.Printf("events: publish error: %v", err)
	}
}

// Close shuts down the Kafka writer.
func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
