// Package events describes post lifecycle events and the publishers that
// deliver them.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"inkwell/internal/platform/kafka"
	id "inkwell/pkg/domain"
)

// Type names a lifecycle event.
type Type string

const (
	PostCreated    Type = "post.created"
	PostUpdated    Type = "post.updated"
	PostPublished  Type = "post.published"
	PostDeleted    Type = "post.deleted"
	CommentCreated Type = "comment.created"
)

// HeaderEventType carries the event type on Kafka records so consumers can
// route without decoding the value.
const HeaderEventType = "event-type"

// Event is emitted after a post or comment changes. CommentID is set for
// comment events only.
type Event struct {
	Type       Type          `json:"type"`
	PostID     id.PostID     `json:"post_id"`
	Slug       string        `json:"slug"`
	AuthorID   id.UserID     `json:"author_id"`
	CommentID  *id.CommentID `json:"comment_id,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Publisher delivers events. Publish failures never undo the change that
// produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Decode parses a record value produced by KafkaPublisher.
func Decode(value []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(value, &e)
	return e, err
}

// LogPublisher writes events to a logger. Used when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "post event",
		"event_type", string(e.Type),
		"post_id", e.PostID.String(),
		"slug", e.Slug,
		"author_id", e.AuthorID.String(),
		"request_id", e.RequestID,
	)
	return nil
}

// Producer is the subset of kafka.Producer used for publishing.
type Producer interface {
	Produce(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes events as JSON records keyed by post ID, so all events
// of one post land on the same partition in order.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.producer.Produce(ctx, kafka.Message{
		Key:       []byte(e.PostID.String()),
		Value:     value,
		Headers:   map[string]string{HeaderEventType: string(e.Type)},
		Timestamp: e.OccurredAt,
	})
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}
