//go:build integration

package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkwell/internal/platform/config"
	"inkwell/internal/platform/kafka"
	"inkwell/internal/post/events"
	id "inkwell/pkg/domain"
	"inkwell/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	producer, err := kafka.NewProducer(ctx, config.KafkaConfig{
		Brokers:  s.redpanda.Brokers,
		Topic:    "inkwell.post-events.test",
		ClientID: "inkwell-test",
	})
	s.Require().NoError(err)
	s.Require().NoError(producer.EnsureTopic(ctx, 1, 1))
	s.producer = producer
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close(context.Background())
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsTailed() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sent := events.Event{
		Type:       events.PostCreated,
		PostID:     id.NewPostID(),
		Slug:       "integration",
		AuthorID:   id.NewUserID(),
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(events.NewKafkaPublisher(s.producer).Publish(ctx, sent))

	errFound := errors.New("found")
	var got events.Event
	var header string
	err := kafka.Tail(ctx, s.redpanda.Brokers, s.producer.Topic(), func(_ context.Context, msg *kafka.Message) error {
		e, err := events.Decode(msg.Value)
		if err != nil {
			return err
		}
		if e.PostID != sent.PostID {
			return nil
		}
		got, header = e, msg.Headers[events.HeaderEventType]
		return errFound
	})
	s.Require().ErrorIs(err, errFound)
	s.Equal(sent.Slug, got.Slug)
	s.Equal(sent.AuthorID, got.AuthorID)
	s.Equal("post.created", header)
}

func (s *KafkaPublisherSuite) TestEnsureTopicIsIdempotent() {
	s.NoError(s.producer.EnsureTopic(context.Background(), 1, 1))
}
