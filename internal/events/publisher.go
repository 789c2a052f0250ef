package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

const TopicAssessmentSubmitted = "assessment.submitted"

// AssessmentSubmittedEvent is emitted after a student's submission commits.
type AssessmentSubmittedEvent struct {
	UserAssessmentID uint      `json:"user_assessment_id"`
	AssessmentID     uint      `json:"assessment_id"`
	UserID           uint      `json:"user_id"`
	Score            *int      `json:"score"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

type EventPublisher interface {
	PublishAssessmentSubmitted(ctx context.Context, event *AssessmentSubmittedEvent) error
	Close() error
}

// KafkaEventPublisher publishes domain events to Kafka through watermill.
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) PublishAssessmentSubmitted(ctx context.Context, event *AssessmentSubmittedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal submission event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", TopicAssessmentSubmitted)

	if err := p.publisher.Publish(TopicAssessmentSubmitted, msg); err != nil {
		return fmt.Errorf("failed to publish submission event: %w", err)
	}

	p.logger.Info("Published submission event",
		"topic", TopicAssessmentSubmitted,
		"assessment_id", event.AssessmentID,
		"user_id", event.UserID)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// NoopEventPublisher drops events. Used when no broker is configured.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() *NoopEventPublisher { return &NoopEventPublisher{} }

func (*NoopEventPublisher) PublishAssessmentSubmitted(context.Context, *AssessmentSubmittedEvent) error {
	return nil
}

func (*NoopEventPublisher) Close() error { return nil }

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*AssessmentSubmittedEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (p *MockEventPublisher) PublishAssessmentSubmitted(_ context.Context, event *AssessmentSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *MockEventPublisher) Close() error { return nil }
