package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/config"
	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

// PublishAccess records one access to a patient record. Events are keyed by
// patient UID so per-patient history stays ordered within a partition.
func (p *Producer) PublishAccess(ctx context.Context, event models.AccessEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal access event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.PatientUID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "actor", Value: []byte(event.Actor)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"action":   event.Action,
		}).Error("Failed to publish access event")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"action":   event.Action,
		"topic":    p.writer.Topic,
	}).Debug("Access event published")

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
