package audit

import (
	"context"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/google/uuid"
)

// Sink is the write side of the access trail. *Repository is the production
// implementation.
type Sink interface {
	Append(ctx context.Context, event models.AccessEvent) error
}

type Service struct {
	sink Sink
}

func NewService(sink Sink) *Service {
	return &Service{sink: sink}
}

// HandleEvent persists one consumed access event. Returning an error leaves
// the Kafka offset uncommitted so the broker redelivers.
func (s *Service) HandleEvent(ctx context.Context, event models.AccessEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := s.sink.Append(ctx, event); err != nil {
		return err
	}
	metrics.AccessEventConsumed()
	logger.Log.WithFields(map[string]interface{}{
		"event_id":    event.ID,
		"patient_uid": event.PatientUID,
		"actor":       event.Actor,
	}).Debug("Access event recorded")
	return nil
}
