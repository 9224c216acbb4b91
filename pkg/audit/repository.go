package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type accessLogModel struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	EventID       string    `gorm:"column:event_id;uniqueIndex"`
	PatientUID    uuid.UUID `gorm:"column:patient_uid;index"`
	Actor         string    `gorm:"column:actor"`
	Action        string    `gorm:"column:action"`
	SampleCount   int       `gorm:"column:sample_count"`
	DocumentCount int       `gorm:"column:document_count"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
	RecordedAt    time.Time `gorm:"column:recorded_at"`
}

func (accessLogModel) TableName() string { return "access_audit_logs" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&accessLogModel{})
}

// Append stores one access event. Re-deliveries of an already stored event id
// are ignored, so consuming at least once stays safe.
func (r *Repository) Append(ctx context.Context, event models.AccessEvent) error {
	entry := &accessLogModel{
		EventID:       event.ID,
		PatientUID:    event.PatientUID,
		Actor:         event.Actor,
		Action:        event.Action,
		SampleCount:   event.SampleCount,
		DocumentCount: event.DocumentCount,
		OccurredAt:    event.OccurredAt,
		RecordedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

func (r *Repository) ListByPatient(ctx context.Context, patientUID uuid.UUID, limit int) ([]models.AccessEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []accessLogModel
	if err := r.db.WithContext(ctx).
		Where("patient_uid = ?", patientUID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]models.AccessEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.AccessEvent{
			ID:            row.EventID,
			PatientUID:    row.PatientUID,
			Actor:         row.Actor,
			Action:        row.Action,
			SampleCount:   row.SampleCount,
			DocumentCount: row.DocumentCount,
			OccurredAt:    row.OccurredAt,
		})
	}
	return events, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
