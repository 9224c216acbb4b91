package records

import (
	"context"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/google/uuid"
)

// RecordSource is the read side of the patient store. *Repository is the
// production implementation.
type RecordSource interface {
	GetPatient(ctx context.Context, uid uuid.UUID) (models.Patient, error)
	ListSamples(ctx context.Context, patientUID uuid.UUID) ([]models.Sample, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	ListSampleDocuments(ctx context.Context, sampleUID uuid.UUID) ([]models.UploadedDocument, error)
}

// DocumentSigner regenerates a time-limited access URL for one uploaded
// document.
type DocumentSigner interface {
	SignDocumentURL(ctx context.Context, patientUID, sampleUID uuid.UUID, documentType, filename string) (string, time.Time, error)
}

// AccessPublisher records that a patient record was read.
type AccessPublisher interface {
	PublishAccess(ctx context.Context, event models.AccessEvent) error
}

type Service struct {
	source  RecordSource
	signer  DocumentSigner
	auditor AccessPublisher
}

// NewService wires the assembler. signer and auditor may be nil: without a
// signer documents keep their stored URLs, without an auditor no access
// events are published.
func NewService(source RecordSource, signer DocumentSigner, auditor AccessPublisher) *Service {
	return &Service{source: source, signer: signer, auditor: auditor}
}

// AssembleRecord builds the composite view of one patient: the patient row,
// all samples ordered by most recent edit first, and per sample its
// collection location and valid uploaded documents. The result is built per
// request and never cached.
func (s *Service) AssembleRecord(ctx context.Context, patientUID uuid.UUID, actor string) (models.CompositePatientRecord, error) {
	patient, err := s.source.GetPatient(ctx, patientUID)
	if err != nil {
		return models.CompositePatientRecord{}, err
	}

	samples, err := s.source.ListSamples(ctx, patientUID)
	if err != nil {
		return models.CompositePatientRecord{}, err
	}

	record := models.CompositePatientRecord{
		Patient: patient,
		Samples: make([]models.SampleDetail, 0, len(samples)),
	}

	documentCount := 0
	for _, sample := range samples {
		detail := models.SampleDetail{Sample: sample}

		if sample.CollectionLocationID != nil {
			location, err := s.source.GetLocation(ctx, *sample.CollectionLocationID)
			if err != nil {
				return models.CompositePatientRecord{}, err
			}
			detail.Location = location
		}

		documents, err := s.source.ListSampleDocuments(ctx, sample.UID)
		if err != nil {
			return models.CompositePatientRecord{}, err
		}
		s.refreshDocumentURLs(ctx, patientUID, sample.UID, documents)
		detail.Documents = documents
		documentCount += len(documents)

		record.Samples = append(record.Samples, detail)
	}

	metrics.RecordAssembled()
	s.publishAccess(ctx, patientUID, actor, len(record.Samples), documentCount)
	return record, nil
}

// refreshDocumentURLs regenerates each document's access URL through the
// storage collaborator. Signing failures keep the stored URL; the record is
// still served.
func (s *Service) refreshDocumentURLs(ctx context.Context, patientUID, sampleUID uuid.UUID, documents []models.UploadedDocument) {
	if s.signer == nil {
		return
	}
	for i := range documents {
		url, expires, err := s.signer.SignDocumentURL(ctx, patientUID, sampleUID, documents[i].DocumentType, documents[i].Filename)
		if err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"document_id": documents[i].ID,
				"sample_uid":  sampleUID,
			}).Warn("Failed to regenerate document access URL, keeping stored URL")
			continue
		}
		documents[i].AccessURL = url
		documents[i].URLExpiresAt = &expires
		metrics.DocumentSigned()
	}
}

// publishAccess is best-effort: an audit outage never fails the read.
func (s *Service) publishAccess(ctx context.Context, patientUID uuid.UUID, actor string, sampleCount, documentCount int) {
	if s.auditor == nil {
		return
	}
	if actor == "" {
		actor = "system"
	}
	event := models.AccessEvent{
		PatientUID:    patientUID,
		Actor:         actor,
		Action:        "patient_record_accessed",
		SampleCount:   sampleCount,
		DocumentCount: documentCount,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.auditor.PublishAccess(ctx, event); err != nil {
		logger.Log.WithError(err).WithField("patient_uid", patientUID).Warn("Failed to publish record access event")
		return
	}
	metrics.AccessEventPublished()
}
