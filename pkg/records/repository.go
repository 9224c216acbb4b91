package records

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type patientModel struct {
	UID         uuid.UUID  `gorm:"primaryKey;column:uid"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	Email       string     `gorm:"column:email"`
	Phone       string     `gorm:"column:phone"`
	Sex         string     `gorm:"column:sex"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	LastEdited  time.Time  `gorm:"column:last_edited"`
	Version     int        `gorm:"column:version"`
}

func (patientModel) TableName() string { return "patients" }

type sampleModel struct {
	UID                  uuid.UUID      `gorm:"primaryKey;column:uid"`
	PatientUID           uuid.UUID      `gorm:"column:patient_uid;index"`
	Barcode              string         `gorm:"column:barcode"`
	Status               string         `gorm:"column:status"`
	SampleType           string         `gorm:"column:sample_type"`
	TestsRequested       datatypes.JSON `gorm:"column:tests_requested"`
	CollectionLocationID *int64         `gorm:"column:collection_location_id"`
	CollectedAt          *time.Time     `gorm:"column:collected_at"`
	CreatedAt            time.Time      `gorm:"column:created_at"`
	LastEdited           time.Time      `gorm:"column:last_edited"`
	Version              int            `gorm:"column:version"`
}

func (sampleModel) TableName() string { return "samples" }

type locationModel struct {
	ID       int64  `gorm:"primaryKey;column:id"`
	Name     string `gorm:"column:name"`
	Address  string `gorm:"column:address"`
	City     string `gorm:"column:city"`
	Postcode string `gorm:"column:postcode"`
}

func (locationModel) TableName() string { return "locations" }

type documentModel struct {
	ID           uuid.UUID  `gorm:"primaryKey;column:id"`
	SampleID     string     `gorm:"column:sample_id;index"`
	PatientUID   uuid.UUID  `gorm:"column:patient_uid"`
	DocumentType string     `gorm:"column:document_type"`
	Filename     string     `gorm:"column:filename"`
	ContentType  string     `gorm:"column:content_type"`
	Valid        bool       `gorm:"column:valid"`
	Deleted      bool       `gorm:"column:deleted"`
	AccessURL    string     `gorm:"column:access_url"`
	URLExpiresAt *time.Time `gorm:"column:url_expires_at"`
	UploadedAt   time.Time  `gorm:"column:uploaded_at"`
}

func (documentModel) TableName() string { return "uploaded_documents" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&patientModel{},
		&sampleModel{},
		&locationModel{},
		&documentModel{},
	)
}

func (r *Repository) GetPatient(ctx context.Context, uid uuid.UUID) (models.Patient, error) {
	var rows []patientModel
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).Limit(2).Find(&rows).Error; err != nil {
		return models.Patient{}, err
	}
	if len(rows) == 0 {
		return models.Patient{}, gorm.ErrRecordNotFound
	}
	if len(rows) > 1 {
		logger.Log.WithField("patient_uid", uid).Warn("Multiple patient rows matched one uid, using first")
	}
	return buildPatient(rows[0]), nil
}

func (r *Repository) ListSamples(ctx context.Context, patientUID uuid.UUID) ([]models.Sample, error) {
	var rows []sampleModel
	if err := r.db.WithContext(ctx).
		Where("patient_uid = ?", patientUID).
		Order("last_edited DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	samples := make([]models.Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, buildSample(row))
	}
	return samples, nil
}

func (r *Repository) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	var rows []locationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(2).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		logger.Log.WithField("location_id", id).Warn("Multiple location rows matched one id, using first")
	}
	location := buildLocation(rows[0])
	return &location, nil
}

// ListSampleDocuments returns the sample's valid, non-deleted documents. The
// store holds sample ids in both hyphenated and unhyphenated forms, so both
// are matched.
func (r *Repository) ListSampleDocuments(ctx context.Context, sampleUID uuid.UUID) ([]models.UploadedDocument, error) {
	hyphenated := sampleUID.String()
	plain := strings.ReplaceAll(hyphenated, "-", "")

	var rows []documentModel
	if err := r.db.WithContext(ctx).
		Where("sample_id IN ? AND valid = ? AND deleted = ?", []string{hyphenated, plain}, true, false).
		Order("uploaded_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	documents := make([]models.UploadedDocument, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, buildDocument(row))
	}
	return documents, nil
}

func buildPatient(row patientModel) models.Patient {
	return models.Patient{
		UID:         row.UID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		Phone:       row.Phone,
		Sex:         row.Sex,
		DateOfBirth: row.DateOfBirth,
		CreatedAt:   row.CreatedAt,
		LastEdited:  row.LastEdited,
		Version:     row.Version,
	}
}

func buildSample(row sampleModel) models.Sample {
	return models.Sample{
		UID:                  row.UID,
		PatientUID:           row.PatientUID,
		Barcode:              row.Barcode,
		Status:               row.Status,
		SampleType:           row.SampleType,
		TestsRequested:       jsonStringArray(row.TestsRequested),
		CollectionLocationID: row.CollectionLocationID,
		CollectedAt:          row.CollectedAt,
		CreatedAt:            row.CreatedAt,
		LastEdited:           row.LastEdited,
		Version:              row.Version,
	}
}

func buildLocation(row locationModel) models.Location {
	return models.Location{
		ID:       row.ID,
		Name:     row.Name,
		Address:  row.Address,
		City:     row.City,
		Postcode: row.Postcode,
	}
}

func buildDocument(row documentModel) models.UploadedDocument {
	return models.UploadedDocument{
		ID:           row.ID,
		SampleID:     row.SampleID,
		PatientUID:   row.PatientUID,
		DocumentType: row.DocumentType,
		Filename:     row.Filename,
		ContentType:  row.ContentType,
		Valid:        row.Valid,
		Deleted:      row.Deleted,
		AccessURL:    row.AccessURL,
		URLExpiresAt: row.URLExpiresAt,
		UploadedAt:   row.UploadedAt,
	}
}

func jsonStringArray(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var result []string
	_ = json.Unmarshal(data, &result)
	return result
}
