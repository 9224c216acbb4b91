package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient record entities. These are the API-facing shapes; the gorm row
// models live next to the repositories that own them.

type Patient struct {
	UID         uuid.UUID  `json:"uid"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Sex         string     `json:"sex,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastEdited  time.Time  `json:"last_edited"`
	Version     int        `json:"version"`
}

type Sample struct {
	UID                  uuid.UUID  `json:"uid"`
	PatientUID           uuid.UUID  `json:"patient_uid"`
	Barcode              string     `json:"barcode,omitempty"`
	Status               string     `json:"status"`
	SampleType           string     `json:"sample_type,omitempty"`
	TestsRequested       []string   `json:"tests_requested,omitempty"`
	CollectionLocationID *int64     `json:"collection_location_id,omitempty"`
	CollectedAt          *time.Time `json:"collected_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	LastEdited           time.Time  `json:"last_edited"`
	Version              int        `json:"version"`
}

type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

type UploadedDocument struct {
	ID           uuid.UUID  `json:"id"`
	SampleID     string     `json:"sample_id"`
	PatientUID   uuid.UUID  `json:"patient_uid"`
	DocumentType string     `json:"document_type"`
	Filename     string     `json:"filename"`
	ContentType  string     `json:"content_type,omitempty"`
	Valid        bool       `json:"valid"`
	Deleted      bool       `json:"-"`
	AccessURL    string     `json:"access_url,omitempty"`
	URLExpiresAt *time.Time `json:"url_expires_at,omitempty"`
	UploadedAt   time.Time  `json:"uploaded_at"`
}

// SampleDetail is a sample enriched with its collection location and the
// documents uploaded against it.
type SampleDetail struct {
	Sample
	Location  *Location          `json:"location,omitempty"`
	Documents []UploadedDocument `json:"documents,omitempty"`
}

// CompositePatientRecord is the fully assembled view of one patient. It is
// built per request and never cached.
type CompositePatientRecord struct {
	Patient
	Samples []SampleDetail `json:"samples"`
}

// Form rendering shapes.

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FormField struct {
	InputType      string   `json:"input_type"`
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Value          string   `json:"value,omitempty"`
	SelectedValues []string `json:"selected_values,omitempty"`
	Options        []Option `json:"options,omitempty"`
	Hidden         bool     `json:"hidden"`
	ReadOnly       bool     `json:"read_only"`
	Required       bool     `json:"required"`
	Multiple       bool     `json:"multiple"`
}

// FormOptions is the caller-supplied rendering configuration. Show takes
// precedence over Hide when both are set.
type FormOptions struct {
	Hide        []string            `json:"hide,omitempty"`
	Show        []string            `json:"show,omitempty"`
	SortOrder   map[string]int      `json:"sort_order,omitempty"`
	ReadOnly    []string            `json:"read_only,omitempty"`
	Dropdowns   map[string][]Option `json:"dropdowns,omitempty"`
	SubmitLabel string              `json:"submit_label,omitempty"`
}

type RenderFormRequest struct {
	Values  map[string]interface{} `json:"values,omitempty"`
	Options FormOptions            `json:"options"`
}

type RenderFormResponse struct {
	Table string `json:"table"`
	HTML  string `json:"html"`
}

// Access audit trail.

type AccessEvent struct {
	ID            string    `json:"id"`
	PatientUID    uuid.UUID `json:"patient_uid"`
	Actor         string    `json:"actor"`
	Action        string    `json:"action"`
	SampleCount   int       `json:"sample_count"`
	DocumentCount int       `json:"document_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// User is the authenticated principal attached to a request.
type User struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	Email          string    `json:"email"`
}
