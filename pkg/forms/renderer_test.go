package forms

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/schema"
)

func TestMain(m *testing.M) {
	logger.Init("forms-test")
	os.Exit(m.Run())
}

type fakeEnums struct {
	options map[string][]models.Option
	errs    map[string]error
}

func (f *fakeEnums) EnumOptions(_ context.Context, typeName string) ([]models.Option, error) {
	if err, ok := f.errs[typeName]; ok {
		return nil, err
	}
	if options, ok := f.options[typeName]; ok {
		return options, nil
	}
	return nil, fmt.Errorf("%w: %s", schema.ErrEnumTypeNotFound, typeName)
}

func newTestRenderer() *Renderer {
	return NewRenderer(&fakeEnums{
		options: map[string][]models.Option{
			"sample_status": {
				{Value: "received", Label: "Received"},
				{Value: "in_progress", Label: "In Progress"},
				{Value: "reported", Label: "Reported"},
			},
			"test_type": {
				{Value: "pcr", Label: "Pcr"},
				{Value: "antibody", Label: "Antibody"},
			},
		},
	})
}

func TestWidgetSelectionPrecedence(t *testing.T) {
	r := newTestRenderer()
	ctx := context.Background()

	cases := []struct {
		name string
		col  schema.Column
		want string
	}{
		{"email beats date type", schema.Column{Name: "contact_email", DataType: "date"}, "email"},
		{"date", schema.Column{Name: "date_of_birth", DataType: "date"}, "date"},
		{"timestamp", schema.Column{Name: "collected_at", DataType: "timestamp without time zone"}, "datetime-local"},
		{"double precision", schema.Column{Name: "weight", DataType: "double precision"}, "number"},
		{"numeric", schema.Column{Name: "amount", DataType: "numeric"}, "number"},
		{"integer", schema.Column{Name: "version", DataType: "integer"}, "number"},
		{"user-defined enum", schema.Column{Name: "status", DataType: "USER-DEFINED", UDTName: "sample_status"}, "select"},
		{"plain text fallback", schema.Column{Name: "notes", DataType: "text"}, "text"},
	}

	for _, tc := range cases {
		field, err := r.BuildField(ctx, tc.col, nil, models.FormOptions{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if field.InputType != tc.want {
			t.Errorf("%s: input type = %q, want %q", tc.name, field.InputType, tc.want)
		}
	}
}

func TestMultiValueFieldRendersMultiSelect(t *testing.T) {
	r := newTestRenderer()

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "tests_requested", DataType: "jsonb"},
		[]string{"pcr", "antibody"}, models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if field.InputType != "select" || !field.Multiple {
		t.Fatalf("expected multi-select, got %q (multiple=%v)", field.InputType, field.Multiple)
	}
	if len(field.SelectedValues) != 2 || field.SelectedValues[0] != "pcr" {
		t.Fatalf("expected parsed list selection, got %v", field.SelectedValues)
	}
}

func TestUserDefinedEnumGetsPleaseSelectOption(t *testing.T) {
	r := newTestRenderer()

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "status", DataType: "USER-DEFINED", UDTName: "sample_status"},
		"in_progress", models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(field.Options) != 4 {
		t.Fatalf("expected empty option plus three values, got %d", len(field.Options))
	}
	if field.Options[0].Value != "" || field.Options[0].Label != "Please select" {
		t.Fatalf("expected leading placeholder option, got %+v", field.Options[0])
	}
}

func TestMissingEnumTypeFallsBackToTextInput(t *testing.T) {
	r := newTestRenderer()

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "priority", DataType: "USER-DEFINED", UDTName: "no_such_type"},
		"urgent", models.FormOptions{})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if field.InputType != "text" {
		t.Fatalf("expected text fallback, got %q", field.InputType)
	}
	if field.Value != "urgent" {
		t.Fatalf("expected value preserved, got %q", field.Value)
	}
}

func TestOtherEnumResolverErrorsPropagate(t *testing.T) {
	r := NewRenderer(&fakeEnums{errs: map[string]error{
		"sample_status": fmt.Errorf("connection refused"),
	}})

	_, err := r.BuildField(context.Background(),
		schema.Column{Name: "status", DataType: "USER-DEFINED", UDTName: "sample_status"},
		nil, models.FormOptions{})
	if err == nil {
		t.Fatal("expected database error to propagate")
	}
}

func TestCallerDropdownUsedForPlainColumn(t *testing.T) {
	r := newTestRenderer()
	opts := models.FormOptions{Dropdowns: map[string][]models.Option{
		"referrer": {{Value: "gp", Label: "GP"}, {Value: "self", Label: "Self"}},
	}}

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "referrer", DataType: "text"}, "gp", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if field.InputType != "select" || len(field.Options) != 2 {
		t.Fatalf("expected caller dropdown, got %q with %d options", field.InputType, len(field.Options))
	}
}

func TestDatetimeLocalValueReformatted(t *testing.T) {
	r := newTestRenderer()

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "collected_at", DataType: "timestamp without time zone"},
		"2024-03-01 09:30:00", models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if field.Value != "2024-03-01T09:30" {
		t.Fatalf("expected datetime-local format, got %q", field.Value)
	}
}

func TestArrayValueSerializedAsJSON(t *testing.T) {
	r := newTestRenderer()

	field, err := r.BuildField(context.Background(),
		schema.Column{Name: "notes", DataType: "text"},
		[]string{"a", "b"}, models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if field.Value != `["a","b"]` {
		t.Fatalf("expected JSON serialized value, got %q", field.Value)
	}
}

func TestShowListOverridesHide(t *testing.T) {
	opts := models.FormOptions{
		Show: []string{"version"},
		Hide: []string{"version", "notes"},
	}

	// version is in Show, so it is visible despite Hide and the baseline set.
	if fieldHidden("version", opts) {
		t.Fatal("expected version to be visible when listed in Show")
	}
	// notes is not in Show, so a non-empty Show hides it.
	if !fieldHidden("notes", opts) {
		t.Fatal("expected notes to be hidden when absent from Show")
	}
}

func TestHideListAndBaselineApplyWithoutShow(t *testing.T) {
	opts := models.FormOptions{Hide: []string{"internal_ref"}}

	for _, name := range []string{"version", "created_at", "last_edited", "internal_ref"} {
		if !fieldHidden(name, opts) {
			t.Errorf("expected %s to be hidden", name)
		}
	}
	if fieldHidden("first_name", opts) {
		t.Error("expected first_name to be visible")
	}
}

func TestRenderFormMarksReadOnlyRegardlessOfVisibility(t *testing.T) {
	r := newTestRenderer()
	cols := []schema.Column{
		{Name: "barcode", DataType: "text", IsNullable: true},
		{Name: "status", DataType: "USER-DEFINED", UDTName: "sample_status", IsNullable: false},
	}
	values := NewValues()
	values.Set("barcode", "BC-001")
	values.Set("status", "received")
	opts := models.FormOptions{
		ReadOnly: []string{"barcode", "status"},
		Hide:     []string{"barcode"},
	}

	html, err := r.RenderForm(context.Background(), cols, values, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, `name="barcode" id="barcode" value="BC-001" readonly`) {
		t.Fatalf("expected hidden barcode input to carry readonly, got:\n%s", html)
	}
	if !strings.Contains(html, `<select name="status" id="status" disabled>`) {
		t.Fatalf("expected status select to be disabled, got:\n%s", html)
	}
	if !strings.Contains(html, `style="display:none"`) {
		t.Fatalf("expected hidden wrapper for barcode, got:\n%s", html)
	}
}

func TestRenderFormRequiredMarkerAndSubmitLabel(t *testing.T) {
	r := newTestRenderer()
	cols := []schema.Column{
		{Name: "first_name", DataType: "text", IsNullable: false},
		{Name: "notes", DataType: "text", IsNullable: true},
	}

	html, err := r.RenderForm(context.Background(), cols, NewValues(), models.FormOptions{
		SubmitLabel: "Save <script>alert(1)</script>patient",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "First Name *") {
		t.Fatalf("expected required marker on first_name label, got:\n%s", html)
	}
	if strings.Contains(html, "Notes *") {
		t.Fatalf("did not expect required marker on nullable notes, got:\n%s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected submit label to be sanitized, got:\n%s", html)
	}
}

func TestRenderFormSelectedOptionMarked(t *testing.T) {
	r := newTestRenderer()
	cols := []schema.Column{
		{Name: "status", DataType: "USER-DEFINED", UDTName: "sample_status", IsNullable: true},
	}
	values := NewValues()
	values.Set("status", "in_progress")

	html, err := r.RenderForm(context.Background(), cols, values, models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, `<option value="in_progress" selected>`) {
		t.Fatalf("expected current value selected, got:\n%s", html)
	}
}

func TestRenderFormEmptyColumnsYieldsEmptyForm(t *testing.T) {
	r := newTestRenderer()

	html, err := r.RenderForm(context.Background(), nil, NewValues(), models.FormOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<form") || strings.Contains(html, "form-group") {
		t.Fatalf("expected an empty form fragment, got:\n%s", html)
	}
}
