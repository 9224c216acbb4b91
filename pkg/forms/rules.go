package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/carelab-io/recordforms/pkg/schema"
)

// EnumSource resolves a database enum type to its ordered option list.
type EnumSource interface {
	EnumOptions(ctx context.Context, typeName string) ([]models.Option, error)
}

const (
	// MultiValueField is the one column rendered as a multi-select. Its
	// options always come from the fixed test_type enum.
	MultiValueField    = "tests_requested"
	multiValueEnumType = "test_type"

	datetimeLocalFormat = "2006-01-02T15:04"
	pleaseSelectLabel   = "Please select"
)

// widgetRule selects and configures the input widget for one column. Rules
// are evaluated strictly in order and the first match wins, which keeps the
// precedence auditable in one place instead of nested conditionals.
type widgetRule struct {
	name  string
	match func(col schema.Column, opts models.FormOptions) bool
	apply func(ctx context.Context, r *Renderer, col schema.Column, field *models.FormField, opts models.FormOptions) error
}

var widgetRules = []widgetRule{
	{
		name: "email",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return strings.Contains(col.Name, "email")
		},
		apply: func(_ context.Context, _ *Renderer, _ schema.Column, field *models.FormField, _ models.FormOptions) error {
			field.InputType = "email"
			return nil
		},
	},
	{
		name: "date",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return col.DataType == "date"
		},
		apply: func(_ context.Context, _ *Renderer, _ schema.Column, field *models.FormField, _ models.FormOptions) error {
			field.InputType = "date"
			return nil
		},
	},
	{
		name: "timestamp",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return col.DataType == "timestamp without time zone"
		},
		apply: func(_ context.Context, _ *Renderer, _ schema.Column, field *models.FormField, _ models.FormOptions) error {
			field.InputType = "datetime-local"
			field.Value = reformatDatetimeLocal(field.Value)
			return nil
		},
	},
	{
		name: "numeric",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return strings.Contains(col.DataType, "double") ||
				col.DataType == "numeric" ||
				col.DataType == "integer"
		},
		apply: func(_ context.Context, _ *Renderer, _ schema.Column, field *models.FormField, _ models.FormOptions) error {
			field.InputType = "number"
			return nil
		},
	},
	{
		name: "multi-value",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return strings.EqualFold(col.Name, MultiValueField)
		},
		apply: func(ctx context.Context, r *Renderer, col schema.Column, field *models.FormField, _ models.FormOptions) error {
			options, err := r.enums.EnumOptions(ctx, multiValueEnumType)
			if err != nil {
				return enumFallback(col, field, err)
			}
			field.InputType = "select"
			field.Multiple = true
			field.Options = options
			field.SelectedValues = parseStringList(field.Value)
			field.Value = ""
			return nil
		},
	},
	{
		name: "user-defined",
		match: func(col schema.Column, _ models.FormOptions) bool {
			return col.DataType == "USER-DEFINED"
		},
		apply: func(ctx context.Context, r *Renderer, col schema.Column, field *models.FormField, _ models.FormOptions) error {
			options, err := r.enums.EnumOptions(ctx, col.UDTName)
			if err != nil {
				return enumFallback(col, field, err)
			}
			field.InputType = "select"
			field.Options = append([]models.Option{{Value: "", Label: pleaseSelectLabel}}, options...)
			return nil
		},
	},
	{
		name: "caller-dropdown",
		match: func(col schema.Column, opts models.FormOptions) bool {
			return len(opts.Dropdowns[col.Name]) > 0
		},
		apply: func(_ context.Context, _ *Renderer, col schema.Column, field *models.FormField, opts models.FormOptions) error {
			field.InputType = "select"
			field.Options = opts.Dropdowns[col.Name]
			return nil
		},
	},
}

// enumFallback degrades a missing enum type to a plain text input. Any other
// resolver failure is a real database error and propagates.
func enumFallback(col schema.Column, field *models.FormField, err error) error {
	if !errors.Is(err, schema.ErrEnumTypeNotFound) {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"column":    col.Name,
		"enum_type": col.UDTName,
	}).Warn("Enum type missing, falling back to text input")
	metrics.EnumFallback()
	field.InputType = "text"
	return nil
}
