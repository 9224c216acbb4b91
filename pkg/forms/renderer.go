package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/schema"
	"github.com/microcosm-cc/bluemonday"
)

// Columns that every table carries for bookkeeping; hidden from forms unless
// the caller's Show list names them.
var baselineHidden = map[string]bool{
	"version":     true,
	"created_at":  true,
	"last_edited": true,
}

const formTemplate = `{{define "field"}}<div class="form-group"{{if .Hidden}} style="display:none"{{end}}>
<label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>
{{if eq .InputType "select"}}<select name="{{.Name}}" id="{{.Name}}"{{if .Multiple}} multiple{{end}}{{if .ReadOnly}} disabled{{end}}>
{{$f := .}}{{range .Options}}<option value="{{.Value}}"{{if $f.Selected .Value}} selected{{end}}>{{.Label}}</option>
{{end}}</select>{{else}}<input type="{{.InputType}}" name="{{.Name}}" id="{{.Name}}" value="{{.Value}}"{{if .ReadOnly}} readonly{{end}}>{{end}}
</div>
{{end}}{{define "form"}}<form method="POST" class="record-form">
{{range .Fields}}{{template "field" .}}{{end}}{{if .SubmitLabel}}<button type="submit">{{.SubmitLabel}}</button>
{{end}}</form>
{{end}}`

type Renderer struct {
	enums    EnumSource
	sanitize *bluemonday.Policy
	tmpl     *template.Template
}

func NewRenderer(enums EnumSource) *Renderer {
	return &Renderer{
		enums:    enums,
		sanitize: bluemonday.StrictPolicy(),
		tmpl:     template.Must(template.New("form").Parse(formTemplate)),
	}
}

type fieldView struct {
	models.FormField
}

// Selected reports whether an option value is the current value of the field.
func (f fieldView) Selected(value string) bool {
	if f.Multiple {
		for _, v := range f.SelectedValues {
			if v == value {
				return true
			}
		}
		return false
	}
	return value != "" && value == f.Value
}

type formView struct {
	Fields      []fieldView
	SubmitLabel string
}

// RenderForm produces one HTML fragment with one labeled field per column.
// Visibility, read-only state, and widget choice follow the rule table in
// rules.go; caller-supplied text is stripped of markup before templating.
func (r *Renderer) RenderForm(ctx context.Context, cols []schema.Column, values *Values, opts models.FormOptions) (string, error) {
	fields := make([]fieldView, 0, len(cols))
	for _, col := range cols {
		raw, _ := values.Get(col.Name)
		field, err := r.buildField(ctx, col, raw, opts)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		field.Hidden = fieldHidden(col.Name, opts)
		field.ReadOnly = containsFold(opts.ReadOnly, col.Name)
		for i := range field.Options {
			field.Options[i].Label = r.sanitize.Sanitize(field.Options[i].Label)
		}
		fields = append(fields, fieldView{field})
	}

	view := formView{Fields: fields, SubmitLabel: r.sanitize.Sanitize(opts.SubmitLabel)}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "form", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildField resolves the widget for a single column; exposed for callers
// that render fields through their own page templates.
func (r *Renderer) BuildField(ctx context.Context, col schema.Column, raw interface{}, opts models.FormOptions) (models.FormField, error) {
	return r.buildField(ctx, col, raw, opts)
}

func (r *Renderer) buildField(ctx context.Context, col schema.Column, raw interface{}, opts models.FormOptions) (models.FormField, error) {
	field := models.FormField{
		InputType: "text",
		Name:      col.Name,
		Label:     schema.DisplayLabel(col.Name),
		Value:     displayValue(col.Name, raw),
		Required:  !col.IsNullable,
	}
	for _, rule := range widgetRules {
		if rule.match(col, opts) {
			if err := rule.apply(ctx, r, col, &field, opts); err != nil {
				return models.FormField{}, err
			}
			break
		}
	}
	return field, nil
}

// fieldHidden applies the visibility contract: a non-empty Show list is
// authoritative; otherwise the baseline hidden set plus the caller's Hide
// list applies.
func fieldHidden(name string, opts models.FormOptions) bool {
	if len(opts.Show) > 0 {
		return !containsFold(opts.Show, name)
	}
	return baselineHidden[name] || containsFold(opts.Hide, name)
}

func containsFold(list []string, name string) bool {
	for _, item := range list {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}

// displayValue flattens a raw record value to the string a widget displays.
// Slices and maps are serialized to their JSON form.
func displayValue(column string, raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	}

	kind := reflect.ValueOf(raw).Kind()
	if kind == reflect.Slice || kind == reflect.Map {
		if data, err := json.Marshal(raw); err == nil {
			logger.Log.WithField("column", column).Debug("Serialized array value for form display")
			return string(data)
		}
	}
	return fmt.Sprintf("%v", raw)
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	datetimeLocalFormat,
}

// reformatDatetimeLocal rewrites a stored timestamp into the value format the
// datetime-local widget expects. Unparseable values pass through unchanged.
func reformatDatetimeLocal(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(datetimeLocalFormat)
		}
	}
	return value
}

// parseStringList decodes a multi-select's current value. Array values reach
// here already serialized as JSON; plain comma-separated input is accepted
// for POSTed form data.
func parseStringList(value string) []string {
	if value == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(value), &list); err == nil {
		return list
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
