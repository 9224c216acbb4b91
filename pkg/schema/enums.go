package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carelab-io/recordforms/pkg/common/models"
	"gorm.io/gorm"
)

// ErrEnumTypeNotFound reports that the requested enum type does not exist in
// the database. Callers treat it as an expected condition; any other error
// from the resolver is a real database failure and must propagate.
var ErrEnumTypeNotFound = errors.New("enum type not found")

type Resolver struct {
	db      *gorm.DB
	catalog LabelCatalog
}

func NewResolver(db *gorm.DB, catalog LabelCatalog) *Resolver {
	return &Resolver{db: db, catalog: catalog}
}

const enumValuesQuery = `
SELECT e.enumlabel
FROM pg_enum e
JOIN pg_type t ON t.oid = e.enumtypid
WHERE t.typname = ?
ORDER BY e.enumsortorder`

const enumTypeExistsQuery = `SELECT COUNT(*) FROM pg_type WHERE typname = ? AND typtype = 'e'`

// EnumOptions returns the declared values of the named enum type in their
// declared order, each paired with a display label.
func (r *Resolver) EnumOptions(ctx context.Context, typeName string) ([]models.Option, error) {
	var labels []string
	if err := r.db.WithContext(ctx).Raw(enumValuesQuery, typeName).Scan(&labels).Error; err != nil {
		return nil, err
	}

	if len(labels) == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Raw(enumTypeExistsQuery, typeName).Scan(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEnumTypeNotFound, typeName)
		}
	}

	options := make([]models.Option, 0, len(labels))
	for _, raw := range labels {
		options = append(options, models.Option{Value: raw, Label: r.catalog.Render(raw)})
	}
	return options, nil
}

// DisplayLabel converts a raw enum value to its default human-readable form:
// underscores become spaces and each word is title-cased.
func DisplayLabel(raw string) string {
	words := strings.Fields(strings.ReplaceAll(raw, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
