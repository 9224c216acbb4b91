package schema

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Column describes one column of an application table as reported by the
// database catalog.
type Column struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	UDTName    string `json:"udt_name,omitempty"`
	Default    string `json:"default,omitempty"`
	Position   int    `json:"position"`
}

type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

type columnRow struct {
	ColumnName      string  `gorm:"column:column_name"`
	DataType        string  `gorm:"column:data_type"`
	IsNullable      string  `gorm:"column:is_nullable"`
	UDTName         string  `gorm:"column:udt_name"`
	ColumnDefault   *string `gorm:"column:column_default"`
	OrdinalPosition int     `gorm:"column:ordinal_position"`
}

const columnsQuery = `
SELECT column_name, data_type, is_nullable, udt_name, column_default, ordinal_position
FROM information_schema.columns
WHERE table_name = ?
ORDER BY ordinal_position`

// Read returns the table's columns ordered by sortOrder. Columns absent from
// sortOrder keep position 0 and therefore sort first. An unknown table yields
// an empty slice, not an error.
func (r *Reader) Read(ctx context.Context, table string, sortOrder map[string]int) ([]Column, error) {
	var rows []columnRow
	if err := r.db.WithContext(ctx).Raw(columnsQuery, table).Scan(&rows).Error; err != nil {
		return nil, err
	}

	cols := make([]Column, 0, len(rows))
	for _, row := range rows {
		col := Column{
			Name:       row.ColumnName,
			DataType:   row.DataType,
			IsNullable: strings.EqualFold(row.IsNullable, "YES"),
			UDTName:    row.UDTName,
			Position:   row.OrdinalPosition,
		}
		if row.ColumnDefault != nil {
			col.Default = *row.ColumnDefault
		}
		cols = append(cols, col)
	}

	SortColumns(cols, sortOrder)
	return cols, nil
}

// SortColumns reorders cols in place by the supplied positions. The sort is
// stable, so columns sharing a position (including every unlisted column at
// position 0) keep their catalog order.
func SortColumns(cols []Column, sortOrder map[string]int) {
	if len(sortOrder) == 0 {
		return
	}
	sort.SliceStable(cols, func(i, j int) bool {
		return sortOrder[cols[i].Name] < sortOrder[cols[j].Name]
	})
}
