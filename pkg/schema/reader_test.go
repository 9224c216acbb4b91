package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortColumnsUnlistedColumnsSortFirst(t *testing.T) {
	cols := []Column{
		{Name: "notes"},
		{Name: "email"},
		{Name: "first_name"},
		{Name: "last_name"},
	}

	SortColumns(cols, map[string]int{"email": 2, "last_name": 1})

	got := columnNames(cols)
	want := []string{"notes", "first_name", "last_name", "email"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
}

func TestSortColumnsStableForEqualPositions(t *testing.T) {
	cols := []Column{
		{Name: "a"},
		{Name: "b"},
		{Name: "c"},
		{Name: "d"},
	}

	// a, c, d all map to 0; their catalog order must survive.
	SortColumns(cols, map[string]int{"b": 5})

	got := columnNames(cols)
	want := []string{"a", "c", "d", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
}

func TestSortColumnsEmptyOrderKeepsCatalogOrder(t *testing.T) {
	cols := []Column{{Name: "z"}, {Name: "a"}, {Name: "m"}}

	SortColumns(cols, nil)

	got := columnNames(cols)
	want := []string{"z", "a", "m"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
}

func columnNames(cols []Column) []string {
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names
}
