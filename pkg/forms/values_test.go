package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRemoveNullKeepsZeroValues(t *testing.T) {
	v := NewValues()
	v.Set("a", nil)
	v.Set("b", 0)
	v.Set("c", false)

	got := RemoveNull(v)

	if diff := cmp.Diff([]string{"b", "c"}, got.Keys()); diff != "" {
		t.Fatalf("unexpected surviving keys (-want +got):\n%s", diff)
	}
	if value, _ := got.Get("b"); value != 0 {
		t.Fatalf("expected b to stay 0, got %v", value)
	}
	if value, _ := got.Get("c"); value != false {
		t.Fatalf("expected c to stay false, got %v", value)
	}
}

func TestRemoveNullAndEmptyString(t *testing.T) {
	v := NewValues()
	v.Set("a", nil)
	v.Set("b", "")
	v.Set("c", " ")
	v.Set("d", "x")

	got := RemoveNullAndEmptyString(v)

	if diff := cmp.Diff([]string{"d"}, got.Keys()); diff != "" {
		t.Fatalf("unexpected surviving keys (-want +got):\n%s", diff)
	}
	if value, _ := got.Get("d"); value != "x" {
		t.Fatalf("expected d to stay %q, got %v", "x", value)
	}
}

func TestFiltersPreserveInsertionOrder(t *testing.T) {
	v := NewValues()
	v.Set("zulu", "1")
	v.Set("alpha", nil)
	v.Set("mike", "2")
	v.Set("bravo", "3")

	got := RemoveNull(v)

	if diff := cmp.Diff([]string{"zulu", "mike", "bravo"}, got.Keys()); diff != "" {
		t.Fatalf("expected insertion order preserved (-want +got):\n%s", diff)
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	v := NewValues()
	v.Set("a", nil)
	v.Set("b", "x")

	_ = RemoveNull(v)

	if v.Len() != 2 {
		t.Fatalf("expected input untouched, got %d entries", v.Len())
	}
}

func TestSetOverwritesWithoutReordering(t *testing.T) {
	v := NewValues()
	v.Set("a", "1")
	v.Set("b", "2")
	v.Set("a", "3")

	if diff := cmp.Diff([]string{"a", "b"}, v.Keys()); diff != "" {
		t.Fatalf("unexpected key order (-want +got):\n%s", diff)
	}
	if value, _ := v.Get("a"); value != "3" {
		t.Fatalf("expected overwrite, got %v", value)
	}
}
