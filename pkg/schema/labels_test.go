package schema

import "testing"

func TestDisplayLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"low", "Low"},
		{"medium", "Medium"},
		{"high", "High"},
		{"not_yet_collected", "Not Yet Collected"},
		{"awaiting_review", "Awaiting Review"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DisplayLabel(tc.raw); got != tc.want {
			t.Errorf("DisplayLabel(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestLabelCatalogRenderPrefersOverride(t *testing.T) {
	catalog := LabelCatalog{Labels: map[string]string{
		"edta_tube": "EDTA Tube",
	}}

	if got := catalog.Render("edta_tube"); got != "EDTA Tube" {
		t.Fatalf("expected override label, got %q", got)
	}
	if got := catalog.Render("plain_tube"); got != "Plain Tube" {
		t.Fatalf("expected default label, got %q", got)
	}
}

func TestLabelCatalogLookupIsCaseInsensitive(t *testing.T) {
	catalog := LabelCatalog{Labels: map[string]string{"pcr": "PCR"}}

	if label, ok := catalog.Lookup("PCR"); !ok || label != "PCR" {
		t.Fatalf("expected case-insensitive lookup to find PCR, got %q (%v)", label, ok)
	}
	if _, ok := catalog.Lookup("elisa"); ok {
		t.Fatal("expected missing key to report not found")
	}
}
