package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelCatalog maps raw enum values to curated display labels. Values absent
// from the catalog fall back to DisplayLabel formatting.
type LabelCatalog struct {
	Labels map[string]string `yaml:"labels" json:"labels"`
}

// LoadLabelCatalog reads a YAML catalog from path. An empty path yields an
// empty catalog, which is valid: every label then uses the default format.
func LoadLabelCatalog(path string) (LabelCatalog, error) {
	if path == "" {
		return LabelCatalog{}, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return LabelCatalog{}, err
	}
	var catalog LabelCatalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return LabelCatalog{}, err
	}
	if len(catalog.Labels) == 0 {
		return LabelCatalog{}, fmt.Errorf("label catalog %s has no labels", path)
	}
	return catalog, nil
}

func (c LabelCatalog) Lookup(raw string) (string, bool) {
	if c.Labels == nil {
		return "", false
	}
	if label, ok := c.Labels[raw]; ok {
		return label, true
	}
	for k, v := range c.Labels {
		if strings.EqualFold(k, raw) {
			return v, true
		}
	}
	return "", false
}

// Render returns the curated label when one exists, otherwise the default
// title-cased form.
func (c LabelCatalog) Render(raw string) string {
	if label, ok := c.Lookup(raw); ok {
		return label
	}
	return DisplayLabel(raw)
}
