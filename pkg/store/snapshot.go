package store

import (
	"sort"

	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Snapshot is a read-only view of the registry. It is safe for concurrent use.
type Snapshot struct {
	templates map[string]*template.Template
	skus      ingest.SKUMap
}

// NewSnapshot builds a snapshot from in-memory templates, for callers that
// have no database.
func NewSnapshot(templates map[string]*template.Template, skus ingest.SKUMap) *Snapshot {
	if templates == nil {
		templates = map[string]*template.Template{}
	}
	if skus == nil {
		skus = ingest.SKUMap{}
	}
	return &Snapshot{templates: templates, skus: skus}
}

// Template returns the template with the given id.
func (s *Snapshot) Template(id string) (*template.Template, bool) {
	t, ok := s.templates[id]
	return t, ok
}

// TemplateIDs returns all template ids, sorted.
func (s *Snapshot) TemplateIDs() []string {
	ids := make([]string, 0, len(s.templates))
	for id := range s.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TemplateForSKU implements ingest.SKUResolver.
func (s *Snapshot) TemplateForSKU(sku string) (string, bool) {
	return s.skus.TemplateForSKU(sku)
}

var _ ingest.SKUResolver = (*Snapshot)(nil)
