package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Registry resolves template ids. store.Snapshot satisfies it.
type Registry interface {
	Template(id string) (*template.Template, bool)
}

// GroupItems splits items by template id, preserving input order within each
// group. Group keys are returned sorted.
func GroupItems(items []content.Item) (map[string][]content.Item, []string) {
	groups := make(map[string][]content.Item)
	for _, it := range items {
		groups[it.TemplateID] = append(groups[it.TemplateID], it)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return groups, ids
}

// GenerateGrouped runs one job per template id found in items. Every
// template is resolved before any bed is rendered, so an unknown id fails
// the whole batch.
func (r *Runner) GenerateGrouped(ctx context.Context, reg Registry, items []content.Item, opts Options) ([]*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	groups, ids := GroupItems(items)

	templates := make(map[string]*template.Template, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, errors.Invalid(errors.ErrCodeInvalidSchema, "template_id", "item has no template id")
		}
		tpl, ok := reg.Template(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "template %q not found", id)
		}
		templates[id] = tpl
	}

	results := make([]*Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.Generate(ctx, Job{Template: templates[id], Items: groups[id], Options: opts})
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		res.TemplateID = id
		results = append(results, res)
	}
	return results, nil
}
