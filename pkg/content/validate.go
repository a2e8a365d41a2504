package content

import (
	"maps"
	"slices"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/template"
)

func (p *Photo) validate(path string) error {
	if p.FileURL == "" {
		return errors.Invalid(errors.ErrCodeInvalidSchema, errors.Path(path, "file_url"), "must not be empty")
	}
	if p.Scale < MinScale || p.Scale > MaxScale {
		return errors.Invalid(errors.ErrCodeInvalidRange, errors.Path(path, "scale"), "must be within [%v, %v], got %v", MinScale, MaxScale, p.Scale)
	}
	return nil
}

func (s *Set) checkIndices() error {
	seen := make(map[int]int, len(s.Slots))
	for i, sl := range s.Slots {
		path := errors.Path("slots", i, slotIndexKey)
		if sl.Index < 0 {
			return errors.Invalid(errors.ErrCodeInvalidRange, path, "must be >= 0, got %d", sl.Index)
		}
		if first, dup := seen[sl.Index]; dup {
			return errors.Invalid(errors.ErrCodeDuplicateSlot, path, "slot_index %d already used by slots[%d]", sl.Index, first)
		}
		seen[sl.Index] = i
	}
	return nil
}

// Validate checks the set against a part: slot indices are non-negative and
// unique, photo objects only fill image elements and photo transforms are in
// range. Values for ids the part does not declare are ignored.
func (s *Set) Validate(part *template.Part) error {
	if err := s.checkIndices(); err != nil {
		return err
	}
	for i, sl := range s.Slots {
		for _, id := range slices.Sorted(maps.Keys(sl.Values)) {
			v := sl.Values[id]
			if v.Photo == nil {
				continue
			}
			path := errors.Path("slots", i, id)
			e, ok := part.Element(id)
			if !ok {
				continue
			}
			if e.Kind != template.KindImage {
				return errors.Invalid(errors.ErrCodeInvalidSchema, path, "photo object given for %s element %q", e.Kind, id)
			}
			if err := v.Photo.validate(path); err != nil {
				return err
			}
		}
	}
	return nil
}
