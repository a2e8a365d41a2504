package content

import (
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/bedforge/internal/decode"
	"github.com/matzehuels/bedforge/pkg/errors"
)

const slotIndexKey = "slot_index"

// Format is the serialization of a content document.
type Format = decode.Format

// Parse decodes a content document of the form
//
//	{"slots": [{"slot_index": 0, "name": "Rex", "photo": {"file_url": "..."}}]}
//
// checking value shapes, photo ranges and slot index uniqueness.
func Parse(data []byte, format Format) (*Set, error) {
	doc, err := decode.Document(data, format)
	if err != nil {
		return nil, err
	}
	return FromMap(doc)
}

// ParseFile reads a content document, picking the format from the file extension.
func ParseFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data, decode.FormatFromPath(path))
}

// FromMap builds a content set from a decoded document.
func FromMap(doc map[string]any) (*Set, error) {
	root := decode.Root(doc)
	set := &Set{}
	if !root.Has("slots") {
		return set, nil
	}
	list, err := root.List("slots")
	if err != nil {
		return nil, err
	}
	set.Slots = make([]Slot, 0, len(list))
	for i, raw := range list {
		o, err := root.Item("slots", i, raw)
		if err != nil {
			return nil, err
		}
		idx, err := o.Int(slotIndexKey)
		if err != nil {
			return nil, err
		}
		vals, err := parseValues(o, slotIndexKey)
		if err != nil {
			return nil, err
		}
		set.Slots = append(set.Slots, Slot{Index: idx, Values: vals})
	}
	if err := set.checkIndices(); err != nil {
		return nil, err
	}
	return set, nil
}

// ParseItems decodes an item list of the form
//
//	{"items": [{"template_id": "stake", "values": {"line1": "In memory of"}}]}
func ParseItems(data []byte, format Format) ([]Item, error) {
	doc, err := decode.Document(data, format)
	if err != nil {
		return nil, err
	}
	root := decode.Root(doc)
	list, err := root.List("items")
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(list))
	for i, raw := range list {
		o, err := root.Item("items", i, raw)
		if err != nil {
			return nil, err
		}
		var it Item
		if it.TemplateID, err = o.OptString("template_id", ""); err != nil {
			return nil, err
		}
		if it.OrderRef, err = o.OptString("order_ref", ""); err != nil {
			return nil, err
		}
		if o.Has(slotIndexKey) {
			idx, err := o.Int(slotIndexKey)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				return nil, errors.Invalid(errors.ErrCodeInvalidRange, o.Field(slotIndexKey), "must be >= 0, got %d", idx)
			}
			it.SlotIndex = &idx
		}
		if vo, ok, err := o.OptObject("values"); err != nil {
			return nil, err
		} else if ok {
			if it.Values, err = parseValues(vo); err != nil {
				return nil, err
			}
		}
		if it.Values == nil {
			it.Values = Values{}
		}
		items = append(items, it)
	}
	return items, nil
}

func parseValues(o decode.Object, skip ...string) (Values, error) {
	vals := make(Values, len(o.M))
	for key, raw := range o.M {
		if raw == nil || slices.Contains(skip, key) {
			continue
		}
		v, err := parseValue(o.Field(key), raw)
		if err != nil {
			return nil, err
		}
		vals[key] = v
	}
	return vals, nil
}

// ParseValue decodes one element value, a string or a photo object, found
// at field in a decoded document.
func ParseValue(field string, raw any) (Value, error) {
	return parseValue(field, raw)
}

func parseValue(field string, raw any) (Value, error) {
	if s, ok := raw.(string); ok {
		return Value{Text: s}, nil
	}
	m, ok := decode.AsMap(raw)
	if !ok {
		return Value{}, errors.Invalid(errors.ErrCodeInvalidSchema, field, "expected string or photo object")
	}
	o := decode.Object{M: m, Path: field}
	p := &Photo{}
	var err error
	if p.FileURL, err = o.String("file_url"); err != nil {
		return Value{}, err
	}
	if p.ID, err = o.OptString("photo_id", ""); err != nil {
		return Value{}, err
	}
	if p.Scale, err = o.OptFloat("scale", 1); err != nil {
		return Value{}, err
	}
	if p.OffsetXMM, err = o.OptFloat("offset_x_mm", 0); err != nil {
		return Value{}, err
	}
	if p.OffsetYMM, err = o.OptFloat("offset_y_mm", 0); err != nil {
		return Value{}, err
	}
	if err := p.validate(o.Path); err != nil {
		return Value{}, err
	}
	return Value{Photo: p}, nil
}
