// Package content models the per-slot values that fill a template's elements.
//
// A [Set] holds the content for one bed: one [Slot] per occupied tile, each
// mapping element ids to a [Value]. An [Item] is the ingestion-side record for
// one order line before the allocator has assigned it to a bed and slot.
package content

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/matzehuels/bedforge/internal/decode"
)

// Photo scale bounds.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// Photo is image content with a placement transform applied inside the
// element's clip box.
type Photo struct {
	ID        string  `json:"photo_id,omitempty"`
	FileURL   string  `json:"file_url"`
	Scale     float64 `json:"scale"`
	OffsetXMM float64 `json:"offset_x_mm"`
	OffsetYMM float64 `json:"offset_y_mm"`
}

// HasTransform reports whether the photo is moved or scaled.
func (p *Photo) HasTransform() bool {
	return p.Scale != 1 || p.OffsetXMM != 0 || p.OffsetYMM != 0
}

// Value is the content of one element in one slot: plain text (or an asset
// reference for image and graphic elements) or a photo object.
type Value struct {
	Text  string
	Photo *Photo
}

// String returns a text value.
func String(s string) Value { return Value{Text: s} }

// Ref returns the asset reference carried by the value.
func (v Value) Ref() string {
	if v.Photo != nil {
		return v.Photo.FileURL
	}
	return v.Text
}

// IsZero reports whether the value carries no content.
func (v Value) IsZero() bool {
	return v.Photo == nil && v.Text == ""
}

// MarshalJSON writes a string or a photo object.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Photo != nil {
		return json.Marshal(v.Photo)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON reads a string or a photo object.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	parsed, err := parseValue("", raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Values maps element ids to content.
type Values map[string]Value

// Clone returns a copy that can be modified independently.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// Slot is the content of one tile.
type Slot struct {
	Index  int
	Values Values
}

// Get returns the value for an element id.
func (s *Slot) Get(id string) (Value, bool) {
	v, ok := s.Values[id]
	return v, ok && !v.IsZero()
}

// MarshalJSON writes the flat slot shape: slot_index plus one key per element.
func (s Slot) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Values)+1)
	for k, v := range s.Values {
		m[k] = v
	}
	m[slotIndexKey] = s.Index
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat slot shape written by MarshalJSON.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	o := decode.Root(m)
	idx, err := o.Int(slotIndexKey)
	if err != nil {
		return err
	}
	vals, err := parseValues(o, slotIndexKey)
	if err != nil {
		return err
	}
	*s = Slot{Index: idx, Values: vals}
	return nil
}

// Set is the content for one bed.
type Set struct {
	Slots []Slot `json:"slots"`
}

// Slot returns the slot with the given index.
func (s *Set) Slot(index int) (*Slot, bool) {
	for i := range s.Slots {
		if s.Slots[i].Index == index {
			return &s.Slots[i], true
		}
	}
	return nil, false
}

// Indices returns the slot indices in ascending order.
func (s *Set) Indices() []int {
	out := make([]int, len(s.Slots))
	for i, sl := range s.Slots {
		out[i] = sl.Index
	}
	slices.Sort(out)
	return out
}

// Item is one order line at the ingestion boundary. SlotIndex is advisory;
// the allocator places items in input order.
type Item struct {
	TemplateID string `json:"template_id"`
	SlotIndex  *int   `json:"slot_index,omitempty"`
	OrderRef   string `json:"order_ref,omitempty"`
	Values     Values `json:"values"`
}
