package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

func testPart() *template.Part {
	return &template.Part{
		WidthMM: 140, HeightMM: 90,
		Elements: []template.Element{
			template.Image("photo", geom.Box{W: 60, H: 80}),
			template.Text("name", geom.Box{W: 60, H: 10}, 12),
			template.Graphic("border", geom.Box{W: 140, H: 90}, ""),
		},
	}
}

func TestParse(t *testing.T) {
	doc := `{"slots": [
		{"slot_index": 1, "name": "Rex", "photo": {"file_url": "rex.jpg", "scale": 1.5, "offset_x_mm": -2}},
		{"slot_index": 0, "name": "Bella", "extra": null}
	]}`
	set, err := Parse([]byte(doc), "json")
	require.NoError(t, err)
	require.Len(t, set.Slots, 2)

	s1, ok := set.Slot(1)
	require.True(t, ok)
	v, ok := s1.Get("photo")
	require.True(t, ok)
	require.NotNil(t, v.Photo)
	assert.Equal(t, "rex.jpg", v.Ref())
	assert.Equal(t, 1.5, v.Photo.Scale)
	assert.Equal(t, -2.0, v.Photo.OffsetXMM)
	assert.True(t, v.Photo.HasTransform())

	s0, _ := set.Slot(0)
	_, ok = s0.Get("extra")
	assert.False(t, ok)
	_, ok = s0.Values[slotIndexKey]
	assert.False(t, ok, "slot_index must not leak into values")

	assert.Equal(t, []int{0, 1}, set.Indices())
	require.NoError(t, set.Validate(testPart()))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		code  errors.Code
		field string
	}{
		{"negative index", `{"slots": [{"slot_index": -1}]}`, errors.ErrCodeInvalidRange, "slots[0].slot_index"},
		{"duplicate index", `{"slots": [{"slot_index": 2}, {"slot_index": 2}]}`, errors.ErrCodeDuplicateSlot, "slots[1].slot_index"},
		{"missing index", `{"slots": [{"name": "x"}]}`, errors.ErrCodeInvalidSchema, "slots[0].slot_index"},
		{"scale out of range", `{"slots": [{"slot_index": 0, "photo": {"file_url": "a.jpg", "scale": 9}}]}`, errors.ErrCodeInvalidRange, "slots[0].photo.scale"},
		{"photo without url", `{"slots": [{"slot_index": 0, "photo": {"scale": 1}}]}`, errors.ErrCodeInvalidSchema, "slots[0].photo.file_url"},
		{"numeric value", `{"slots": [{"slot_index": 0, "name": 3}]}`, errors.ErrCodeInvalidSchema, "slots[0].name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "json")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "error: %v", err)
			assert.Equal(t, tt.field, errors.GetField(err))
		})
	}
}

func TestValidatePhotoShape(t *testing.T) {
	set := &Set{Slots: []Slot{{Index: 0, Values: Values{
		"name": {Photo: &Photo{FileURL: "a.jpg", Scale: 1}},
	}}}}
	err := set.Validate(testPart())
	assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(err))
	assert.Equal(t, "slots[0].name", errors.GetField(err))

	set.Slots[0].Values = Values{"unknown": {Photo: &Photo{FileURL: "a.jpg", Scale: 1}}}
	assert.NoError(t, set.Validate(testPart()))

	set.Slots[0].Values = Values{"photo": {Photo: &Photo{FileURL: "a.jpg", Scale: 0.01}}}
	assert.Equal(t, errors.ErrCodeInvalidRange, errors.GetCode(set.Validate(testPart())))
}

func TestMarshalSet(t *testing.T) {
	set := &Set{Slots: []Slot{{Index: 3, Values: Values{
		"name":  String("Rex"),
		"photo": {Photo: &Photo{FileURL: "rex.jpg", Scale: 1}},
	}}}}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slots":[{"slot_index":3,"name":"Rex","photo":{"file_url":"rex.jpg","scale":1,"offset_x_mm":0,"offset_y_mm":0}}]}`, string(data))

	again, err := Parse(data, "json")
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestValueJSONRoundTrip(t *testing.T) {
	in := Values{
		"name":  String("Rex"),
		"photo": {Photo: &Photo{ID: "p1", FileURL: "rex.jpg", Scale: 1.5, OffsetXMM: 2, OffsetYMM: -1}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Values
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var set Set
	require.NoError(t, json.Unmarshal([]byte(`{"slots":[{"slot_index":2,"name":"Rex"}]}`), &set))
	assert.Equal(t, []Slot{{Index: 2, Values: Values{"name": String("Rex")}}}, set.Slots)

	var v Value
	err = json.Unmarshal([]byte(`{"file_url":"x.jpg","scale":9}`), &v)
	assert.Equal(t, errors.ErrCodeInvalidRange, errors.GetCode(err))
	err = json.Unmarshal([]byte(`42`), &v)
	assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(err))
}

func TestParseItems(t *testing.T) {
	doc := `
items:
  - template_id: stake
    order_ref: "113-1"
    values: {line1: In loving memory, line2: Rex}
  - template_id: photo
    slot_index: 4
`
	items, err := ParseItems([]byte(doc), "yaml")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "stake", items[0].TemplateID)
	assert.Equal(t, "Rex", items[0].Values["line2"].Text)
	assert.Nil(t, items[0].SlotIndex)
	require.NotNil(t, items[1].SlotIndex)
	assert.Equal(t, 4, *items[1].SlotIndex)
	assert.NotNil(t, items[1].Values)
}

func TestValueHelpers(t *testing.T) {
	assert.True(t, Value{}.IsZero())
	assert.False(t, String("x").IsZero())

	orig := Values{"a": String("1")}
	c := orig.Clone()
	c["a"] = String("2")
	assert.Equal(t, "1", orig["a"].Text)
	assert.NotNil(t, Values(nil).Clone())
}
