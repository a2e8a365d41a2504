package alloc

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Placement assigns one item to one slot of a bed.
type Placement struct {
	Slot int `json:"slot"`
	Row  int `json:"row"`
	Col  int `json:"col"`
	// Item is the index of the item in the allocator's input.
	Item   int            `json:"item"`
	Values content.Values `json:"values,omitempty"`
	// Origin is the tile's top-left corner when the strategy positions tiles
	// itself. Nil means the tiling formula applies.
	Origin *geom.Point `json:"origin,omitempty"`
}

// BedAssignment is the immutable allocation for one bed.
type BedAssignment struct {
	Index      int         `json:"index"`
	Capacity   int         `json:"capacity"`
	Placements []Placement `json:"placements"`
	// Unfilled counts the slots left empty.
	Unfilled int `json:"unfilled"`

	occupied *roaring.Bitmap
}

func newBed(index, capacity int, placements []Placement) BedAssignment {
	bm := roaring.New()
	for _, p := range placements {
		bm.Add(uint32(p.Slot))
	}
	unfilled := max(capacity-int(bm.GetCardinality()), 0)
	return BedAssignment{Index: index, Capacity: capacity, Placements: placements, Unfilled: unfilled, occupied: bm}
}

// EmptySlots lists the unfilled slot indices, ascending. The list is built
// on demand and is as long as Unfilled.
func (b *BedAssignment) EmptySlots() []int {
	if b.Unfilled == 0 {
		return nil
	}
	free := roaring.New()
	free.AddRange(0, uint64(b.Capacity))
	if b.occupied != nil {
		free.AndNot(b.occupied)
	}
	out := make([]int, 0, b.Unfilled)
	it := free.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// BedFromContent builds a single-bed assignment from a content set whose
// slot indices are already fixed. Placement i refers to set.Slots[i].
func BedFromContent(index int, tiling template.Tiling, set *content.Set) BedAssignment {
	placements := make([]Placement, len(set.Slots))
	for i, s := range set.Slots {
		row, col := tiling.SlotPosition(s.Index)
		placements[i] = Placement{Slot: s.Index, Row: row, Col: col, Item: i, Values: s.Values}
	}
	return newBed(index, tiling.Capacity(), placements)
}

// Occupied reports whether a slot holds an item.
func (b *BedAssignment) Occupied(slot int) bool {
	if slot < 0 || b.occupied == nil {
		return false
	}
	return b.occupied.Contains(uint32(slot))
}

// Filled returns the number of occupied slots.
func (b *BedAssignment) Filled() int {
	if b.occupied == nil {
		return 0
	}
	return int(b.occupied.GetCardinality())
}

// Utilization returns the filled fraction of the bed.
func (b *BedAssignment) Utilization() float64 {
	if b.Capacity == 0 {
		return 0
	}
	return float64(b.Filled()) / float64(b.Capacity)
}

// ContentSet converts the placements into renderer input.
func (b *BedAssignment) ContentSet() *content.Set {
	set := &content.Set{Slots: make([]content.Slot, len(b.Placements))}
	for i, p := range b.Placements {
		set.Slots[i] = content.Slot{Index: p.Slot, Values: p.Values}
	}
	return set
}

// Plan is the result of one allocation.
type Plan struct {
	Seed     uint64          `json:"seed"`
	Strategy string          `json:"strategy"`
	Items    int             `json:"items"`
	Beds     []BedAssignment `json:"beds"`
}

// ItemOrder returns the item indices in bed order, then slot order.
func (p *Plan) ItemOrder() []int {
	out := make([]int, 0, p.Items)
	for _, b := range p.Beds {
		for _, pl := range b.Placements {
			out = append(out, pl.Item)
		}
	}
	return out
}

// EmptySlots returns the total number of unfilled slots across all beds.
func (p *Plan) EmptySlots() int {
	n := 0
	for _, b := range p.Beds {
		n += b.Unfilled
	}
	return n
}
