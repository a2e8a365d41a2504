package alloc

import (
	"fmt"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

func makeItems(n int) []content.Item {
	items := make([]content.Item, n)
	for i := range items {
		items[i] = content.Item{Values: content.Values{"name": content.String(fmt.Sprintf("item-%d", i))}}
	}
	return items
}

func TestAllocate24Into9(t *testing.T) {
	plan, err := Allocate(template.Tiling{Rows: 3, Cols: 3}, makeItems(24), 42)
	require.NoError(t, err)
	require.Len(t, plan.Beds, 3)

	assert.Len(t, plan.Beds[0].Placements, 9)
	assert.Len(t, plan.Beds[1].Placements, 9)
	assert.Len(t, plan.Beds[2].Placements, 6)
	assert.Equal(t, []int{6, 7, 8}, plan.Beds[2].EmptySlots())
	assert.Equal(t, 6, plan.Beds[2].Filled())
	assert.False(t, plan.Beds[2].Occupied(6))
	assert.True(t, plan.Beds[2].Occupied(5))
	assert.Equal(t, 3, plan.EmptySlots())
	assert.Equal(t, uint64(42), plan.Seed)
	assert.Equal(t, StrategySequential, plan.Strategy)
}

func TestAllocatePartitionLaw(t *testing.T) {
	for _, tl := range []template.Tiling{{Rows: 1, Cols: 1}, {Rows: 2, Cols: 3}, {Rows: 3, Cols: 3}, {Rows: 5, Cols: 2}} {
		for _, n := range []int{0, 1, 5, 6, 7, 30} {
			t.Run(fmt.Sprintf("%dx%d/%d", tl.Rows, tl.Cols, n), func(t *testing.T) {
				plan, err := Allocate(tl, makeItems(n), 1)
				require.NoError(t, err)

				c := tl.Capacity()
				assert.Len(t, plan.Beds, (n+c-1)/c)

				want := make([]int, n)
				for i := range want {
					want[i] = i
				}
				assert.Equal(t, want, append([]int{}, plan.ItemOrder()...))

				for _, bed := range plan.Beds {
					for j, p := range bed.Placements {
						assert.Equal(t, j, p.Slot)
						assert.Equal(t, p.Slot/tl.Cols, p.Row)
						assert.Equal(t, p.Slot%tl.Cols, p.Col)
						assert.Nil(t, p.Origin)
					}
				}
			})
		}
	}
}

func TestAllocateIgnoresItemSlotIndex(t *testing.T) {
	items := makeItems(3)
	idx := 7
	items[0].SlotIndex = &idx
	plan, err := Allocate(template.Tiling{Rows: 2, Cols: 2}, items, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Beds[0].Placements[0].Slot)
}

func TestAllocateZeroCapacity(t *testing.T) {
	_, err := Allocate(template.Tiling{Rows: 0, Cols: 3}, makeItems(2), 0)
	assert.Equal(t, errors.ErrCodeInvalidCapacity, errors.GetCode(err))
}

func TestAllocateLargeGrid(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	plan, err := Allocate(template.Tiling{Rows: 4000, Cols: 4000}, makeItems(1), 0)
	runtime.ReadMemStats(&after)
	require.NoError(t, err)

	require.Len(t, plan.Beds, 1)
	assert.Len(t, plan.Beds[0].Placements, 1)
	assert.Equal(t, 16_000_000, plan.Beds[0].Capacity)
	assert.Equal(t, 15_999_999, plan.Beds[0].Unfilled)
	assert.Equal(t, 15_999_999, plan.EmptySlots())
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(8<<20), "allocation must not scale with grid size")
}

func TestShelfTooManyCells(t *testing.T) {
	s := Shelf{BedWidthMM: 1000, BedHeightMM: 1000, PartWidthMM: 0.5, PartHeightMM: 0.5}
	_, err := s.Cells()
	assert.Equal(t, errors.ErrCodeInvalidCapacity, errors.GetCode(err))
}

func TestAllocateDeterministic(t *testing.T) {
	a, err := Allocate(template.Tiling{Rows: 2, Cols: 2}, makeItems(9), 7)
	require.NoError(t, err)
	b, err := Allocate(template.Tiling{Rows: 2, Cols: 2}, makeItems(9), 99)
	require.NoError(t, err)
	// The seed never affects placement.
	for i := range a.Beds {
		assert.Equal(t, a.Beds[i].Placements, b.Beds[i].Placements)
	}
}

func TestContentSetAndOrigins(t *testing.T) {
	plan, err := Allocate(template.Tiling{Rows: 1, Cols: 2}, makeItems(3), 0)
	require.NoError(t, err)
	set := plan.Beds[1].ContentSet()
	require.Len(t, set.Slots, 1)
	assert.Equal(t, 0, set.Slots[0].Index)
	assert.Equal(t, "item-2", set.Slots[0].Values["name"].Text)
	assert.Equal(t, 0.5, plan.Beds[1].Utilization())
}

func TestShelf(t *testing.T) {
	s := Shelf{
		BedWidthMM: 100, BedHeightMM: 50,
		Margin:      template.Margin{Left: 5, Top: 5, Right: 5, Bottom: 5},
		PartWidthMM: 20, PartHeightMM: 10,
		GutterMM: 2,
	}
	cells, err := s.Cells()
	require.NoError(t, err)
	// x: 5, 27, 49, 71 (93 > 95-20); y: 5, 17, 29 (41+10 > 45).
	assert.Equal(t, 12, cells.Len())
	assert.Equal(t, geom.Point{X: 27, Y: 5}, *cells.At(1).Origin)
	assert.Equal(t, 1, cells.At(4).Row)
	assert.Equal(t, 0, cells.At(4).Col)
	assert.Equal(t, geom.Point{X: 5, Y: 17}, *cells.At(4).Origin)
}

func TestShelfKeepouts(t *testing.T) {
	s := Shelf{
		BedWidthMM: 100, BedHeightMM: 20,
		PartWidthMM: 20, PartHeightMM: 10,
		GutterMM: 5,
		Keepouts: []geom.Box{{X: 0, Y: 0, W: 12, H: 20}},
	}
	cells, err := s.Cells()
	require.NoError(t, err)
	for i := range cells.Len() {
		c := cells.At(i)
		box := geom.Box{X: c.Origin.X, Y: c.Origin.Y, W: 20, H: 10}
		for _, k := range s.Keepouts {
			assert.False(t, box.Overlaps(k), "cell %+v overlaps keep-out", c)
		}
	}
	// Nudged from x=0 in 5mm steps to x=15, then 40 and 65. A second shelf
	// would start at y=15 and not fit.
	assert.Equal(t, 15.0, cells.At(0).Origin.X)
	assert.Equal(t, 65.0, cells.At(2).Origin.X)
	assert.Equal(t, 3, cells.Len())

	s.Keepouts = []geom.Box{{X: 0, Y: 0, W: 100, H: 20}}
	_, err = s.Cells()
	assert.Equal(t, errors.ErrCodeInvalidCapacity, errors.GetCode(err))
}

func TestAllocateWithShelf(t *testing.T) {
	tpl := template.RegularStake(480, 330, 3, 3)
	strategy := ShelfFor(tpl, 5, nil)
	plan, err := AllocateWith(strategy, makeItems(10), 42)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Beds)
	assert.Equal(t, StrategyShelf, plan.Strategy)

	first := plan.Beds[0].Placements[0]
	require.NotNil(t, first.Origin)
	assert.Equal(t, geom.Point{X: tpl.Bed.Margin.Left, Y: tpl.Bed.Margin.Top}, *first.Origin)
	assert.Len(t, plan.Beds, 2)
	assert.Equal(t, 9, plan.Beds[0].Capacity)
	assert.Equal(t, 10, len(plan.ItemOrder()))
}

func TestChooser(t *testing.T) {
	opts := []string{"a", "b", "c", "d"}
	seq := func(seed uint64) []string {
		c := NewChooser(seed)
		out := make([]string, 20)
		for i := range out {
			out[i] = c.Pick(opts)
		}
		return out
	}
	assert.Equal(t, seq(42), seq(42))
	assert.NotEqual(t, seq(42), seq(43))
	assert.Equal(t, "", NewChooser(1).Pick(nil))
}

func fallbackPart() *template.Part {
	img := template.Image("photo", geom.Box{W: 10, H: 10})
	img.Fallbacks = []string{"a.png", "b.png", "c.png"}
	g := template.Graphic("border", geom.Box{W: 10, H: 10}, "")
	g.Fallbacks = []string{"frame1.svg", "frame2.svg"}
	txt := template.Text("name", geom.Box{W: 10, H: 10}, 10)
	txt.Fallbacks = []string{"ignored"}
	return &template.Part{WidthMM: 10, HeightMM: 10, Elements: []template.Element{g, txt, img}}
}

func TestFillDefaults(t *testing.T) {
	items := makeItems(5)
	items[1].Values["photo"] = content.String("given.jpg")

	plan, err := Allocate(template.Tiling{Rows: 2, Cols: 2}, items, 42)
	require.NoError(t, err)
	part := fallbackPart()

	filled := FillDefaults(plan, part)
	again := FillDefaults(plan, part)
	assert.Equal(t, filled, again)

	for _, bed := range filled.Beds {
		for _, p := range bed.Placements {
			photo := p.Values["photo"].Text
			border := p.Values["border"].Text
			assert.NotEmpty(t, photo)
			assert.Contains(t, []string{"frame1.svg", "frame2.svg"}, border)
			_, hasName := p.Values["name"]
			assert.True(t, hasName)
			if p.Item == 1 {
				assert.Equal(t, "given.jpg", photo)
			} else {
				assert.True(t, slices.Contains(part.Elements[2].Fallbacks, photo))
			}
		}
	}

	// The input plan is untouched.
	_, ok := plan.Beds[0].Placements[0].Values["border"]
	assert.False(t, ok)
	assert.True(t, filled.Beds[1].Occupied(0))
}

func TestBedFromContent(t *testing.T) {
	set := &content.Set{Slots: []content.Slot{
		{Index: 4, Values: content.Values{"name": content.String("b")}},
		{Index: 0, Values: content.Values{"name": content.String("a")}},
	}}
	bed := BedFromContent(0, template.Tiling{Rows: 2, Cols: 3}, set)

	assert.Equal(t, 6, bed.Capacity)
	assert.Equal(t, 2, bed.Filled())
	assert.Equal(t, []int{1, 2, 3, 5}, bed.EmptySlots())
	assert.Equal(t, 1, bed.Placements[0].Row)
	assert.Equal(t, 1, bed.Placements[0].Col)
	assert.Equal(t, set.Slots, bed.ContentSet().Slots)
}
