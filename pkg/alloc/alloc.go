package alloc

import (
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Allocate partitions items over beds of the tiling's capacity in row-major
// order. Zero items yield a plan with no beds.
func Allocate(tiling template.Tiling, items []content.Item, seed uint64) (*Plan, error) {
	return AllocateWith(Sequential{Tiling: tiling}, items, seed)
}

// AllocateWith partitions items over beds using the cells of strategy.
// Bed k receives items [k*C, (k+1)*C) where C is the number of cells.
func AllocateWith(strategy Strategy, items []content.Item, seed uint64) (*Plan, error) {
	cells, err := strategy.Cells()
	if err != nil {
		return nil, err
	}
	capacity := cells.Len()

	plan := &Plan{Seed: seed, Strategy: strategy.Name(), Items: len(items)}
	for start := 0; start < len(items); start += capacity {
		end := min(start+capacity, len(items))
		placements := make([]Placement, 0, end-start)
		for j := start; j < end; j++ {
			c := cells.At(j - start)
			placements = append(placements, Placement{
				Slot:   c.Slot,
				Row:    c.Row,
				Col:    c.Col,
				Item:   j,
				Values: items[j].Values,
				Origin: c.Origin,
			})
		}
		plan.Beds = append(plan.Beds, newBed(len(plan.Beds), capacity, placements))
	}
	return plan, nil
}
