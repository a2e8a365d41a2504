package alloc

import (
	"math/rand/v2"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Chooser makes seeded picks among equivalent options. One Chooser is
// created per generation request and used from a single goroutine, so the
// sequence of picks depends only on the seed and the order of calls.
type Chooser struct {
	rng *rand.Rand
}

// NewChooser returns a chooser seeded once with seed.
func NewChooser(seed uint64) *Chooser {
	return &Chooser{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Pick returns one of options, or "" when there are none.
func (c *Chooser) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[c.rng.IntN(len(options))]
}

// FillDefaults returns a copy of plan in which every empty image or graphic
// element with fallbacks has been given one, chosen by a Chooser seeded with
// plan.Seed. Beds, slots and elements (in render order) are visited in a
// fixed sequence so identical inputs always receive identical choices. The
// input plan is not modified.
func FillDefaults(plan *Plan, part *template.Part) *Plan {
	out := *plan
	out.Beds = make([]BedAssignment, len(plan.Beds))
	chooser := NewChooser(plan.Seed)
	order := part.ZOrder()

	for bi, bed := range plan.Beds {
		placements := make([]Placement, len(bed.Placements))
		copy(placements, bed.Placements)
		for pi := range placements {
			p := &placements[pi]
			var filled content.Values
			for _, e := range order {
				if !e.AcceptsAsset() || len(e.Fallbacks) == 0 {
					continue
				}
				if v, ok := p.Values[e.ID]; ok && !v.IsZero() {
					continue
				}
				if filled == nil {
					filled = p.Values.Clone()
				}
				filled[e.ID] = content.String(chooser.Pick(e.Fallbacks))
			}
			if filled != nil {
				p.Values = filled
			}
		}
		out.Beds[bi] = newBed(bed.Index, bed.Capacity, placements)
	}
	return &out
}
