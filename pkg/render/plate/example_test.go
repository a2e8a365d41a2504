package plate_test

import (
	"fmt"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/render/plate"
	"github.com/matzehuels/bedforge/pkg/template"
)

func ExampleRenderBed() {
	tpl := &template.Template{
		Bed: template.Bed{WidthMM: 100, HeightMM: 50},
		Part: template.Part{WidthMM: 40, HeightMM: 20, Elements: []template.Element{
			template.Text("name", geom.Box{W: 40, H: 10}, 10),
		}},
		Tiling: template.Tiling{Rows: 1, Cols: 2, GapXMM: 10},
	}
	set := &content.Set{Slots: []content.Slot{
		{Index: 1, Values: content.Values{"name": content.String("Rex")}},
	}}

	d, err := plate.RenderBed(tpl, set, plate.WithoutMetadata())
	if err != nil {
		panic(err)
	}
	fmt.Print(string(d.SVG))
	// Output:
	// <svg width="100mm" height="50mm" viewBox="0 0 100 50" xmlns="http://www.w3.org/2000/svg">
	//   <g id="tile-r0-c1" transform="translate(50,0)">
	//     <text id="text-r0-c1-name" x="20" y="3.5278" font-family="Times New Roman" font-size="10pt" text-anchor="middle" fill="black">Rex</text>
	//   </g>
	// </svg>
}
