// Package fonts estimates the printed width of text.
//
// Drawings keep text live, so the final glyphs are chosen by whatever
// application opens the file. Measurements here use the embedded Go Regular
// face as a stand-in for the template's font family and are only used to warn
// about text that is likely to overflow its box.
package fonts

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/bedforge/pkg/geom"
)

// refSize is the size in points the reference face is instantiated at.
// At 72 DPI one pixel is one point, so advances come back in points.
const refSize = 100

// fallbackRatio is the average advance per character, relative to the font
// size, used when the embedded face cannot be loaded.
const fallbackRatio = 0.5

var (
	faceOnce sync.Once
	face     font.Face
	faceMu   sync.Mutex // font.Face implementations are not safe for concurrent use
)

func loadFace() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return
	}
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    refSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return
	}
	face = fc
}

// WidthMM returns the estimated advance width of s in millimetres when set at sizePt.
func WidthMM(s string, sizePt float64) float64 {
	if s == "" || sizePt <= 0 {
		return 0
	}
	faceOnce.Do(loadFace)
	if face == nil {
		return EstimateWidthMM(s, sizePt)
	}

	faceMu.Lock()
	adv := font.MeasureString(face, s)
	faceMu.Unlock()

	pts := float64(adv) / 64 * sizePt / refSize
	return geom.PtToMM(pts)
}

// EstimateWidthMM is the character-count estimate used when no face is available.
func EstimateWidthMM(s string, sizePt float64) float64 {
	return geom.PtToMM(float64(utf8.RuneCountInString(s)) * sizePt * fallbackRatio)
}

// Fits reports whether every line fits within widthMM at sizePt.
func Fits(lines []string, sizePt, widthMM float64) bool {
	for _, l := range lines {
		if WidthMM(l, sizePt) > widthMM {
			return false
		}
	}
	return true
}
