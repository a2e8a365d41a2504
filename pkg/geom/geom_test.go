package geom

import (
	"math"
	"testing"
)

func TestPtToMM(t *testing.T) {
	tests := []struct {
		pt   float64
		want float64
	}{
		{0, 0},
		{72, 25.4},
		{12, 4.2333},
		{36, 12.7},
	}

	for _, tt := range tests {
		if got := Round(PtToMM(tt.pt)); got != tt.want {
			t.Errorf("PtToMM(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}

	if got := MMToPt(PtToMM(18)); math.Abs(got-18) > 1e-9 {
		t.Errorf("MMToPt(PtToMM(18)) = %v", got)
	}
}

func TestLineHeight(t *testing.T) {
	if got := Round(LineHeight(72, 1.2)); got != 30.48 {
		t.Errorf("LineHeight(72, 1.2) = %v, want 30.48", got)
	}
	if LineHeight(12, 0) != LineHeight(12, DefaultLineSpacing) {
		t.Error("zero spacing should use the default")
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{10, "10"},
		{300, "300"},
		{0.1, "0.1"},
		{0.1 + 0.2, "0.3"},
		{4.233333333, "4.2333"},
		{-0.00001, "0"},
		{math.Copysign(0, -1), "0"},
		{-12.5, "-12.5"},
		{1e-5, "0"},
	}

	for _, tt := range tests {
		if got := Num(tt.v); got != tt.want {
			t.Errorf("Num(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`Tom & "Jerry" <3 'x'`, "Tom &amp; &quot;Jerry&quot; &lt;3 &apos;x&apos;"},
		{"a\x00b\x07c", "abc"},
		{"tab\there", "tab\there"},
		// decomposed e + combining acute becomes the precomposed form
		{"e\u0301", "\u00e9"},
		{"Jos\xe9 & co", "Jos\uFFFD &amp; co"},
	}

	for _, tt := range tests {
		if got := EscapeXML(tt.in); got != tt.want {
			t.Errorf("EscapeXML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIDs(t *testing.T) {
	if got := ElementID("text", 1, 2, "name"); got != "text-r1-c2-name" {
		t.Errorf("ElementID = %q", got)
	}
	if got := TileID(0, 3); got != "tile-r0-c3" {
		t.Errorf("TileID = %q", got)
	}
	if got := ClipID(2, 0, "photo"); got != "clip-r2-c0-photo" {
		t.Errorf("ClipID = %q", got)
	}
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		r, w, h float64
		want    float64
	}{
		{5, 40, 30, 5},
		{20, 40, 30, 15},
		{100, 10, 50, 5},
		{-1, 10, 10, 0},
	}

	for _, tt := range tests {
		if got := ClampRadius(tt.r, tt.w, tt.h); got != tt.want {
			t.Errorf("ClampRadius(%v, %v, %v) = %v, want %v", tt.r, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestBox(t *testing.T) {
	b := Box{X: 10, Y: 20, W: 40, H: 30}
	if b.Right() != 50 || b.Bottom() != 50 {
		t.Errorf("edges = %v,%v", b.Right(), b.Bottom())
	}
	if c := b.Center(); c != (Point{X: 30, Y: 35}) {
		t.Errorf("Center() = %v", c)
	}
	if !b.Overlaps(Box{X: 45, Y: 45, W: 10, H: 10}) {
		t.Error("expected overlap")
	}
	if b.Overlaps(Box{X: 50, Y: 20, W: 10, H: 10}) {
		t.Error("touching boxes must not overlap")
	}
	if !b.Within(Box{X: 0, Y: 0, W: 100, H: 100}) {
		t.Error("expected containment")
	}
}

func TestSplitLinesAndBaselines(t *testing.T) {
	lines := SplitLines("A\r\nB\nC")
	if len(lines) != 3 || lines[0] != "A" || lines[1] != "B" || lines[2] != "C" {
		t.Fatalf("SplitLines = %q", lines)
	}

	got := Baselines(2, 20, 5)
	if got[0] != 20 || got[1] != 25 {
		t.Errorf("Baselines(2, 20, 5) = %v, want [20 25]", got)
	}
}
