package fonts

import (
	"sync"
	"testing"
)

func TestWidthMM(t *testing.T) {
	if WidthMM("", 12) != 0 {
		t.Error("empty string should have zero width")
	}
	if WidthMM("abc", 0) != 0 {
		t.Error("zero size should have zero width")
	}

	short := WidthMM("ab", 12)
	long := WidthMM("abcdef", 12)
	if short <= 0 || long <= short {
		t.Errorf("widths not monotonic: short=%v long=%v", short, long)
	}

	// Width scales linearly with size.
	w12 := WidthMM("Hello", 12)
	w24 := WidthMM("Hello", 24)
	if diff := w24 - 2*w12; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("WidthMM(24) = %v, want %v", w24, 2*w12)
	}
}

func TestWidthMMConcurrent(t *testing.T) {
	want := WidthMM("Concurrent", 10)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := WidthMM("Concurrent", 10); got != want {
				t.Errorf("WidthMM = %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestFits(t *testing.T) {
	if !Fits([]string{"a", "b"}, 10, 100) {
		t.Error("short lines should fit in 100mm")
	}
	if Fits([]string{"a", "this line is certainly much too long for the box"}, 12, 10) {
		t.Error("long line should not fit in 10mm")
	}
}

func TestEstimateWidthMM(t *testing.T) {
	// 4 runes * 72pt * 0.5 = 144pt = 50.8mm
	if got := EstimateWidthMM("äbcd", 72); got < 50.79 || got > 50.81 {
		t.Errorf("EstimateWidthMM = %v, want 50.8", got)
	}
}
