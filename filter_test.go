package pngio

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestFilterUp_KnownVector checks the Up filter against a hand-computed
// vector: row [10,20,30,40] over previous row [5,5,5,5].
func TestFilterUp_KnownVector(t *testing.T) {
	cur := []byte{10, 20, 30, 40}
	prev := []byte{5, 5, 5, 5}
	dst := make([]byte, 4)

	filterRow(FilterUp, dst, cur, prev, 1)
	want := []byte{5, 15, 25, 35}
	if !bytes.Equal(dst, want) {
		t.Errorf("Up filter = %v, want %v", dst, want)
	}

	unfilterRow(FilterUp, dst, prev, 1)
	if !bytes.Equal(dst, cur) {
		t.Errorf("Up unfilter = %v, want %v", dst, cur)
	}
}

func TestFilterSub_KnownVector(t *testing.T) {
	cur := []byte{10, 20, 30, 40}
	dst := make([]byte, 4)
	filterRow(FilterSub, dst, cur, make([]byte, 4), 1)
	want := []byte{10, 10, 10, 10}
	if !bytes.Equal(dst, want) {
		t.Errorf("Sub filter = %v, want %v", dst, want)
	}
}

// TestPaeth_Predictor checks the predictor's tie-breaking: left wins
// over up, up wins over up-left.
func TestPaeth_Predictor(t *testing.T) {
	tests := []struct {
		a, b, c byte // left, up, up-left
		want    byte
	}{
		{0, 0, 0, 0},
		{1, 2, 3, 1},     // p=0, left is closest
		{5, 5, 5, 5},     // all equal, left wins
		{10, 20, 10, 20}, // p=20, up is exact
		{200, 10, 100, 100},
		{255, 255, 255, 255},
	}
	for _, tt := range tests {
		if got := paeth(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("paeth(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

// TestFilterRoundTrip_AllFilters applies each filter and its inverse
// over random rows at several strides.
func TestFilterRoundTrip_AllFilters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, bpp := range []int{1, 2, 3, 4, 6, 8} {
		prev := make([]byte, 24)
		cur := make([]byte, 24)
		rng.Read(prev)
		rng.Read(cur)
		for ft := FilterNone; ft <= FilterPaeth; ft++ {
			dst := make([]byte, len(cur))
			filterRow(ft, dst, cur, prev, bpp)
			unfilterRow(ft, dst, prev, bpp)
			if !bytes.Equal(dst, cur) {
				t.Errorf("filter %s stride %d did not round-trip: got %v, want %v", ft, bpp, dst, cur)
			}
		}
	}
}

// TestChooseFilter_PrefersUpForVerticalGradient checks the heuristic on
// a row identical to its predecessor, where Up filters to all zeros.
func TestChooseFilter_PrefersUpForVerticalGradient(t *testing.T) {
	prev := []byte{7, 130, 9, 200, 11, 64}
	cur := append([]byte(nil), prev...)
	dst := make([]byte, len(cur))
	scratch := make([]byte, len(cur))

	ft := chooseFilter(dst, scratch, cur, prev, 1)
	if ft != FilterUp {
		t.Errorf("chooseFilter = %s, want up", ft)
	}
	for i, b := range dst {
		if b != 0 {
			t.Fatalf("filtered byte %d = %d, want 0", i, b)
		}
	}
}

// TestChooseFilter_MatchesForcedFilter checks that the heuristic's
// output bytes equal the bytes of applying the winning filter directly.
func TestChooseFilter_MatchesForcedFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	prev := make([]byte, 30)
	cur := make([]byte, 30)
	rng.Read(prev)
	rng.Read(cur)

	dst := make([]byte, 30)
	scratch := make([]byte, 30)
	ft := chooseFilter(dst, scratch, cur, prev, 3)

	direct := make([]byte, 30)
	filterRow(ft, direct, cur, prev, 3)
	if !bytes.Equal(dst, direct) {
		t.Errorf("chooseFilter bytes differ from filterRow(%s)", ft)
	}
}

func TestFilterType_String(t *testing.T) {
	names := map[FilterType]string{
		FilterNone:    "none",
		FilterSub:     "sub",
		FilterUp:      "up",
		FilterAverage: "average",
		FilterPaeth:   "paeth",
		FilterType(9): "invalid",
	}
	for ft, want := range names {
		if got := ft.String(); got != want {
			t.Errorf("FilterType(%d).String() = %q, want %q", byte(ft), got, want)
		}
	}
}
