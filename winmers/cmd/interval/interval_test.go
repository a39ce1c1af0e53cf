// Copyright © 2024-2026 The winmers authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package interval

import (
	"math"
	"math/rand"
	"testing"

	itree "github.com/rdleal/intervalst/interval"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		in       []Interval
		expected []Interval
	}{
		{
			[]Interval{{10, 25}, {20, 40}, {50, 55}},
			[]Interval{{10, 40}, {50, 55}},
		},
		{ // touching intervals coalesce
			[]Interval{{0, 10}, {10, 20}, {20, 30}},
			[]Interval{{0, 30}},
		},
		{ // contained
			[]Interval{{0, 100}, {10, 20}},
			[]Interval{{0, 100}},
		},
		{ // unsorted input
			[]Interval{{50, 60}, {0, 10}},
			[]Interval{{0, 10}, {50, 60}},
		},
		{
			[]Interval{{5, 6}},
			[]Interval{{5, 6}},
		},
	}
	for _, test := range tests {
		merged := Merge(append([]Interval{}, test.in...))
		if len(merged) != len(test.expected) {
			t.Errorf("merged %v to %v, expected %v", test.in, merged, test.expected)
			continue
		}
		for i, iv := range merged {
			if iv != test.expected[i] {
				t.Errorf("merged %v to %v, expected %v", test.in, merged, test.expected)
				break
			}
		}
	}

	if merged := Merge(nil); len(merged) != 0 {
		t.Errorf("merging nothing produced %v", merged)
	}
}

func TestMask(t *testing.T) {
	seq := []byte("ACGTACGT")
	Mask(seq, []Interval{{2, 4}, {6, 8}})
	if string(seq) != "ACXXACXX" {
		t.Errorf("masked to %s", seq)
	}

	// clipping past the end
	seq = []byte("ACGT")
	Mask(seq, []Interval{{2, 100}})
	if string(seq) != "ACXX" {
		t.Errorf("masked to %s", seq)
	}

	// interval entirely beyond the sequence changes nothing
	seq = []byte("ACGT")
	Mask(seq, []Interval{{10, 20}})
	if string(seq) != "ACGT" {
		t.Errorf("masked to %s", seq)
	}
}

func TestOverlapFraction(t *testing.T) {
	ivs := []Interval{{10, 20}, {30, 40}}

	tests := []struct {
		start, end uint64
		expected   float64
	}{
		{10, 20, 1.0},  // exact cover
		{12, 18, 1.0},  // inside one interval
		{0, 10, 0.0},   // touching from the left
		{20, 30, 0.0},  // the gap
		{40, 50, 0.0},  // touching from the right
		{15, 35, 0.5},  // 5 + 5 of 20
		{0, 50, 0.4},   // 10 + 10 of 50
		{5, 15, 0.5},   // partial entry
		{38, 42, 0.5},  // partial exit
	}
	for _, test := range tests {
		ptr := 0
		got := OverlapFraction(ivs, test.start, test.end, &ptr)
		if math.Abs(got-test.expected) > 1e-12 {
			t.Errorf("[%d, %d): fraction %f, expected %f",
				test.start, test.end, got, test.expected)
		}
	}
}

func TestOverlapFractionAscendingCursor(t *testing.T) {
	ivs := []Interval{{10, 20}, {30, 40}, {50, 60}}

	// one shared cursor across ascending windows, as the scanner uses it
	ptr := 0
	var got []float64
	for s := uint64(0); s < 70; s += 10 {
		got = append(got, OverlapFraction(ivs, s, s+10, &ptr))
	}
	expected := []float64{0, 1, 0, 1, 0, 1, 0}
	for i := range expected {
		if math.Abs(got[i]-expected[i]) > 1e-12 {
			t.Errorf("window %d: fraction %f, expected %f", i, got[i], expected[i])
		}
	}
}

// TestOverlapFractionOracle checks the cursor-based scan against an
// interval tree on random data.
func TestOverlapFractionOracle(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	cmpFn := func(x, y uint64) int {
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
		return 0
	}

	for trial := 0; trial < 20; trial++ {
		var raw []Interval
		for i := 0; i < 50; i++ {
			s := uint64(r.Intn(10000))
			raw = append(raw, Interval{s, s + uint64(1+r.Intn(200))})
		}
		ivs := Merge(raw)

		tree := itree.NewSearchTree[Interval, uint64](cmpFn)
		for _, iv := range ivs {
			tree.Insert(iv.Start, iv.End, iv)
		}

		winSize := uint64(100 + r.Intn(400))
		ptr := 0
		for s := uint64(0); s < 11000; s += winSize {
			got := OverlapFraction(ivs, s, s+winSize, &ptr)

			// clip every intersecting interval; boundary-touching hits
			// clip to zero length, so open/closed treatment cannot differ
			var covered uint64
			if hits, ok := tree.AllIntersections(s, s+winSize); ok {
				for _, iv := range hits {
					lo, hi := iv.Start, iv.End
					if lo < s {
						lo = s
					}
					if hi > s+winSize {
						hi = s + winSize
					}
					if hi > lo {
						covered += hi - lo
					}
				}
			}
			expected := float64(covered) / float64(winSize)

			if math.Abs(got-expected) > 1e-12 {
				t.Errorf("trial %d window [%d, %d): fraction %f, tree says %f",
					trial, s, s+winSize, got, expected)
				return
			}
		}
	}
}

func TestFullContainment(t *testing.T) {
	ivs := []Interval{{10, 50}, {60, 70}}

	tests := []struct {
		start, end uint64
		expected   bool
	}{
		{10, 50, true},
		{20, 30, true},
		{10, 51, false},
		{5, 20, false},
		{50, 60, false}, // the gap
		{60, 70, true},
		{65, 80, false},
	}
	for _, test := range tests {
		ptr := 0
		if got := FullContainment(ivs, test.start, test.end, &ptr); got != test.expected {
			t.Errorf("[%d, %d): containment %v, expected %v",
				test.start, test.end, got, test.expected)
		}
	}

	ptr := 0
	if FullContainment(nil, 0, 10, &ptr) {
		t.Errorf("containment in an empty set")
	}
}
