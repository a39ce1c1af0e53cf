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

package kmer

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestChooseWidth(t *testing.T) {
	tests := []struct {
		k     int
		width Width
	}{
		{1, W8}, // 5^1-1 = 4
		{3, W8}, // 5^3-1 = 124
		{4, W16},
		{6, W16}, // 5^6-1 = 15624
		{7, W32},
		{13, W32}, // 5^13-1 = 1220703124
		{14, W64},
		{27, W64},
	}
	for _, test := range tests {
		w, sNone, sN, err := ChooseWidth(test.k)
		if err != nil {
			t.Errorf("k=%d: %s", test.k, err)
			return
		}
		if w != test.width {
			t.Errorf("k=%d: width %d, expected %d", test.k, w, test.width)
		}
		if sN != sNone-1 {
			t.Errorf("k=%d: sentinels %d and %d are not adjacent", test.k, sNone, sN)
		}
		if sNone != maxOfWidth(w) {
			t.Errorf("k=%d: SentinelNone %d is not the width maximum", test.k, sNone)
		}
		if MaxCode(test.k) >= sN {
			t.Errorf("k=%d: real code space %d collides with sentinel %d",
				test.k, MaxCode(test.k), sN)
		}
	}
}

func maxOfWidth(w Width) uint64 {
	switch w {
	case W8:
		return math.MaxUint8
	case W16:
		return math.MaxUint16
	case W32:
		return math.MaxUint32
	}
	return math.MaxUint64
}

func TestChooseWidthErrors(t *testing.T) {
	for _, k := range []int{-1, 0, 28, 100} {
		if _, _, _, err := ChooseWidth(k); err == nil {
			t.Errorf("k=%d: expected an error", k)
		}
	}
}

func TestNewSpecsDuplicate(t *testing.T) {
	if _, err := NewSpecs([]int{2, 3, 2}); err == nil {
		t.Errorf("duplicate k accepted")
	}
	specs, err := NewSpecs([]int{1, 5, 27})
	if err != nil {
		t.Errorf("valid sizes rejected: %s", err)
		return
	}
	if len(specs) != 3 {
		t.Errorf("%d specs, expected 3", len(specs))
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	bases := []byte{'A', 'C', 'G', 'T'}
	r := rand.New(rand.NewSource(1))

	for k := 1; k <= MaxK; k++ {
		spec, err := NewSpec(k)
		if err != nil {
			t.Errorf("k=%d: %s", k, err)
			return
		}

		for trial := 0; trial < 20; trial++ {
			motif := make([]byte, k)
			var code uint64
			for i := range motif {
				b := bases[r.Intn(4)]
				motif[i] = b
				code = code*5 + EncodeBase(b)
			}
			if decoded := spec.Decode(code); decoded != string(motif) {
				t.Errorf("k=%d: code %d decoded to %s, expected %s",
					k, code, decoded, motif)
				return
			}
		}
	}
}

func TestDecodeSentinels(t *testing.T) {
	spec, err := NewSpec(3)
	if err != nil {
		t.Error(err)
		return
	}
	if m := spec.Decode(spec.SentinelNone); m != "NNN" {
		t.Errorf("SentinelNone decoded to %s", m)
	}
	if m := spec.Decode(spec.SentinelN); m != "NNN" {
		t.Errorf("SentinelN decoded to %s", m)
	}
}

func TestBuildCodes(t *testing.T) {
	spec, err := NewSpec(2)
	if err != nil {
		t.Error(err)
		return
	}

	// ACGTN: AC=0*5+1=1, CG=1*5+2=7, GT=2*5+3=13, TN -> sentinel, tail
	codes := spec.BuildCodes([]byte("ACGTN"))
	if codes.Len() != 5 {
		t.Errorf("%d codes for 5 bases", codes.Len())
		return
	}
	expected := []uint64{1, 7, 13, spec.SentinelN, spec.SentinelNone}
	for i, e := range expected {
		if got := codes.Get(i); got != e {
			t.Errorf("position %d: code %d, expected %d", i, got, e)
		}
	}
}

func TestBuildCodesLowercase(t *testing.T) {
	spec, err := NewSpec(3)
	if err != nil {
		t.Error(err)
		return
	}
	upper := spec.BuildCodes([]byte("ACGTACGT"))
	lower := spec.BuildCodes([]byte("acgtacgt"))
	for i := 0; i < upper.Len(); i++ {
		if upper.Get(i) != lower.Get(i) {
			t.Errorf("position %d: case changes the code", i)
			return
		}
	}
}

func TestBuildCodesAllPositions(t *testing.T) {
	// every code must equal the direct encoding of the window at its position
	r := rand.New(rand.NewSource(11))
	alphabet := []byte("ACGTN")
	seq := make([]byte, 300)
	for i := range seq {
		seq[i] = alphabet[r.Intn(len(alphabet))]
	}

	for _, k := range []int{1, 2, 3, 5, 8, 13} {
		spec, err := NewSpec(k)
		if err != nil {
			t.Errorf("k=%d: %s", k, err)
			return
		}
		codes := spec.BuildCodes(seq)
		if codes.Len() != len(seq) {
			t.Errorf("k=%d: %d codes for %d bases", k, codes.Len(), len(seq))
			return
		}

		for pos := 0; pos < len(seq); pos++ {
			var expected uint64
			if pos+k > len(seq) {
				expected = spec.SentinelNone
			} else {
				window := seq[pos : pos+k]
				if strings.ContainsRune(string(window), 'N') {
					expected = spec.SentinelN
				} else {
					for _, b := range window {
						expected = expected*5 + EncodeBase(b)
					}
				}
			}
			if got := codes.Get(pos); got != expected {
				t.Errorf("k=%d position %d: code %d, expected %d", k, pos, got, expected)
				return
			}
		}
	}
}

func TestBuildCodesShortSequence(t *testing.T) {
	spec, err := NewSpec(5)
	if err != nil {
		t.Error(err)
		return
	}
	codes := spec.BuildCodes([]byte("ACG"))
	if codes.Len() != 3 {
		t.Errorf("%d codes for 3 bases", codes.Len())
		return
	}
	for i := 0; i < 3; i++ {
		if codes.Get(i) != spec.SentinelNone {
			t.Errorf("position %d not SentinelNone for k > sequence length", i)
		}
	}
}

func TestCodesWidthPacking(t *testing.T) {
	for _, test := range []struct {
		k     int
		width Width
	}{{2, W8}, {5, W16}, {10, W32}, {20, W64}} {
		spec, err := NewSpec(test.k)
		if err != nil {
			t.Errorf("k=%d: %s", test.k, err)
			return
		}
		codes := spec.BuildCodes([]byte("ACGTACGTACGTACGTACGTACGT"))
		if codes.Width() != test.width {
			t.Errorf("k=%d: stored in %d bits, expected %d", test.k, codes.Width(), test.width)
		}
	}
}
