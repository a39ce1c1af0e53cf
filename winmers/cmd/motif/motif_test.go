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

package motif

import (
	"math/rand"
	"testing"

	"github.com/shenwei356/kmers"
	"github.com/winmers/winmers/winmers/cmd/kmer"
)

func TestRevComp(t *testing.T) {
	tests := []struct{ in, expected string }{
		{"A", "T"},
		{"ACGT", "ACGT"}, // palindrome
		{"AACG", "CGTT"},
		{"ANT", "ANT"},
		{"GGG", "CCC"},
	}
	for _, test := range tests {
		if got := RevComp(test.in); got != test.expected {
			t.Errorf("revcomp(%s) = %s, expected %s", test.in, got, test.expected)
		}
	}
}

// TestRevCompOracle checks the string reverse complement against the
// 2-bit k-mer codec on random ACGT motifs.
func TestRevCompOracle(t *testing.T) {
	bases := []byte{'A', 'C', 'G', 'T'}
	r := rand.New(rand.NewSource(3))

	for trial := 0; trial < 200; trial++ {
		k := 1 + r.Intn(31)
		m := make([]byte, k)
		for i := range m {
			m[i] = bases[r.Intn(4)]
		}

		code, err := kmers.Encode(m)
		if err != nil {
			t.Errorf("encoding %s: %s", m, err)
			return
		}
		expected := string(kmers.Decode(kmers.RevComp(code, k), k))

		if got := RevComp(string(m)); got != expected {
			t.Errorf("revcomp(%s) = %s, codec says %s", m, got, expected)
			return
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ in, expected string }{
		{"AACG", "AACG"}, // already smaller than CGTT
		{"CGTT", "AACG"},
		{"ACGT", "ACGT"}, // palindrome maps to itself
		{"T", "A"},
		{"GCGC", "GCGC"}, // palindrome
	}
	for _, test := range tests {
		if got := Canonical(test.in); got != test.expected {
			t.Errorf("canonical(%s) = %s, expected %s", test.in, got, test.expected)
		}
		// idempotent
		if got := Canonical(Canonical(test.in)); got != test.expected {
			t.Errorf("canonical not idempotent for %s", test.in)
		}
		// motif and reverse complement share one canonical form
		if Canonical(test.in) != Canonical(RevComp(test.in)) {
			t.Errorf("canonical(%s) != canonical(revcomp)", test.in)
		}
	}
}

func TestFold(t *testing.T) {
	folded := Fold(map[string]uint64{
		"AACG": 3,
		"CGTT": 5, // revcomp of AACG
		"ACGT": 2, // palindrome
	})
	if len(folded) != 2 {
		t.Errorf("folded to %v", folded)
		return
	}
	if folded["AACG"] != 8 {
		t.Errorf("AACG count %d, expected 8", folded["AACG"])
	}
	if folded["ACGT"] != 2 {
		t.Errorf("ACGT count %d, expected 2", folded["ACGT"])
	}
}

func TestDecodeDropsN(t *testing.T) {
	specs, err := kmer.NewSpecs([]int{2})
	if err != nil {
		t.Error(err)
		return
	}

	counts := map[kmer.Kmer]uint64{
		{K: 2, Code: 1}: 4, // AC
		{K: 2, Code: kmer.EncodeBase('G')*5 + 4}: 7, // GN
	}
	dc := Decode(counts, specs)
	if len(dc[2]) != 1 || dc[2]["AC"] != 4 {
		t.Errorf("decoded to %v", dc[2])
	}
}

func TestMerge(t *testing.T) {
	a := Decoded{2: map[string]uint64{"AC": 1, "GT": 2}}
	b := Decoded{2: map[string]uint64{"AC": 3}, 3: map[string]uint64{"ACG": 1}}

	merged := Merge([]Decoded{a, b})
	if merged[2]["AC"] != 4 || merged[2]["GT"] != 2 || merged[3]["ACG"] != 1 {
		t.Errorf("merged to %v", merged)
	}
}

func TestFullUniverse(t *testing.T) {
	for _, test := range []struct {
		k        int
		expected int
	}{{1, 4}, {2, 16}, {3, 64}} {
		spec, err := kmer.NewSpec(test.k)
		if err != nil {
			t.Errorf("k=%d: %s", test.k, err)
			return
		}
		universe := FullUniverse(spec)
		if len(universe) != test.expected {
			t.Errorf("k=%d: %d motifs, expected %d", test.k, len(universe), test.expected)
		}
		for _, m := range universe {
			if containsN(m) {
				t.Errorf("k=%d: universe contains %s", test.k, m)
				return
			}
		}
	}
}

func TestPrepareFullUniverse(t *testing.T) {
	specs, err := kmer.NewSpecs([]int{2})
	if err != nil {
		t.Error(err)
		return
	}

	windows := []Decoded{
		{2: map[string]uint64{"AC": 1}},
		{2: map[string]uint64{"GT": 2}},
	}

	prepared, motifsByK := Prepare(windows, false, specs)
	if len(prepared) != 2 {
		t.Errorf("%d prepared windows", len(prepared))
		return
	}
	// k=2 is within the full-universe range: all 16 columns
	if len(motifsByK[2]) != 16 {
		t.Errorf("%d motifs, expected 16", len(motifsByK[2]))
	}
	for i := 1; i < len(motifsByK[2]); i++ {
		if motifsByK[2][i-1] >= motifsByK[2][i] {
			t.Errorf("motif list not sorted at %d", i)
			return
		}
	}
}

func TestPrepareCanonicalFolding(t *testing.T) {
	specs, err := kmer.NewSpecs([]int{2})
	if err != nil {
		t.Error(err)
		return
	}

	windows := []Decoded{
		{2: map[string]uint64{"AC": 1, "GT": 2, "TA": 3}},
	}

	prepared, motifsByK := Prepare(windows, true, specs)

	// 16 motifs fold to 10 canonical forms for k=2
	if len(motifsByK[2]) != 10 {
		t.Errorf("%d canonical motifs, expected 10", len(motifsByK[2]))
	}
	// AC and its revcomp GT collapse
	if prepared[0][2]["AC"] != 3 {
		t.Errorf("AC count %d, expected 3", prepared[0][2]["AC"])
	}
	if _, ok := prepared[0][2]["GT"]; ok {
		t.Errorf("non-canonical GT survived folding")
	}
	if prepared[0][2]["TA"] != 3 {
		t.Errorf("TA count %d, expected 3", prepared[0][2]["TA"])
	}
	// every universe motif must be canonical
	for _, m := range motifsByK[2] {
		if Canonical(m) != m {
			t.Errorf("non-canonical motif %s in universe", m)
		}
	}
}

func TestPrepareObservedOnly(t *testing.T) {
	specs, err := kmer.NewSpecs([]int{8})
	if err != nil {
		t.Error(err)
		return
	}

	windows := []Decoded{
		{8: map[string]uint64{"ACGTACGT": 1}},
		{8: map[string]uint64{"AAAATTTT": 2, "ACGTACGT": 1}},
	}

	_, motifsByK := Prepare(windows, false, specs)
	// k=8 is above the full-universe cutoff: observed motifs only
	if len(motifsByK[8]) != 2 {
		t.Errorf("motifs %v, expected the 2 observed", motifsByK[8])
	}
}
