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

// Package motif turns raw numeric k-mer counts into human-readable motif
// counts: decoding, reverse-complement canonicalization, and the ordered
// motif universes that define output column order.
package motif

import (
	"github.com/twotwotwo/sorts/sortutil"
	"github.com/winmers/winmers/winmers/cmd/kmer"
)

// FullUniverseMaxK is the largest k for which the output contains a column
// for every possible motif (4^k of them). Above it, only observed motifs get
// columns; the full space would explode (4^7 is fine, 4^27 is not, and the
// cutoff matches the files downstream tooling expects).
const FullUniverseMaxK = 6

// Decoded maps k to per-motif counts for one window.
type Decoded map[uint8]map[string]uint64

var comp [256]byte

func init() {
	for i := range comp {
		comp[i] = byte(i)
	}
	comp['A'], comp['a'] = 'T', 'T'
	comp['T'], comp['t'] = 'A', 'A'
	comp['C'], comp['c'] = 'G', 'G'
	comp['G'], comp['g'] = 'C', 'C'
	comp['N'], comp['n'] = 'N', 'N'
}

// RevComp returns the reverse complement of a motif.
// A<->T, C<->G, N->N; any other byte passes through unchanged.
func RevComp(m string) string {
	buf := make([]byte, len(m))
	for i := 0; i < len(m); i++ {
		buf[len(m)-1-i] = comp[m[i]]
	}
	return string(buf)
}

// Canonical returns the lexicographically smaller of a motif and its
// reverse complement. It is idempotent, and a motif and its reverse
// complement share one canonical form.
func Canonical(m string) string {
	rc := RevComp(m)
	if m <= rc {
		return m
	}
	return rc
}

// Fold collapses a motif count map into canonical keys, summing the counts
// of every motif pair folding to the same key.
func Fold(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for motif, cnt := range m {
		out[Canonical(motif)] += cnt
	}
	return out
}

// Decode translates one window's raw (k, code) counts into per-k motif
// counts. Motifs containing 'N' (sentinel hits) are dropped and never reach
// the output.
func Decode(counts map[kmer.Kmer]uint64, specs map[uint8]*kmer.Spec) Decoded {
	bins := make(Decoded, len(specs))
	for km, cnt := range counts {
		m := specs[km.K].Decode(km.Code)
		if containsN(m) {
			continue
		}
		bin, ok := bins[km.K]
		if !ok {
			bin = make(map[string]uint64)
			bins[km.K] = bin
		}
		bin[m] = cnt
	}
	return bins
}

func containsN(m string) bool {
	for i := 0; i < len(m); i++ {
		if m[i] == 'N' {
			return true
		}
	}
	return false
}

// Merge sums any number of decoded windows into one, per k and motif.
func Merge(all []Decoded) Decoded {
	merged := make(Decoded)
	for _, dc := range all {
		for k, bin := range dc {
			out, ok := merged[k]
			if !ok {
				out = make(map[string]uint64, len(bin))
				merged[k] = out
			}
			for m, cnt := range bin {
				out[m] += cnt
			}
		}
	}
	return merged
}

// FullUniverse enumerates every sentinel-free motif of a k: codes
// 0..5^k-1 decoded and filtered of 'N', i.e. the 4^k pure-ACGT motifs.
func FullUniverse(spec *kmer.Spec) []string {
	maxCode := kmer.MaxCode(spec.K)
	motifs := make([]string, 0, maxCode+1)
	for code := uint64(0); code <= maxCode; code++ {
		m := spec.Decode(code)
		if containsN(m) {
			continue
		}
		motifs = append(motifs, m)
	}
	return motifs
}

// Prepare produces, for every requested k, the per-window folded count maps
// and the sorted motif list that defines column order for that k.
//
// For k <= FullUniverseMaxK the motif list is the complete universe, so
// unobserved motifs appear as explicit zero columns. For larger k it holds
// exactly the motifs observed in at least one window. With canonical on,
// folding is applied identically to the window maps and the universe, so
// both always agree.
//
// The returned windows slice is aligned with the input; the motif lists are
// sorted and thus reproducible run-to-run.
func Prepare(windows []Decoded, canonical bool, specs map[uint8]*kmer.Spec) ([]Decoded, map[uint8][]string) {
	out := make([]Decoded, len(windows))
	for i := range out {
		out[i] = make(Decoded, len(specs))
	}
	motifsByK := make(map[uint8][]string, len(specs))

	for k, spec := range specs {
		universe := make(map[string]interface{})

		for i, win := range windows {
			bin := win[k]
			if canonical {
				bin = Fold(bin)
			} else if bin == nil {
				bin = make(map[string]uint64)
			}
			out[i][k] = bin

			if spec.K > FullUniverseMaxK {
				for m := range bin {
					universe[m] = struct{}{}
				}
			}
		}

		if spec.K <= FullUniverseMaxK {
			for _, m := range FullUniverse(spec) {
				if canonical {
					m = Canonical(m)
				}
				universe[m] = struct{}{}
			}
		}

		motifs := make([]string, 0, len(universe))
		for m := range universe {
			motifs = append(motifs, m)
		}
		sortutil.Strings(motifs)
		motifsByK[k] = motifs
	}

	return out, motifsByK
}
