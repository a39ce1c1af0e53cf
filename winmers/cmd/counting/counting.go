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

// Package counting scans positional k-mer codes within genomic windows and
// accumulates raw per-(k, code) counts.
package counting

import (
	"github.com/winmers/winmers/winmers/cmd/interval"
	"github.com/winmers/winmers/winmers/cmd/kmer"
)

// Enc bundles one k's code array with its sentinels for the window scan.
type Enc struct {
	K     uint8
	Codes *kmer.Codes

	None uint64
	N    uint64
}

// CountByWindow counts k-mers for every window of one chromosome, for every
// encoded k. Window ends are clipped to the chromosome length as a safety
// net; the caller normally clips already.
//
// A position contributes for a k only if its code is neither sentinel and
// the k-mer does not overrun the window end. The sentinels are the single
// source of truth for chromosome-tail and masked/ambiguous positions; the
// window boundary is the one skip the codec cannot know about.
//
// The returned count maps are in the same order as windows. Iteration order
// of the maps is unspecified; only the per-key sums matter.
func CountByWindow(encs []Enc, windows []interval.Window, chromLen uint64) []map[kmer.Kmer]uint64 {
	counts := make([]map[kmer.Kmer]uint64, len(windows))

	for wi, win := range windows {
		m := make(map[kmer.Kmer]uint64)
		counts[wi] = m

		end := win.End
		if end > chromLen {
			end = chromLen
		}

		for pos := win.Start; pos < end; pos++ {
			remaining := end - pos
			for _, enc := range encs {
				if remaining < uint64(enc.K) {
					continue
				}
				code := enc.Codes.Get(int(pos))
				if code == enc.None || code == enc.N {
					continue
				}
				m[kmer.Kmer{K: enc.K, Code: code}]++
			}
		}
	}
	return counts
}
