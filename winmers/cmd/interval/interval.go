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

// Package interval provides the half-open genomic interval algebra used for
// blacklist masking and window overlap scoring, and the BED loaders feeding
// it.
package interval

import "sort"

// Interval is a half-open genomic range [Start, End).
type Interval struct {
	Start uint64
	End   uint64
}

// Window is a half-open genomic range with its original line index in the
// window BED file, kept for restoring input order in the final output.
type Window struct {
	Start uint64
	End   uint64
	Index uint64
}

// MaskByte is written over every blacklisted base of a reference sequence.
// The codec encodes it as a non-base digit, so any k-mer window overlapping
// a masked base resolves to SentinelN.
const MaskByte = 'X'

// Merge sorts intervals by start and coalesces every overlapping or touching
// pair. The result is sorted, pairwise-disjoint and non-touching, and covers
// exactly the union of the inputs.
func Merge(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return ivs
	}

	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start == ivs[j].Start {
			return ivs[i].End < ivs[j].End
		}
		return ivs[i].Start < ivs[j].Start
	})

	merged := make([]Interval, 0, len(ivs))
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.Start <= cur.End { // overlap or touch
			if iv.End > cur.End {
				cur.End = iv.End
			}
		} else {
			merged = append(merged, cur)
			cur = iv
		}
	}
	return append(merged, cur)
}

// Mask overwrites every base inside the intervals with MaskByte.
// Intervals extending past the sequence end are silently clipped.
func Mask(seq []byte, ivs []Interval) {
	n := uint64(len(seq))
	for _, iv := range ivs {
		if iv.Start >= n {
			break
		}
		end := iv.End
		if end > n {
			end = n
		}
		for i := iv.Start; i < end; i++ {
			seq[i] = MaskByte
		}
	}
}

// OverlapFraction returns the fraction of [start, end) covered by the
// intervals, which must be sorted and disjoint (the output of Merge).
//
// ptr is a forward-only cursor shared across a series of queries: it skips
// intervals ending at or before the query start and is left on the first
// interval that may overlap the next query. Queries must therefore arrive in
// non-decreasing start order; out-of-order queries silently under-count.
func OverlapFraction(ivs []Interval, start, end uint64, ptr *int) float64 {
	for *ptr < len(ivs) && ivs[*ptr].End <= start {
		*ptr++
	}

	var covered uint64
	for i := *ptr; i < len(ivs) && ivs[i].Start < end; i++ {
		s, e := ivs[i].Start, ivs[i].End
		if s < start {
			s = start
		}
		if e > end {
			e = end
		}
		if e > s {
			covered += e - s
		}
	}
	return float64(covered) / float64(end-start)
}

// FullContainment reports whether a single interval fully contains
// [start, end). Same sorted/disjoint input and ascending-query pointer
// contract as OverlapFraction.
func FullContainment(ivs []Interval, start, end uint64, ptr *int) bool {
	for *ptr < len(ivs) && ivs[*ptr].End <= start {
		*ptr++
	}
	if *ptr >= len(ivs) {
		return false
	}
	iv := ivs[*ptr]
	return iv.Start <= start && iv.End >= end
}
