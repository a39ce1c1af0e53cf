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

package cmd

import (
	"github.com/twotwotwo/sorts/sortutil"

	"github.com/winmers/winmers/winmers/cmd/motif"
	"github.com/winmers/winmers/winmers/cmd/npy"
)

// writeDenseCounts writes the windows x motifs matrix for one k as a
// dense uint64 .npy file. Columns follow the sorted motif list, so the
// matrix lines up with the motif listing written next to it.
func writeDenseCounts(prepared []motif.Decoded, k uint8, motifs []string, prefix string) error {
	rows := len(prepared)
	cols := len(motifs)

	data := make([]uint64, rows*cols)
	for i, win := range prepared {
		counts := win[k]
		if counts == nil {
			continue
		}
		row := data[i*cols : (i+1)*cols]
		for j, m := range motifs {
			row[j] = counts[m]
		}
	}

	return npy.WriteUint64Matrix(prefix+"_counts.npy", rows, cols, data)
}

// writeSparseCounts writes the matrix for one k as a scipy COO archive:
// row, col and data vectors, the shape, and the "coo" format tag. Column
// indices within a row are emitted in ascending order.
func writeSparseCounts(prepared []motif.Decoded, k uint8, motifs []string, prefix string) error {
	colIndex := make(map[string]int, len(motifs))
	for j, m := range motifs {
		colIndex[m] = j
	}

	var rowIdx, colIdx, values []uint64
	cols := make([]int, 0, 64)
	for i, win := range prepared {
		counts := win[k]
		if len(counts) == 0 {
			continue
		}

		cols = cols[:0]
		for m, c := range counts {
			if c == 0 {
				continue
			}
			j, ok := colIndex[m]
			if !ok {
				continue
			}
			cols = append(cols, j)
		}
		sortutil.Ints(cols)

		for _, j := range cols {
			rowIdx = append(rowIdx, uint64(i))
			colIdx = append(colIdx, uint64(j))
			values = append(values, counts[motifs[j]])
		}
	}

	entries := []npy.Entry{
		{Name: "row.npy", Data: npy.Uint64Vector(rowIdx)},
		{Name: "col.npy", Data: npy.Uint64Vector(colIdx)},
		{Name: "data.npy", Data: npy.Uint64Vector(values)},
		{Name: "shape.npy", Data: npy.Int64Vector([]int64{int64(len(prepared)), int64(len(motifs))})},
		{Name: "format.npy", Data: npy.StringScalar("coo")},
	}
	return npy.WriteArchive(prefix+"_counts_sparse.npz", entries)
}
