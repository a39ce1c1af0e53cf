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

// Package kmer implements the radix-5 positional k-mer codec.
//
// Every position of a reference sequence gets one numeric code: the base-5
// value of the k-mer starting there (A=0, C=1, G=2, T=3, any other byte=4).
// Positions where no complete k-mer fits hold SentinelNone, and positions
// whose window covers any non-ACGT byte hold SentinelN. Codes are stored in
// the narrowest integer width whose top two values can be reserved for the
// two sentinels.
package kmer

import (
	"math"

	"github.com/pkg/errors"
)

// MaxK is the largest supported k-mer length: 5^27-1 still fits in a uint64
// with two values left for the sentinels, 5^28-1 does not.
const MaxK = 27

// Bases maps a base-5 digit to its letter.
var Bases = [5]byte{'A', 'C', 'G', 'T', 'N'}

// Kmer is one counted unit: a k-mer length and its packed radix-5 code,
// promoted to uint64 whatever the storage width.
type Kmer struct {
	K    uint8
	Code uint64
}

// Width is the storage width (bits) of one positional code.
type Width uint8

// Available storage widths.
const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// baseDigits maps every byte to its base-5 digit.
// A/a=0, C/c=1, G/g=2, T/t=3, everything else (N, masked bytes, gaps)=4.
var baseDigits [256]uint64

func init() {
	for i := range baseDigits {
		baseDigits[i] = 4
	}
	baseDigits['A'], baseDigits['a'] = 0, 0
	baseDigits['C'], baseDigits['c'] = 1, 1
	baseDigits['G'], baseDigits['g'] = 2, 2
	baseDigits['T'], baseDigits['t'] = 3, 3
}

// EncodeBase returns the base-5 digit of one nucleotide byte.
func EncodeBase(b byte) uint64 {
	return baseDigits[b]
}

// Spec is a fully specified encoder/decoder for one k.
type Spec struct {
	K     int
	Width Width

	// SentinelNone marks positions where no complete k-mer exists.
	SentinelNone uint64
	// SentinelN marks positions whose window contains a non-ACGT byte.
	SentinelN uint64
}

// MaxCode returns 5^k-1, the highest real (sentinel-free) code for a k.
// k must be in 1..MaxK.
func MaxCode(k int) uint64 {
	code := uint64(1)
	for i := 0; i < k; i++ {
		code *= 5
	}
	return code - 1
}

// ChooseWidth selects the narrowest width such that 5^k-1 plus the two
// reserved sentinel values fits, and returns the width and both sentinels.
func ChooseWidth(k int) (Width, uint64, uint64, error) {
	if k < 1 {
		return 0, 0, 0, errors.Errorf("illegal k-mer size %d, must be positive", k)
	}
	if k > MaxK {
		return 0, 0, 0, errors.Errorf("k-mer size %d is too large, the highest allowed k is %d", k, MaxK)
	}

	maxReal := MaxCode(k)
	switch {
	case maxReal <= math.MaxUint8-2:
		return W8, math.MaxUint8, math.MaxUint8 - 1, nil
	case maxReal <= math.MaxUint16-2:
		return W16, math.MaxUint16, math.MaxUint16 - 1, nil
	case maxReal <= math.MaxUint32-2:
		return W32, math.MaxUint32, math.MaxUint32 - 1, nil
	case maxReal <= math.MaxUint64-2:
		return W64, math.MaxUint64, math.MaxUint64 - 1, nil
	}
	return 0, 0, 0, errors.Errorf("k=%d does not fit in uint64 with sentinel space", k)
}

// NewSpec builds the Spec for one k.
func NewSpec(k int) (*Spec, error) {
	w, sNone, sN, err := ChooseWidth(k)
	if err != nil {
		return nil, errors.Wrapf(err, "choosing storage width for k=%d", k)
	}
	return &Spec{K: k, Width: w, SentinelNone: sNone, SentinelN: sN}, nil
}

// NewSpecs builds one Spec per requested k, keyed by k.
// Out-of-range or duplicate sizes are errors, raised before any sequence work.
func NewSpecs(ks []int) (map[uint8]*Spec, error) {
	specs := make(map[uint8]*Spec, len(ks))
	for _, k := range ks {
		spec, err := NewSpec(k)
		if err != nil {
			return nil, err
		}
		if _, ok := specs[uint8(k)]; ok {
			return nil, errors.Errorf("duplicate k-mer size %d", k)
		}
		specs[uint8(k)] = spec
	}
	return specs, nil
}

// Decode reconstructs the k-letter motif of a code.
// Both sentinels decode to a string of k 'N's.
func (s *Spec) Decode(code uint64) string {
	buf := make([]byte, s.K)
	if code == s.SentinelNone || code == s.SentinelN {
		for i := range buf {
			buf[i] = 'N'
		}
		return string(buf)
	}
	for i := s.K - 1; i >= 0; i-- {
		buf[i] = Bases[code%5]
		code /= 5
	}
	return string(buf)
}

// BuildCodes encodes a whole sequence: one code per position, packed into
// the narrowest storage width of the Spec. The result length always equals
// the sequence length.
//
// The window value is maintained incrementally: each step removes the
// outgoing digit's contribution (digit * 5^(k-1)), multiplies by 5, and adds
// the incoming digit. A running count of non-ACGT digits inside the window
// decides between the numeric code and SentinelN.
func (s *Spec) BuildCodes(seq []byte) *Codes {
	k := s.K
	n := len(seq)

	raw := make([]uint64, 0, n)

	if k > n {
		for i := 0; i < n; i++ {
			raw = append(raw, s.SentinelNone)
		}
		return packCodes(raw, s.Width)
	}

	highestPlace := uint64(1)
	for i := 0; i < k-1; i++ {
		highestPlace *= 5
	}

	var code uint64
	var nInWindow int

	// first full window
	for i := 0; i < k; i++ {
		d := baseDigits[seq[i]]
		if d == 4 {
			nInWindow++
		}
		code = code*5 + d
	}
	if nInWindow > 0 {
		raw = append(raw, s.SentinelN)
	} else {
		raw = append(raw, code)
	}

	// slide
	for i := k; i < n; i++ {
		out := baseDigits[seq[i-k]]
		if out == 4 {
			nInWindow--
		}
		code -= out * highestPlace
		code *= 5

		in := baseDigits[seq[i]]
		if in == 4 {
			nInWindow++
		}
		code += in

		if nInWindow > 0 {
			raw = append(raw, s.SentinelN)
		} else {
			raw = append(raw, code)
		}
	}

	// tail positions without a full window, exactly k-1 of them
	for i := 0; i < k-1; i++ {
		raw = append(raw, s.SentinelNone)
	}

	return packCodes(raw, s.Width)
}

// Codes holds the per-position codes of one chromosome for one k,
// in one of four fixed-width backing arrays.
type Codes struct {
	width Width

	u8  []uint8
	u16 []uint16
	u32 []uint32
	u64 []uint64
}

func packCodes(raw []uint64, w Width) *Codes {
	c := &Codes{width: w}
	switch w {
	case W8:
		c.u8 = make([]uint8, len(raw))
		for i, v := range raw {
			c.u8[i] = uint8(v)
		}
	case W16:
		c.u16 = make([]uint16, len(raw))
		for i, v := range raw {
			c.u16[i] = uint16(v)
		}
	case W32:
		c.u32 = make([]uint32, len(raw))
		for i, v := range raw {
			c.u32[i] = uint32(v)
		}
	default:
		c.u64 = raw
	}
	return c
}

// Width returns the storage width.
func (c *Codes) Width() Width {
	return c.width
}

// Len returns the number of positions.
func (c *Codes) Len() int {
	switch c.width {
	case W8:
		return len(c.u8)
	case W16:
		return len(c.u16)
	case W32:
		return len(c.u32)
	}
	return len(c.u64)
}

// Get returns the code at position i, widened to uint64.
func (c *Codes) Get(i int) uint64 {
	switch c.width {
	case W8:
		return uint64(c.u8[i])
	case W16:
		return uint64(c.u16[i])
	case W32:
		return uint64(c.u32[i])
	}
	return c.u64[i]
}

// Release drops the backing array so a large chromosome's codes can be
// reclaimed right after its window scan, not at the end of the whole unit.
func (c *Codes) Release() {
	c.u8 = nil
	c.u16 = nil
	c.u32 = nil
	c.u64 = nil
}
