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

// Package npy writes NumPy .npy arrays and .npz archives.
//
// The files are consumed by third-party tooling (numpy.load,
// scipy.sparse.load_npz), so the byte layout is fixed: the 6-byte magic,
// format version 1.0, a little-endian uint16 header length, and a Python
// dict literal header padded with spaces to a multiple of 16 bytes and
// terminated by a newline. All numeric data is little-endian.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

var le = binary.LittleEndian

// Magic starts every .npy stream, followed by the format version.
var Magic = [6]byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// ErrShapeMismatch means the data length does not match rows*cols.
var ErrShapeMismatch = errors.New("npy: data length does not match shape")

// header renders the .npy preamble for a dtype descriptor and a Python
// shape tuple literal, e.g. ("<u8", "(3, 4)") or ("|S3", "()").
// The total preamble length (magic + version + length field + dict) is
// padded to a multiple of 16, as the format requires.
func header(descr, shape string) []byte {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shape)

	// 6-byte magic + 2-byte version + 2-byte header length
	preambleLen := 10
	pad := 16 - (preambleLen+len(dict)+1)%16
	if pad == 16 {
		pad = 0
	}

	buf := bytes.NewBuffer(make([]byte, 0, preambleLen+len(dict)+pad+1))
	buf.Write(Magic[:])
	buf.Write([]byte{1, 0}) // format version 1.0

	var lenField [2]byte
	le.PutUint16(lenField[:], uint16(len(dict)+pad+1))
	buf.Write(lenField[:])

	buf.WriteString(dict)
	for i := 0; i < pad; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Uint64Matrix serializes a row-major rows x cols matrix of uint64
// ('<u8') into a byte buffer.
func Uint64Matrix(rows, cols int, data []uint64) ([]byte, error) {
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}
	h := header("<u8", fmt.Sprintf("(%d, %d)", rows, cols))
	buf := make([]byte, len(h)+len(data)*8)
	copy(buf, h)
	for i, v := range data {
		le.PutUint64(buf[len(h)+i*8:], v)
	}
	return buf, nil
}

// WriteUint64Matrix writes a row-major rows x cols uint64 matrix to a file.
// The data is streamed, not buffered whole, as dense matrices can be large.
func WriteUint64Matrix(file string, rows, cols int, data []uint64) error {
	if len(data) != rows*cols {
		return ErrShapeMismatch
	}

	fh, err := os.Create(file)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(fh, 1<<16)

	if _, err = w.Write(header("<u8", fmt.Sprintf("(%d, %d)", rows, cols))); err != nil {
		fh.Close()
		return err
	}

	var buf [8]byte
	for _, v := range data {
		le.PutUint64(buf[:], v)
		if _, err = w.Write(buf[:]); err != nil {
			fh.Close()
			return err
		}
	}

	if err = w.Flush(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Uint64Vector serializes a 1-D uint64 array ('<u8').
func Uint64Vector(v []uint64) []byte {
	h := header("<u8", fmt.Sprintf("(%d,)", len(v)))
	buf := make([]byte, len(h)+len(v)*8)
	copy(buf, h)
	for i, x := range v {
		le.PutUint64(buf[len(h)+i*8:], x)
	}
	return buf
}

// Int64Vector serializes a 1-D int64 array ('<i8').
func Int64Vector(v []int64) []byte {
	h := header("<i8", fmt.Sprintf("(%d,)", len(v)))
	buf := make([]byte, len(h)+len(v)*8)
	copy(buf, h)
	for i, x := range v {
		le.PutUint64(buf[len(h)+i*8:], uint64(x))
	}
	return buf
}

// StringScalar serializes a 0-D bytes scalar ('|S<n>'), e.g. the "coo"
// format tag of a scipy sparse archive.
func StringScalar(s string) []byte {
	h := header(fmt.Sprintf("|S%d", len(s)), "()")
	buf := make([]byte, 0, len(h)+len(s))
	buf = append(buf, h...)
	return append(buf, s...)
}
