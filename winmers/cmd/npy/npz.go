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

package npy

import (
	"archive/zip"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// Entry is one independently encoded .npy member of an .npz archive.
type Entry struct {
	Name string // member name including the .npy suffix
	Data []byte // a complete .npy stream
}

// WriteArchive packages entries into an .npz file: a zip archive whose
// members are deflate-compressed, the encoding numpy's own
// savez_compressed writes and scipy reads back without plugins.
func WriteArchive(file string, entries []Entry) error {
	fh, err := os.Create(file)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(fh)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			fh.Close()
			return err
		}
		if _, err = w.Write(e.Data); err != nil {
			fh.Close()
			return err
		}
	}

	if err = zw.Close(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
