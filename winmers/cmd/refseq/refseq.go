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

// Package refseq provides reference sequences keyed by chromosome name.
package refseq

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
)

// Provider hands out raw per-chromosome nucleotide bytes.
type Provider interface {
	// Seq returns the sequence of a chromosome. The returned buffer is
	// owned by the caller, who may mutate and release it freely.
	Seq(chrom string) ([]byte, error)

	// Chroms returns the chromosome names in file order.
	Chroms() []string

	Close() error
}

// FastaProvider serves chromosomes from a FASTA file (plain or compressed),
// loaded once up front. Sequences are keyed by record ID (the first word of
// the header line).
type FastaProvider struct {
	file  string
	seqs  map[string][]byte
	order []string
}

// NewFastaProvider reads all records of a FASTA file.
func NewFastaProvider(file string) (*FastaProvider, error) {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "opening reference FASTA %s", file)
	}

	p := &FastaProvider{
		file: file,
		seqs: make(map[string][]byte, 64),
	}

	var record *fastx.Record
	for {
		record, err = reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "reading reference FASTA %s", file)
		}

		id := string(record.ID)
		if _, ok := p.seqs[id]; ok {
			return nil, errors.Errorf("duplicate sequence ID %q in %s", id, file)
		}

		// the reader reuses the record buffer
		s := make([]byte, len(record.Seq.Seq))
		copy(s, record.Seq.Seq)

		p.seqs[id] = s
		p.order = append(p.order, id)
	}

	return p, nil
}

// Seq returns a fresh copy of the chromosome's sequence, so the caller can
// mask and release it without touching the provider's copy.
func (p *FastaProvider) Seq(chrom string) ([]byte, error) {
	s, ok := p.seqs[chrom]
	if !ok {
		return nil, errors.Errorf("chromosome %q not found in %s", chrom, p.file)
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

// Chroms returns the sequence IDs in file order.
func (p *FastaProvider) Chroms() []string {
	return p.order
}

// Close releases the loaded sequences.
func (p *FastaProvider) Close() error {
	p.seqs = nil
	p.order = nil
	return nil
}
