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

package interval

import (
	"bufio"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

func skipBEDLine(line string) bool {
	return line == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// LoadBlacklist reads one blacklist BED file into a map keyed by chromosome
// name. Only the first three columns are used; extra columns are ignored.
// Intervals shorter than minSize or on chromosomes outside chroms are
// dropped. Non-numeric coordinates are a hard error.
//
// The per-chromosome interval lists are not yet merged; see LoadBlacklists.
func LoadBlacklist(file string, minSize uint64, chroms []string) (map[string][]Interval, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "opening blacklist BED %s", file)
	}
	defer fh.Close()

	wanted := make(map[string]interface{}, len(chroms))
	for _, chrom := range chroms {
		wanted[chrom] = struct{}{}
	}

	m := make(map[string][]Interval, len(chroms))
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if skipBEDLine(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("%s:%d: blacklist line needs at least 3 columns", file, lineNo)
		}
		chrom := fields[0]
		if _, ok := wanted[chrom]; !ok {
			continue
		}
		start, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: parsing interval start", file, lineNo)
		}
		end, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: parsing interval end", file, lineNo)
		}

		if end > start && end-start >= minSize {
			m[chrom] = append(m[chrom], Interval{Start: start, End: end})
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading blacklist BED %s", file)
	}
	return m, nil
}

// LoadBlacklists reads and concatenates any number of blacklist BED files,
// then merges the intervals per chromosome. The returned lists are sorted,
// disjoint and non-touching, ready for Mask and OverlapFraction.
func LoadBlacklists(files []string, minSize uint64, chroms []string) (map[string][]Interval, error) {
	merged := make(map[string][]Interval, len(chroms))
	for _, file := range files {
		single, err := LoadBlacklist(file, minSize, chroms)
		if err != nil {
			return nil, err
		}
		for chrom, ivs := range single {
			merged[chrom] = append(merged[chrom], ivs...)
		}
	}
	for chrom, ivs := range merged {
		merged[chrom] = Merge(ivs)
	}
	return merged, nil
}

// LoadWindows reads a window BED file into a map keyed by chromosome name.
// Every chromosome in chroms gets an entry, possibly empty. Each kept line
// is tagged with its zero-based original index across the whole file, and
// the per-chromosome lists are sorted by (start, end) for the ascending-query
// scans. Non-numeric coordinates are a hard error.
func LoadWindows(file string, chroms []string) (map[string][]Window, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "opening window BED %s", file)
	}
	defer fh.Close()

	m := make(map[string][]Window, len(chroms))
	wanted := make(map[string]interface{}, len(chroms))
	for _, chrom := range chroms {
		m[chrom] = nil
		wanted[chrom] = struct{}{}
	}

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	var lineNo int
	var winIdx uint64
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if skipBEDLine(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("%s:%d: window line needs at least 3 columns", file, lineNo)
		}
		chrom := fields[0]
		if _, ok := wanted[chrom]; !ok {
			continue
		}
		start, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: parsing window start", file, lineNo)
		}
		end, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: parsing window end", file, lineNo)
		}

		m[chrom] = append(m[chrom], Window{Start: start, End: end, Index: winIdx})
		winIdx++
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading window BED %s", file)
	}

	for _, wins := range m {
		sort.Slice(wins, func(i, j int) bool {
			if wins[i].Start == wins[j].Start {
				return wins[i].End < wins[j].End
			}
			return wins[i].Start < wins[j].Start
		})
	}
	return m, nil
}
