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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"gonum.org/v1/gonum/stat"

	"github.com/winmers/winmers/winmers/cmd/counting"
	"github.com/winmers/winmers/winmers/cmd/interval"
	"github.com/winmers/winmers/winmers/cmd/kmer"
	"github.com/winmers/winmers/winmers/cmd/motif"
	"github.com/winmers/winmers/winmers/cmd/refseq"
)

// CountOptions are the options of the count command.
type CountOptions struct {
	Opt *Options // global options

	RefFile string
	OutDir  string
	KSizes  []int

	// windowing, exactly one active
	BySize int
	ByBed  string
	Global bool

	BlacklistFiles   []string
	BlacklistMinSize uint64

	Chromosomes []string

	Canonical   bool
	SaveSparse  bool
	CompressBed bool
}

func (opt *CountOptions) windowMode() string {
	switch {
	case opt.Global:
		return "global"
	case opt.ByBed != "":
		return "by-bed"
	}
	return "by-size"
}

// windowInfo is the coordinate record of one counted window.
type windowInfo struct {
	chrom string
	start uint64
	end   uint64
	index uint64 // original window index, for restoring by-bed input order

	overlap float64 // fraction of the window covered by blacklist intervals
}

// chromResult is everything one chromosome unit hands back: per-window
// decoded motif counts and window coordinates. The unit's sequence buffer
// and code arrays never leave it.
type chromResult struct {
	decoded []motif.Decoded
	wins    []windowInfo
	bases   int
}

// Count runs the whole pipeline: validate, fan out one unit per
// chromosome, merge in submission order, decode/fold/serialize.
func Count(opt *CountOptions) error {
	timeStart := time.Now()
	verbose := opt.Opt.Verbose

	// cheap checks first, before any chromosome work

	specs, err := kmer.NewSpecs(opt.KSizes)
	if err != nil {
		return err
	}

	var blacklistMap map[string][]interval.Interval
	if len(opt.BlacklistFiles) > 0 {
		if verbose {
			log.Infof("loading %d blacklist file(s)", len(opt.BlacklistFiles))
		}
		blacklistMap, err = interval.LoadBlacklists(opt.BlacklistFiles, opt.BlacklistMinSize, opt.Chromosomes)
		if err != nil {
			return err
		}
	}

	var windowsMap map[string][]interval.Window
	if opt.ByBed != "" {
		if verbose {
			log.Infof("loading window coordinates from %s", opt.ByBed)
		}
		windowsMap, err = interval.LoadWindows(opt.ByBed, opt.Chromosomes)
		if err != nil {
			return err
		}
	}

	if verbose {
		log.Infof("loading reference sequences from %s", opt.RefFile)
	}
	provider, err := refseq.NewFastaProvider(opt.RefFile)
	if err != nil {
		return err
	}
	defer provider.Close()

	for _, chrom := range opt.Chromosomes {
		if _, err = provider.Seq(chrom); err != nil {
			return err
		}
	}

	// one unit per chromosome on a bounded worker pool

	if verbose {
		log.Infof("counting k-mers in %d chromosome(s) with %d thread(s)",
			len(opt.Chromosomes), opt.Opt.NumCPUs)
	}

	var pbs *mpb.Progress
	var bar *mpb.Bar
	var chDuration chan time.Duration
	var doneDuration chan int
	if verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(opt.Chromosomes)),
			mpb.PrependDecorators(
				decor.Name("processed chromosomes: ", decor.WC{W: len("processed chromosomes: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 10),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)

		chDuration = make(chan time.Duration, opt.Opt.NumCPUs)
		doneDuration = make(chan int)
		go func() {
			for t := range chDuration {
				bar.Increment()
				bar.EwmaIncrBy(1, t)
			}
			doneDuration <- 1
		}()
	}

	results := make([]*chromResult, len(opt.Chromosomes))
	errs := make([]error, len(opt.Chromosomes))

	stop := make(chan struct{})
	var stopOnce sync.Once

	var wg sync.WaitGroup
	tokens := make(chan int, opt.Opt.NumCPUs)
	for i, chrom := range opt.Chromosomes {
		wg.Add(1)
		tokens <- 1
		go func(i int, chrom string) {
			startTime := time.Now()
			defer func() {
				if verbose {
					chDuration <- time.Since(startTime)
				}
				wg.Done()
				<-tokens
			}()

			select {
			case <-stop: // an earlier unit failed, give up
				return
			default:
			}

			r, err := processChrom(chrom, provider, specs,
				windowsMap[chrom], blacklistMap[chrom], opt)
			if err != nil {
				errs[i] = err
				stopOnce.Do(func() { close(stop) })
				return
			}
			results[i] = r
		}(i, chrom)
	}
	wg.Wait()

	if verbose {
		close(chDuration)
		<-doneDuration
		pbs.Wait()
	}

	// first failure in submission order wins; nothing is written
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	// merge in submission order, independent of scheduling jitter

	var allWindows []motif.Decoded
	var wins []windowInfo
	var totalBases int64
	for _, r := range results {
		allWindows = append(allWindows, r.decoded...)
		if !opt.Global {
			wins = append(wins, r.wins...)
		}
		totalBases += int64(r.bases)
	}

	if opt.Global {
		allWindows = []motif.Decoded{motif.Merge(allWindows)}
	}

	if verbose {
		log.Infof("decoded counts of %d window(s)", len(allWindows))
	}

	prepared, motifsByK := motif.Prepare(allWindows, opt.Canonical, specs)

	// restore the input-file row order of an external window list
	if opt.ByBed != "" {
		order := make([]int, len(wins))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return wins[order[a]].index < wins[order[b]].index
		})

		wins2 := make([]windowInfo, len(wins))
		prepared2 := make([]motif.Decoded, len(prepared))
		for i, j := range order {
			wins2[i] = wins[j]
			prepared2[i] = prepared[j]
		}
		wins, prepared = wins2, prepared2
	}

	// serialize, the terminal stage

	if verbose {
		log.Infof("writing count matrices to %s", opt.OutDir)
	}
	if err = writeMatrices(prepared, motifsByK, opt); err != nil {
		return err
	}

	if !opt.Global {
		if err = writeWindowBed(wins, opt); err != nil {
			return err
		}
	}

	info := &RunInfo{
		Version:     VERSION,
		KmerSizes:   opt.KSizes,
		WindowMode:  opt.windowMode(),
		WindowSize:  opt.BySize,
		Canonical:   opt.Canonical,
		Sparse:      opt.SaveSparse,
		Chromosomes: opt.Chromosomes,
		Windows:     len(prepared),
		InputBases:  totalBases,
	}
	if err = writeRunInfo(filepath.Join(opt.OutDir, FileInfo), info); err != nil {
		return err
	}

	if verbose {
		log.Infof("processed %s bases in %d chromosome(s)",
			humanize.Comma(totalBases), len(opt.Chromosomes))
		if len(wins) > 0 {
			overlaps := make([]float64, len(wins))
			for i, w := range wins {
				overlaps[i] = w.overlap
			}
			log.Infof("blacklist overlap per window: mean %.4f, stdev %.4f",
				stat.Mean(overlaps, nil), stat.StdDev(overlaps, nil))
		}
		log.Infof("elapsed time: %s", time.Since(timeStart))
	}

	return nil
}

// processChrom is one chromosome unit: load, mask, encode, scan, decode.
// Large buffers are released as soon as the next stage no longer needs
// them, to bound peak memory across concurrent units.
func processChrom(
	chrom string,
	provider refseq.Provider,
	specs map[uint8]*kmer.Spec,
	bedWindows []interval.Window,
	blacklist []interval.Interval,
	opt *CountOptions,
) (*chromResult, error) {
	seq, err := provider.Seq(chrom)
	if err != nil {
		return nil, errors.Wrapf(err, "chromosome %s: loading sequence", chrom)
	}
	chromLen := uint64(len(seq))

	interval.Mask(seq, blacklist)

	codesByK := make(map[uint8]*kmer.Codes, len(specs))
	for k, spec := range specs {
		codesByK[k] = spec.BuildCodes(seq)
	}
	seq = nil // the codes replace the sequence from here on

	var windows []interval.Window
	switch {
	case opt.BySize > 0:
		size := uint64(opt.BySize)
		n := (chromLen + size - 1) / size
		windows = make([]interval.Window, 0, n)
		for s := uint64(0); s < n; s++ {
			windows = append(windows, interval.Window{
				Start: s * size,
				End:   (s + 1) * size,
				Index: s,
			})
		}
	case opt.ByBed != "":
		windows = bedWindows
	default:
		windows = []interval.Window{{Start: 0, End: chromLen, Index: 0}}
	}

	encs := make([]counting.Enc, 0, len(specs))
	for k, spec := range specs {
		encs = append(encs, counting.Enc{
			K:     k,
			Codes: codesByK[k],
			None:  spec.SentinelNone,
			N:     spec.SentinelN,
		})
	}

	counts := counting.CountByWindow(encs, windows, chromLen)

	for _, codes := range codesByK {
		codes.Release()
	}

	r := &chromResult{
		decoded: make([]motif.Decoded, len(counts)),
		wins:    make([]windowInfo, 0, len(windows)),
		bases:   int(chromLen),
	}
	for i, c := range counts {
		r.decoded[i] = motif.Decode(c, specs)
	}

	var ptr int
	for _, win := range windows {
		end := win.End
		if end > chromLen {
			end = chromLen
		}
		var overlap float64
		if end > win.Start {
			overlap = interval.OverlapFraction(blacklist, win.Start, end, &ptr)
		}
		r.wins = append(r.wins, windowInfo{
			chrom:   chrom,
			start:   win.Start,
			end:     end,
			index:   win.Index,
			overlap: overlap,
		})
	}

	return r, nil
}

// writeMatrices writes one matrix (dense .npy or sparse .npz) and one
// motif list per k, smallest k first.
func writeMatrices(prepared []motif.Decoded, motifsByK map[uint8][]string, opt *CountOptions) error {
	if len(prepared) == 0 {
		return nil
	}

	ks := make([]uint8, 0, len(motifsByK))
	for k := range motifsByK {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })

	for _, k := range ks {
		motifs := motifsByK[k]
		prefix := filepath.Join(opt.OutDir, fmt.Sprintf("k%d", k))

		var err error
		if opt.SaveSparse {
			err = writeSparseCounts(prepared, k, motifs, prefix)
		} else {
			err = writeDenseCounts(prepared, k, motifs, prefix)
		}
		if err != nil {
			return errors.Wrapf(err, "writing counts for k=%d", k)
		}

		if err = writeMotifList(motifs, prefix+"_motifs.txt"); err != nil {
			return errors.Wrapf(err, "writing motif list for k=%d", k)
		}
	}
	return nil
}

func writeMotifList(motifs []string, file string) error {
	fh, err := os.Create(file)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fh)
	for _, m := range motifs {
		fmt.Fprintln(w, m)
	}
	if err = w.Flush(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// writeWindowBed writes the per-window coordinate listing:
// chromosome, start, end, and blacklist overlap fraction.
func writeWindowBed(wins []windowInfo, opt *CountOptions) error {
	file := filepath.Join(opt.OutDir, "bins.bed")
	if opt.CompressBed {
		file += ".gz"
	}

	fh, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, file)
	}

	var w *bufio.Writer
	var gz *pgzip.Writer
	if opt.CompressBed {
		gz = pgzip.NewWriter(fh)
		w = bufio.NewWriter(gz)
	} else {
		w = bufio.NewWriter(fh)
	}

	for _, win := range wins {
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\n", win.chrom, win.start, win.end, win.overlap)
	}

	if err = w.Flush(); err != nil {
		fh.Close()
		return errors.Wrap(err, file)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			fh.Close()
			return errors.Wrap(err, file)
		}
	}
	return fh.Close()
}
