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
	"regexp"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts/sortutil"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "count reference k-mers in genomic windows",
	Long: `count reference k-mers in genomic windows

Counts k-mers of one or more sizes per genomic window of a reference
genome, optionally excluding blacklisted regions, and writes one
windows-by-motifs matrix per k-mer size plus a motif list defining the
column order.

Window modes (choose exactly one):
  --by-size N   fixed-size windows tiling every chromosome
  --by-bed F    windows from a BED file, output rows in input order
  --global      a single genome-wide window

Attention:
  1. For k > 6, only motifs observed at least once get a column;
     smaller k gets the full 4^k universe with explicit zeros.
  2. For large k, use --save-sparse to avoid huge dense files. The
     archive loads with scipy.sparse.load_npz().

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		refFile := expandPath(getFlagString(cmd, "ref"))
		if refFile == "" {
			checkError(fmt.Errorf("flag -r/--ref needed"))
		}
		outDir := expandPath(getFlagString(cmd, "out-dir"))
		if outDir == "" {
			checkError(fmt.Errorf("flag -o/--out-dir needed"))
		}

		kSizes := getFlagIntSlice(cmd, "kmer-sizes")
		if len(kSizes) == 0 {
			checkError(fmt.Errorf("flag -k/--kmer-sizes needed"))
		}

		copt := &CountOptions{
			Opt: opt,

			RefFile: refFile,
			OutDir:  outDir,
			KSizes:  kSizes,

			ByBed:  expandPath(getFlagString(cmd, "by-bed")),
			Global: getFlagBool(cmd, "global"),

			BlacklistMinSize: getFlagUint64(cmd, "blacklist-min-size"),

			Canonical:   getFlagBool(cmd, "canonical"),
			SaveSparse:  getFlagBool(cmd, "save-sparse"),
			CompressBed: getFlagBool(cmd, "compress-bed"),
		}

		if cmd.Flags().Changed("by-size") {
			copt.BySize = getFlagPositiveInt(cmd, "by-size")
		}

		for _, file := range getFlagStringSlice(cmd, "blacklist") {
			copt.BlacklistFiles = append(copt.BlacklistFiles, expandPath(file))
		}
		if dir := expandPath(getFlagString(cmd, "blacklist-dir")); dir != "" {
			files, err := getFileListFromDir(dir, reBlacklistFile, opt.NumCPUs)
			checkError(err)
			sortutil.Strings(files) // cwalk returns files in walk-pool order
			copt.BlacklistFiles = append(copt.BlacklistFiles, files...)
		}

		copt.Chromosomes = resolveChromosomes(cmd)

		makeOutDir(outDir, getFlagBool(cmd, "force"), opt.Verbose)

		checkError(Count(copt))
	},
}

var reBlacklistFile = regexp.MustCompile(`\.bed(\.gz)?$`)

// resolveChromosomes returns the chromosome list, in priority order:
// --chromosomes-file, then --chromosomes, then the default chr1..chr22.
func resolveChromosomes(cmd *cobra.Command) []string {
	if file := expandPath(getFlagString(cmd, "chromosomes-file")); file != "" {
		fh, err := xopen.Ropen(file)
		checkError(err)
		defer fh.Close()

		var chroms []string
		scanner := bufio.NewScanner(fh)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			chroms = append(chroms, line)
		}
		checkError(scanner.Err())
		return chroms
	}

	if chroms := getFlagStringSlice(cmd, "chromosomes"); len(chroms) > 0 {
		return chroms
	}

	chroms := make([]string, 0, 22)
	for i := 1; i <= 22; i++ {
		chroms = append(chroms, fmt.Sprintf("chr%d", i))
	}
	return chroms
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().StringP("ref", "r", "",
		"reference genome FASTA file, plain or gzipped")
	countCmd.Flags().StringP("out-dir", "o", "",
		"output directory for result files")
	countCmd.Flags().Bool("force", false,
		"overwrite an existing non-empty output directory")
	countCmd.Flags().IntSliceP("kmer-sizes", "k", nil,
		"k-mer sizes, 1-27, comma separated, no duplicates")

	countCmd.Flags().Int("by-size", 0,
		"use fixed-size windows of this many bases")
	countCmd.Flags().String("by-bed", "",
		"use windows from a BED file")
	countCmd.Flags().Bool("global", false,
		"use a single genome-wide window")
	countCmd.MarkFlagsOneRequired("by-size", "by-bed", "global")
	countCmd.MarkFlagsMutuallyExclusive("by-size", "by-bed", "global")

	countCmd.Flags().StringSliceP("blacklist", "b", nil,
		"BED file(s) of blacklisted regions to exclude")
	countCmd.Flags().StringP("blacklist-dir", "B", "",
		"directory to scan for blacklist .bed/.bed.gz files")
	countCmd.Flags().Uint64("blacklist-min-size", 1,
		"minimum length (bp) of blacklist intervals to load")

	countCmd.Flags().StringSlice("chromosomes", nil,
		"chromosome names to process, comma separated (default chr1..chr22)")
	countCmd.Flags().String("chromosomes-file", "",
		"file with chromosome names to process, one per line")
	countCmd.MarkFlagsMutuallyExclusive("chromosomes", "chromosomes-file")

	countCmd.Flags().BoolP("canonical", "c", false,
		"collapse each k-mer with its reverse complement, keeping the lexicographically smaller")
	countCmd.Flags().Bool("save-sparse", false,
		"save counts as a COO sparse archive instead of a dense matrix")
	countCmd.Flags().Bool("compress-bed", false,
		"gzip the window coordinate listing")
}
