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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// FileInfo is the name of the run manifest inside an output directory.
const FileInfo = "info.toml"

// RunInfo is the manifest of one count run, written next to the matrices
// so downstream tooling can recover the parameters without re-parsing
// command lines.
type RunInfo struct {
	Version     string   `toml:"version"`
	KmerSizes   []int    `toml:"kmer-sizes"`
	WindowMode  string   `toml:"window-mode"`
	WindowSize  int      `toml:"window-size,omitempty"`
	Canonical   bool     `toml:"canonical"`
	Sparse      bool     `toml:"sparse"`
	Chromosomes []string `toml:"chromosomes"`
	Windows     int      `toml:"windows"`
	InputBases  int64    `toml:"input-bases"`
}

func writeRunInfo(file string, info *RunInfo) error {
	data, err := toml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshaling run info")
	}
	return os.WriteFile(file, data, 0644)
}

func readRunInfo(file string) (*RunInfo, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "reading run info")
	}
	info := &RunInfo{}
	if err = toml.Unmarshal(data, info); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", file)
	}
	return info, nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the manifest of a count output directory",
	Long: `Print the manifest of a count output directory

The manifest (` + FileInfo + `) records the parameters of the run that
produced the matrices: k-mer sizes, windowing mode, canonical folding,
output format, chromosomes, window count and input size.

`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := getFlagString(cmd, "dir")
		if dir == "" {
			checkError(fmt.Errorf("flag -d/--dir needed"))
		}
		dir = expandPath(dir)

		info, err := readRunInfo(filepath.Join(dir, FileInfo))
		checkError(err)

		ints := func(v []int) string {
			s := make([]string, len(v))
			for i, x := range v {
				s[i] = fmt.Sprintf("%d", x)
			}
			return strings.Join(s, ", ")
		}

		fmt.Printf("version:      %s\n", info.Version)
		fmt.Printf("k-mer sizes:  %s\n", ints(info.KmerSizes))
		fmt.Printf("window mode:  %s\n", info.WindowMode)
		if info.WindowMode == "by-size" {
			fmt.Printf("window size:  %d\n", info.WindowSize)
		}
		fmt.Printf("canonical:    %v\n", info.Canonical)
		fmt.Printf("sparse:       %v\n", info.Sparse)
		fmt.Printf("chromosomes:  %d (%s)\n", len(info.Chromosomes), strings.Join(info.Chromosomes, ", "))
		fmt.Printf("windows:      %s\n", humanize.Comma(int64(info.Windows)))
		fmt.Printf("input bases:  %s\n", humanize.Comma(info.InputBases))
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("dir", "d", "", "count output directory")
}
