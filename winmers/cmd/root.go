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
	"runtime"

	colorable "github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

// VERSION of winmers
const VERSION = "0.3.0"

var log = logging.MustGetLogger("winmers")

// RootCmd is the root command of winmers.
var RootCmd = &cobra.Command{
	Use:   "winmers",
	Short: "canonical k-mer frequency matrices across genomic windows",
	Long: fmt.Sprintf(`winmers v%s: canonical k-mer frequency matrices across genomic windows

winmers counts reference k-mers of one or more sizes in genomic windows,
excluding blacklisted regions, and writes one windows-by-motifs count
matrix per k-mer size (dense .npy or sparse COO .npz), readable with
numpy.load() / scipy.sparse.load_npz().

`, VERSION),
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	formatter := logging.MustStringFormatter(`%{time:15:04:05.000} %{color}[%{level:.4s}]%{color:reset} %{message}`)
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))

	RootCmd.PersistentFlags().IntP("threads", "j", runtime.NumCPU(),
		"number of CPU cores to use")
	RootCmd.PersistentFlags().String("log", "",
		"log file to also write messages to")
	RootCmd.PersistentFlags().Bool("quiet", false,
		"do not print any verbose information")

	RootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Options contains the global flags shared by all commands.
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	if logfile != "" {
		addLogFile(logfile)
	}

	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",
	}
}

// addLogFile tees log messages into a plain-text file on top of the
// colored stderr backend. The handle stays open for the process lifetime.
func addLogFile(file string) {
	fh, err := os.Create(file)
	if err != nil {
		checkError(fmt.Errorf("failed to create log file %s: %s", file, err))
	}

	plain := logging.MustStringFormatter(`%{time:15:04:05.000} [%{level:.4s}] %{message}`)
	colored := logging.MustStringFormatter(`%{time:15:04:05.000} %{color}[%{level:.4s}]%{color:reset} %{message}`)

	stderrBackend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	fileBackend := logging.NewLogBackend(fh, "", 0)
	logging.SetBackend(
		logging.NewBackendFormatter(stderrBackend, colored),
		logging.NewBackendFormatter(fileBackend, plain),
	)
}
