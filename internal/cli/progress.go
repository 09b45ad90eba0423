package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ExtractStats summarizes one extract run.
type ExtractStats struct {
	Files        int
	Symbols      int
	Documented   int
	Todos        int
	Deprecations int
	Warnings     int
	Elapsed      time.Duration
}

// CLIProgressReporter reports extract progress with a progress bar on stderr.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering Python files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d Python files\n", files)
}

func (c *CLIProgressReporter) OnParseStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileParsed is safe to call from several goroutines.
func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
	log.Printf("Parsed %s\n", fileName)
}

func (c *CLIProgressReporter) OnComplete(stats ExtractStats) {
	if c.quiet {
		return
	}

	fmt.Fprintf(c.out, "✓ Extraction complete: %s symbols from %s files in %.1fs\n",
		formatNumber(stats.Symbols), formatNumber(stats.Files), stats.Elapsed.Seconds())
	fmt.Fprintf(c.out, "  Documented:   %s\n", formatNumber(stats.Documented))
	fmt.Fprintf(c.out, "  Todos:        %s\n", formatNumber(stats.Todos))
	fmt.Fprintf(c.out, "  Deprecations: %s\n", formatNumber(stats.Deprecations))
	fmt.Fprintf(c.out, "  Warnings:     %s\n", formatNumber(stats.Warnings))
}

// formatNumber formats a count with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
