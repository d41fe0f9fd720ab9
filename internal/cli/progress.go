package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter draws a progress bar for a batch run.
type ProgressReporter struct {
	bar       *progressbar.ProgressBar
	writer    io.Writer
	processed int
}

// NewProgressReporter creates a progress bar for total addresses.
func NewProgressReporter(writer io.Writer, total int, description string) *ProgressReporter {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	return &ProgressReporter{bar: bar, writer: writer}
}

// Update moves the bar to processed; its signature matches engine.ProgressFunc.
func (p *ProgressReporter) Update(processed, total int) {
	if int64(total) != p.bar.GetMax64() {
		p.bar.ChangeMax(total)
	}
	p.processed = processed
	if err := p.bar.Set(processed); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar and moves to a fresh line.
func (p *ProgressReporter) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline", "error", err)
	}
}

// Stop leaves the bar at its current position, for runs that ended early.
func (p *ProgressReporter) Stop() {
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline", "error", err)
	}
}

// Processed returns the current bar position.
func (p *ProgressReporter) Processed() int {
	return p.processed
}
