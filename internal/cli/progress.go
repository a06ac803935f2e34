// Package cli renders terminal progress for the offline extraction tools.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// ProgressBar tracks a batch of items and redraws a single terminal line as
// they complete.
type ProgressBar struct {
	total       int
	current     int
	width       int
	prefix      string
	mu          sync.Mutex
	writer      io.Writer
	startTime   time.Time
	showPercent bool
	showTime    bool
	colorize    bool
}

// NewProgressBar creates a progress bar for total items.
func NewProgressBar(total int, prefix string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		current:     0,
		width:       50,
		prefix:      prefix,
		writer:      os.Stdout,
		startTime:   time.Now(),
		showPercent: true,
		showTime:    true,
		colorize:    isTerminal(),
	}
}

// SetWidth sets the width of the progress bar
func (pb *ProgressBar) SetWidth(width int) *ProgressBar {
	pb.width = width
	return pb
}

// SetWriter sets the output writer
func (pb *ProgressBar) SetWriter(w io.Writer) *ProgressBar {
	pb.writer = w
	return pb
}

// DisableColor disables colored output
func (pb *ProgressBar) DisableColor() *ProgressBar {
	pb.colorize = false
	return pb
}

// Increment increments the progress bar by 1
func (pb *ProgressBar) Increment() {
	pb.Add(1)
}

// Add adds n to the progress bar
func (pb *ProgressBar) Add(n int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.current += n
	if pb.current > pb.total {
		pb.current = pb.total
	}
	pb.render()
}

// Set sets the current value
func (pb *ProgressBar) Set(current int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.current = current
	if pb.current > pb.total {
		pb.current = pb.total
	}
	pb.render()
}

// Finish completes the progress bar
func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.current = pb.total
	pb.render()
	fmt.Fprintln(pb.writer)
}

// render renders the progress bar
func (pb *ProgressBar) render() {
	if pb.total <= 0 {
		return
	}
	percent := float64(pb.current) / float64(pb.total)
	filled := int(float64(pb.width) * percent)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.width-filled)

	if pb.colorize {
		if percent < 0.5 {
			bar = ColorYellow + bar + ColorReset
		} else if percent < 1.0 {
			bar = ColorCyan + bar + ColorReset
		} else {
			bar = ColorGreen + bar + ColorReset
		}
	}

	output := fmt.Sprintf("\r%s [%s]", pb.prefix, bar)

	if pb.showPercent {
		output += fmt.Sprintf(" %.1f%%", percent*100)
	}

	if pb.showTime && pb.current > 0 {
		elapsed := time.Since(pb.startTime)
		remaining := time.Duration(float64(elapsed) / percent * (1 - percent))
		output += fmt.Sprintf(" | %s elapsed | %s remaining", formatDuration(elapsed), formatDuration(remaining))
	}

	fmt.Fprint(pb.writer, output)
}

// Success prints a success message
func Success(message string) {
	if isTerminal() {
		fmt.Printf("%s✓%s %s\n", ColorGreen, ColorReset, message)
	} else {
		fmt.Printf("✓ %s\n", message)
	}
}

// Warning prints a warning message
func Warning(message string) {
	if isTerminal() {
		fmt.Printf("%s⚠%s %s\n", ColorYellow, ColorReset, message)
	} else {
		fmt.Printf("⚠ %s\n", message)
	}
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
