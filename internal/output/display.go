// Package output renders the live progress display during a run.
//
// On a terminal the display redraws in place once per interval; when
// output is piped it degrades to one status line per interval so logs
// stay readable. The final summary is not rendered here, that is the
// report package's job.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/wesleyorama2/surge/internal/metrics"
)

// ANSI escape codes for cursor control and colors.
const (
	cursorUp   = "\033[%dA"
	clearLine  = "\033[2K"
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"

	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"

	boxHorizontal  = "━"
	boxVertical    = "│"
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"

	progressFilled = "█"
	progressEmpty  = "░"
)

// Display manages the live console output for one run.
type Display struct {
	name          string
	pattern       string
	totalDuration time.Duration
	writer        io.Writer
	isTTY         bool
	useColors     bool
	quiet         bool

	mu          sync.Mutex
	linesOutput int
	cursorOff   bool
}

// Config configures a Display.
type Config struct {
	// Name of the run, shown in the header
	Name string

	// Pattern is the rate pattern name, shown next to the run name
	Pattern string

	// TotalDuration is warmup plus the measured phase, used to
	// estimate time remaining
	TotalDuration time.Duration

	// Writer defaults to os.Stdout
	Writer io.Writer

	// Quiet suppresses all live output
	Quiet bool

	// NoColors disables colors regardless of detection
	NoColors bool

	// ForceColors and ForceTTY override detection, for tests
	ForceColors bool
	ForceTTY    bool
}

// New creates a Display. TTY and color support are detected from the
// writer and environment unless forced.
func New(cfg Config) *Display {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	tty := cfg.ForceTTY || isTerminal(cfg.Writer)
	colors := cfg.ForceColors || (tty && supportsColors())
	if cfg.NoColors {
		colors = false
	}
	return &Display{
		name:          cfg.Name,
		pattern:       cfg.Pattern,
		totalDuration: cfg.TotalDuration,
		writer:        cfg.Writer,
		isTTY:         tty,
		useColors:     colors,
		quiet:         cfg.Quiet,
	}
}

// isTerminal reports whether the writer is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// supportsColors honors the NO_COLOR and FORCE_COLOR conventions, then
// falls back to TERM.
func supportsColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// PrintHeader prints the run banner before load starts.
func (d *Display) PrintHeader() {
	if d.quiet {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	name := d.name
	if name == "" {
		name = "load test"
	}
	info := ""
	if d.pattern != "" {
		info = fmt.Sprintf(" [%s]", d.pattern)
	}

	line := strings.Repeat(boxHorizontal, 56)
	d.writeln(d.colorize(line, colorCyan))
	d.writeln(d.colorize(fmt.Sprintf("%s%s", name, info), colorBold))
	d.writeln(d.colorize(line, colorCyan))
	d.writeln("")
}

// Update redraws the live display from the latest snapshot. On a
// terminal the previous frame is erased and replaced; otherwise one
// status line is appended. A nil snapshot is ignored.
func (d *Display) Update(snap *metrics.Snapshot, progress float64) {
	if d.quiet || snap == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isTTY {
		d.writeln(statusLine(snap, progress))
		return
	}

	if !d.cursorOff {
		d.write(hideCursor)
		d.cursorOff = true
	}
	d.clearFrame()

	lines := d.renderFrame(snap, progress)
	d.linesOutput = len(lines)
	for _, line := range lines {
		d.writeln(line)
	}
}

// Finish erases the live frame and restores the cursor so the final
// report starts on a clean screen.
func (d *Display) Finish() {
	if d.quiet {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isTTY {
		d.clearFrame()
	}
	if d.cursorOff {
		d.write(showCursor)
		d.cursorOff = false
	}
}

// clearFrame erases the previously drawn live frame.
func (d *Display) clearFrame() {
	if d.linesOutput == 0 {
		return
	}
	d.write(fmt.Sprintf(cursorUp, d.linesOutput))
	for i := 0; i < d.linesOutput; i++ {
		d.write(clearLine)
		if i < d.linesOutput-1 {
			d.write("\n")
		}
	}
	// Reposition to the top of the cleared region so the next frame
	// draws exactly where this one was.
	if d.linesOutput > 1 {
		d.write(fmt.Sprintf(cursorUp, d.linesOutput-1))
	}
	d.write("\r")
	d.linesOutput = 0
}

// renderFrame renders the full-screen live frame.
func (d *Display) renderFrame(snap *metrics.Snapshot, progress float64) []string {
	var lines []string

	bar := renderProgressBar(progress, 40)
	percent := fmt.Sprintf("%.0f%%", progress*100)
	timing := fmt.Sprintf("%s / %s", formatDuration(snap.Elapsed), formatDuration(d.totalDuration))
	lines = append(lines, fmt.Sprintf("Progress: %s %s | %s",
		d.colorize(bar, colorGreen),
		d.colorize(percent, colorBold),
		d.colorize(timing, colorDim)))

	lines = append(lines, fmt.Sprintf("Phase:    %s", d.colorize(string(snap.Phase), phaseColor(snap.Phase))))
	lines = append(lines, "")

	boxWidth := 55
	lines = append(lines, d.colorize(boxTopLeft+strings.Repeat(boxHorizontal, boxWidth-2)+boxTopRight, colorDim))

	rateStr := fmt.Sprintf("Rate:   %s of %s/s",
		d.colorize(fmt.Sprintf("%.1f", snap.LiveRPS), colorGreen),
		fmt.Sprintf("%.0f", snap.TargetRate))
	doneStr := fmt.Sprintf("Completed: %s", d.colorize(formatNumber(snap.Total), colorCyan))
	lines = append(lines, d.formatBoxRow(rateStr, doneStr, boxWidth))

	errCount := snap.Total - snap.Success
	errRate := 0.0
	if snap.Total > 0 {
		errRate = float64(errCount) / float64(snap.Total)
	}
	errColor := colorGreen
	if errRate > 0.01 {
		errColor = colorYellow
	}
	if errRate > 0.05 {
		errColor = colorRed
	}
	flightStr := fmt.Sprintf("Active: %s", d.colorize(fmt.Sprintf("%d", snap.InFlight), colorCyan))
	errStr := fmt.Sprintf("Errors:    %s (%s)",
		d.colorize(formatNumber(errCount), errColor),
		d.colorize(fmt.Sprintf("%.1f%%", errRate*100), errColor))
	lines = append(lines, d.formatBoxRow(flightStr, errStr, boxWidth))

	p95Str := fmt.Sprintf("P95:    %s", d.colorize(formatDurationShort(snap.Latency.P95), colorBlue))
	meanStr := fmt.Sprintf("Mean:      %s", d.colorize(formatDurationShort(snap.Latency.Mean), colorBlue))
	lines = append(lines, d.formatBoxRow(p95Str, meanStr, boxWidth))

	lines = append(lines, d.colorize(boxBottomLeft+strings.Repeat(boxHorizontal, boxWidth-2)+boxBottomRight, colorDim))

	return lines
}

// statusLine renders the one-line form used when output is piped.
func statusLine(snap *metrics.Snapshot, progress float64) string {
	errCount := snap.Total - snap.Success
	errRate := 0.0
	if snap.Total > 0 {
		errRate = float64(errCount) / float64(snap.Total) * 100
	}
	return fmt.Sprintf("[%s] %s %.0f%% | rate %.1f of %.0f/s | active %d | done %s | errors %s (%.1f%%) | p95 %s",
		formatDuration(snap.Elapsed),
		snap.Phase,
		progress*100,
		snap.LiveRPS,
		snap.TargetRate,
		snap.InFlight,
		formatNumber(snap.Total),
		formatNumber(errCount),
		errRate,
		formatDurationShort(snap.Latency.P95))
}

// formatBoxRow lays out two columns inside the stats box, padding by
// visible width so color codes do not skew alignment.
func (d *Display) formatBoxRow(left, right string, boxWidth int) string {
	leftVisible := stripANSI(left)
	rightVisible := stripANSI(right)

	colWidth := (boxWidth - 4) / 2

	leftPadding := colWidth - len(leftVisible)
	if leftPadding < 0 {
		leftPadding = 0
	}
	rightPadding := colWidth - len(rightVisible)
	if rightPadding < 0 {
		rightPadding = 0
	}

	return fmt.Sprintf("%s %s%s%s %s%s %s",
		d.colorize(boxVertical, colorDim),
		left, strings.Repeat(" ", leftPadding),
		d.colorize(boxVertical, colorDim),
		right, strings.Repeat(" ", rightPadding),
		d.colorize(boxVertical, colorDim))
}

// renderProgressBar renders a fixed-width progress bar.
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	return "[" + strings.Repeat(progressFilled, filled) + strings.Repeat(progressEmpty, width-filled) + "]"
}

func phaseColor(p metrics.Phase) string {
	switch p {
	case metrics.PhaseWarmup:
		return colorYellow
	case metrics.PhaseMeasuring:
		return colorGreen
	case metrics.PhaseDraining:
		return colorCyan
	default:
		return colorDim
	}
}

func (d *Display) write(s string) {
	fmt.Fprint(d.writer, s)
}

func (d *Display) writeln(s string) {
	fmt.Fprintln(d.writer, s)
}

// colorize wraps text in color codes when colors are enabled.
func (d *Display) colorize(text, color string) string {
	if !d.useColors {
		return text
	}
	return color + text + colorReset
}

// formatDuration formats elapsed wall time.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
}

// formatDurationShort formats a latency value.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// formatNumber adds thousands separators.
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}

	return result.String()
}
