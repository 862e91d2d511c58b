package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running batch operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress renders a single-line text progress bar with document
// throughput. Safe for concurrent Update calls from worker goroutines.
type SimpleProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int64
	current int64
	started time.Time
}

// NewProgressReporter creates a progress reporter writing to w, or to
// os.Stdout when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &SimpleProgress{writer: w}
}

// Start begins a run of total items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

// Update sets the number of completed items.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish completes the bar and terminates the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports a failure on its own line without disturbing the bar state.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

const progressBarWidth = 40

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	filled := int(progressBarWidth * percent / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	rate := float64(p.current) / time.Since(p.started).Seconds()

	fmt.Fprintf(p.writer, "\rProgress: [%s] %.1f%% (%d/%d) %.1f docs/s",
		bar, percent, p.current, p.total, rate)
}
