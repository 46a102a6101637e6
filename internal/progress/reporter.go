// Package progress reports how far a batch of dataset checks has got.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while datasets are checked.
// Implementations are safe for concurrent use.
type Reporter interface {
	Start(total int)
	// Done marks one more item finished.
	Done(name string, err error)
	Finish()
}

// NewReporter returns a CIReporter when the CI environment variable is set,
// and a TerminalReporter otherwise.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Checking datasets"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Done(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Describe(name)
		_ = r.bar.Add(1)
	}
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	Out io.Writer

	mu      sync.Mutex
	total   int
	current int
}

func (r *CIReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.current = 0
	fmt.Fprintf(r.Out, "Checking %d datasets\n", total)
}

func (r *CIReporter) Done(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current++
	status := "ok"
	if err != nil {
		status = "problems found"
	}
	fmt.Fprintf(r.Out, "[%d/%d] %s: %s\n", r.current, r.total, name, status)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.Out, "Dataset check complete")
}
