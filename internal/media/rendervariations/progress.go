package rendervariations

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Reporter follows the progress of one field path. Increment is called from
// several workers at once.
type Reporter interface {
	Start(label string, total int64)
	Increment()
	Finish()
}

type NopReporter struct{}

func (NopReporter) Start(string, int64) {}
func (NopReporter) Increment()          {}
func (NopReporter) Finish()             {}

// ProgressBar draws a single, redrawn-in-place bar to w.
type ProgressBar struct {
	mu    sync.Mutex
	w     io.Writer
	bar   progress.Model
	label string
	total int64
	done  int64
	shown int
}

func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *ProgressBar) Start(label string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label, p.total, p.done, p.shown = label, total, 0, -1
	p.draw()
}

func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.draw()
}

func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = -1
	p.draw()
	fmt.Fprintln(p.w)
}

// draw only repaints when the whole percentage changes.
func (p *ProgressBar) draw() {
	pct := 1.0
	if p.total > 0 {
		pct = min(1, float64(p.done)/float64(p.total))
	}
	whole := int(pct * 100)
	if whole == p.shown {
		return
	}
	p.shown = whole
	fmt.Fprintf(p.w, "\r%s %s %d/%d", p.label, p.bar.ViewAs(pct), p.done, p.total)
}
