package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// progressPrinter renders batch events as console lines. A header is printed
// the first time a scope reports an event.
type progressPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	header func(domain.ItemEvent) string
	scope  string
}

func newProgressPrinter(w io.Writer, header func(domain.ItemEvent) string) *progressPrinter {
	return &progressPrinter{w: w, header: header}
}

func (p *progressPrinter) Handle(ev domain.ItemEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Scope != p.scope {
		p.scope = ev.Scope
		if p.header != nil {
			fmt.Fprintln(p.w, p.header(ev))
		}
	}

	name := ev.Document.Key()
	switch ev.Outcome {
	case domain.OutcomeSkipped:
		fmt.Fprintf(p.w, "  Skipping %s (already analyzed)\n", name)
	case domain.OutcomeStarted:
		fmt.Fprintf(p.w, "  Analyzing %s...\n", name)
	case domain.OutcomeError:
		fmt.Fprintf(p.w, "  ERROR processing %s: %v\n", name, ev.Err)
	}
}
