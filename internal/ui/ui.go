// Package ui prints command results to the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/usecase/internal/history"
	"github.com/papapumpkin/usecase/internal/model"
)

const (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#636363")
)

// Printer writes styled status lines.
type Printer struct {
	w io.Writer

	title  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
	muted  lipgloss.Style
}

// New returns a printer writing to w, or to os.Stderr when w is nil.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stderr
	}
	return &Printer{
		w:      w,
		title:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		ok:     lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
		failed: lipgloss.NewStyle().Bold(true).Foreground(colorDanger),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// Error prints msg as an error.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.failed.Render("error:"), msg)
}

// Info prints msg de-emphasized.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.muted.Render(msg))
}

// Wrote lists the files a run produced.
func (p *Printer) Wrote(files []string) {
	for _, f := range files {
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("✓ wrote"), f)
	}
}

// CatalogSummary prints the catalog title and entity counts.
func (p *Printer) CatalogSummary(c *model.Catalog) {
	s := c.Stats()
	fmt.Fprintf(p.w, "%s %d scenario set(s), %d scenario(s), %d action(s), %d expected result(s)\n",
		p.title.Render(fmt.Sprintf("catalog %q:", c.Title())), s.ScenarioSets, s.Scenarios, s.Actions, s.Results)
	for _, set := range c.ScenarioSets() {
		fmt.Fprintf(p.w, "  %-24s %s\n", set.Title(), p.muted.Render(fmt.Sprintf("%s, %d action(s)", set.FileName(), set.ActionCount())))
	}
}

// ValidateResult reports whether input loaded cleanly.
func (p *Printer) ValidateResult(input string, err error) {
	if err == nil {
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("✓ valid"), input)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.failed.Render("✗ invalid"), input)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(p.w, "  %s %s\n", p.failed.Render("•"), line)
	}
}

// Watching announces the files a watch loop follows.
func (p *Printer) Watching(files []string) {
	fmt.Fprintf(p.w, "%s %d file(s), press Ctrl+C to stop\n", p.title.Render("watching"), len(files))
	for _, f := range files {
		fmt.Fprintln(p.w, "  "+p.muted.Render(f))
	}
}

// Changed reports the change that triggered a regeneration.
func (p *Printer) Changed(kind, file string) {
	fmt.Fprintf(p.w, "%s %s %s\n", p.title.Render("↻"), kind, file)
}

// Serving announces the address the HTTP API listens on.
func (p *Printer) Serving(addr string) {
	fmt.Fprintf(p.w, "%s http://%s/api/1.0\n", p.title.Render("serving"), addr)
}

// HistoryTable prints recorded runs, newest first.
func (p *Printer) HistoryTable(runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("(no runs recorded)"))
		return
	}
	for _, r := range runs {
		status := p.ok.Render(fmt.Sprintf("%-9s", r.Status))
		if r.Status == history.StatusFailed {
			status = p.failed.Render(fmt.Sprintf("%-9s", r.Status))
		}
		fmt.Fprintf(p.w, "%s  %-13s %s %s %s\n",
			p.muted.Render(r.StartedAt.Local().Format(time.DateTime)),
			r.Op, status, r.Input, p.muted.Render(r.Duration().Round(time.Millisecond).String()))
		if r.Error != "" {
			fmt.Fprintf(p.w, "    %s\n", r.Error)
		}
		for _, out := range r.Outputs {
			fmt.Fprintf(p.w, "    %s %s\n", p.muted.Render("→"), out)
		}
	}
}
