// Package observability provides formatted output utilities for server startup.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-transformer/internal/llm"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for startup reporting
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProviderReport outputs a human-readable summary of which LLM
// providers came up at startup and why the others did not.
func (p *Printer) PrintProviderReport(report llm.Report) {
	var sb strings.Builder

	providers := make([]string, 0, len(report.Providers))
	for provider := range report.Providers {
		providers = append(providers, string(provider))
	}
	sort.Strings(providers)

	for _, provider := range providers {
		sb.WriteString(fmt.Sprintf("%-10s %s\n", provider+":", report.Providers[llm.Provider(provider)]))
	}

	if len(report.Details) > 0 {
		sb.WriteString("\n")
		for _, detail := range report.Details {
			sb.WriteString(fmt.Sprintf("- %s\n", detail))
		}
	}

	if !report.Any() {
		sb.WriteString("\nno providers configured; /api/analyze and /api/transform will refuse requests")
	}

	p.printBox("LLM PROVIDERS", strings.TrimRight(sb.String(), "\n"))
}
