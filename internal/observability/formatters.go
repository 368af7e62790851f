// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
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

	for _, line := range wrap(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobRequirements outputs the structured requirements extracted from a posting.
func (p *Printer) PrintJobRequirements(req *types.JobRequirements) {
	if req == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Explicit Skills:", req.ExplicitSkills, maxItemsToShow)
	writeList(&sb, "Implicit Skills:", req.ImplicitSkills, 3)
	writeList(&sb, "Responsibilities:", req.Responsibilities, 3)

	if req.Education.MinDegree != "" {
		sb.WriteString(fmt.Sprintf("Education: %s", req.Education.MinDegree))
		if len(req.Education.Fields) > 0 {
			sb.WriteString(fmt.Sprintf(" in %s", strings.Join(req.Education.Fields, ", ")))
		}
		if req.Education.Required {
			sb.WriteString(" (required)")
		}
		sb.WriteString("\n")
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs a resume analysis with its rating, skills and advice.
func (p *Printer) PrintAnalysis(a *types.AiSummary) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rating:   %d/100\n\n", a.Rating))
	sb.WriteString(a.Summary + "\n\n")

	writeList(&sb, "Strengths:", a.Strengths, maxItemsToShow)
	writeList(&sb, "Weaknesses:", a.Weaknesses, maxItemsToShow)

	if len(a.Skills) > 0 {
		sb.WriteString("Skills:\n")
		names := make([]string, 0, len(a.Skills))
		for name := range a.Skills {
			names = append(names, name)
		}
		// Highest rated first
		sort.Slice(names, func(i, j int) bool {
			if a.Skills[names[i]] != a.Skills[names[j]] {
				return a.Skills[names[i]] > a.Skills[names[j]]
			}
			return names[i] < names[j]
		})
		count := min(len(names), maxItemsToShow)
		for _, name := range names[:count] {
			sb.WriteString(fmt.Sprintf("  %-20s %s %d/10\n", name, meter(a.Skills[name]), a.Skills[name]))
		}
		if len(names) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(a.Experience) > 0 {
		sb.WriteString("Experience:\n")
		keys := make([]string, 0, len(a.Experience))
		for k := range a.Experience {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  • %s (%d highlights)\n", a.Experience[k].Company, len(a.Experience[k].Highlights)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Recommendations:\n")
	sb.WriteString(a.Recommendations)

	p.printBox("RESUME ANALYSIS", sb.String())
}

// PrintComparison outputs a comparison of candidates.
func (p *Printer) PrintComparison(c *types.Comparison) {
	if c == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Differentiators:", c.Differentiators, maxItemsToShow)

	categories := make([]string, 0, len(c.KeyDifferences))
	for k := range c.KeyDifferences {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	for _, category := range categories {
		sb.WriteString(category + ":\n")
		slots := make([]string, 0, len(c.KeyDifferences[category]))
		for slot := range c.KeyDifferences[category] {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", slot, c.KeyDifferences[category][slot]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Recommendation:\n")
	sb.WriteString(c.Recommendation)

	p.printBox("CANDIDATE COMPARISON", sb.String())
}

func writeList(sb *strings.Builder, title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + "\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// meter renders a 0-10 rating as a bar.
func meter(v int) string {
	v = max(0, min(v, 10))
	return strings.Repeat("█", v) + strings.Repeat("░", 10-v)
}

// wrap splits content into lines no wider than width runes, breaking on spaces.
func wrap(content string, width int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		for len([]rune(line)) > width {
			r := []rune(line)
			cut := width
			for i := width; i > width/2; i-- {
				if r[i] == ' ' {
					cut = i
					break
				}
			}
			lines = append(lines, string(r[:cut]))
			line = strings.TrimLeft(string(r[cut:]), " ")
		}
		lines = append(lines, line)
	}
	return lines
}
