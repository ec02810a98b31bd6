// Package report provides Markdown report generation.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// MarkdownGenerator generates Markdown reports
type MarkdownGenerator struct {
	IncludeDetails bool
}

// Generate generates a Markdown report
func (g *MarkdownGenerator) Generate(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n\n", report.Title)
	fmt.Fprintf(w, "**Target:** %s  \n", report.TargetURL)
	fmt.Fprintf(w, "**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "**Version:** %s\n\n", report.Version)

	fmt.Fprintf(w, "## \U0001F4CA Summary\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|---|---|\n")
	fmt.Fprintf(w, "| Total Requests | %d |\n", report.Statistics.TotalRequests)
	fmt.Fprintf(w, "| Total Coverage | %.2f |\n", report.Statistics.TotalCoverScore)
	fmt.Fprintf(w, "| Duration | %s |\n", report.Statistics.Duration)
	fmt.Fprintf(w, "| Anomalies Found | %d |\n\n", report.Statistics.AnomaliesFound)

	fmt.Fprintf(w, "## \U0001F50D Anomalies Found\n\n")
	if len(report.Anomalies) == 0 {
		fmt.Fprintf(w, "No anomalies detected.\n")
		return nil
	}

	for _, a := range report.Anomalies {
		fmt.Fprintf(w, "### %s %s\n\n", severityEmoji(a.Severity), a.Description)
		fmt.Fprintf(w, "- **Type:** %s\n", a.Type)
		fmt.Fprintf(w, "- **Severity:** %s %s\n", severityEmoji(a.Severity), titleCase(string(a.Severity)))
		fmt.Fprintf(w, "- **URL:** `%s %s`\n", a.Method, a.URL)
		if a.Payload != "" {
			fmt.Fprintf(w, "- **Payload:** `%s`\n", a.Payload)
		}
		if g.IncludeDetails && len(a.Sinks) > 0 {
			fmt.Fprintf(w, "- **Sinks:** `%s`\n", strings.Join(a.Sinks, ", "))
		}
		fmt.Fprintf(w, "\n")
	}

	counts := make([]Severity, 0, len(report.SeverityCounts))
	for sev := range report.SeverityCounts {
		counts = append(counts, sev)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })
	if len(counts) > 0 {
		fmt.Fprintf(w, "## Severity Breakdown\n\n")
		for _, sev := range counts {
			fmt.Fprintf(w, "- %s %s: %d\n", severityEmoji(sev), titleCase(string(sev)), report.SeverityCounts[sev])
		}
	}

	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Extension returns the file extension
func (g *MarkdownGenerator) Extension() string {
	return "md"
}

func severityEmoji(s Severity) string {
	switch s {
	case SeverityHigh:
		return "\U0001F7E0" // orange circle
	case SeverityMedium:
		return "\U0001F7E1" // yellow circle
	default:
		return "\U0001F7E2" // green circle
	}
}
