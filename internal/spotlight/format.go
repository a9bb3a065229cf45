package spotlight

import (
	"strconv"
	"strings"
	"time"
)

// Output formats for search results.
const (
	FormatCompact = "compact"
	FormatFull    = "full"
	FormatPaths   = "paths"
)

// FormatResults renders records one per line in the requested format.
// Unknown formats render as compact.
func FormatResults(results []Result, format string) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		switch format {
		case FormatPaths:
			lines = append(lines, r.Path)
		case FormatFull:
			lines = append(lines, formatFull(r))
		default:
			lines = append(lines, formatCompact(r))
		}
	}
	return strings.Join(lines, "\n")
}

// formatFull renders pipe-delimited path, kind, size, ISO-8601 modification
// time and content type, skipping attributes the record does not carry.
func formatFull(r Result) string {
	fields := []string{r.Path}
	if r.Kind != "" {
		fields = append(fields, r.Kind)
	}
	if r.Size != nil {
		fields = append(fields, strconv.FormatInt(*r.Size, 10))
	}
	if r.Modified != nil {
		fields = append(fields, r.Modified.Format(time.RFC3339))
	}
	if r.ContentType != "" {
		fields = append(fields, r.ContentType)
	}
	return strings.Join(fields, " | ")
}

// formatCompact renders the path with a short parenthesized size and date
// when known, e.g. "notes.txt (12K, 2026-01-03)".
func formatCompact(r Result) string {
	var extras []string
	if r.Size != nil {
		extras = append(extras, FormatSize(*r.Size))
	}
	if r.Modified != nil {
		extras = append(extras, r.Modified.Format("2006-01-02"))
	}
	if len(extras) == 0 {
		return r.Path
	}
	return r.Path + " (" + strings.Join(extras, ", ") + ")"
}
