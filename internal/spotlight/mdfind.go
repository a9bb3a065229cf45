package spotlight

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	mdfindBin = "mdfind"
	mdlsBin   = "mdls"

	// Cap on how many records get their attributes fetched when a sort
	// forces us to look at every match before truncating.
	maxAttrFetch = 10000
)

// mdls date layout, e.g. "2026-01-03 09:15:00 +0000".
const mdlsTimeLayout = "2006-01-02 15:04:05 -0700"

// Attributes fetched per search record.
var recordAttrs = []string{
	"kMDItemKind",
	"kMDItemContentType",
	"kMDItemFSSize",
	"kMDItemFSContentChangeDate",
	"kMDItemFSCreationDate",
}

// MDFind runs Spotlight queries through the mdfind and mdls tools.
type MDFind struct {
	logger *slog.Logger
}

// NewMDFind creates an engine backed by the command line tools.
func NewMDFind(logger *slog.Logger) *MDFind {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &MDFind{logger: logger}
}

// Search runs the query, fetches attributes for the matches, sorts and
// truncates. mdfind itself has no sort, so when an order is requested the
// attributes of every match (up to a cap) are fetched before truncation.
func (m *MDFind) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	args := append(scopeArgs(opts.Scopes), "-0", query)
	out, err := m.run(ctx, mdfindBin, args...)
	if err != nil {
		return nil, err
	}

	paths := splitNul(out)
	fetch := len(paths)
	if opts.SortAttr == "" && opts.Limit > 0 && opts.Limit < fetch {
		fetch = opts.Limit
	}
	if fetch > maxAttrFetch {
		fetch = maxAttrFetch
	}

	results := make([]Result, 0, fetch)
	for _, p := range paths[:fetch] {
		results = append(results, m.record(ctx, p))
	}

	if opts.SortAttr != "" {
		sortResults(results, opts.SortAttr, opts.Descending)
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Count runs the query with -count and parses the match total.
func (m *MDFind) Count(ctx context.Context, query string, scopes []string) (int, error) {
	args := append(scopeArgs(scopes), "-count", query)
	out, err := m.run(ctx, mdfindBin, args...)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, &QueryError{Op: "count", Detail: "unexpected mdfind output: " + strings.TrimSpace(string(out))}
	}
	return n, nil
}

// Metadata returns the raw mdls attribute dump for a path.
func (m *MDFind) Metadata(ctx context.Context, path string) (string, error) {
	out, err := m.run(ctx, mdlsBin, path)
	if err != nil {
		return "", err
	}
	dump := strings.TrimRight(string(out), "\n")
	if strings.HasPrefix(dump, "could not find") {
		return "", &QueryError{Op: "metadata", Detail: dump}
	}
	return dump, nil
}

// record fetches the display attributes for one path. Attribute failures
// degrade to a path-only record; the search itself already succeeded.
func (m *MDFind) record(ctx context.Context, path string) Result {
	args := make([]string, 0, 2*len(recordAttrs)+1)
	for _, a := range recordAttrs {
		args = append(args, "-name", a)
	}
	args = append(args, path)

	out, err := m.run(ctx, mdlsBin, args...)
	if err != nil {
		m.logger.Debug("attribute fetch failed", "path", path, "error", err)
		return Result{Path: path}
	}
	return parseRecord(path, string(out))
}

func (m *MDFind) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	m.logger.Debug("exec", "bin", bin, "args", args)

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, &QueryError{Op: bin, Detail: detail}
	}
	return stdout.Bytes(), nil
}

func scopeArgs(scopes []string) []string {
	var args []string
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			args = append(args, "-onlyin", s)
		}
	}
	return args
}

// splitNul splits mdfind -0 output into paths.
func splitNul(out []byte) []string {
	var paths []string
	for _, p := range bytes.Split(out, []byte{0}) {
		if s := strings.TrimSpace(string(p)); s != "" {
			paths = append(paths, s)
		}
	}
	return paths
}

// parseRecord builds a Result from "name = value" lines of mdls output.
// Missing attributes show up as "(null)" and stay unset on the record.
func parseRecord(path, out string) Result {
	r := Result{Path: path}
	for _, line := range strings.Split(out, "\n") {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if value == "" || value == "(null)" {
			continue
		}

		switch name {
		case "kMDItemKind":
			r.Kind = unquote(value)
		case "kMDItemContentType":
			r.ContentType = unquote(value)
		case "kMDItemFSSize":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				r.Size = &n
			}
		case "kMDItemFSContentChangeDate":
			if t, err := time.Parse(mdlsTimeLayout, value); err == nil {
				r.Modified = &t
			}
		case "kMDItemFSCreationDate":
			if t, err := time.Parse(mdlsTimeLayout, value); err == nil {
				r.Created = &t
			}
		}
	}
	return r
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
