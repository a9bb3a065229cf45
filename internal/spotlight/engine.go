package spotlight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result is one record returned by a search. Nil pointer and empty string
// fields mean the attribute was not reported for the file.
type Result struct {
	Path        string
	Kind        string
	ContentType string
	Size        *int64
	Modified    *time.Time
	Created     *time.Time
}

// SearchOptions control scoping, ordering and truncation of a search.
type SearchOptions struct {
	Scopes     []string
	Limit      int
	SortAttr   string // native attribute name; "" means engine order
	Descending bool
}

// Engine executes Spotlight queries. Queries are strings in the metadata
// query language; building them is the translator's job.
type Engine interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
	Count(ctx context.Context, query string, scopes []string) (int, error)
	Metadata(ctx context.Context, path string) (string, error)
}

// QueryError is a failure reported by the query tools, usually a malformed
// query expression or a path that is not in the index.
type QueryError struct {
	Op     string
	Detail string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("spotlight %s: %s", e.Op, e.Detail)
}

// sortResults orders records by a native attribute name in place. Records
// missing the attribute sort last regardless of direction.
func sortResults(results []Result, attr string, descending bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, aok := sortValue(results[i], attr)
		b, bok := sortValue(results[j], attr)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

// sortValue extracts the comparable value of attr from a record. The
// attributes the tools expose map to record fields; anything else falls
// back to the path so ordering stays deterministic.
func sortValue(r Result, attr string) (any, bool) {
	switch attr {
	case "kMDItemFSName":
		return strings.ToLower(pathBase(r.Path)), true
	case "kMDItemFSSize":
		if r.Size == nil {
			return nil, false
		}
		return *r.Size, true
	case "kMDItemFSContentChangeDate":
		if r.Modified == nil {
			return nil, false
		}
		return *r.Modified, true
	case "kMDItemFSCreationDate":
		if r.Created == nil {
			return nil, false
		}
		return *r.Created, true
	default:
		return strings.ToLower(r.Path), true
	}
}

func less(a, b any) bool {
	switch av := a.(type) {
	case string:
		return av < b.(string)
	case int64:
		return av < b.(int64)
	case time.Time:
		return av.Before(b.(time.Time))
	}
	return false
}

func pathBase(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
