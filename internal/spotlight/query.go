// Package spotlight translates shorthand queries into Spotlight's metadata
// query language and runs them through the mdfind/mdls command line tools.
package spotlight

import (
	"fmt"
	"strconv"
	"strings"
)

// nativePrefix marks a query already written in the Spotlight metadata
// query language; such queries bypass shorthand translation entirely.
const nativePrefix = "kMDItem"

// matchAll is the fallback expression when nothing usable remains.
const matchAll = `kMDItemFSName == "*"`

// Shorthand prefixes, in consumption order. Each prefix is exhausted
// across the whole remaining input before the next one is considered, so
// fragments come out grouped in this order no matter where their tokens
// sat in the input.
var shorthandPrefixes = []string{
	"@name:",
	"@content:",
	"@kind:",
	"@type:",
	"@tree:",
	"@mod:",
	"@created:",
	"@size:",
}

// Translate converts a shorthand query into a Spotlight query expression.
//
// Input starting with a native attribute name passes through unchanged.
// Otherwise every @prefix:value token is translated into a fragment, any
// leftover text becomes a filename glob fragment, and the fragments are
// joined with &&. Note the leftover text is appended even when shorthand
// tokens were also found; callers rely on mixing tokens with bare globs.
//
// Consumption is prefix by prefix: all occurrences of @name: are cut out
// of the input, then all of @content:, and so on. A token embedded inside
// a later-order token's value ("@kind:x@name:y") is therefore still found,
// because its prefix is consumed before the enclosing token is read.
func Translate(input string) string {
	if strings.HasPrefix(input, nativePrefix) {
		return input
	}

	var fragments []string
	rest := input
	for _, prefix := range shorthandPrefixes {
		for {
			i := strings.Index(rest, prefix)
			if i < 0 {
				break
			}
			start := i + len(prefix)
			end := strings.IndexByte(rest[start:], ' ')
			if end < 0 {
				end = len(rest)
			} else {
				end += start
			}
			fragments = append(fragments, translateToken(prefix, rest[start:end]))
			rest = rest[:i] + rest[end:]
		}
	}

	if rest = strings.TrimSpace(rest); rest != "" {
		fragments = append(fragments, nameFragment(rest))
	}

	if len(fragments) == 0 {
		return matchAll
	}
	return strings.Join(fragments, " && ")
}

func translateToken(prefix, value string) string {
	switch prefix {
	case "@name:":
		return nameFragment(value)
	case "@content:":
		return fmt.Sprintf(`kMDItemTextContent == "*%s*"cd`, value)
	case "@kind:":
		return fmt.Sprintf(`kMDItemKind == "%s"`, value)
	case "@type:":
		return fmt.Sprintf(`kMDItemContentType == "%s"`, value)
	case "@tree:":
		return fmt.Sprintf(`kMDItemContentTypeTree == "%s"`, value)
	case "@mod:":
		return dateFragment("kMDItemFSContentChangeDate", value)
	case "@created:":
		return dateFragment("kMDItemFSCreationDate", value)
	case "@size:":
		op, bytes := ParseSize(value)
		return fmt.Sprintf("kMDItemFSSize %s %d", op, bytes)
	}
	return matchAll
}

func nameFragment(pattern string) string {
	return fmt.Sprintf(`kMDItemFSName == "%s"cd`, pattern)
}

// dateFragment builds an attribute-newer-than-N-days clause. A value that
// is not an integer day count falls back to the match-all expression.
func dateFragment(attr, value string) string {
	days, err := strconv.Atoi(value)
	if err != nil {
		return matchAll
	}
	return fmt.Sprintf("%s > $time.now(-%d)", attr, days*86400)
}
