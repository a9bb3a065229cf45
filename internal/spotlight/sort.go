package spotlight

import "strings"

// sortAttrs maps the logical sort keys exposed by the tools to Spotlight
// attribute names. Anything else is taken as a raw attribute name.
var sortAttrs = map[string]string{
	"name":    "kMDItemFSName",
	"date":    "kMDItemFSContentChangeDate",
	"size":    "kMDItemFSSize",
	"created": "kMDItemFSCreationDate",
}

// ParseSortSpec parses a sort argument. A leading "-" selects descending
// order. Recognized logical keys map to their native attribute names;
// unrecognized keys pass through verbatim.
func ParseSortSpec(spec string) (attr string, descending bool) {
	if strings.HasPrefix(spec, "-") {
		descending = true
		spec = spec[1:]
	}
	if native, ok := sortAttrs[spec]; ok {
		return native, descending
	}
	return spec, descending
}
