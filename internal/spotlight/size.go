package spotlight

import (
	"strconv"
	"strings"
)

// sizeSuffixes maps size suffixes to byte multipliers. Two-letter forms are
// listed before one-letter forms so the longest suffix is stripped first.
var sizeSuffixes = []struct {
	suffix string
	factor int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"B", 1},
}

// ParseSize parses a size predicate value such as ">10M" or "<512KB".
// The leading operator is optional and defaults to ">". The number may
// carry a K/KB/M/MB/G/GB/B suffix (powers of 1024). An unparsable numeric
// literal yields zero bytes rather than an error.
func ParseSize(value string) (op string, bytes int64) {
	op = ">"
	switch {
	case strings.HasPrefix(value, ">"):
		value = value[1:]
	case strings.HasPrefix(value, "<"):
		op = "<"
		value = value[1:]
	}

	value = strings.ToUpper(strings.TrimSpace(value))

	var factor int64 = 1
	for _, s := range sizeSuffixes {
		if strings.HasSuffix(value, s.suffix) {
			factor = s.factor
			value = strings.TrimSuffix(value, s.suffix)
			break
		}
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return op, 0
	}
	return op, int64(n * float64(factor))
}

// FormatSize renders a byte count the way the compact result format shows
// it: whole units, largest unit that fits.
func FormatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return strconv.FormatInt(bytes>>30, 10) + "G"
	case bytes >= 1<<20:
		return strconv.FormatInt(bytes>>20, 10) + "M"
	case bytes >= 1<<10:
		return strconv.FormatInt(bytes>>10, 10) + "K"
	default:
		return strconv.FormatInt(bytes, 10) + "B"
	}
}
