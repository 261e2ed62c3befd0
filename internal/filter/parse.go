package filter

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// parseLeadingInt reads a base-10 integer from the start of s the way
// form inputs are usually parsed: leading whitespace and a sign are
// accepted, parsing stops at the first non-digit, and trailing text is
// ignored ("20abc" is 20). ok is false when no digit is found.
// Values outside the int range saturate.
func parseLeadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(s[:end], 10, 0)
	if err != nil {
		// Only ErrRange is possible for a pure digit string.
		if neg {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if neg {
		v = -v
	}
	return int(v), true
}
