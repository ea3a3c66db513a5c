// Package truncate shortens strings for single line log output.
package truncate

// Position selects which part of a string survives truncation.
type Position int

const (
	// Tail keeps the beginning and cuts the end.
	Tail Position = iota
	// Head keeps the end and cuts the beginning.
	Head
	// Middle keeps both ends and cuts the middle.
	Middle
)

// DefaultLeader marks the cut.
const DefaultLeader = "..."

// String shortens s to limit runes plus leader.
// Strings with no more than limit runes are returned unchanged.
//
//	String("abcdefgh", 4, Tail, "...")   // "abcd..."
//	String("abcdefgh", 4, Head, "...")   // "...efgh"
//	String("abcdefgh", 7, Middle, "...") // "ab...gh"
//
// For Middle the leader counts against limit: the kept runes are split evenly
// with the extra rune going to the head.
func String(s string, limit int, position Position, leader string) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	if limit < 0 {
		limit = 0
	}

	switch position {
	case Head:
		return leader + string(runes[len(runes)-limit:])
	case Middle:
		kept := max(limit-len([]rune(leader)), 0)
		headCount := (kept + 1) / 2
		tailCount := kept / 2

		return string(runes[:headCount]) + leader + string(runes[len(runes)-tailCount:])
	default:
		return string(runes[:limit]) + leader
	}
}

// Values returns a copy of values with every value passed through String.
func Values(values map[string]string, limit int, position Position, leader string) map[string]string {
	truncated := make(map[string]string, len(values))
	for key, value := range values {
		truncated[key] = String(value, limit, position, leader)
	}

	return truncated
}
