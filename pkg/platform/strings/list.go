// Package strings holds small string helpers for configuration parsing.
package strings

import (
	"strings"
)

// SplitList parses a comma separated value such as a broker list or a set
// of verifier keys. Elements are trimmed, empties dropped and repeats
// removed, keeping first-seen order. Blank input yields nil.
//
//	SplitList("kafka-1:9092, kafka-2:9092,,kafka-1:9092")
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
