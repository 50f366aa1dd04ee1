// Package judge implements the exact-match correctness check for contest
// submissions. Comparison is deliberately coarse: cosmetic whitespace drift
// from an embedded editor must not matter, while any token-level change,
// comment difference, or line reordering still fails the check.
package judge

import "strings"

// Normalize canonicalizes code before comparison: line endings unified to
// \n, every line trimmed, lines left empty by trimming dropped, the result
// rejoined and trimmed as a whole. Normalize is idempotent.
func Normalize(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Evaluate reports whether submitted code matches the canonical answer after
// both sides are normalized.
func Evaluate(submitted, answer string) bool {
	return Normalize(submitted) == Normalize(answer)
}
