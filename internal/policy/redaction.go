// Package policy keeps traveler PII out of service logs. Trip conversations
// routinely carry contact details and booking identifiers; the transcript
// itself is persisted as-is, but anything written to logs passes through
// Redact first.
package policy

import "regexp"

type pattern struct {
	re   *regexp.Regexp
	mask string
}

// Order matters: card numbers redact before phone numbers so a long digit
// run is not half-consumed as a phone match.
var patterns = []pattern{
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), "[REDACTED_CARD]"},
	{regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`), "[REDACTED_PHONE]"},
	{regexp.MustCompile(`\b[A-Z][0-9]{7}\b`), "[REDACTED_PASSPORT]"},
}

// Redact masks common high-risk PII patterns in free text.
func Redact(input string) (redacted string, changed bool) {
	out := input
	for _, p := range patterns {
		next := p.re.ReplaceAllString(out, p.mask)
		changed = changed || next != out
		out = next
	}
	return out, changed
}
