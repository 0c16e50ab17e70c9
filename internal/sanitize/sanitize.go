// Package sanitize cleans visitor-supplied free text before it is matched or stored.
//
// Two passes run in order:
//   - Credential redaction through a secrets.Scrubber.
//   - HTML stripping with a bluemonday strict policy: every tag is dropped, the
//     contents of script and style elements are discarded, and the remaining text
//     is HTML-escaped.
//
// The result is stable under repeated application: StripUnsafe(StripUnsafe(x))
// equals StripUnsafe(x).
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fyrsmithlabs/folio/internal/secrets"
)

// Sanitizer strips unsafe markup and credentials from free text.
type Sanitizer struct {
	policy   *bluemonday.Policy
	scrubber secrets.Scrubber
}

// New creates a Sanitizer. A nil scrubber disables credential redaction.
func New(scrubber secrets.Scrubber) *Sanitizer {
	if scrubber == nil {
		scrubber = secrets.Passthrough{}
	}
	return &Sanitizer{
		policy:   bluemonday.StrictPolicy(),
		scrubber: scrubber,
	}
}

// StripUnsafe returns text with credentials redacted and all HTML removed.
// Leading and trailing whitespace is trimmed. Redaction sees the raw text:
// the policy escapes quotes, which hides quoted secrets from the detector.
func (s *Sanitizer) StripUnsafe(text string) string {
	if text == "" {
		return ""
	}
	return s.StripMarkup(s.scrubber.Scrub(text).Text)
}

// StripMarkup removes HTML like StripUnsafe but leaves credentials in place,
// so redaction markers never reach keyword matching. Never store its output.
func (s *Sanitizer) StripMarkup(text string) string {
	return strings.TrimSpace(s.policy.Sanitize(text))
}

// Plain reverses the HTML escaping applied by StripUnsafe. Use it only for
// comparisons such as keyword matching, never for output.
func Plain(sanitized string) string {
	return html.UnescapeString(sanitized)
}
