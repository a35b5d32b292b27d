package escalation

import "strings"

// DefaultKeyword is the trigger substring for the keyword classifier.
const DefaultKeyword = "humano"

// Classifier decides whether an inbound message asks for a human operator.
// The router only depends on this interface so a richer intent detector can
// replace the keyword heuristic without touching routing control flow.
type Classifier interface {
	Escalate(body string) bool
}

// KeywordClassifier escalates any message whose trimmed, case-folded body
// contains the keyword. Containment is deliberate: a legitimate question that
// happens to include the trigger word is escalated too.
type KeywordClassifier struct {
	Keyword string
}

// NewKeywordClassifier creates a KeywordClassifier, falling back to
// DefaultKeyword when keyword is empty.
func NewKeywordClassifier(keyword string) KeywordClassifier {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	return KeywordClassifier{Keyword: strings.ToLower(keyword)}
}

// Escalate reports whether body should be routed to a human operator.
func (c KeywordClassifier) Escalate(body string) bool {
	return strings.Contains(Normalize(body), c.Keyword)
}

// Normalize trims surrounding whitespace and case-folds a message body.
// The same normalization feeds both classification and the AI prompt.
func Normalize(body string) string {
	return strings.ToLower(strings.TrimSpace(body))
}
