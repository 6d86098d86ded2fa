package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// labelConfidencePattern matches the mandated single-line output contract,
// after cleanup: label|confidence<digits>%. Colons are stripped during
// cleanup, so "confidence:95%" arrives here as "confidence95%".
var labelConfidencePattern = regexp.MustCompile(`^(.*?)\|confidence\s*([0-9]{1,3})\s*%`)

// cleanResponse lower-cases the raw completion, strips quote, apostrophe and
// colon characters, and keeps only the first line.
func cleanResponse(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer("'", "", `"`, "", ":", "").Replace(cleaned)
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

// ParseLabelConfidence extracts a (label, confidence) pair from a raw
// completion. When the label|confidence:N% contract is absent, the whole
// cleaned line is treated as a best-effort label with confidence 0; the
// caller still validates it against the allowed set.
func ParseLabelConfidence(raw string) (string, int) {
	cleaned := cleanResponse(raw)
	if cleaned == "" {
		return "", 0
	}

	m := labelConfidencePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned, 0
	}

	label := strings.TrimSpace(m[1])
	confidence, err := strconv.Atoi(m[2])
	if err != nil || confidence > 100 {
		confidence = 0
	}
	if label == "" {
		// An empty label carries no confidence.
		return "", 0
	}
	return label, confidence
}
