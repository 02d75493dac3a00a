package guardrail

import (
	"strings"
	"unicode"
)

// Lightweight groundedness: token overlap between the answer's content
// words and the retrieved passages. Not entailment, just enough to catch
// an answer whose key terms appear in no passage at all.

const (
	minContentRunes = 4
	minOverlapRatio = 0.25
)

// Grounded reports whether at least one passage substantively supports the
// answer. Very short answers (too few content tokens to measure) pass.
func Grounded(answer string, passages []string) bool {
	tokens := contentTokens(answer)
	if len(tokens) < 3 {
		return true
	}
	for _, passage := range passages {
		if overlapRatio(tokens, passage) >= minOverlapRatio {
			return true
		}
	}
	return false
}

// Supports reports whether a single passage substantively supports the
// answer. A chunk that supports nothing in the answer is not eligible to be
// cited.
func Supports(answer, passage string) bool {
	tokens := contentTokens(answer)
	if len(tokens) < 3 {
		return true
	}
	return overlapRatio(tokens, passage) >= minOverlapRatio
}

func overlapRatio(answerTokens []string, passage string) float64 {
	passageSet := make(map[string]bool)
	for _, t := range contentTokens(passage) {
		passageSet[t] = true
	}
	if len(passageSet) == 0 {
		return 0
	}
	matched := 0
	for _, t := range answerTokens {
		if passageSet[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(answerTokens))
}

func contentTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		runes := []rune(f)
		if len(runes) >= minContentRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
