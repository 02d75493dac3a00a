package language

import (
	"unicode"

	"knowledge-copilot-be/internal/constant"
)

// Detect returns "ar" when the text is predominantly Arabic script,
// otherwise "en". Counting letters (not all runes) keeps digits and
// punctuation from skewing mixed input.
func Detect(text string) string {
	var arabic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.IsLetter(r):
			latin++
		}
	}
	if arabic > latin {
		return constant.LanguageArabic
	}
	return constant.LanguageEnglish
}

// Resolve maps the requested language to a response language. "auto" (or
// anything unknown) falls back to script detection of the question.
func Resolve(requested, question string) string {
	switch requested {
	case constant.LanguageEnglish, constant.LanguageArabic:
		return requested
	default:
		return Detect(question)
	}
}

// Matches reports whether a document language is usable for a response
// language. Untagged documents are treated as usable.
func Matches(documentLanguage, responseLanguage string) bool {
	if documentLanguage == "" {
		return true
	}
	return documentLanguage == responseLanguage
}
