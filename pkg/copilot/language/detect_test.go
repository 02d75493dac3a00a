package language

import (
	"testing"

	"knowledge-copilot-be/internal/constant"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "english sentence", text: "What documents do I need to open a retail account?", want: constant.LanguageEnglish},
		{name: "arabic sentence", text: "ما هو الحد الأقصى للتمويل الشخصي؟", want: constant.LanguageArabic},
		{name: "mixed leans arabic", text: "KIB ما هي رسوم الحساب الشهرية للأفراد", want: constant.LanguageArabic},
		{name: "digits do not skew detection", text: "fee below 200 KWD is 1 KWD", want: constant.LanguageEnglish},
		{name: "empty defaults to english", text: "", want: constant.LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		question  string
		want      string
	}{
		{name: "explicit english wins", requested: constant.LanguageEnglish, question: "ما هي الرسوم؟", want: constant.LanguageEnglish},
		{name: "explicit arabic wins", requested: constant.LanguageArabic, question: "what are the fees?", want: constant.LanguageArabic},
		{name: "auto detects arabic", requested: constant.LanguageAuto, question: "ما هي الرسوم الشهرية؟", want: constant.LanguageArabic},
		{name: "auto detects english", requested: constant.LanguageAuto, question: "what are the fees?", want: constant.LanguageEnglish},
		{name: "unknown value falls back to detection", requested: "fr", question: "what are the fees?", want: constant.LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.requested, tt.question); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.requested, tt.question, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	if !Matches(constant.LanguageEnglish, constant.LanguageEnglish) {
		t.Error("same language must match")
	}
	if Matches(constant.LanguageArabic, constant.LanguageEnglish) {
		t.Error("different languages must not match")
	}
	if !Matches("", constant.LanguageArabic) {
		t.Error("untagged documents are usable for any response language")
	}
}
