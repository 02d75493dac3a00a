package contextfold

import (
	"strings"
	"testing"
	"unicode/utf8"

	"knowledge-copilot-be/internal/constant"
)

func TestFoldStandaloneQuestionPassesThrough(t *testing.T) {
	f := NewFolder(6)
	history := []Turn{
		{Role: constant.HistoryRoleUser, Text: "What are the retail account fees?"},
		{Role: constant.HistoryRoleAssistant, Text: "There is no fee above 200 KWD average balance."},
	}

	question := "What documents are required to open a retail account?"
	if got := f.Fold(history, question); got != question {
		t.Errorf("Fold() = %q, want the question unchanged", got)
	}
}

func TestFoldFollowupIncludesRecentUserTurns(t *testing.T) {
	f := NewFolder(6)
	history := []Turn{
		{Role: constant.HistoryRoleUser, Text: "What is the maximum personal finance amount?"},
		{Role: constant.HistoryRoleAssistant, Text: "The cap is 25,000 KWD."},
	}

	got := f.Fold(history, "What about the monthly installment limit?")

	if !strings.Contains(got, "maximum personal finance amount") {
		t.Errorf("folded query %q is missing the prior user turn", got)
	}
	if !strings.HasSuffix(got, "What about the monthly installment limit?") {
		t.Errorf("folded query %q must end with the current question", got)
	}
	if strings.Contains(got, "25,000 KWD") {
		t.Error("assistant turns must not be folded into the retrieval query")
	}
}

func TestFoldDetectsFollowups(t *testing.T) {
	f := NewFolder(6)
	history := []Turn{{Role: constant.HistoryRoleUser, Text: "Tell me about corporate credit limits."}}

	tests := []struct {
		name     string
		question string
		folded   bool
	}{
		{name: "what-about marker", question: "What about collateral?", folded: true},
		{name: "arabic marker", question: "ماذا عن الضمانات؟", folded: true},
		{name: "short question with pronoun", question: "Does it apply to them?", folded: true},
		{name: "self contained question", question: "List the accepted collateral types for corporate facilities.", folded: false},
		{name: "long question with pronoun is standalone", question: "Can a guardian open a custodial account for a minor if they hold a valid civil ID and proof of address?", folded: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Fold(history, tt.question)
			if folded := got != tt.question; folded != tt.folded {
				t.Errorf("Fold(%q) folded = %v, want %v", tt.question, folded, tt.folded)
			}
		})
	}
}

func TestFoldWindowAndSizeBounds(t *testing.T) {
	f := NewFolder(2)

	history := []Turn{
		{Role: constant.HistoryRoleUser, Text: "oldest question about treasury"},
		{Role: constant.HistoryRoleUser, Text: "middle question about retail fees"},
		{Role: constant.HistoryRoleUser, Text: "newest question about personal finance"},
	}

	got := f.Fold(history, "what about it?")
	if strings.Contains(got, "oldest question") {
		t.Error("turns outside the window must be dropped")
	}
	if !strings.Contains(got, "newest question") {
		t.Error("the newest turn inside the window must be kept")
	}

	// Oversized folds keep the tail, where the current topic lives.
	long := []Turn{{Role: constant.HistoryRoleUser, Text: strings.Repeat("filler ", 600)}}
	got = f.Fold(long, "what about it?")
	if len(got) > 2000 {
		t.Errorf("folded query length = %d, want <= 2000", len(got))
	}
	if !strings.HasSuffix(got, "what about it?") {
		t.Error("size capping must preserve the current question at the tail")
	}
}

func TestFoldTruncationKeepsValidUTF8(t *testing.T) {
	f := NewFolder(6)

	// Arabic runes are multi-byte; a byte-indexed cut would land mid-rune.
	arabic := []Turn{{Role: constant.HistoryRoleUser, Text: strings.Repeat("سياسة التمويل الشخصي ", 120)}}
	got := f.Fold(arabic, "ماذا عن الرسوم؟")

	if len(got) > 2000 {
		t.Errorf("folded query length = %d, want <= 2000", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncated fold produced invalid UTF-8")
	}
	if !strings.HasSuffix(got, "ماذا عن الرسوم؟") {
		t.Error("truncation must preserve the current question at the tail")
	}
}

func TestFoldEmptyHistory(t *testing.T) {
	f := NewFolder(6)
	if got := f.Fold(nil, "what about it?"); got != "what about it?" {
		t.Errorf("Fold() with no history = %q, want the question itself", got)
	}
}
