package citation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"knowledge-copilot-be/internal/entity"
)

func row(text string, start, end int) *entity.RetrievedChunk {
	return &entity.RetrievedChunk{
		ChunkId:       uuid.New(),
		Text:          text,
		OffsetStart:   start,
		OffsetEnd:     end,
		DocumentId:    uuid.New(),
		DocumentTitle: "Retail Account Opening Policy",
	}
}

func TestValidateAnchor(t *testing.T) {
	tests := []struct {
		name    string
		row     *entity.RetrievedChunk
		wantErr bool
	}{
		{name: "valid span", row: row("hello world", 0, 11), wantErr: false},
		{name: "zero width span", row: row("hello world", 4, 4), wantErr: false},
		{name: "negative start", row: row("hello world", -1, 5), wantErr: true},
		{name: "end before start", row: row("hello world", 8, 3), wantErr: true},
		{name: "span longer than text", row: row("short", 0, 40), wantErr: true},
		// Arabic text length is counted in runes, not bytes.
		{name: "arabic span counted in runes", row: row("سياسة التمويل", 0, 13), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnchor(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAnchor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssembleDropsBrokenAnchors(t *testing.T) {
	a := NewAssembler()

	good := row("Account opening requires a valid civil ID and proof of address.", 0, 20)
	broken := row("bad anchor", 5, 500)

	citations, dropped := a.Assemble([]*entity.RetrievedChunk{good, broken})

	if len(citations) != 1 {
		t.Fatalf("Assemble() returned %d citations, want 1", len(citations))
	}
	if len(dropped) != 1 {
		t.Fatalf("Assemble() dropped %d rows, want 1", len(dropped))
	}
	if dropped[0].ChunkId != broken.ChunkId {
		t.Error("wrong chunk reported as dropped")
	}

	c := citations[0]
	if c.DocTitle != good.DocumentTitle || c.DocId != good.DocumentId {
		t.Error("citation metadata does not match the source row")
	}
	if c.StartOffset == nil || *c.StartOffset != good.OffsetStart {
		t.Error("citation start offset mismatch")
	}
	if c.EndOffset == nil || *c.EndOffset != good.OffsetEnd {
		t.Error("citation end offset mismatch")
	}
	if !strings.Contains(good.Text, c.Quote) {
		t.Errorf("quote %q is not a substring of the chunk text", c.Quote)
	}
}

func TestQuoteSnippet(t *testing.T) {
	t.Run("short text passes through", func(t *testing.T) {
		text := "The standard retail account carries no monthly maintenance fee."
		if got := QuoteSnippet(text); got != text {
			t.Errorf("QuoteSnippet() = %q, want unchanged text", got)
		}
	})

	t.Run("long text is capped on a word boundary", func(t *testing.T) {
		words := make([]string, 40)
		for i := range words {
			words[i] = "word"
		}
		text := strings.Join(words, " ")

		got := QuoteSnippet(text)
		if n := len(strings.Fields(got)); n != 25 {
			t.Errorf("QuoteSnippet() kept %d words, want 25", n)
		}
		if !strings.Contains(text, got) {
			t.Errorf("capped quote is not a substring of the source")
		}
		if strings.HasSuffix(got, " ") {
			t.Error("capped quote ends with whitespace")
		}
	})

	t.Run("internal whitespace is preserved verbatim", func(t *testing.T) {
		text := "first  line\nsecond\tline " + strings.Repeat("pad ", 30)
		got := QuoteSnippet(text)
		if !strings.Contains(strings.TrimSpace(text), got) {
			t.Errorf("quote %q lost the substring property", got)
		}
	})
}
