package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/pkg/copilot/copiloterr"
)

// Assembler turns surviving chunks into citations. The quote invariant is
// what makes a citation auditable: the quote is always a verbatim substring
// of the chunk's stored text, never a paraphrase.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// ValidateAnchor checks a chunk's anchor invariants: offset_start must not
// exceed offset_end, offsets must be non-negative, and the anchored span
// must not claim more characters than the chunk carries. A violation is a
// data-integrity error, never a request error.
func ValidateAnchor(row *entity.RetrievedChunk) *copiloterr.DataIntegrityError {
	textLen := utf8.RuneCountInString(row.Text)
	if row.OffsetStart < 0 || row.OffsetEnd < row.OffsetStart || row.OffsetEnd-row.OffsetStart > textLen {
		return &copiloterr.DataIntegrityError{
			ChunkId:     row.ChunkId,
			OffsetStart: row.OffsetStart,
			OffsetEnd:   row.OffsetEnd,
			TextLen:     textLen,
		}
	}
	return nil
}

// Assemble builds one citation per chunk, dropping any chunk whose anchor
// fails validation. Dropped chunks are reported back for logging, not
// surfaced to the requester as citations with garbage text.
func (a *Assembler) Assemble(rows []*entity.RetrievedChunk) ([]dto.CitationDTO, []*copiloterr.DataIntegrityError) {
	citations := make([]dto.CitationDTO, 0, len(rows))
	var dropped []*copiloterr.DataIntegrityError

	for _, row := range rows {
		if integrityErr := ValidateAnchor(row); integrityErr != nil {
			dropped = append(dropped, integrityErr)
			continue
		}

		start := row.OffsetStart
		end := row.OffsetEnd
		citations = append(citations, dto.CitationDTO{
			DocTitle:        row.DocumentTitle,
			DocId:           row.DocumentId,
			DocumentVersion: row.DocumentVersion,
			PageNumber:      row.PageStart,
			StartOffset:     &start,
			EndOffset:       &end,
			Quote:           QuoteSnippet(row.Text),
			SourceURI:       row.SourceURI,
		})
	}
	return citations, dropped
}

// QuoteSnippet returns a verbatim prefix of the trimmed chunk text, cut on
// a word boundary at the quote cap. Slicing (rather than re-joining fields)
// preserves the substring property through any internal whitespace.
func QuoteSnippet(text string) string {
	trimmed := strings.TrimSpace(text)

	words := 0
	inWord := false
	for i, r := range trimmed {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			words++
			if words > constant.CitationQuoteMaxWords {
				return strings.TrimRight(trimmed[:i], " \t\n\r")
			}
			inWord = true
		}
	}
	return trimmed
}
