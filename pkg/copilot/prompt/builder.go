package prompt

import (
	"fmt"
	"strings"

	"knowledge-copilot-be/internal/entity"
)

// responseSchema is shown to the model verbatim. Citation fields must echo
// chunk metadata exactly; normalization later rejects anything that does not.
const responseSchema = `{
  "answer": "Your answer here based only on the chunks.",
  "citations": [
    {
      "doc_id": "<exact doc_id from chunk>",
      "document_version": "<exact document_version from chunk>",
      "page_number": <exact page_number from chunk>,
      "start_offset": <exact start_offset from chunk>,
      "end_offset": <exact end_offset from chunk>,
      "source_uri": "<exact source_uri from chunk>",
      "quote": "<exact snippet from chunk text, max 25 words>"
    }
  ]
}`

// Builder renders the user prompt for answer generation: instructions, the
// strict response schema, requester context, and the retrieved chunks with
// their full citation metadata.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(question, language string, roleNames []string, rows []*entity.RetrievedChunk) string {
	roleList := "none"
	if len(roleNames) > 0 {
		roleList = strings.Join(roleNames, ", ")
	}

	var sb strings.Builder

	// 1. Instructions
	sb.WriteString("You MUST answer using ONLY the chunks below.\n")
	sb.WriteString("If the chunks are insufficient, return the refusal message exactly.\n")
	sb.WriteString("Return ONLY valid JSON matching the EXACT schema below. No other fields allowed.\n")
	sb.WriteString("Use the same language as the user for the answer.\n")
	sb.WriteString("Each citation must use the EXACT values from the chunk metadata (doc_id, document_version, page_number, start_offset, end_offset, source_uri).\n")
	sb.WriteString("The quote must be an exact snippet from the chunk text, max 25 words, NOT translated.\n\n")

	// 2. Response schema
	sb.WriteString("REQUIRED JSON SCHEMA:\n")
	sb.WriteString(responseSchema)
	sb.WriteString("\n\n")

	// 3. Requester context
	sb.WriteString(fmt.Sprintf("User language: %s\n", language))
	sb.WriteString(fmt.Sprintf("User roles: %s\n", roleList))
	sb.WriteString(fmt.Sprintf("User question: %s\n\n", question))

	// 4. Retrieved chunks with citation metadata
	sb.WriteString("Retrieved chunks:\n")
	for idx, row := range rows {
		if idx > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Chunk %d:\n", idx+1))
		sb.WriteString(fmt.Sprintf("chunk_id: %s\n", row.ChunkId))
		sb.WriteString(fmt.Sprintf("doc_title: %s\n", row.DocumentTitle))
		sb.WriteString(fmt.Sprintf("doc_id: %s\n", row.DocumentId))
		sb.WriteString(fmt.Sprintf("document_version: %s\n", row.DocumentVersion))
		sb.WriteString(fmt.Sprintf("page_number: %s\n", formatOptionalInt(row.PageStart)))
		sb.WriteString(fmt.Sprintf("start_offset: %d\n", row.OffsetStart))
		sb.WriteString(fmt.Sprintf("end_offset: %d\n", row.OffsetEnd))
		sb.WriteString(fmt.Sprintf("source_uri: %s\n", row.SourceURI))
		sb.WriteString("text:\n")
		sb.WriteString(row.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}
