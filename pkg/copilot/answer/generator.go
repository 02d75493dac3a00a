package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/pkg/copilot/citation"
	"knowledge-copilot-be/pkg/copilot/copiloterr"
	"knowledge-copilot-be/pkg/copilot/guardrail"
	"knowledge-copilot-be/pkg/copilot/prompt"
	"knowledge-copilot-be/pkg/llm"
)

// Draft is the generation outcome before the final guardrail decision. A
// refused draft is a knowledge refusal (malformed output, refusal literal,
// or citations that do not match any retrieved chunk); operational failures
// surface as ErrGenerationUnavailable instead.
type Draft struct {
	Answer    string
	Citations []dto.CitationDTO
	UsedRows  []*entity.RetrievedChunk
	Refused   bool
}

// Generator runs the LLM stage: prompt assembly, the bounded-retry provider
// call, strict JSON parsing, and citation normalization against the
// retrieved rows.
type Generator struct {
	provider   llm.LLMProvider
	builder    *prompt.Builder
	timeout    time.Duration
	maxRetries int
}

func NewGenerator(provider llm.LLMProvider, timeout time.Duration, maxRetries int) *Generator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Generator{
		provider:   provider,
		builder:    prompt.NewBuilder(),
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

func (g *Generator) ModelId() string {
	return g.provider.ModelId()
}

// rawResponse mirrors the strict schema the model is instructed to return.
// Unknown or missing fields surface as a refusal, never a crash.
type rawResponse struct {
	Answer    string        `json:"answer"`
	Citations []rawCitation `json:"citations"`
}

type rawCitation struct {
	DocId           string `json:"doc_id"`
	DocumentVersion string `json:"document_version"`
	PageNumber      *int   `json:"page_number"`
	StartOffset     *int   `json:"start_offset"`
	EndOffset       *int   `json:"end_offset"`
	SourceURI       string `json:"source_uri"`
	Quote           string `json:"quote"`
}

// Generate produces a draft answer for the question over the retrieved rows.
// Provider failures are retried with linear backoff inside the stage budget;
// exhausting the budget returns ErrGenerationUnavailable.
func (g *Generator) Generate(ctx context.Context, question, language string, roleNames []string, rows []*entity.RetrievedChunk) (*Draft, error) {
	if len(rows) == 0 {
		return &Draft{Refused: true}, nil
	}

	userPrompt := g.builder.Build(question, language, roleNames, rows)
	messages := []llm.Message{
		{Role: "system", Content: constant.LLMSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	var raw string
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", copiloterr.ErrGenerationUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		raw, lastErr = g.provider.Chat(callCtx, messages)
		cancel()
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", copiloterr.ErrGenerationUnavailable, lastErr)
	}

	return g.normalize(raw, rows), nil
}

// normalize parses the raw model output and maps every citation back to a
// retrieved row by exact metadata match. One unmatched citation rejects the
// whole draft: a partially fabricated citation set is not trustworthy. A
// matched row whose text does not support the answer is merely ineligible
// to be cited; the draft survives unless no citation remains.
func (g *Generator) normalize(raw string, rows []*entity.RetrievedChunk) *Draft {
	var parsed rawResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return &Draft{Refused: true}
	}

	answerText := strings.TrimSpace(parsed.Answer)
	if answerText == "" ||
		answerText == constant.RefusalTextEN ||
		answerText == constant.RefusalTextAR {
		return &Draft{Refused: true}
	}
	if len(parsed.Citations) == 0 {
		return &Draft{Refused: true}
	}

	rowMap := make(map[string]*entity.RetrievedChunk, len(rows))
	for _, row := range rows {
		rowMap[rowKey(row)] = row
	}

	citations := make([]dto.CitationDTO, 0, len(parsed.Citations))
	usedRows := make([]*entity.RetrievedChunk, 0, len(parsed.Citations))
	for _, c := range parsed.Citations {
		row, ok := rowMap[citationKey(&c)]
		if !ok {
			return &Draft{Refused: true}
		}
		if integrityErr := citation.ValidateAnchor(row); integrityErr != nil {
			return &Draft{Refused: true}
		}
		if !guardrail.Supports(answerText, row.Text) {
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
			Quote:           citation.QuoteSnippet(row.Text),
			SourceURI:       row.SourceURI,
		})
		usedRows = append(usedRows, row)
	}

	if len(citations) == 0 {
		return &Draft{Refused: true}
	}

	return &Draft{
		Answer:    answerText,
		Citations: citations,
		UsedRows:  usedRows,
	}
}

func rowKey(row *entity.RetrievedChunk) string {
	start := row.OffsetStart
	end := row.OffsetEnd
	return metadataKey(row.DocumentId.String(), row.DocumentVersion, row.PageStart, &start, &end, row.SourceURI)
}

func citationKey(c *rawCitation) string {
	return metadataKey(c.DocId, c.DocumentVersion, c.PageNumber, c.StartOffset, c.EndOffset, c.SourceURI)
}

func metadataKey(docId, version string, page, start, end *int, sourceURI string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		docId, version, optInt(page), optInt(start), optInt(end), sourceURI)
}

func optInt(v *int) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}

// stripCodeFence unwraps a ```json fenced block if the model added one.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
