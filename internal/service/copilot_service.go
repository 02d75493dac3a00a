package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/pkg/logger"
	"knowledge-copilot-be/pkg/copilot/answer"
	"knowledge-copilot-be/pkg/copilot/contextfold"
	"knowledge-copilot-be/pkg/copilot/copiloterr"
	"knowledge-copilot-be/pkg/copilot/guardrail"
	"knowledge-copilot-be/pkg/copilot/language"
	"knowledge-copilot-be/pkg/copilot/ranking"
	"knowledge-copilot-be/pkg/copilot/retrieval"
)

type ICopilotService interface {
	Ask(ctx context.Context, requester *entity.Requester, req *dto.AskRequest) (*dto.AskResponse, error)
}

// copilotService orchestrates one ask request end to end: fold the history,
// retrieve within the requester's access scope, gate, generate, verify, and
// decide. Every path terminates in a well-formed response; upstream outages
// become operational refusals, never 5xx bodies with partial answers.
type copilotService struct {
	retriever        *retrieval.Retriever
	ranker           *ranking.Ranker
	generator        *answer.Generator
	folder           *contextfold.Folder
	publisherService IPublisherService
	thresholds       guardrail.Thresholds
	topKDefault      int
	embeddingModel   string
	logger           logger.ILogger
}

func NewCopilotService(
	retriever *retrieval.Retriever,
	generator *answer.Generator,
	publisherService IPublisherService,
	thresholds guardrail.Thresholds,
	topKDefault int,
	embeddingModel string,
	log logger.ILogger,
) ICopilotService {
	if topKDefault <= 0 {
		topKDefault = 5
	}
	return &copilotService{
		retriever:        retriever,
		ranker:           ranking.NewRanker(),
		generator:        generator,
		folder:           contextfold.NewFolder(constant.HistoryWindowTurns),
		publisherService: publisherService,
		thresholds:       thresholds,
		topKDefault:      topKDefault,
		embeddingModel:   embeddingModel,
		logger:           log,
	}
}

func (s *copilotService) Ask(ctx context.Context, requester *entity.Requester, req *dto.AskRequest) (*dto.AskResponse, error) {
	start := time.Now()
	traceId := uuid.NewString()

	// 1. Resolve the response language up front: refusals need it too.
	responseLanguage := language.Resolve(req.Language, req.Question)

	topK := req.TopK
	if topK <= 0 {
		topK = s.topKDefault
	}

	// 2. Fold conversation history into the retrieval query. Standalone
	// questions pass through untouched.
	history := make([]contextfold.Turn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, contextfold.Turn{Role: turn.Role, Text: turn.Text})
	}
	foldedQuery := s.folder.Fold(history, req.Question)

	// 3. Retrieve within the requester's access scope. The eligibility
	// predicate runs inside the search query; rows arriving here are already
	// access-checked.
	rows, dropped, err := s.retriever.Retrieve(ctx, foldedQuery, requester, topK)
	if err != nil {
		return s.finishOperational(ctx, requester, req, responseLanguage, traceId, start, err), nil
	}
	for _, integrityErr := range dropped {
		s.logger.Error("CopilotService", "Dropped chunk with inconsistent anchor", map[string]interface{}{
			"trace_id": traceId,
			"chunk_id": integrityErr.ChunkId.String(),
			"error":    integrityErr.Error(),
		})
	}

	// 4. Rank and deduplicate.
	ranked := s.ranker.Rank(rows, topK)

	languageMatched := len(ranked) == 0
	for _, row := range ranked {
		if language.Matches(row.DocumentLanguage, responseLanguage) {
			languageMatched = true
			break
		}
	}

	rankedScores := make([]float64, 0, len(ranked))
	for _, row := range ranked {
		rankedScores = append(rankedScores, row.Similarity)
	}

	// 5. Pre-generation gate: refuse hopeless candidate sets without paying
	// for an LLM round-trip.
	preSignal := guardrail.Signal{
		Scores:          rankedScores,
		LanguageMatched: languageMatched,
	}
	if pre := guardrail.PreDecide(preSignal, s.thresholds); pre.Refuse {
		return s.finishRefusal(ctx, requester, req, responseLanguage, traceId, start, ranked, false), nil
	}

	// 6. Generate and normalize. A refused draft is a knowledge refusal;
	// provider exhaustion is operational.
	draft, err := s.generator.Generate(ctx, req.Question, responseLanguage, requester.RoleNames, ranked)
	if err != nil {
		return s.finishOperational(ctx, requester, req, responseLanguage, traceId, start, err), nil
	}
	if draft.Refused {
		return s.finishRefusal(ctx, requester, req, responseLanguage, traceId, start, ranked, false), nil
	}

	// 7. Verify groundedness against the passages the citations point at.
	passages := make([]string, 0, len(draft.UsedRows))
	usedScores := make([]float64, 0, len(draft.UsedRows))
	for _, row := range draft.UsedRows {
		passages = append(passages, row.Text)
		usedScores = append(usedScores, row.Similarity)
	}
	grounded := guardrail.Grounded(draft.Answer, passages)

	// 8. Final policy decision over the full signal.
	decision := guardrail.Decide(guardrail.Signal{
		Scores:          usedScores,
		CitationCount:   len(draft.Citations),
		LanguageMatched: languageMatched,
		Grounded:        grounded,
	}, s.thresholds)
	if decision.Refuse {
		return s.finishRefusal(ctx, requester, req, responseLanguage, traceId, start, ranked, false), nil
	}

	// Medium and low confidence answers tell the requester what was thin.
	var missingInfo *string
	if decision.Confidence != constant.ConfidenceHigh {
		text := constant.MissingInfoText(responseLanguage)
		missingInfo = &text
	}

	response := &dto.AskResponse{
		Language:      responseLanguage,
		Answer:        draft.Answer,
		Confidence:    decision.Confidence,
		Citations:     draft.Citations,
		MissingInfo:   missingInfo,
		SafeNextSteps: constant.SafeNextSteps(responseLanguage),
	}

	s.emitAudit(ctx, requester, req, response, traceId, start, ranked, false)
	return response, nil
}

// finishRefusal closes the request with the fixed knowledge refusal.
func (s *copilotService) finishRefusal(
	ctx context.Context,
	requester *entity.Requester,
	req *dto.AskRequest,
	responseLanguage, traceId string,
	start time.Time,
	ranked []*entity.RetrievedChunk,
	operational bool,
) *dto.AskResponse {
	response := guardrail.Refusal(responseLanguage, operational)
	s.emitAudit(ctx, requester, req, response, traceId, start, ranked, true)
	return response
}

// finishOperational maps a pipeline error to the operational refusal. Model
// mismatch is included: the requester cannot fix it, but the response must
// still distinguish "system issue" from "not in the corpus".
func (s *copilotService) finishOperational(
	ctx context.Context,
	requester *entity.Requester,
	req *dto.AskRequest,
	responseLanguage, traceId string,
	start time.Time,
	err error,
) *dto.AskResponse {
	details := map[string]interface{}{
		"trace_id": traceId,
		"error":    err.Error(),
	}
	if errors.Is(err, copiloterr.ErrModelMismatch) {
		s.logger.Error("CopilotService", "Embedding model mismatch", details)
	} else {
		s.logger.Error("CopilotService", "Upstream provider unavailable", details)
	}

	response := guardrail.Refusal(responseLanguage, true)
	s.emitAudit(ctx, requester, req, response, traceId, start, nil, true)
	return response
}

// emitAudit publishes the audit record onto the in-process topic. The write
// happens asynchronously in the audit consumer; a publish failure is logged
// and never delays or fails the response.
func (s *copilotService) emitAudit(
	ctx context.Context,
	requester *entity.Requester,
	req *dto.AskRequest,
	response *dto.AskResponse,
	traceId string,
	start time.Time,
	ranked []*entity.RetrievedChunk,
	refused bool,
) {
	chunkIds := make([]uuid.UUID, 0, len(ranked))
	for _, row := range ranked {
		chunkIds = append(chunkIds, row.ChunkId)
	}

	payload := dto.PublishAuditRecordMessage{
		Id:                uuid.New(),
		RequesterId:       requester.Id,
		RoleNames:         requester.RoleNames,
		Question:          req.Question,
		RequestLanguage:   req.Language,
		ResponseLanguage:  response.Language,
		RetrievedChunkIds: chunkIds,
		Answer:            response.Answer,
		Confidence:        response.Confidence,
		EmbeddingModel:    s.embeddingModel,
		LLMModel:          s.generator.ModelId(),
		TraceId:           traceId,
		LatencyMs:         time.Since(start).Milliseconds(),
		Refused:           refused,
		CreatedAt:         time.Now(),
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("CopilotService", "Failed to marshal audit payload", map[string]interface{}{"trace_id": traceId, "error": err.Error()})
		return
	}

	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		s.logger.Error("CopilotService", "Failed to publish audit record", map[string]interface{}{"trace_id": traceId, "error": err.Error()})
	}
}
