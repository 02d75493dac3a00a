package guardrail

import (
	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/dto"
)

// Thresholds are tunable configuration, not hard-coded business fact. The
// qualitative ordering (floor < medium < high) is the contract; the numbers
// are deployment knobs.
type Thresholds struct {
	// ScoreFloor is the minimum best-similarity for any answer at all.
	ScoreFloor float64
	// HighScore is the minimum average similarity for high confidence.
	HighScore float64
	// MediumScore is the minimum average similarity for medium confidence.
	MediumScore float64
	// IsolationGap caps confidence at medium when the best passage sits
	// this far above the runner-up: a single isolated hit is weaker
	// evidence than its raw score suggests.
	IsolationGap float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ScoreFloor:   0.30,
		HighScore:    0.70,
		MediumScore:  0.55,
		IsolationGap: 0.25,
	}
}

// Signal is everything the policy looks at. It is assembled by the caller
// so Decide stays a pure function, independently testable apart from the
// I/O-bound retrieval and generation stages.
type Signal struct {
	// Scores are the ranked candidate similarities, descending.
	Scores []float64
	// CitationCount is the number of citations that survived normalization
	// against the retrieved rows.
	CitationCount int
	// LanguageMatched is false when every top candidate is in a different
	// language than the response with no same-language fallback.
	LanguageMatched bool
	// Grounded is the lightweight groundedness check: the answer's key
	// assertions trace back to at least one retrieved passage.
	Grounded bool
	// Operational marks an upstream outage (retrieval or generation
	// unavailable after retries): the policy cannot assess evidence.
	Operational bool
}

// Decision is the terminal state of a request: Refused, or Answered with a
// confidence level. There is no retry loop here; retries belong upstream.
type Decision struct {
	Refuse      bool
	Operational bool
	Confidence  string
}

// PreDecide gates generation: it applies the refusal conditions knowable
// before any LLM call (empty set, floor, language mismatch). Saves a
// generation round-trip on hopeless candidates.
func PreDecide(sig Signal, t Thresholds) Decision {
	if sig.Operational {
		return Decision{Refuse: true, Operational: true, Confidence: constant.ConfidenceLow}
	}
	if len(sig.Scores) == 0 {
		return Decision{Refuse: true, Confidence: constant.ConfidenceLow}
	}
	if sig.Scores[0] < t.ScoreFloor {
		return Decision{Refuse: true, Confidence: constant.ConfidenceLow}
	}
	if !sig.LanguageMatched {
		return Decision{Refuse: true, Confidence: constant.ConfidenceLow}
	}
	return Decision{Refuse: false, Confidence: constant.ConfidenceLow}
}

// Decide is the full policy decision. Deterministic given its inputs.
//
// Confidence is monotonic non-decreasing in the best score when the rest of
// the signal is held fixed: a higher best score can only raise the average.
func Decide(sig Signal, t Thresholds) Decision {
	if pre := PreDecide(sig, t); pre.Refuse {
		return pre
	}

	// An answer with no valid citations, or one the passages do not
	// support, is downgraded to a refusal. Citations are never fabricated
	// to rescue it.
	if sig.CitationCount == 0 || !sig.Grounded {
		return Decision{Refuse: true, Confidence: constant.ConfidenceLow}
	}

	avg := mean(sig.Scores)
	confidence := constant.ConfidenceLow
	switch {
	case sig.CitationCount >= 2 && avg >= t.HighScore:
		confidence = constant.ConfidenceHigh
	case avg >= t.MediumScore:
		confidence = constant.ConfidenceMedium
	}

	// Convergent evidence beats one isolated hit: tight clustering among
	// several passages supports high confidence, a lone outlier does not.
	if confidence == constant.ConfidenceHigh && len(sig.Scores) >= 2 &&
		sig.Scores[0]-sig.Scores[1] > t.IsolationGap {
		confidence = constant.ConfidenceMedium
	}

	return Decision{Refuse: false, Confidence: confidence}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += clamp01(v)
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Refusal builds the fixed refusal response for a language. The answer
// literal must match the configured refusal text exactly so downstream UIs
// can detect refusals by equality, not heuristics. Operational refusals
// carry distinct missing-info and next steps so the requester knows the
// corpus was not the problem.
func Refusal(responseLanguage string, operational bool) *dto.AskResponse {
	missingInfo := constant.MissingInfoText(responseLanguage)
	nextSteps := constant.SafeNextSteps(responseLanguage)
	if operational {
		missingInfo = constant.OperationalInfoText(responseLanguage)
		nextSteps = constant.OperationalNextSteps(responseLanguage)
	}
	return &dto.AskResponse{
		Language:      responseLanguage,
		Answer:        constant.RefusalText(responseLanguage),
		Confidence:    constant.ConfidenceLow,
		Citations:     []dto.CitationDTO{},
		MissingInfo:   &missingInfo,
		SafeNextSteps: nextSteps,
	}
}
