package guardrail

import (
	"testing"

	"knowledge-copilot-be/internal/constant"
)

func TestDecide(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name           string
		sig            Signal
		wantRefuse     bool
		wantConfidence string
	}{
		{
			name:       "empty candidate set refuses",
			sig:        Signal{Scores: nil, LanguageMatched: true, Grounded: true},
			wantRefuse: true,
		},
		{
			name:       "best score below floor refuses",
			sig:        Signal{Scores: []float64{0.2, 0.1}, CitationCount: 2, LanguageMatched: true, Grounded: true},
			wantRefuse: true,
		},
		{
			name:       "language mismatch refuses",
			sig:        Signal{Scores: []float64{0.9, 0.8}, CitationCount: 2, LanguageMatched: false, Grounded: true},
			wantRefuse: true,
		},
		{
			name:       "no citations refuses",
			sig:        Signal{Scores: []float64{0.9, 0.8}, CitationCount: 0, LanguageMatched: true, Grounded: true},
			wantRefuse: true,
		},
		{
			name:       "ungrounded answer refuses",
			sig:        Signal{Scores: []float64{0.9, 0.8}, CitationCount: 2, LanguageMatched: true, Grounded: false},
			wantRefuse: true,
		},
		{
			name:       "operational failure refuses",
			sig:        Signal{Operational: true},
			wantRefuse: true,
		},
		{
			name:           "two citations with strong average is high",
			sig:            Signal{Scores: []float64{0.85, 0.80}, CitationCount: 2, LanguageMatched: true, Grounded: true},
			wantRefuse:     false,
			wantConfidence: constant.ConfidenceHigh,
		},
		{
			name:           "single citation caps at medium",
			sig:            Signal{Scores: []float64{0.9}, CitationCount: 1, LanguageMatched: true, Grounded: true},
			wantRefuse:     false,
			wantConfidence: constant.ConfidenceMedium,
		},
		{
			name:           "moderate average is medium",
			sig:            Signal{Scores: []float64{0.6, 0.58}, CitationCount: 2, LanguageMatched: true, Grounded: true},
			wantRefuse:     false,
			wantConfidence: constant.ConfidenceMedium,
		},
		{
			name:           "weak average above floor is low",
			sig:            Signal{Scores: []float64{0.45, 0.40}, CitationCount: 2, LanguageMatched: true, Grounded: true},
			wantRefuse:     false,
			wantConfidence: constant.ConfidenceLow,
		},
		{
			name:           "isolated top hit downgrades high to medium",
			sig:            Signal{Scores: []float64{0.95, 0.50}, CitationCount: 2, LanguageMatched: true, Grounded: true},
			wantRefuse:     false,
			wantConfidence: constant.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.sig, th)
			if got.Refuse != tt.wantRefuse {
				t.Errorf("Decide() refuse = %v, want %v", got.Refuse, tt.wantRefuse)
			}
			if !tt.wantRefuse && got.Confidence != tt.wantConfidence {
				t.Errorf("Decide() confidence = %q, want %q", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

// Confidence must never decrease when the best score increases with the
// rest of the signal held fixed.
func TestDecideMonotonicInBestScore(t *testing.T) {
	th := DefaultThresholds()
	rank := map[string]int{
		constant.ConfidenceLow:    0,
		constant.ConfidenceMedium: 1,
		constant.ConfidenceHigh:   2,
	}

	prev := -1
	for best := 0.0; best <= 1.0; best += 0.01 {
		sig := Signal{
			Scores:          []float64{best, best - 0.05},
			CitationCount:   2,
			LanguageMatched: true,
			Grounded:        true,
		}
		d := Decide(sig, th)
		level := -1
		if !d.Refuse {
			level = rank[d.Confidence]
		}
		if level < prev {
			t.Fatalf("confidence decreased at best=%.2f: level %d after %d", best, level, prev)
		}
		prev = level
	}
}

func TestPreDecideSkipsGenerationGates(t *testing.T) {
	th := DefaultThresholds()

	// A healthy candidate set passes the pre-gate even though citation and
	// grounding signals are not available yet.
	d := PreDecide(Signal{Scores: []float64{0.8}, LanguageMatched: true}, th)
	if d.Refuse {
		t.Fatal("PreDecide() refused a healthy candidate set")
	}

	d = PreDecide(Signal{Scores: []float64{0.8}, LanguageMatched: false}, th)
	if !d.Refuse {
		t.Fatal("PreDecide() accepted a language mismatch")
	}
}

func TestRefusalLiterals(t *testing.T) {
	en := Refusal(constant.LanguageEnglish, false)
	if en.Answer != constant.RefusalTextEN {
		t.Errorf("english refusal answer = %q", en.Answer)
	}
	if en.Confidence != constant.ConfidenceLow {
		t.Errorf("refusal confidence = %q", en.Confidence)
	}
	if len(en.Citations) != 0 {
		t.Errorf("refusal carries %d citations", len(en.Citations))
	}
	if en.MissingInfo == nil || *en.MissingInfo != constant.MissingInfoEN {
		t.Error("english refusal missing_info mismatch")
	}

	ar := Refusal(constant.LanguageArabic, false)
	if ar.Answer != constant.RefusalTextAR {
		t.Errorf("arabic refusal answer = %q", ar.Answer)
	}

	// Operational refusals use the same fixed answer but a distinct
	// explanation, so clients can tell "retry later" from "not in corpus".
	op := Refusal(constant.LanguageEnglish, true)
	if op.Answer != constant.RefusalTextEN {
		t.Errorf("operational refusal answer = %q", op.Answer)
	}
	if op.MissingInfo == nil || *op.MissingInfo != constant.OperationalInfoEN {
		t.Error("operational refusal missing_info mismatch")
	}
	if *op.MissingInfo == *en.MissingInfo {
		t.Error("operational and knowledge refusals must be distinguishable")
	}
}

func TestGrounded(t *testing.T) {
	passages := []string{
		"The standard retail account carries no monthly maintenance fee when the average balance stays above 200 KWD.",
	}

	if !Grounded("The retail account has no monthly maintenance fee above a 200 KWD balance.", passages) {
		t.Error("supported answer judged ungrounded")
	}
	if Grounded("Our mortgage rates start at three percent for qualified borrowers.", passages) {
		t.Error("unsupported answer judged grounded")
	}
	if Grounded("Our mortgage rates start at three percent.", nil) {
		t.Error("answer grounded with no passages")
	}

	// Too short to measure: give the benefit of the doubt.
	if !Grounded("Yes.", passages) {
		t.Error("very short answer should pass the grounding check")
	}
}
