package constant

const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
	LanguageAuto    = "auto"

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	DocumentStatusDraft    = "draft"
	DocumentStatusApproved = "approved"
	DocumentStatusArchived = "archived"

	HistoryRoleUser      = "user"
	HistoryRoleAssistant = "assistant"

	// Quote length cap for citations (words). Quotes longer than this are
	// truncated on a word boundary so they stay verbatim substrings.
	CitationQuoteMaxWords = 25

	// History window for conversation fold-in. Older turns are ignored to
	// cap embedding input size and avoid topic drift.
	HistoryWindowTurns = 6
)

// Fixed refusal statements. Downstream UIs detect a refusal by exact match,
// so these literals must never be reworded.
const (
	RefusalTextEN = "I can't answer from KIB's approved documents for this question."
	RefusalTextAR = "لا أستطيع الإجابة من مستندات KIB المعتمدة لهذا السؤال."
)

// Missing-info explanations attached to knowledge refusals and thin answers.
const (
	MissingInfoEN = "No approved documents matched this question, or the evidence was too weak. " +
		"This may be outside the KIB knowledge base. " +
		"Try adding the policy name, product name, or section title."
	MissingInfoAR = "لا توجد مستندات معتمدة مطابقة لهذا السؤال، أو أن الأدلة ضعيفة. " +
		"قد يكون هذا خارج نطاق قاعدة معرفة KIB. " +
		"جرّب إضافة اسم السياسة أو المنتج أو عنوان القسم."
)

// Operational variants for upstream outages. Distinct from the knowledge
// refusal so the requester knows retrying is worthwhile.
const (
	OperationalInfoEN = "The knowledge service could not assess the evidence for this question due to a temporary system issue."
	OperationalInfoAR = "تعذّر على خدمة المعرفة تقييم الأدلة لهذا السؤال بسبب خلل مؤقت في النظام."
)

// LLMSystemPrompt constrains generation to retrieved chunks only.
const LLMSystemPrompt = `You are the KIB Knowledge Copilot. Answer ONLY using the provided chunks. ` +
	`If the chunks do not contain enough evidence, refuse with the exact message: ` +
	`"I can't answer from KIB's approved documents for this question." ` +
	`Do NOT use general knowledge. Do NOT fabricate policies, numbers, fees, or limits. ` +
	`Return JSON that matches the response schema exactly. ` +
	`Every non-refusal answer must include citations derived from the provided chunks only.`

// SafeNextSteps returns the suggestion list for knowledge refusals and
// medium/low confidence answers.
func SafeNextSteps(language string) []string {
	if language == LanguageArabic {
		return []string{
			"ابحث باسم السياسة أو المنتج.",
			"اذكر عنوان القسم أو البند في المستند.",
			"اسأل عن نموذج أو رسوم أو حد محدد.",
		}
	}
	return []string{
		"Search by policy or product name.",
		"Include the document section or clause title.",
		"Ask about a specific form, fee, or limit.",
	}
}

// OperationalNextSteps returns suggestions for operational-error refusals.
func OperationalNextSteps(language string) []string {
	if language == LanguageArabic {
		return []string{
			"أعد المحاولة بعد لحظات.",
			"إذا استمرت المشكلة، تواصل مع فريق الدعم التقني.",
		}
	}
	return []string{
		"Retry the question in a few moments.",
		"If the problem persists, contact the platform support team.",
	}
}

// RefusalText returns the fixed refusal literal for a response language.
func RefusalText(language string) string {
	if language == LanguageArabic {
		return RefusalTextAR
	}
	return RefusalTextEN
}

// MissingInfoText returns the knowledge missing-info literal.
func MissingInfoText(language string) string {
	if language == LanguageArabic {
		return MissingInfoAR
	}
	return MissingInfoEN
}

// OperationalInfoText returns the operational missing-info literal.
func OperationalInfoText(language string) string {
	if language == LanguageArabic {
		return OperationalInfoAR
	}
	return OperationalInfoEN
}
