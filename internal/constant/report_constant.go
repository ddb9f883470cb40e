package constant

const (
	ReportMessageRoleUser   = "user"
	ReportMessageRoleModel  = "model"
	ReportMessageRoleSystem = "system"

	// Intent classification. Output is parsed as JSON; on any parse or
	// provider failure the caller substitutes the default intent.
	IntentClassificationPrompt = `Classify the user's request for a report-writing assistant.

User request: "%s"

Intent types:
- report_generation: user wants a new report written
- follow_up: user asks a question about an existing report
- modification: user wants an existing report changed
- supplement: user wants new material appended to an existing report

Output MUST be valid JSON, nothing else:
{"type": "report_generation", "keywords": ["..."], "confidence": 0.0}`

	// Search planning for the augmentation step.
	SearchPlanPrompt = `You are a research planner. Break the topic below into %d distinct web search queries that together cover the subject. Each query must be specific and self-contained.

Topic: "%s"

Output MUST be valid JSON, nothing else:
{"queries": ["...", "..."]}`

	// Report generation. The reference block differs per generation mode;
	// the surrounding instructions stay the same.
	ReportGenerationSystemPrompt = `You are a professional report writer. Write a well-structured report in Markdown with a title, an introduction, thematic sections, and a conclusion.

Rules:
- Use ONLY the reference material provided. Do not invent facts.
- When reference material is thin, keep the affected section short rather than padding it.
- Cite web sources inline as [title](url) when the reference item carries a URL.
- Write in the language of the user's request.`

	ReportGenerationUserPrompt = `Request: %s

Reference material:
%s

Write the full report now.`

	// Follow-up Q&A over an existing report.
	FollowUpPrompt = `You are answering a question about the report below. Answer directly from the report content; if the report does not cover it, say so.

Report:
%s

Question: %s`

	// Modification rewrites the report per instruction, returning the
	// complete updated document.
	ModifyReportPrompt = `Revise the report below according to the instruction. Keep everything not affected by the instruction unchanged. Return the COMPLETE revised report in Markdown, nothing else.

Instruction: %s

Report:
%s`

	// Supplement extends the report with new material on the given aspect.
	SupplementReportPrompt = `Extend the report below with additional material covering: %s

Integrate the new content where it fits best and return the COMPLETE updated report in Markdown, nothing else.

Reference material (may be empty):
%s

Report:
%s`

	// Verification of a generated report. Validity is recorded for
	// observability; generation proceeds regardless of the outcome.
	ReportVerificationPrompt = `Assess whether the report below actually addresses the request. Output MUST be valid JSON, nothing else:
{"valid": true, "confidence": 0.0, "issues": ["..."]}

Request: %s

Report:
%s`
)
