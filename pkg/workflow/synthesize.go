package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-reportgen-be/internal/constant"
	"ai-reportgen-be/pkg/llm"
)

// SelectGenerationMode derives the mode from the provenance tags present
// in the accumulated results. Mode picks the reference material for the
// prompt; it never alters scoring.
func SelectGenerationMode(results []SearchResult) GenerationMode {
	var hasKB, hasAPI bool
	for _, r := range results {
		switch r.Provenance {
		case ProvenanceKnowledgeBase:
			hasKB = true
		case ProvenanceApiSearch:
			hasAPI = true
		}
	}

	switch {
	case hasKB && hasAPI:
		return ModeHybrid
	case hasKB:
		return ModeKnowledgeBase
	case hasAPI:
		return ModeApiSearch
	default:
		return ModeTemplateOnly
	}
}

// synthesize generates the final report from the accumulated reference
// material. Generation failure is fatal for the run; verification runs
// once and records validity without gating anything.
func (e *Engine) synthesize(ctx context.Context, state *State) error {
	state.GenerationMode = SelectGenerationMode(state.Results)

	if state.GenerationMode == ModeTemplateOnly {
		state.Report = e.buildTemplate(state)
		return nil
	}

	references := e.buildReferences(state)

	system := constant.ReportGenerationSystemPrompt
	if hint := e.template(state).ReportHint; hint != "" {
		system += "\n" + hint
	}

	messages := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(constant.ReportGenerationUserPrompt, state.Query, references)},
	}

	report, err := e.llm.Chat(ctx, messages, llm.WithTemperature(0.7))
	if err != nil {
		return fmt.Errorf("report generation: %w", err)
	}
	state.Report = report

	e.verify(ctx, state)
	return nil
}

// buildReferences concatenates reference material according to the
// generation mode. Knowledge-base content is capped so a large document
// supplied by id cannot blow up the prompt.
func (e *Engine) buildReferences(state *State) string {
	var b strings.Builder

	if state.GenerationMode == ModeKnowledgeBase || state.GenerationMode == ModeHybrid {
		b.WriteString("## Knowledge base\n")
		total := 0
		for _, r := range state.ResultsByProvenance(ProvenanceKnowledgeBase) {
			content := []rune(r.Content)
			if total+len(content) > e.cfg.MaxDirectChars {
				content = content[:e.cfg.MaxDirectChars-total]
			}
			if len(content) == 0 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", string(content))
			total += len(content)
			if total >= e.cfg.MaxDirectChars {
				break
			}
		}
	}

	if state.GenerationMode == ModeApiSearch || state.GenerationMode == ModeHybrid {
		b.WriteString("\n## Web search\n")
		for _, r := range state.ResultsByProvenance(ProvenanceApiSearch) {
			fmt.Fprintf(&b, "- [%s](%s): %s\n", r.Title, r.URL, r.Content)
		}
	}

	return b.String()
}

// verify runs a single validity check over the generated report. Outcome
// is recorded for observability; synthesis proceeds regardless, and the
// retry counter is never consulted.
func (e *Engine) verify(ctx context.Context, state *State) {
	prompt := fmt.Sprintf(constant.ReportVerificationPrompt, state.Query, state.Report)
	raw, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		e.log.Warn("workflow.verify", "verification call failed", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		return
	}

	var verdict struct {
		Valid      bool     `json:"valid"`
		Confidence float64  `json:"confidence"`
		Issues     []string `json:"issues"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &verdict); err != nil {
		e.log.Warn("workflow.verify", "verification output unparseable", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		return
	}

	state.Valid = &verdict.Valid
	state.VerifyConfidence = verdict.Confidence

	e.log.Info("workflow.verify", "report verified", map[string]interface{}{
		"run_id":     state.RunId,
		"valid":      verdict.Valid,
		"confidence": verdict.Confidence,
		"issues":     verdict.Issues,
	})
}
