package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-reportgen-be/internal/constant"
	"ai-reportgen-be/pkg/knowledge"
	"ai-reportgen-be/pkg/llm"
)

// recognizeIntent classifies the query via the LLM. Any failure (provider
// error, malformed JSON, empty type) yields the default report_generation
// intent instead of failing the run.
func (e *Engine) recognizeIntent(ctx context.Context, state *State) *Intent {
	fallback := &Intent{
		Type:       IntentReportGeneration,
		Keywords:   knowledge.KeywordList(state.Query),
		Confidence: 0.5,
	}

	prompt := fmt.Sprintf(constant.IntentClassificationPrompt, state.Query)
	raw, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		e.log.Warn("workflow.intent", "classifier failed, using default intent", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		return fallback
	}

	var intent Intent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &intent); err != nil {
		e.log.Warn("workflow.intent", "classifier output unparseable, using default intent", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		return fallback
	}
	if intent.Type == "" {
		return fallback
	}
	if len(intent.Keywords) == 0 {
		intent.Keywords = fallback.Keywords
	}
	return &intent
}

// extractJSON pulls the first JSON object out of a model response that may
// be wrapped in prose or a markdown fence.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
