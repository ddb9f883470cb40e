package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-reportgen-be/internal/constant"
	"ai-reportgen-be/pkg/llm"
)

const resultsPerSearch = 3

// planSearches asks the LLM to break the request into distinct search
// queries. Falls back to the raw query as a single step when planning
// fails, so augmentation still happens after a confirmed decision.
func (e *Engine) planSearches(ctx context.Context, state *State) []string {
	prompt := fmt.Sprintf(constant.SearchPlanPrompt, e.cfg.SearchSteps, state.Query)
	if hint := e.template(state).PlannerHint; hint != "" {
		prompt += "\n" + hint
	}
	raw, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		e.log.Warn("workflow.augment", "search planning failed, using raw query", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		return []string{state.Query}
	}

	var plan struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil || len(plan.Queries) == 0 {
		return []string{state.Query}
	}

	if len(plan.Queries) > e.cfg.SearchSteps {
		plan.Queries = plan.Queries[:e.cfg.SearchSteps]
	}
	return plan.Queries
}

// augment runs the planned searches and appends api_search-tagged results.
// Individual search failures are logged and skipped; augmentation is best
// effort and never fails the run.
func (e *Engine) augment(ctx context.Context, state *State) {
	queries := e.planSearches(ctx, state)

	for _, q := range queries {
		results, err := e.search.Search(ctx, q, resultsPerSearch)
		if err != nil {
			e.log.Warn("workflow.augment", "web search failed, skipping query", map[string]interface{}{
				"run_id": state.RunId,
				"query":  q,
				"error":  err.Error(),
			})
			continue
		}

		for _, r := range results {
			state.Results = append(state.Results, SearchResult{
				Provenance: ProvenanceApiSearch,
				Title:      r.Title,
				Content:    r.Snippet,
				URL:        r.Link,
			})
		}
	}

	e.log.Info("workflow.augment", "search augmentation finished", map[string]interface{}{
		"run_id":        state.RunId,
		"planned":       len(queries),
		"total_results": len(state.ResultsByProvenance(ProvenanceApiSearch)),
	})
}
