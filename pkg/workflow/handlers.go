package workflow

import (
	"context"
	"fmt"
	"strings"

	"ai-reportgen-be/internal/constant"
	"ai-reportgen-be/pkg/llm"
)

// runShortCircuit executes the single-shot operations that bypass the
// decision pipeline: answering about, rewriting, or extending an
// externally supplied report.
func (e *Engine) runShortCircuit(ctx context.Context, state *State) error {
	if strings.TrimSpace(state.ExistingReport) == "" {
		return fmt.Errorf("operation %s requires an existing report", state.Operation)
	}

	switch state.Operation {
	case OperationFollowUp:
		return e.handleFollowUp(ctx, state)
	case OperationModify:
		return e.handleModify(ctx, state)
	case OperationSupplement:
		return e.handleSupplement(ctx, state)
	default:
		return fmt.Errorf("unknown short-circuit operation %q", state.Operation)
	}
}

// handleFollowUp answers a question from the report alone; the answer goes
// into state.Report without replacing the stored report upstream.
func (e *Engine) handleFollowUp(ctx context.Context, state *State) error {
	prompt := fmt.Sprintf(constant.FollowUpPrompt, state.ExistingReport, state.Query)
	answer, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return fmt.Errorf("follow-up generation: %w", err)
	}
	state.Report = answer
	return nil
}

func (e *Engine) handleModify(ctx context.Context, state *State) error {
	prompt := fmt.Sprintf(constant.ModifyReportPrompt, state.Query, state.ExistingReport)
	revised, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.5))
	if err != nil {
		return fmt.Errorf("modification generation: %w", err)
	}
	state.Report = revised
	return nil
}

// handleSupplement extends the report, pulling whatever the knowledge
// store has on the requested aspect as reference material. Retrieval
// failure degrades to an empty reference block.
func (e *Engine) handleSupplement(ctx context.Context, state *State) error {
	var refs strings.Builder
	hits, err := e.store.Search(ctx, state.Query, e.cfg.TopK, e.cfg.MinSimilarity)
	if err != nil {
		e.log.Warn("workflow.supplement", "retrieval failed, supplementing without references", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
	}
	for _, h := range hits {
		fmt.Fprintf(&refs, "- %s\n", h.Chunk.Content)
	}

	prompt := fmt.Sprintf(constant.SupplementReportPrompt, state.Query, refs.String(), state.ExistingReport)
	extended, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.5))
	if err != nil {
		return fmt.Errorf("supplement generation: %w", err)
	}
	state.Report = extended
	return nil
}
