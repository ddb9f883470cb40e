package workflow

import (
	"context"
	"fmt"

	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/pkg/knowledge"
	"ai-reportgen-be/pkg/llm"
	"ai-reportgen-be/pkg/websearch"
)

// Config carries the tunables of the engine.
type Config struct {
	TopK          int
	MinSimilarity float64
	// MaxDirectChars caps how much document content is inlined into a
	// prompt on the document-id bypass path.
	MaxDirectChars int
	// SearchSteps is how many planned queries the augmenter runs.
	SearchSteps int
}

// Engine sequences intent recognition, retrieval, sufficiency evaluation,
// confirmation-gated search augmentation, and synthesis for one run at a
// time. All collaborators are injected; the engine holds no global state.
type Engine struct {
	store     knowledge.Store
	evaluator *knowledge.Evaluator
	llm       llm.LLMProvider
	search    websearch.SearchProvider
	gate      *Gate
	log       logger.ILogger
	cfg       Config

	// OnTransition, when set, observes every stage change. Used to push
	// run status to registries and websocket clients.
	OnTransition func(state *State)
}

func NewEngine(
	store knowledge.Store,
	evaluator *knowledge.Evaluator,
	llmProvider llm.LLMProvider,
	search websearch.SearchProvider,
	gate *Gate,
	log logger.ILogger,
	cfg Config,
) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxDirectChars <= 0 {
		cfg.MaxDirectChars = 50000
	}
	if cfg.SearchSteps <= 0 {
		cfg.SearchSteps = 3
	}
	return &Engine{
		store:     store,
		evaluator: evaluator,
		llm:       llmProvider,
		search:    search,
		gate:      gate,
		log:       log,
		cfg:       cfg,
	}
}

// WithObserver returns a shallow copy of the engine with the transition
// hook set, so concurrent runs can each carry their own observer.
func (e *Engine) WithObserver(fn func(state *State)) *Engine {
	clone := *e
	clone.OnTransition = fn
	return &clone
}

func (e *Engine) transition(state *State, next Stage) {
	state.Stage = next
	e.log.Debug("workflow.engine", "stage transition", map[string]interface{}{
		"run_id": state.RunId,
		"stage":  string(next),
	})
	if e.OnTransition != nil {
		e.OnTransition(state)
	}
}

// Run drives the state machine to completion. On error the state keeps its
// accumulated results and sufficiency verdict for diagnostics.
func (e *Engine) Run(ctx context.Context, state *State) error {
	for state.Stage != StageEnd {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch state.Stage {
		case StageStart:
			// Non-generation operations bypass the whole pipeline.
			switch state.Operation {
			case OperationFollowUp, OperationModify, OperationSupplement:
				if err := e.runShortCircuit(ctx, state); err != nil {
					return err
				}
				e.transition(state, StageEnd)
			default:
				e.transition(state, StageIntentRecognition)
			}

		case StageIntentRecognition:
			state.Intent = e.recognizeIntent(ctx, state)
			e.transition(state, StageRetrieval)

		case StageRetrieval:
			e.retrieve(ctx, state)
			e.transition(state, StageSufficiencyCheck)

		case StageSufficiencyCheck:
			if state.Sufficiency != nil && state.Sufficiency.Level == knowledge.LevelSufficient {
				e.transition(state, StageDirectGenerate)
			} else {
				e.transition(state, StageConfirmationWait)
			}

		case StageConfirmationWait:
			if _, err := e.gate.Wait(ctx, state); err != nil {
				return fmt.Errorf("confirmation wait: %w", err)
			}
			e.transition(state, StagePostConfirmationRoute)

		case StagePostConfirmationRoute:
			switch {
			case state.ConfirmedSearch != nil && *state.ConfirmedSearch:
				e.transition(state, StageSearchAugment)
			case state.Sufficiency != nil && state.Sufficiency.Level == knowledge.LevelInsufficient:
				// Declined but partial content exists: use what we have.
				e.transition(state, StageDirectGenerate)
			default:
				e.transition(state, StageTemplateOnly)
			}

		case StageSearchAugment:
			e.augment(ctx, state)
			e.transition(state, StageDirectGenerate)

		case StageDirectGenerate:
			e.transition(state, StageSynthesize)

		case StageTemplateOnly:
			state.GenerationMode = ModeTemplateOnly
			state.Report = e.buildTemplate(state)
			e.transition(state, StageEnd)

		case StageSynthesize:
			if err := e.synthesize(ctx, state); err != nil {
				return err
			}
			e.transition(state, StageEnd)

		default:
			return fmt.Errorf("unknown stage %q", state.Stage)
		}
	}
	return nil
}

// retrieve fills state.Results and state.Sufficiency. Store failures
// degrade to an empty-hit evaluation instead of aborting the run.
func (e *Engine) retrieve(ctx context.Context, state *State) {
	var hits []knowledge.SearchHit
	var err error

	if state.DocumentId != nil {
		hits, err = e.store.LoadDocument(ctx, *state.DocumentId)
		if err == nil && len(hits) > 0 {
			state.Results = appendHits(state.Results, hits)
			// Caller named the document: no scoring, full confidence.
			state.Sufficiency = &knowledge.SufficiencyResult{
				Level:      knowledge.LevelSufficient,
				Confidence: 1.0,
				Coverage:   1.0,
				Reason:     "document supplied by caller",
				Hits:       hits,
			}
			state.NeedsConfirmation = false
			return
		}
		if err != nil {
			e.log.Warn("workflow.engine", "document load failed, falling back to search", map[string]interface{}{
				"run_id":      state.RunId,
				"document_id": state.DocumentId.String(),
				"error":       err.Error(),
			})
		}
	}

	hits, err = e.store.Search(ctx, state.Query, e.cfg.TopK, e.cfg.MinSimilarity)
	if err != nil {
		e.log.Warn("workflow.engine", "retrieval failed, degrading to empty hits", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		hits = nil
	}

	state.Results = appendHits(state.Results, hits)
	state.Sufficiency = e.evaluator.Evaluate(state.Query, hits)
	state.NeedsConfirmation = state.Sufficiency.NeedsConfirmation
}

func appendHits(results []SearchResult, hits []knowledge.SearchHit) []SearchResult {
	for _, h := range hits {
		results = append(results, SearchResult{
			Provenance: ProvenanceKnowledgeBase,
			Title:      h.DocumentId.String(),
			Content:    h.Chunk.Content,
			Similarity: h.Similarity,
		})
	}
	return results
}
