package workflow

import (
	"context"
	"time"

	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/pkg/session"
)

// Gate is the workflow's single suspension point. It re-reads the
// conversation's ConfirmationRecord until an external actor lands a
// decision, waking on store notifications and falling back to rate-limited
// polling. A run can wait indefinitely: no timeout auto-declines, only
// context cancellation aborts the wait.
type Gate struct {
	store     session.Store
	pollEvery time.Duration
	log       logger.ILogger
}

func NewGate(store session.Store, pollEvery time.Duration, log logger.ILogger) *Gate {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	return &Gate{
		store:     store,
		pollEvery: pollEvery,
		log:       log,
	}
}

// Wait suspends until a decision lands or the context is cancelled. Each
// poll that finds no record marks it pending so external actors can see a
// question is open, then the loop blocks on store notifications with a
// poll ticker as backstop.
func (g *Gate) Wait(ctx context.Context, state *State) (bool, error) {
	notify, stop, err := g.store.Watch(ctx, state.ConversationId)
	if err != nil {
		g.log.Warn("workflow.gate", "watch unavailable, falling back to polling only", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		notify = nil
	} else {
		defer stop()
	}

	ticker := time.NewTicker(g.pollEvery)
	defer ticker.Stop()

	for {
		if done, confirmed := g.pollOnce(ctx, state); done {
			return confirmed, nil
		}

		if notify != nil {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-notify:
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

func (g *Gate) pollOnce(ctx context.Context, state *State) (done bool, confirmed bool) {
	rec, err := g.store.Get(ctx, state.ConversationId)
	if err != nil {
		state.GateReadErrors++
		g.log.Warn("workflow.gate", "confirmation store read failed, treating as wait", map[string]interface{}{
			"run_id":          state.RunId,
			"conversation_id": state.ConversationId.String(),
			"read_errors":     state.GateReadErrors,
			"error":           err.Error(),
		})
		return false, false
	}
	if rec == nil {
		// Announce the open question. A failed write is retried on the
		// next poll, so a store hiccup never strands the run without a
		// record external actors can answer.
		pending := &session.ConfirmationRecord{
			ConversationId: state.ConversationId,
			Status:         session.ConfirmationPending,
			Question:       "The knowledge store may not cover this request. Run a web search to fill the gaps?",
		}
		if setErr := g.store.Set(ctx, pending); setErr != nil {
			g.log.Warn("workflow.gate", "failed to create pending record", map[string]interface{}{
				"run_id": state.RunId,
				"error":  setErr.Error(),
			})
		}
		return false, false
	}

	state.ConfirmationStatus = rec.Status

	switch rec.Status {
	case session.ConfirmationConfirmed:
		c := true
		state.ConfirmedSearch = &c
		return true, true
	case session.ConfirmationDeclined:
		c := false
		state.ConfirmedSearch = &c
		return true, false
	default:
		return false, false
	}
}
