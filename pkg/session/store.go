package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ConfirmationNone      = "none"
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationDeclined  = "declined"
)

// ConfirmationRecord is the per-conversation decision slot the workflow
// suspends on. It is written out-of-band (UI button, API call) and read by
// the Confirmation Gate. Transitions once from pending to confirmed or
// declined; never reused within the same run.
type ConfirmationRecord struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Status         string    `json:"status"`
	Confirmed      *bool     `json:"confirmed"` // nil until a decision lands
	Question       string    `json:"question,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store is the resumption channel between a suspended workflow run and the
// external actor deciding for it. Implementations must be safe for
// concurrent use; writers touch only their own conversation's record.
type Store interface {
	Get(ctx context.Context, conversationId uuid.UUID) (*ConfirmationRecord, error)
	Set(ctx context.Context, record *ConfirmationRecord) error
	// Watch delivers a signal whenever the record for conversationId is
	// written, letting a waiting run wake up without blind polling. The
	// returned stop func releases the subscription.
	Watch(ctx context.Context, conversationId uuid.UUID) (<-chan struct{}, func(), error)
	// Clear removes the record once a run has consumed the decision.
	Clear(ctx context.Context, conversationId uuid.UUID) error
}
