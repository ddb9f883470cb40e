package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REPORT_RUN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by all emitters.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event codes emitted by the report run lifecycle and document ingestion.
const (
	TypeDocumentUploaded  = "DOCUMENT_UPLOADED"
	TypeDocumentEmbedded  = "DOCUMENT_EMBEDDED"
	TypeRunStarted        = "REPORT_RUN_STARTED"
	TypeRunWaiting        = "REPORT_RUN_WAITING_CONFIRMATION"
	TypeRunCompleted      = "REPORT_RUN_COMPLETED"
	TypeRunFailed         = "REPORT_RUN_FAILED"
)

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}
