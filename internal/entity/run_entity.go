package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning             = "running"
	RunStatusWaitingConfirmation = "waiting_confirmation"
	RunStatusCompleted           = "completed"
	RunStatusFailed              = "failed"
)

// RunSufficiency is the evaluator verdict snapshot attached to a run.
type RunSufficiency struct {
	Level      string
	Confidence float64
	Coverage   float64
	Quality    float64
	Reason     string
}

// ReportRun is the live view of a workflow execution. Runs are kept in
// memory while active so clients can poll or stream progress; the final
// report goes to the conversation tables.
type ReportRun struct {
	Id             string
	ConversationId uuid.UUID
	Query          string
	Stage          string
	Status         string
	Report         string
	GenerationMode string
	Error          string
	Sufficiency    *RunSufficiency
	StartedAt      time.Time
	UpdatedAt      time.Time
}
