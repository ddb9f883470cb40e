package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateReportRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id"`
	Query          string     `json:"query" validate:"required"`
	DocumentId     *uuid.UUID `json:"document_id"`
	Template       string     `json:"template"`
}

type GenerateReportResponse struct {
	RunId          string    `json:"run_id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	Status         string    `json:"status"`
}

type RunStatusResponse struct {
	RunId            string              `json:"run_id"`
	ConversationId   uuid.UUID           `json:"conversation_id"`
	Stage            string              `json:"stage"`
	Status           string              `json:"status"`
	GenerationMode   string              `json:"generation_mode,omitempty"`
	Report           string              `json:"report,omitempty"`
	Error            string              `json:"error,omitempty"`
	PendingQuestion  string              `json:"pending_question,omitempty"`
	Sufficiency      *SufficiencySummary `json:"sufficiency,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// SufficiencySummary exposes the evaluator verdict to clients deciding
// whether to confirm an external search.
type SufficiencySummary struct {
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
	Coverage   float64 `json:"coverage"`
	Quality    float64 `json:"quality"`
	Reason     string  `json:"reason"`
}

type ConfirmSearchRequest struct {
	ConversationId uuid.UUID
	Confirmed      *bool `json:"confirmed" validate:"required"`
}

type ConfirmSearchResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Status         string    `json:"status"`
}

type FollowUpRequest struct {
	ConversationId uuid.UUID
	Query          string `json:"query" validate:"required"`
}

type ModifyReportRequest struct {
	ConversationId uuid.UUID
	Query          string `json:"query" validate:"required"`
}

type SupplementReportRequest struct {
	ConversationId uuid.UUID
	Query          string `json:"query" validate:"required"`
}

type OperationResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Operation      string    `json:"operation"`
	Answer         string    `json:"answer,omitempty"`
	Report         string    `json:"report,omitempty"`
	Version        int       `json:"version,omitempty"`
}
