package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"

	MessageTypeQuery        = "query"
	MessageTypeFollowUp     = "follow_up"
	MessageTypeModification = "modification"
	MessageTypeSupplement   = "supplement"
	MessageTypeReport       = "report"
	MessageTypeAnswer       = "answer"
)

type Conversation struct {
	Id            uuid.UUID
	Title         string
	CurrentReport string
	SearchResults []map[string]interface{}
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

type ConversationMessage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	Type           string
	CreatedAt      time.Time
}

type ReportVersion struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Version        int
	Content        string
	Operation      string
	CreatedAt      time.Time
}
