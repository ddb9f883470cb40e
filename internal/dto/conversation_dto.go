package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShowConversationResponse struct {
	Id            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	CurrentReport string     `json:"current_report,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type ConversationMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportVersionResponse struct {
	Id        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
