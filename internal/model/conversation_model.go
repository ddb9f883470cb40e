package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Conversation struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title         string         `gorm:"type:varchar(255)"`
	CurrentReport string         `gorm:"type:text"`
	SearchResults datatypes.JSON `gorm:"type:jsonb"` // provenance-tagged results from the last run
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationMessage struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role           string         `gorm:"type:varchar(20);not null"` // user | assistant | system
	Content        string         `gorm:"type:text;not null"`
	Type           string         `gorm:"type:varchar(20);not null"` // query | follow_up | modification | supplement | report | answer
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}

type ReportVersion struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index"`
	Version        int       `gorm:"not null"`
	Content        string    `gorm:"type:text;not null"`
	Operation      string    `gorm:"type:varchar(20)"` // generate | modify | supplement
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ReportVersion) TableName() string {
	return "report_versions"
}
