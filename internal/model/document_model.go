package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename     string         `gorm:"type:varchar(255);not null"`
	Content      string         `gorm:"type:text;not null"`
	Status       string         `gorm:"type:varchar(20);not null;default:'processing'"` // processing | completed | failed
	ErrorMessage string         `gorm:"type:text"`
	ChunkCount   int            `gorm:"default:0"`
	WordCount    int            `gorm:"default:0"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
