package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is an embedded fragment of a source document with position metadata.
type Chunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	Embedding  []float32 // nil until the store computes it
	ChunkIndex int
	StartPos   int
	EndPos     int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
