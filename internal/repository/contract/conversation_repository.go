package contract

import (
	"context"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ConversationMessageRepository interface {
	Create(ctx context.Context, message *entity.ConversationMessage) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// DeleteOldest trims the history to keep no more than `keep` messages
	// per conversation, oldest first.
	DeleteOldest(ctx context.Context, conversationId uuid.UUID, keep int) error
}

type ReportVersionRepository interface {
	Create(ctx context.Context, version *entity.ReportVersion) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportVersion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// LatestVersion returns the highest version number for a conversation,
	// zero when none exist.
	LatestVersion(ctx context.Context, conversationId uuid.UUID) (int, error)
	// DeleteOldest trims stored versions to keep no more than `keep` per
	// conversation, oldest first.
	DeleteOldest(ctx context.Context, conversationId uuid.UUID, keep int) error
}
