package service

import (
	"context"

	"ai-reportgen-be/internal/dto"
	"ai-reportgen-be/internal/pkg/serverutils"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationService interface {
	List(ctx context.Context) ([]*dto.ShowConversationResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowConversationResponse, error)
	Messages(ctx context.Context, id uuid.UUID) ([]*dto.ConversationMessageResponse, error)
	Versions(ctx context.Context, id uuid.UUID) ([]*dto.ReportVersionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{uowFactory: uowFactory}
}

func (c *conversationService) List(ctx context.Context) ([]*dto.ShowConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowConversationResponse, len(conversations))
	for i, conv := range conversations {
		responses[i] = &dto.ShowConversationResponse{
			Id:        conv.Id,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		}
	}
	return responses, nil
}

func (c *conversationService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "conversation not found")
	}

	return &dto.ShowConversationResponse{
		Id:            conversation.Id,
		Title:         conversation.Title,
		CurrentReport: conversation.CurrentReport,
		CreatedAt:     conversation.CreatedAt,
		UpdatedAt:     conversation.UpdatedAt,
	}, nil
}

func (c *conversationService) Messages(ctx context.Context, id uuid.UUID) ([]*dto.ConversationMessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ConversationMessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = &dto.ConversationMessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Type:      m.Type,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return responses, nil
}

func (c *conversationService) Versions(ctx context.Context, id uuid.UUID) ([]*dto.ReportVersionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	versions, err := uow.ReportVersionRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "version", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ReportVersionResponse, len(versions))
	for i, v := range versions {
		responses[i] = &dto.ReportVersionResponse{
			Id:        v.Id,
			Version:   v.Version,
			Content:   v.Content,
			CreatedAt: v.CreatedAt,
		}
	}
	return responses, nil
}

func (c *conversationService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if conversation == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "conversation not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationMessageRepository().DeleteByConversationId(ctx, id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}
