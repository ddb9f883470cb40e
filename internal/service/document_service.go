package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-reportgen-be/internal/dto"
	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/pkg/serverutils"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/pkg/events"
	"ai-reportgen-be/pkg/knowledge"
	pktNats "ai-reportgen-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context) ([]*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SearchChunks(ctx context.Context, req *dto.SearchChunksRequest) ([]*dto.SearchChunkResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	store            knowledge.Store
	eventPublisher   *pktNats.Publisher
	topK             int
	minSimilarity    float64
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	store knowledge.Store,
	eventPublisher *pktNats.Publisher,
	topK int,
	minSimilarity float64,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		store:            store,
		eventPublisher:   eventPublisher,
		topK:             topK,
		minSimilarity:    minSimilarity,
	}
}

func (c *documentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document := entity.Document{
		Id:        uuid.New(),
		Filename:  req.Filename,
		Content:   req.Content,
		Status:    entity.DocumentStatusProcessing,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	err := uow.DocumentRepository().Create(ctx, &document)
	if err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedDocumentMessage{
		DocumentId: document.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	err = c.publisherService.Publish(ctx, msgJson)
	if err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.New(events.TypeDocumentUploaded, map[string]interface{}{
			"document_id": document.Id,
			"filename":    document.Filename,
		})
		// Auxiliary, don't fail the request
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_UPLOADED event: %v\n", err)
		}
	}

	return &dto.UploadDocumentResponse{
		Id:     document.Id,
		Status: document.Status,
	}, nil
}

func (c *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "document not found")
	}

	return toShowDocumentResponse(document), nil
}

func (c *documentService) List(ctx context.Context) ([]*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowDocumentResponse, len(documents))
	for i, d := range documents {
		responses[i] = toShowDocumentResponse(d)
	}
	return responses, nil
}

func (c *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *documentService) SearchChunks(ctx context.Context, req *dto.SearchChunksRequest) ([]*dto.SearchChunkResponse, error) {
	k := req.TopK
	if k <= 0 {
		k = c.topK
	}

	hits, err := c.store.Search(ctx, req.Query, k, c.minSimilarity)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SearchChunkResponse, len(hits))
	for i, hit := range hits {
		responses[i] = &dto.SearchChunkResponse{
			ChunkId:    hit.Chunk.Id,
			DocumentId: hit.DocumentId,
			Content:    hit.Chunk.Content,
			ChunkIndex: hit.Chunk.ChunkIndex,
			Similarity: hit.Similarity,
		}
	}
	return responses, nil
}

func toShowDocumentResponse(d *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:         d.Id,
		Filename:   d.Filename,
		Status:     d.Status,
		ChunkCount: d.ChunkCount,
		WordCount:  d.WordCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
