package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-reportgen-be/internal/dto"
	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/pkg/embedding"
	"ai-reportgen-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	fallbackProvider  embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	fallbackProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		fallbackProvider:  fallbackProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embedding for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	if document.Content == "" {
		log.Printf("[ERROR] Document %s carries no content to embed", payload.DocumentId)
		cs.markFailed(ctx, uow, document, "document has no content")
		msg.Ack()
		return
	}

	// ChunkSize: 500 runes, Overlap: 50 - sized for retrieval granularity
	chunks := utils.SplitText(document.Content, 500, 50)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newChunks []*entity.Chunk
	for i, chunk := range chunks {
		vector := cs.embed(chunk.Text)

		newChunks = append(newChunks, &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			Content:    chunk.Text,
			Embedding:  vector,
			ChunkIndex: i,
			StartPos:   chunk.Start,
			EndPos:     chunk.End,
			Metadata:   map[string]interface{}{"filename": document.Filename},
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.ChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	now := time.Now()
	document.Status = entity.DocumentStatusCompleted
	document.ChunkCount = len(newChunks)
	document.WordCount = utils.CountWords(document.Content)
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to update document status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), payload.DocumentId)
	msg.Ack()
}

// embed tries the configured provider and degrades to the deterministic
// fallback so ingestion never stalls on a flaky embedding backend.
func (cs *consumerService) embed(text string) []float32 {
	res, err := cs.embeddingProvider.Generate(text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[WARN] Embedding provider failed, using fallback: %v", err)
		fres, ferr := cs.fallbackProvider.Generate(text, "RETRIEVAL_DOCUMENT")
		if ferr != nil {
			return embedding.HashEmbedding(text)
		}
		return embedding.FitDimension(fres.Embedding.Values)
	}
	return embedding.FitDimension(res.Embedding.Values)
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, reason string) {
	now := time.Now()
	document.Status = entity.DocumentStatusFailed
	document.ErrorMessage = reason
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document %s failed: %v", document.Id, err)
	}
}
