package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/pkg/database"
	"ai-reportgen-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.ChunkRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Conversation Repository", func(t *testing.T) {
		count, err := uow.ConversationRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Conversation count: %d", count)
	})

	t.Run("Chunk Upsert And Similarity Search", func(t *testing.T) {
		ctx := context.Background()

		document := &entity.Document{
			Id:        uuid.New(),
			Filename:  "integration-" + uuid.New().String() + ".md",
			Content:   "solar energy payback period",
			Status:    entity.DocumentStatusCompleted,
			CreatedAt: time.Now(),
		}
		err := uow.DocumentRepository().Create(ctx, document)
		assert.NoError(t, err)
		defer uow.DocumentRepository().Delete(ctx, document.Id)

		vec := embedding.HashEmbedding("solar energy payback period")
		chunk := &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			Content:    "solar energy payback period",
			Embedding:  vec,
			ChunkIndex: 0,
			EndPos:     27,
			CreatedAt:  time.Now(),
		}
		err = uow.ChunkRepository().Upsert(ctx, chunk)
		assert.NoError(t, err)
		defer uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id)

		// Upsert again with changed content; must not duplicate
		chunk.Content = "solar panel payback period"
		err = uow.ChunkRepository().Upsert(ctx, chunk)
		assert.NoError(t, err)

		count, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: document.Id})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)

		// Identical query vector must surface the chunk near similarity 1.0
		scored, err := uow.ChunkRepository().SearchSimilarWithScore(ctx, vec, 5, 0.5)
		assert.NoError(t, err)

		found := false
		for _, s := range scored {
			if s.Chunk.Id == chunk.Id {
				found = true
				assert.InDelta(t, 1.0, s.Similarity, 0.05)
			}
		}
		assert.True(t, found, "upserted chunk not returned by similarity search")
	})

	t.Run("Report Version Numbering", func(t *testing.T) {
		ctx := context.Background()

		conversation := &entity.Conversation{
			Id:        uuid.New(),
			Title:     "integration versions",
			CreatedAt: time.Now(),
		}
		err := uow.ConversationRepository().Create(ctx, conversation)
		assert.NoError(t, err)
		defer uow.ConversationRepository().Delete(ctx, conversation.Id)

		latest, err := uow.ReportVersionRepository().LatestVersion(ctx, conversation.Id)
		assert.NoError(t, err)
		assert.Equal(t, 0, latest)

		for i := 1; i <= 3; i++ {
			err = uow.ReportVersionRepository().Create(ctx, &entity.ReportVersion{
				Id:             uuid.New(),
				ConversationId: conversation.Id,
				Version:        i,
				Content:        "report body",
				Operation:      "generate",
				CreatedAt:      time.Now(),
			})
			assert.NoError(t, err)
		}

		latest, err = uow.ReportVersionRepository().LatestVersion(ctx, conversation.Id)
		assert.NoError(t, err)
		assert.Equal(t, 3, latest)

		err = uow.ReportVersionRepository().DeleteOldest(ctx, conversation.Id, 2)
		assert.NoError(t, err)

		count, err := uow.ReportVersionRepository().Count(ctx, specification.ByConversationID{ConversationID: conversation.Id})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
