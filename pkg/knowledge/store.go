package knowledge

import (
	"context"
	"fmt"
	"sort"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/pkg/embedding"

	"github.com/google/uuid"
)

// Store holds embedded content fragments and serves similarity search.
type Store interface {
	// Add computes missing embeddings and persists the chunks. Idempotent
	// on chunk id: re-adding replaces content and vector.
	Add(ctx context.Context, chunks []*entity.Chunk) error
	// Search returns hits sorted by similarity descending, filtered to
	// similarity >= minSimilarity. An empty store yields an empty slice.
	Search(ctx context.Context, query string, k int, minSimilarity float64) ([]SearchHit, error)
	// DeleteByDocument removes all chunks of a document. Succeeds even if
	// none existed.
	DeleteByDocument(ctx context.Context, documentId uuid.UUID) error
	// LoadDocument returns every chunk of a document as full-similarity
	// hits, ordered by chunk index. Used when the caller names a document
	// directly and retrieval scoring is bypassed.
	LoadDocument(ctx context.Context, documentId uuid.UUID) ([]SearchHit, error)
}

type StoreImpl struct {
	factory  unitofwork.RepositoryFactory
	provider embedding.EmbeddingProvider
	fallback embedding.EmbeddingProvider
	log      logger.ILogger
}

func NewStore(factory unitofwork.RepositoryFactory, provider embedding.EmbeddingProvider, log logger.ILogger) Store {
	return &StoreImpl{
		factory:  factory,
		provider: provider,
		fallback: embedding.NewFallbackProvider(),
		log:      log,
	}
}

// embed resolves a vector for text, substituting the deterministic fallback
// when the provider fails. Embedding failure is never surfaced to callers.
func (s *StoreImpl) embed(text string) []float32 {
	res, err := s.provider.Generate(text, "retrieval_document")
	if err != nil {
		s.log.Warn("knowledge.store", "embedding provider failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		res, _ = s.fallback.Generate(text, "")
	}
	return embedding.FitDimension(res.Embedding.Values)
}

func (s *StoreImpl) Add(ctx context.Context, chunks []*entity.Chunk) error {
	uow := s.factory.NewUnitOfWork(ctx)
	repo := uow.ChunkRepository()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			chunk.Embedding = s.embed(chunk.Content)
		} else {
			chunk.Embedding = embedding.FitDimension(chunk.Embedding)
		}
		if chunk.Id == uuid.Nil {
			chunk.Id = uuid.New()
		}
		if err := repo.Upsert(ctx, chunk); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.Id, err)
		}
	}
	return nil
}

func (s *StoreImpl) Search(ctx context.Context, query string, k int, minSimilarity float64) ([]SearchHit, error) {
	vector := s.embed(query)

	uow := s.factory.NewUnitOfWork(ctx)
	scored, err := uow.ChunkRepository().SearchSimilarWithScore(ctx, vector, k, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	hits := make([]SearchHit, 0, len(scored))
	for _, sc := range scored {
		hits = append(hits, SearchHit{
			Chunk:      sc.Chunk,
			Similarity: sc.Similarity,
			DocumentId: sc.Chunk.DocumentId,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	return hits, nil
}

func (s *StoreImpl) DeleteByDocument(ctx context.Context, documentId uuid.UUID) error {
	uow := s.factory.NewUnitOfWork(ctx)
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return fmt.Errorf("delete chunks of document %s: %w", documentId, err)
	}
	return nil
}

func (s *StoreImpl) LoadDocument(ctx context.Context, documentId uuid.UUID) ([]SearchHit, error) {
	uow := s.factory.NewUnitOfWork(ctx)
	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: documentId},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentId, err)
	}

	hits := make([]SearchHit, 0, len(chunks))
	for _, c := range chunks {
		hits = append(hits, SearchHit{
			Chunk:      c,
			Similarity: 1.0,
			DocumentId: c.DocumentId,
		})
	}
	return hits, nil
}
