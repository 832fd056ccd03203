package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/pkg/docfmt"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

type ChunkInput struct {
	Content  *string
	Metadata knowledge.Metadata
	// Embedding may be empty when the chunk has not been embedded yet.
	Embedding []float32
}

type ChunkService interface {
	// AddChunks inserts all chunks of an upload in one transaction.
	AddChunks(ctx context.Context, infoBaseID uint, in []ChunkInput) ([]*knowledge.InfoList, error)
	SetEmbedding(ctx context.Context, chunkID uint, vec []float32) error
	ListByInfoBase(ctx context.Context, infoBaseID uint) ([]*knowledge.InfoList, error)
	// FindByMetadata returns the chunks whose metadata contains every key/value in filter.
	FindByMetadata(ctx context.Context, infoBaseID uint, filter map[string]any) ([]*knowledge.InfoList, error)
	// FormatInfoBase joins the upload's chunk texts in insertion order.
	FormatInfoBase(ctx context.Context, infoBaseID uint) (string, error)
}

type chunkService struct {
	log       *logger.Logger
	infoBases repos.InfoBaseRepo
	chunks    repos.InfoListRepo
	agg       domainagg.ChunkAggregate
	events    bus.Bus
}

func NewChunkService(
	baseLog *logger.Logger,
	infoBases repos.InfoBaseRepo,
	chunks repos.InfoListRepo,
	agg domainagg.ChunkAggregate,
	events bus.Bus,
) ChunkService {
	return &chunkService{
		log:       baseLog.With("service", "ChunkService"),
		infoBases: infoBases,
		chunks:    chunks,
		agg:       agg,
		events:    events,
	}
}

func (s *chunkService) AddChunks(ctx context.Context, infoBaseID uint, in []ChunkInput) ([]*knowledge.InfoList, error) {
	const op = "Knowledge.Chunk.AddChunks"
	if len(in) == 0 {
		return nil, validation(op, "no chunks")
	}
	rows := make([]*knowledge.InfoList, 0, len(in))
	for i, c := range in {
		emb, err := knowledge.NewEmbedding(c.Embedding)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("chunk %d: %v", i, err), err)
		}
		rows = append(rows, &knowledge.InfoList{
			InfoBaseID:   infoBaseID,
			Content:      c.Content,
			Metadata:     c.Metadata,
			VectorMemory: emb,
		})
	}

	created, err := s.agg.InsertBatch(ctx, infoBaseID, rows)
	if err != nil {
		return nil, err
	}

	ib, err := s.infoBases.GetByID(readCtx(ctx), infoBaseID)
	if err != nil {
		s.log.Warn("Load infobase for indexed event failed", "infobase_id", infoBaseID, "error", err)
	} else if ib != nil {
		publish(ctx, s.log, s.events, realtime.NewEvent(realtime.EventInfoBaseIndexed, ib.ProjectID, map[string]any{
			"infobase_id": infoBaseID,
			"chunks":      len(created),
		}))
	}
	return created, nil
}

func (s *chunkService) SetEmbedding(ctx context.Context, chunkID uint, vec []float32) error {
	return s.agg.SetEmbedding(ctx, chunkID, vec)
}

func (s *chunkService) requireInfoBase(ctx context.Context, op string, infoBaseID uint) error {
	ib, err := s.infoBases.GetByID(readCtx(ctx), infoBaseID)
	if err != nil {
		return mapRead(op, err)
	}
	if ib == nil {
		return notFound(op, fmt.Sprintf("infobase %d does not exist", infoBaseID))
	}
	return nil
}

func (s *chunkService) ListByInfoBase(ctx context.Context, infoBaseID uint) ([]*knowledge.InfoList, error) {
	const op = "Knowledge.Chunk.ListByInfoBase"
	if err := s.requireInfoBase(ctx, op, infoBaseID); err != nil {
		return nil, err
	}
	out, err := s.chunks.ListByInfoBase(readCtx(ctx), infoBaseID)
	if err != nil {
		return nil, mapRead(op, err)
	}
	return out, nil
}

func (s *chunkService) FindByMetadata(ctx context.Context, infoBaseID uint, filter map[string]any) ([]*knowledge.InfoList, error) {
	const op = "Knowledge.Chunk.FindByMetadata"
	if err := s.requireInfoBase(ctx, op, infoBaseID); err != nil {
		return nil, err
	}
	out, err := s.chunks.FindByMetadata(readCtx(ctx), infoBaseID, filter)
	if errors.Is(err, repos.ErrMetadataFilter) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if err != nil {
		return nil, mapRead(op, err)
	}
	return out, nil
}

func (s *chunkService) FormatInfoBase(ctx context.Context, infoBaseID uint) (string, error) {
	chunks, err := s.ListByInfoBase(ctx, infoBaseID)
	if err != nil {
		return "", err
	}
	text, err := docfmt.FormatDocs(chunks)
	if err != nil {
		return "", fmt.Errorf("format infobase %d: %w", infoBaseID, err)
	}
	return text, nil
}
