package aggregates

import (
	"context"
	"fmt"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

type ChunkAggregateDeps struct {
	Base BaseDeps

	Chunks repos.InfoListRepo
}

type chunkAggregate struct {
	deps ChunkAggregateDeps
}

func NewChunkAggregate(deps ChunkAggregateDeps) domainagg.ChunkAggregate {
	deps.Base = deps.Base.withDefaults()
	return &chunkAggregate{deps: deps}
}

func (a *chunkAggregate) Contract() domainagg.Contract {
	return domainagg.ChunkAggregateContract
}

func (a *chunkAggregate) InsertBatch(ctx context.Context, infoBaseID uint, chunks []*knowledge.InfoList) ([]*knowledge.InfoList, error) {
	const op = "Knowledge.Chunk.InsertBatch"
	if infoBaseID == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing infobase_id", nil)
	}
	for i, c := range chunks {
		if c == nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("chunk %d is nil", i), nil)
		}
		if c.InfoBaseID != 0 && c.InfoBaseID != infoBaseID {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("chunk %d belongs to infobase %d", i, c.InfoBaseID), nil)
		}
		if err := c.Validate(); err != nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("chunk %d: %v", i, err), err)
		}
	}
	if a.deps.Chunks == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "chunk aggregate repos not configured", nil)
	}

	var created []*knowledge.InfoList
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if err := a.deps.Base.Guard.RefInfoBase(dbc, infoBaseID); err != nil {
			return err
		}
		for _, c := range chunks {
			c.InfoBaseID = infoBaseID
		}
		var err error
		created, err = a.deps.Chunks.Create(dbc, chunks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (a *chunkAggregate) SetEmbedding(ctx context.Context, chunkID uint, vec []float32) error {
	const op = "Knowledge.Chunk.SetEmbedding"
	if chunkID == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing chunk id", nil)
	}
	emb, err := knowledge.NewEmbedding(vec)
	if err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if a.deps.Chunks == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "chunk aggregate repos not configured", nil)
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Chunks.UpdateEmbedding(dbc, chunkID, emb)
		if err != nil {
			return err
		}
		if n == 0 {
			return NotFoundError(fmt.Sprintf("chunk %d does not exist", chunkID))
		}
		return nil
	})
}
