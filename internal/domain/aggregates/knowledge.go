package aggregates

import (
	"context"

	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
)

var ProjectAggregateContract = Contract{
	Name:             "Knowledge.ProjectAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns project creation (owner/model references) and the project -> infobase -> chunk cascade.",
}

var InfoBaseAggregateContract = Contract{
	Name:             "Knowledge.InfoBaseAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns upload rows (project + uploader references) and the infobase -> chunk cascade.",
}

var ChunkAggregateContract = Contract{
	Name:             "Knowledge.ChunkAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Inserts all chunks of one upload in a single transaction.",
}

var UserAggregateContract = Contract{
	Name:             "Knowledge.UserAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owner references restrict deletion; uploader references cascade.",
}

// CascadeResult reports what a cascading delete removed. FilePaths and
// OutputFolders are the stored artifacts of removed uploads, for cleanup after commit.
type CascadeResult struct {
	Users         int64
	Projects      int64
	InfoBases     int64
	Chunks        int64
	FilePaths     []string
	OutputFolders []string
}

// ProjectAggregate owns project lifecycle invariants.
//
// Write failures return *Error with codes:
// CodeValidation, CodeNotFound, CodeConstraintViolation, CodeRetryable, CodeInternal.
type ProjectAggregate interface {
	Aggregate

	// Create inserts a project after checking its owner (and model, when set) exist.
	Create(ctx context.Context, p *knowledge.Project) (*knowledge.Project, error)

	// Update applies the set fields and returns the stored project.
	Update(ctx context.Context, projectID uint, u knowledge.ProjectUpdate) (*knowledge.Project, error)

	// Delete removes the project together with its infobases and their chunks.
	Delete(ctx context.Context, projectID uint) (CascadeResult, error)
}

// InfoBaseAggregate owns upload record invariants.
type InfoBaseAggregate interface {
	Aggregate

	// Create inserts an upload row after checking the project and uploader exist.
	Create(ctx context.Context, ib *knowledge.ProjectInfoBase) (*knowledge.ProjectInfoBase, error)

	// RecordArtifacts stores the ingestion outputs and refreshes updated_at.
	RecordArtifacts(ctx context.Context, infoBaseID uint, a knowledge.Artifacts) (*knowledge.ProjectInfoBase, error)

	// Delete removes the upload row and all of its chunks.
	Delete(ctx context.Context, infoBaseID uint) (CascadeResult, error)
}

// ChunkAggregate owns chunk insertion invariants.
type ChunkAggregate interface {
	Aggregate

	// InsertBatch inserts every chunk for infoBaseID or none of them.
	InsertBatch(ctx context.Context, infoBaseID uint, chunks []*knowledge.InfoList) ([]*knowledge.InfoList, error)

	// SetEmbedding stores vec on the chunk. An empty vec clears it.
	SetEmbedding(ctx context.Context, chunkID uint, vec []float32) error
}

// UserAggregate owns user removal invariants.
type UserAggregate interface {
	Aggregate

	// Delete removes the user and every upload made under their email. It fails
	// with CodePreconditionFailed while the user still owns projects.
	Delete(ctx context.Context, userID uint) (CascadeResult, error)
}
