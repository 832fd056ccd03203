package domain

import "github.com/yungbote/infobase-backend/internal/domain/knowledge"

type (
	User            = knowledge.User
	AIModel         = knowledge.AIModel
	Project         = knowledge.Project
	ProjectInfoBase = knowledge.ProjectInfoBase
	InfoList        = knowledge.InfoList
	Metadata        = knowledge.Metadata
	Artifacts       = knowledge.Artifacts
	ProjectUpdate   = knowledge.ProjectUpdate
)

const EmbeddingDim = knowledge.EmbeddingDim
