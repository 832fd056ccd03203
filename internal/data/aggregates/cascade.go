package aggregates

import (
	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

// deleteInfoBases removes the given uploads children-first (chunks, then the
// upload rows) and records what went into out.
func deleteInfoBases(dbc dbctx.Context, infoBases repos.InfoBaseRepo, chunks repos.InfoListRepo, rows []*knowledge.ProjectInfoBase, out *domainagg.CascadeResult) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(rows))
	for _, ib := range rows {
		ids = append(ids, ib.ID)
		if ib.FilePath != "" {
			out.FilePaths = append(out.FilePaths, ib.FilePath)
		}
		if ib.OutputFolder != "" {
			out.OutputFolders = append(out.OutputFolders, ib.OutputFolder)
		}
	}
	n, err := chunks.DeleteByInfoBaseIDs(dbc, ids)
	if err != nil {
		return err
	}
	out.Chunks += n
	n, err = infoBases.DeleteByIDs(dbc, ids)
	if err != nil {
		return err
	}
	out.InfoBases += n
	return nil
}
