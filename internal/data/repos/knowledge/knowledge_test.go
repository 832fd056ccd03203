package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/infobase-backend/internal/domain"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

func TestProjectRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProjectRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("projectrepo"))
	p1 := &types.Project{OwnerUserID: u.ID, ProjectName: "alpha", Category: "docs"}
	p2 := &types.Project{OwnerUserID: u.ID, ProjectName: "beta"}
	for _, p := range []*types.Project{p1, p2} {
		if err := repo.Create(dbc, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if p1.ProjectID == 0 || p2.ProjectID <= p1.ProjectID {
		t.Fatalf("expected increasing ids, got %d and %d", p1.ProjectID, p2.ProjectID)
	}

	got, err := repo.GetByID(dbc, p1.ProjectID)
	if err != nil || got == nil || got.ProjectName != "alpha" || got.ModelID != nil {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	list, err := repo.ListByOwner(dbc, u.ID)
	if err != nil || len(list) != 2 || list[0].ProjectID != p1.ProjectID {
		t.Fatalf("ListByOwner: len=%d err=%v", len(list), err)
	}
	ids, err := repo.IDsByOwner(dbc, u.ID)
	if err != nil || !reflect.DeepEqual(ids, []uint{p1.ProjectID, p2.ProjectID}) {
		t.Fatalf("IDsByOwner: %v err=%v", ids, err)
	}

	if err := repo.UpdateFields(dbc, p2.ProjectID, map[string]interface{}{"description": "second"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = repo.GetByID(dbc, p2.ProjectID)
	if got.Description != "second" {
		t.Fatalf("UpdateFields: description=%q", got.Description)
	}

	if n, err := repo.Delete(dbc, p1.ProjectID); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	if got, _ := repo.GetByID(dbc, p1.ProjectID); got != nil {
		t.Fatalf("project still present after Delete")
	}
}

func TestProjectRepoRejectsUnknownOwner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProjectRepo(db, testutil.Logger(t))

	err := tx.Transaction(func(inner *gorm.DB) error {
		return repo.Create(dbctx.Context{Ctx: ctx, Tx: inner}, &types.Project{OwnerUserID: 999999, ProjectName: "orphan"})
	})
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
	var n int64
	tx.Model(&types.Project{}).Where("project_name = ?", "orphan").Count(&n)
	if n != 0 {
		t.Fatalf("orphan project persisted")
	}
}

func TestInfoBaseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewInfoBaseRepo(db, testutil.Logger(t))

	email := testutil.UniqueEmail("infobaserepo")
	u := testutil.SeedUser(t, ctx, tx, email)
	p := testutil.SeedProject(t, ctx, tx, u.ID, "uploads")

	ib := &types.ProjectInfoBase{ProjectID: p.ProjectID, UserEmail: email, OrigName: "a.pdf", FilePath: "projects/a.pdf", Size: 10}
	if err := repo.Create(dbc, ib); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, ib.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if len(got.Images) != 0 || len(got.Parts) != 0 || len(got.JSONPaths.Data()) != 0 {
		t.Fatalf("expected empty artifacts, got %+v", got)
	}
	if got.UploadAt.IsZero() {
		t.Fatalf("upload_at not populated")
	}

	artifacts := types.Artifacts{
		OutputFolder: "out/1",
		HTMLPath:     "out/1/doc.html",
		MDPath:       "out/1/doc.md",
		Images:       []string{"img3.png", "img1.png", "img2.png"},
		JSONPaths:    map[string]string{"layout": "out/1/layout.json"},
		Parts:        []string{"p2", "p1"},
	}
	n, err := repo.UpdateArtifacts(dbc, ib.ID, artifacts)
	if err != nil || n != 1 {
		t.Fatalf("UpdateArtifacts: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, ib.ID)
	if !reflect.DeepEqual([]string(got.Images), artifacts.Images) {
		t.Fatalf("images order lost: %v", got.Images)
	}
	if !reflect.DeepEqual([]string(got.Parts), artifacts.Parts) {
		t.Fatalf("parts: %v", got.Parts)
	}
	if !reflect.DeepEqual(got.JSONPaths.Data(), artifacts.JSONPaths) {
		t.Fatalf("json_paths: %v", got.JSONPaths.Data())
	}
	if got.HTMLPath != artifacts.HTMLPath || got.MDPath != artifacts.MDPath {
		t.Fatalf("paths: %+v", got)
	}

	if n, err := repo.UpdateArtifacts(dbc, ib.ID+1000, artifacts); err != nil || n != 0 {
		t.Fatalf("UpdateArtifacts (missing): n=%d err=%v", n, err)
	}

	byProject, err := repo.ListByProject(dbc, p.ProjectID)
	if err != nil || len(byProject) != 1 {
		t.Fatalf("ListByProject: len=%d err=%v", len(byProject), err)
	}
	byEmail, err := repo.ListByEmail(dbc, email)
	if err != nil || len(byEmail) != 1 {
		t.Fatalf("ListByEmail: len=%d err=%v", len(byEmail), err)
	}

	if n, err := repo.DeleteByIDs(dbc, []uint{ib.ID}); err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: n=%d err=%v", n, err)
	}
}

func TestInfoBaseRepoRejectsUnknownEmail(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewInfoBaseRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("owner"))
	p := testutil.SeedProject(t, ctx, tx, u.ID, "p")

	err := tx.Transaction(func(inner *gorm.DB) error {
		return repo.Create(dbctx.Context{Ctx: ctx, Tx: inner}, &types.ProjectInfoBase{ProjectID: p.ProjectID, UserEmail: "ghost@example.com"})
	})
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown email")
	}
}

func TestInfoListRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewInfoListRepo(db, testutil.Logger(t))

	email := testutil.UniqueEmail("infolist")
	u := testutil.SeedUser(t, ctx, tx, email)
	p := testutil.SeedProject(t, ctx, tx, u.ID, "chunks")
	ib := testutil.SeedInfoBase(t, ctx, tx, p.ProjectID, email, "doc.pdf")

	chunks := []*types.InfoList{
		{InfoBaseID: ib.ID, Content: testutil.PtrString("first"), Metadata: types.Metadata{"page": 1, "section": "intro"}},
		{InfoBaseID: ib.ID, Content: testutil.PtrString("second"), Metadata: types.Metadata{"page": 2, "section": "body"}},
		{InfoBaseID: ib.ID, Content: nil},
	}
	created, err := repo.Create(dbc, chunks)
	if err != nil || len(created) != 3 {
		t.Fatalf("Create: len=%d err=%v", len(created), err)
	}

	list, err := repo.ListByInfoBase(dbc, ib.ID)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListByInfoBase: len=%d err=%v", len(list), err)
	}
	if s, _ := list[0].TextContent(); s != "first" {
		t.Fatalf("order: first chunk is %q", s)
	}
	if list[0].Metadata["page"] != json.Number("1") || list[0].Metadata["section"] != "intro" {
		t.Fatalf("metadata round trip: %#v", list[0].Metadata)
	}
	if _, ok := list[2].TextContent(); ok {
		t.Fatalf("nil content came back non-nil")
	}
	if list[0].VectorMemory != nil {
		t.Fatalf("expected no embedding")
	}

	found, err := repo.FindByMetadata(dbc, ib.ID, map[string]interface{}{"section": "body"})
	if err != nil || len(found) != 1 || found[0].ID != list[1].ID {
		t.Fatalf("FindByMetadata(section): %v err=%v", found, err)
	}
	found, err = repo.FindByMetadata(dbc, ib.ID, map[string]interface{}{"page": json.Number("1")})
	if err != nil || len(found) != 1 || found[0].ID != list[0].ID {
		t.Fatalf("FindByMetadata(page): %v err=%v", found, err)
	}

	vec := make([]float32, types.EmbeddingDim)
	vec[0], vec[1535] = 0.25, -1.5
	emb, err := knowledge.NewEmbedding(vec)
	if err != nil {
		t.Fatalf("NewEmbedding: %v", err)
	}
	if n, err := repo.UpdateEmbedding(dbc, list[0].ID, emb); err != nil || n != 1 {
		t.Fatalf("UpdateEmbedding: n=%d err=%v", n, err)
	}
	got, err := repo.GetByID(dbc, list[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if e := got.Embedding(); len(e) != types.EmbeddingDim || e[0] != 0.25 || e[1535] != -1.5 {
		t.Fatalf("embedding round trip failed")
	}
	if _, err := repo.UpdateEmbedding(dbc, list[0].ID, nil); err != nil {
		t.Fatalf("UpdateEmbedding(nil): %v", err)
	}
	got, _ = repo.GetByID(dbc, list[0].ID)
	if got.VectorMemory != nil {
		t.Fatalf("embedding not cleared")
	}

	if n, err := repo.CountByInfoBaseIDs(dbc, []uint{ib.ID}); err != nil || n != 3 {
		t.Fatalf("CountByInfoBaseIDs: n=%d err=%v", n, err)
	}
	if n, err := repo.DeleteByInfoBaseIDs(dbc, []uint{ib.ID}); err != nil || n != 3 {
		t.Fatalf("DeleteByInfoBaseIDs: n=%d err=%v", n, err)
	}
}

func TestProjectDeleteCascadesInDatabase(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	email := testutil.UniqueEmail("fkcascade")
	u := testutil.SeedUser(t, ctx, tx, email)
	p := testutil.SeedProject(t, ctx, tx, u.ID, "cascade")
	ib := testutil.SeedInfoBase(t, ctx, tx, p.ProjectID, email, "a.txt")
	testutil.SeedChunk(t, ctx, tx, ib.ID, "x", nil)

	if _, err := NewProjectRepo(db, log).Delete(dbc, p.ProjectID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := NewInfoBaseRepo(db, log).GetByID(dbc, ib.ID); got != nil {
		t.Fatalf("infobase survived project delete")
	}
	if n, _ := NewInfoListRepo(db, log).CountByInfoBaseIDs(dbc, []uint{ib.ID}); n != 0 {
		t.Fatalf("chunks survived project delete: %d", n)
	}
}

func TestInfoListRepoMetadataFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewInfoListRepo(db, testutil.Logger(t))

	email := testutil.UniqueEmail("filters")
	u := testutil.SeedUser(t, ctx, tx, email)
	p := testutil.SeedProject(t, ctx, tx, u.ID, "filters")
	ib := testutil.SeedInfoBase(t, ctx, tx, p.ProjectID, email, "nested.pdf")

	created, err := repo.Create(dbc, []*types.InfoList{
		{InfoBaseID: ib.ID, Metadata: types.Metadata{"source": map[string]interface{}{"kind": "pdf", "page": 4}, "tags": []string{"a", "b"}}},
		{InfoBaseID: ib.ID, Metadata: types.Metadata{"source": map[string]interface{}{"kind": "html", "page": 4}}},
		{InfoBaseID: ib.ID},
	})
	if err != nil || len(created) != 3 {
		t.Fatalf("Create: len=%d err=%v", len(created), err)
	}

	var nulls int64
	if err := tx.Model(&types.InfoList{}).Where("infobase_id = ? AND metadata IS NULL", ib.ID).Count(&nulls).Error; err != nil || nulls != 1 {
		t.Fatalf("nil metadata stored as NULL: n=%d err=%v", nulls, err)
	}

	cases := []struct {
		name  string
		match map[string]interface{}
		want  []uint
	}{
		{"nested leaf", map[string]interface{}{"source": map[string]interface{}{"kind": "pdf"}}, []uint{created[0].ID}},
		{"nested number", map[string]interface{}{"source": map[string]interface{}{"page": json.Number("4")}}, []uint{created[0].ID, created[1].ID}},
		{"nested metadata", map[string]interface{}{"source": knowledge.Metadata{"kind": "html", "page": 4}}, []uint{created[1].ID}},
		{"empty nested object", map[string]interface{}{"source": map[string]interface{}{}}, []uint{created[0].ID, created[1].ID}},
		{"nested miss", map[string]interface{}{"source": map[string]interface{}{"kind": "docx"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := repo.FindByMetadata(dbc, ib.ID, tc.match)
			if err != nil {
				t.Fatalf("FindByMetadata: %v", err)
			}
			var ids []uint
			for _, row := range found {
				ids = append(ids, row.ID)
			}
			if !reflect.DeepEqual(ids, tc.want) {
				t.Fatalf("got ids %v want %v", ids, tc.want)
			}
		})
	}

	found, err := repo.FindByMetadata(dbc, ib.ID, map[string]interface{}{"tags": []interface{}{"a"}})
	if testutil.IsPostgres(db) {
		if err != nil || len(found) != 1 || found[0].ID != created[0].ID {
			t.Fatalf("array containment: %v err=%v", found, err)
		}
	} else if !errors.Is(err, ErrMetadataFilter) {
		t.Fatalf("expected ErrMetadataFilter for array value, got %v", err)
	}
}
