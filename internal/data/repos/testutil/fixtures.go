package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/infobase-backend/internal/domain"
)

// UniqueEmail returns an address no other fixture uses.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{Email: email, DisplayName: "Test User"}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAIModel(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.AIModel {
	tb.Helper()
	m := &types.AIModel{Name: name, Provider: "test"}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed ai model: %v", err)
	}
	return m
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uint, name string) *types.Project {
	tb.Helper()
	p := &types.Project{OwnerUserID: ownerID, ProjectName: name, Category: "docs"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedInfoBase(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uint, email, name string) *types.ProjectInfoBase {
	tb.Helper()
	ib := &types.ProjectInfoBase{
		ProjectID: projectID,
		UserEmail: email,
		OrigName:  name,
		FilePath:  fmt.Sprintf("projects/%d/%s", projectID, name),
		Size:      128,
	}
	ib.Normalize()
	if err := tx.WithContext(ctx).Create(ib).Error; err != nil {
		tb.Fatalf("seed infobase: %v", err)
	}
	return ib
}

func SeedChunk(tb testing.TB, ctx context.Context, tx *gorm.DB, infoBaseID uint, content string, meta types.Metadata) *types.InfoList {
	tb.Helper()
	c := &types.InfoList{InfoBaseID: infoBaseID, Content: PtrString(content), Metadata: meta}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chunk: %v", err)
	}
	return c
}

func PtrString(v string) *string { return &v }

func PtrUint(v uint) *uint { return &v }
