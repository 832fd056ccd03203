package knowledge

import (
	"math"
	"strings"
	"testing"
)

func TestProjectValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Project
		wantErr bool
	}{
		{"ok", Project{OwnerUserID: 1, ProjectName: "docs"}, false},
		{"blank name", Project{OwnerUserID: 1, ProjectName: "  "}, true},
		{"long name", Project{OwnerUserID: 1, ProjectName: strings.Repeat("x", MaxProjectNameLen+1)}, true},
		{"long category", Project{OwnerUserID: 1, ProjectName: "a", Category: strings.Repeat("c", MaxCategoryLen+1)}, true},
		{"no owner", Project{ProjectName: "a"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestInfoBaseValidateAndNormalize(t *testing.T) {
	ib := &ProjectInfoBase{ProjectID: 1}
	if err := ib.Validate(); err == nil {
		t.Fatalf("expected missing email error")
	}
	ib.UserEmail = "u@example.com"
	if err := ib.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ib.Normalize()
	if ib.Images == nil || ib.Parts == nil || ib.JSONPaths.Data() == nil {
		t.Fatalf("Normalize left nil collections: %+v", ib)
	}
}

func TestArtifactsUpdatesFillsEmptyCollections(t *testing.T) {
	u := Artifacts{HTMLPath: "out/a.html"}.Updates()
	if u["html_path"] != "out/a.html" {
		t.Fatalf("html_path: %v", u["html_path"])
	}
	for _, key := range []string{"images", "parts", "json_paths", "output_folder", "md_path"} {
		if _, ok := u[key]; !ok {
			t.Fatalf("missing %s", key)
		}
	}
}

func TestNewEmbedding(t *testing.T) {
	if v, err := NewEmbedding(nil); err != nil || v != nil {
		t.Fatalf("empty: v=%v err=%v", v, err)
	}
	if _, err := NewEmbedding(make([]float32, 3)); err == nil {
		t.Fatalf("expected dimension error")
	}
	bad := make([]float32, EmbeddingDim)
	bad[7] = float32(math.NaN())
	if _, err := NewEmbedding(bad); err == nil {
		t.Fatalf("expected NaN error")
	}
	good := make([]float32, EmbeddingDim)
	good[0] = 0.5
	v, err := NewEmbedding(good)
	if err != nil {
		t.Fatalf("NewEmbedding: %v", err)
	}
	c := &InfoList{VectorMemory: v}
	if got := c.Embedding(); len(got) != EmbeddingDim || got[0] != 0.5 {
		t.Fatalf("Embedding() mismatch")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInfoListTextContent(t *testing.T) {
	if _, ok := (&InfoList{}).TextContent(); ok {
		t.Fatalf("nil content reported as present")
	}
	empty := ""
	if s, ok := (&InfoList{Content: &empty}).TextContent(); !ok || s != "" {
		t.Fatalf("empty content should be present")
	}
}
