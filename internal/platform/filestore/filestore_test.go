package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

func TestCleanKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "projects/1/a.pdf", want: "projects/1/a.pdf"},
		{in: "/projects/1/a.pdf", want: "projects/1/a.pdf"},
		{in: "projects//1/./a.pdf", want: "projects/1/a.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "projects/../../x", wantErr: true},
		{in: `projects\..\x`, wantErr: true},
		{in: "a\x00b", wantErr: true},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tc := range cases {
		got, err := CleanKey(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("CleanKey(%q): expected ErrInvalidPath, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CleanKey(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("CleanKey(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"my report (v2).pdf":  "my_report_v2.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\x\notes.md`: "notes.md",
		"...":                 "upload",
		"":                    "upload",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		code ConfigErrorCode
	}{
		{name: "local ok", cfg: Config{Mode: ModeLocal, Root: "uploads"}},
		{name: "local missing root", cfg: Config{Mode: ModeLocal}, code: ConfigErrorMissingRoot},
		{name: "gcs ok", cfg: Config{Mode: ModeGCS, Bucket: "kb"}},
		{name: "gcs missing bucket", cfg: Config{Mode: ModeGCS}, code: ConfigErrorMissingBucket},
		{name: "emulator missing host", cfg: Config{Mode: ModeGCSEmulator, Bucket: "kb"}, code: ConfigErrorMissingEmulatorHost},
		{name: "emulator relative host", cfg: Config{Mode: ModeGCSEmulator, Bucket: "kb", EmulatorHost: "fake-gcs:4443"}, code: ConfigErrorInvalidURL},
		{name: "emulator ok", cfg: Config{Mode: ModeGCSEmulator, Bucket: "kb", EmulatorHost: "http://fake-gcs:4443"}},
		{name: "bad public base", cfg: Config{Mode: ModeGCS, Bucket: "kb", PublicBaseURL: "/cdn"}, code: ConfigErrorInvalidURL},
		{name: "unknown mode", cfg: Config{Mode: "s3"}, code: ConfigErrorInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code=%q want %q", cfgErr.Code, tc.code)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"": ModeLocal, "LOCAL": ModeLocal, " gcs ": ModeGCS, "gcs_emulator": ModeGCSEmulator} {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%q,%v want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("minio"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func newTestLocal(t *testing.T) (FileStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocal(logger.NewNop(), root, "/file")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return store, root
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, root := newTestLocal(t)

	n, err := store.Save(ctx, "projects/1/a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 5 {
		t.Fatalf("bytes=%d want 5", n)
	}
	if _, err := os.Stat(filepath.Join(root, "projects", "1", "a.txt")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	obj, err := store.Open(ctx, "projects/1/a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(obj.Body)
	_ = obj.Body.Close()
	if string(body) != "hello" || obj.Size != 5 {
		t.Fatalf("unexpected object: %q size=%d", body, obj.Size)
	}
	if _, ok := obj.Body.(io.ReadSeeker); !ok {
		t.Fatalf("expected seekable local body")
	}
	if !strings.HasPrefix(obj.ContentType, "text/plain") {
		t.Fatalf("content type=%q", obj.ContentType)
	}

	if got := store.PublicURL("projects/1/a.txt"); got != "/file/projects/1/a.txt" {
		t.Fatalf("PublicURL=%q", got)
	}

	if err := store.Delete(ctx, "projects/1/a.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "projects/1/a.txt"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, err := store.Open(ctx, "projects/1/a.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store, root := newTestLocal(t)

	for _, key := range []string{"out/7/a.json", "out/7/nested/b.json", "out/8/c.json"} {
		if _, err := store.Save(ctx, key, strings.NewReader("{}")); err != nil {
			t.Fatalf("Save %s: %v", key, err)
		}
	}
	if err := store.DeletePrefix(ctx, "out/7"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "7")); !os.IsNotExist(err) {
		t.Fatalf("expected out/7 removed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "8", "c.json")); err != nil {
		t.Fatalf("sibling removed: %v", err)
	}
	if err := store.DeletePrefix(ctx, "out/missing"); err != nil {
		t.Fatalf("DeletePrefix missing: %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, root := newTestLocal(t)

	if _, err := store.Save(ctx, "../escape.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if _, err := store.Open(ctx, "a/../../etc/passwd"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := store.Open(ctx, "link/secret.txt"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected symlink escape rejected, got %v", err)
	}
	if _, err := store.Save(ctx, "link/new.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected symlink escape rejected on save, got %v", err)
	}
}

func TestLocalStoreSaveHonorsCancel(t *testing.T) {
	store, _ := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.txt", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGCSPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "gcs default", cfg: Config{Mode: ModeGCS, Bucket: "kb"}, want: "https://storage.googleapis.com/kb/projects/1/a.pdf"},
		{name: "gcs public base", cfg: Config{Mode: ModeGCS, Bucket: "kb", PublicBaseURL: "https://cdn.example.com/"}, want: "https://cdn.example.com/kb/projects/1/a.pdf"},
		{name: "emulator", cfg: Config{Mode: ModeGCSEmulator, Bucket: "kb", EmulatorHost: "http://fake-gcs:4443/"}, want: "http://fake-gcs:4443/storage/v1/b/kb/o/projects%2F1%2Fa.pdf?alt=media"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newGCSStore(logger.NewNop(), nil, tc.cfg)
			if got := s.PublicURL("/projects/1/a.pdf"); got != tc.want {
				t.Fatalf("PublicURL=%q want %q", got, tc.want)
			}
		})
	}
}
