package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	for _, key := range []string{"token", "refresh_token", "postgres_password", "database_url"} {
		if got := sanitizeValue(key, "value"); got != "[REDACTED]" {
			t.Fatalf("key %q: got %v want [REDACTED]", key, got)
		}
	}
}

func TestSanitizeValueHashesEmail(t *testing.T) {
	got, ok := sanitizeValue("user_email", "a@example.com").(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("expected hashed email, got %v", got)
	}
	again := sanitizeValue("user_email", "a@example.com")
	if again != got {
		t.Fatalf("hash not stable: %v vs %v", got, again)
	}
}

func TestSanitizeValueNestedMap(t *testing.T) {
	in := map[string]interface{}{"secret": "x", "page": 3}
	out := sanitizeValue("meta", in).(map[string]interface{})
	if out["secret"] != "[REDACTED]" {
		t.Fatalf("nested secret not redacted: %v", out)
	}
	if out["page"] != 3 {
		t.Fatalf("page changed: %v", out["page"])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"project_id", 7, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected kvs: %v", out)
	}
}
