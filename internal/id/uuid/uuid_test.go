package uuid

import (
	"strings"
	"testing"

	goUUID "github.com/google/uuid"
)

func TestGeneratorNewID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	id2, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected unique IDs, got %s and %s", id1, id2)
	}
	if !strings.HasPrefix(id1, ArticlePrefix) {
		t.Fatalf("expected %q prefix, got %s", ArticlePrefix, id1)
	}
	parsed, err := goUUID.Parse(strings.TrimPrefix(id1, ArticlePrefix))
	if err != nil {
		t.Fatalf("id1 not valid UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestGeneratorShort(t *testing.T) {
	t.Parallel()

	gen := New()
	seen := map[string]bool{}
	for range 50 {
		s, err := gen.Short()
		if err != nil {
			t.Fatalf("Short() error = %v", err)
		}
		if len(s) != 8 {
			t.Fatalf("expected 8 chars, got %q", s)
		}
		if strings.Trim(s, "0123456789abcdef") != "" {
			t.Fatalf("expected lowercase hex, got %q", s)
		}
		if seen[s] {
			t.Fatalf("duplicate short id %q", s)
		}
		seen[s] = true
	}
}
