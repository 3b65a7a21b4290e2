package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"arclight-hq/beacon/pkg/audit"
)

func sampleRecord(ts time.Time) *audit.Record {
	return &audit.Record{
		ID:             "rec-" + ts.Format("150405.000000000"),
		Timestamp:      ts,
		ClientKey:      "203.0.113.7",
		Country:        "Unknown",
		Route:          "openai",
		Method:         "POST",
		RequestURL:     "/api/openai/v1/chat/completions",
		TargetURL:      "https://api.openai.com/v1/chat/completions",
		RequestHeaders: map[string]string{"Content-Type": "application/json"},
		RequestBody:    `{"model":"gpt-4"}`,
		Decision:       "allow",
		ResponseStatus: 200,
		ResponseBody:   `{"id":"cmpl-1"}`,
		DurationMs:     42,
	}
}

func TestSQLiteStorage_InsertAndCount(t *testing.T) {
	s, err := NewSQLiteStorage(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "audit.db")})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec := sampleRecord(time.Now().Add(time.Duration(i) * time.Millisecond))
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestSQLiteStorage_Prune(t *testing.T) {
	s, err := NewSQLiteStorage(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "audit.db")})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()
	old := sampleRecord(now.Add(-48 * time.Hour))
	recent := sampleRecord(now)
	if err := s.Insert(ctx, old); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.Insert(ctx, recent); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	pruned, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	n, _ := s.Count(ctx)
	if n != 1 {
		t.Errorf("count after prune = %d, want 1", n)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	if err := m.Insert(ctx, sampleRecord(now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := m.Insert(ctx, sampleRecord(now)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if len(m.Records()) != 2 {
		t.Fatalf("records = %d, want 2", len(m.Records()))
	}

	pruned, err := m.Prune(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned != 1 || len(m.Records()) != 1 {
		t.Errorf("pruned = %d, remaining = %d", pruned, len(m.Records()))
	}
}

func TestMemoryStorage_InsertCopies(t *testing.T) {
	m := NewMemoryStorage()
	rec := sampleRecord(time.Now())
	if err := m.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	rec.Decision = "mutated"
	if m.Records()[0].Decision != "allow" {
		t.Error("stored record aliases the caller's record")
	}
}
