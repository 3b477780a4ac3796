package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/doctran/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_New_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveToMemory(ctx, "Hello", "en", "uk", "Привіт", "google"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, found, err := s.GetCachedTranslation(ctx, "Hello", "en", "uk")
	if err != nil || !found || got != "Привіт" {
		t.Errorf("expected entry to survive reopen, got %q found=%v err=%v", got, found, err)
	}
}

func TestStore_GetCachedTranslation_NotFound(t *testing.T) {
	s := newTestStore(t)

	result, found, err := s.GetCachedTranslation(context.Background(), "Hello", "en", "uk")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
	if result != "" {
		t.Errorf("expected empty result, got %q", result)
	}
}

func TestStore_SaveAndGetMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hello world", "en", "uk", "Привіт світ", "google"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	result, found, err := s.GetCachedTranslation(ctx, "Hello world", "en", "uk")
	if err != nil {
		t.Fatalf("GetCachedTranslation failed: %v", err)
	}
	if !found {
		t.Fatal("expected to find cached translation")
	}
	if result != "Привіт світ" {
		t.Errorf("expected 'Привіт світ', got %q", result)
	}
}

func TestStore_Memory_NormalizesKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "é" as e + combining acute, with surrounding whitespace.
	if err := s.SaveToMemory(ctx, "  cafe\u0301 \n", "fr", "en", "coffee", "google"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	result, found, err := s.GetCachedTranslation(ctx, "caf\u00e9", "fr", "en")
	if err != nil {
		t.Fatalf("GetCachedTranslation failed: %v", err)
	}
	if !found || result != "coffee" {
		t.Errorf("expected normalized hit, got %q found=%v", result, found)
	}
}

func TestStore_Memory_LanguagePairIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hello", "en", "uk", "Привіт", "google"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	if _, found, _ := s.GetCachedTranslation(ctx, "Hello", "en", "de"); found {
		t.Error("expected miss for a different target language")
	}
}

func TestStore_Memory_Replace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "en", "uk", "first", "mymemory")
	s.SaveToMemory(ctx, "Hello", "en", "uk", "second", "google")

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(entries))
	}
	if entries[0].FinalText != "second" || entries[0].ServiceUsed != "google" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestStore_InvalidateMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "en", "uk", "Привіт", "google")
	entries, _ := s.ListMemory(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}

	if _, found, _ := s.GetCachedTranslation(ctx, "Hello", "en", "uk"); found {
		t.Error("invalidated entry must not be returned")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.InvalidEntries != 1 || stats.ActiveEntries != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "en", "uk", "Привіт", "google")
	entries, _ := s.ListMemory(ctx)

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if err := s.DeleteMemory(ctx, entries[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_ClearMemoryAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "one", "en", "uk", "один", "google")
	s.SaveToMemory(ctx, "two", "en", "uk", "два", "google")
	s.GetCachedTranslation(ctx, "one", "en", "uk")

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.TotalEntries)
	}
	if stats.TotalUsage != 3 {
		t.Errorf("expected usage 3 after one hit, got %d", stats.TotalUsage)
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows cleared, got %d", n)
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := internal.RunRecord{
		ID:          "run-1",
		InputPath:   "/in",
		OutputDir:   "/out",
		SourceLang:  "auto",
		TargetLang:  "uk",
		Service:     "google",
		Status:      internal.RunCompleted,
		Total:       5,
		Processed:   5,
		FailedFiles: []string{"/in/b.pdf", "/in/a.txt"},
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
	}
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != internal.RunCompleted || got.Total != 5 || got.Service != "google" {
		t.Errorf("unexpected run %+v", got)
	}
	if len(got.FailedFiles) != 2 || got.FailedFiles[0] != "/in/b.pdf" || got.FailedFiles[1] != "/in/a.txt" {
		t.Errorf("failed files must keep run order, got %v", got.FailedFiles)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("expected started %v, got %v", started, got.StartedAt)
	}
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		rec := internal.RunRecord{
			ID:         id,
			InputPath:  "/in",
			OutputDir:  "/out",
			SourceLang: "en",
			TargetLang: "de",
			Status:     internal.RunCancelled,
			Total:      3,
			Processed:  i,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}
		if id == "mid" {
			rec.FailedFiles = []string{"/in/x.txt"}
		}
		if err := s.SaveRun(ctx, rec); err != nil {
			t.Fatalf("SaveRun %s failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs with limit, got %d", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if len(runs[1].FailedFiles) != 1 {
		t.Errorf("expected failures loaded for listed runs, got %v", runs[1].FailedFiles)
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs, got %d", len(all))
	}
}
