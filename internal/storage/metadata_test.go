package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/signwave/sign-video-service/internal/types"
)

func newTestDB(t *testing.T) *MetadataDB {
	t.Helper()
	db, err := NewMetadataDB(filepath.Join(t.TempDir(), "generations.db"))
	if err != nil {
		t.Fatalf("NewMetadataDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetGeneration(t *testing.T) {
	db := newTestDB(t)

	rec := &types.GenerationRecord{
		ID:            "req-1",
		Sentence:      "I am hungry",
		ResolvedWords: "i hungry",
		ClipCount:     2,
		Duration:      3.5,
		Status:        types.StatusCompleted,
		CreatedAt:     time.Now(),
	}
	if err := db.SaveGeneration(rec); err != nil {
		t.Fatalf("SaveGeneration failed: %v", err)
	}

	got, err := db.GetGeneration("req-1")
	if err != nil {
		t.Fatalf("GetGeneration failed: %v", err)
	}
	if got.Sentence != rec.Sentence {
		t.Errorf("Sentence = %q, want %q", got.Sentence, rec.Sentence)
	}
	if got.ResolvedWords != rec.ResolvedWords {
		t.Errorf("ResolvedWords = %q, want %q", got.ResolvedWords, rec.ResolvedWords)
	}
	if got.ClipCount != 2 || got.Duration != 3.5 {
		t.Errorf("ClipCount/Duration = %d/%v, want 2/3.5", got.ClipCount, got.Duration)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, types.StatusCompleted)
	}
}

func TestGetGeneration_Missing(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetGeneration("nope"); err == nil {
		t.Fatal("GetGeneration(nope) succeeded, want error")
	}
}

func TestListGenerations_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		rec := &types.GenerationRecord{
			ID:            id,
			Sentence:      id,
			ResolvedWords: id,
			Status:        types.StatusCompleted,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.SaveGeneration(rec); err != nil {
			t.Fatalf("SaveGeneration(%s) failed: %v", id, err)
		}
	}

	records, err := db.ListGenerations(10)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].ID != "new" || records[2].ID != "old" {
		t.Errorf("order = [%s %s %s], want [new mid old]", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestSaveGeneration_FailedStatusKeepsError(t *testing.T) {
	db := newTestDB(t)

	rec := &types.GenerationRecord{
		ID:            "req-2",
		Sentence:      "broken",
		ResolvedWords: "broken",
		ClipCount:     1,
		Status:        types.StatusFailed,
		Error:         "ffmpeg concat failed",
	}
	if err := db.SaveGeneration(rec); err != nil {
		t.Fatalf("SaveGeneration failed: %v", err)
	}

	got, err := db.GetGeneration("req-2")
	if err != nil {
		t.Fatalf("GetGeneration failed: %v", err)
	}
	if got.Error != "ffmpeg concat failed" {
		t.Errorf("Error = %q, want the encode failure text", got.Error)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted on save")
	}
}
