package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissingFileGivesDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.json"), nil)

	s, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s != Defaults() {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	s := Defaults()
	s.OffsetY = 50
	s.SRTTextColor = "#00ff00"
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := NewFileStore(path, nil).Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != s {
		t.Errorf("expected %+v, got %+v", s, loaded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read settings file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings file is not JSON: %v", err)
	}
	if _, ok := doc[StorageKey]; !ok {
		t.Errorf("expected settings under %q, got keys %v", StorageKey, doc)
	}
}

func TestFileStoreMergesPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"other": 1, "subtitleSettings": {"fontSize": 30, "opacity": "oops"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	store := NewFileStore(path, nil)
	s, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.FontSize != 30 {
		t.Errorf("expected fontSize 30, got %d", s.FontSize)
	}
	if s.Opacity != Defaults().Opacity {
		t.Errorf("expected default opacity, got %v", s.Opacity)
	}

	if err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings file is not JSON: %v", err)
	}
	if string(doc["other"]) != "1" {
		t.Errorf("expected unrelated key preserved, got %s", doc["other"])
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	store := NewFileStore(path, nil)
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt document")
	}
	if err := store.Save(context.Background(), Defaults()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := store.Load(context.Background()); err != nil {
		t.Errorf("expected document repaired by save, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, _ := store.Load(ctx)
	if s != Defaults() {
		t.Errorf("expected defaults, got %+v", s)
	}

	s.FontSize = 40
	_ = store.Save(ctx, s)
	loaded, _ := store.Load(ctx)
	if loaded.FontSize != 40 || store.Saves() != 1 {
		t.Errorf("unexpected store state: %+v saves=%d", loaded, store.Saves())
	}
}
