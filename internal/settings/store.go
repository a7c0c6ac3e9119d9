package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mgpai22/subplay/internal/logging"
)

// key the settings live under inside the store document
const StorageKey = "subtitleSettings"

// Store persists settings between runs.
type Store interface {
	// Load returns stored settings merged over the defaults.
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// FileStore keeps a JSON document on disk with settings stored under
// StorageKey, leaving any other keys in the document alone.
type FileStore struct {
	path   string
	logger *logging.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger *logging.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logging.OrNop(logger).Named("settings"),
	}
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load(ctx context.Context) (Settings, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	s := Defaults()

	doc, err := fs.readDocument()
	if err != nil {
		return s, err
	}

	raw, ok := doc[StorageKey]
	if !ok {
		fs.logger.Debugw("no stored settings, using defaults", "path", fs.path)
		return s, nil
	}

	patch, err := ParsePatch(raw)
	if err != nil {
		fs.logger.Warnw("stored settings unreadable, using defaults",
			"path", fs.path, "error", err)
		return s, nil
	}
	patch.Apply(&s)
	return s, nil
}

func (fs *FileStore) Save(ctx context.Context, s Settings) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.readDocument()
	if err != nil {
		// a corrupt document is replaced rather than blocking saves
		fs.logger.Warnw("overwriting unreadable settings file",
			"path", fs.path, "error", err)
		doc = map[string]json.RawMessage{}
	}

	encoded, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	doc[StorageKey] = encoded

	if err := writeJSON(fs.path, doc); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fs.logger.Debugw("settings saved", "path", fs.path)
	return nil
}

func (fs *FileStore) readDocument() (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}

	file, err := os.Open(fs.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode settings file: %w", err)
	}
	return doc, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MemoryStore keeps settings in process; it starts out empty.
type MemoryStore struct {
	mu    sync.Mutex
	saved *Settings
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return Defaults(), nil
	}
	return *m.saved, nil
}

func (m *MemoryStore) Save(ctx context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
	m.saves++
	return nil
}

// number of Save calls so far
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
