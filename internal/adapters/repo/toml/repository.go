// Package toml keeps every document in one versioned TOML file.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	DocumentsPathKey  = "documents.path"
	documentsFileMode = 0o600
	documentsDirMode  = 0o700
	defaultDir        = ".inline-edit"
	defaultFile       = "documents.toml"
	tempFilePattern   = ".documents-*.toml.tmp"
)

// Repository guards its file with a lock shared by every Repository opened on
// the same path in this process.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	fileLocksMu sync.Mutex
	fileLocks   = map[string]*sync.RWMutex{}
)

var _ ports.DocumentRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(DocumentsPathKey, filepath.Join(homeDir, defaultDir, defaultFile))

	raw := cfg.GetString(DocumentsPathKey)
	if raw == "" {
		return nil, errors.New("documents path is empty")
	}
	path, err := filepath.Abs(raw)
	if err != nil {
		return nil, fmt.Errorf("resolve documents path: %w", err)
	}
	path = filepath.Clean(path)

	fileLocksMu.Lock()
	mu, ok := fileLocks[path]
	if !ok {
		mu = &sync.RWMutex{}
		fileLocks[path] = mu
	}
	fileLocksMu.Unlock()

	return &Repository{path: path, mu: mu}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Save stores document. Replacing a stored document requires a higher
// revision; otherwise ErrRevisionConflict is returned and nothing is written.
func (r *Repository) Save(ctx context.Context, document domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := document.Validate(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	return r.update(ctx, func(file *fileSchema) error {
		if stored, ok := file.find(document.ID); ok && document.Revision <= stored.Revision {
			return fmt.Errorf("save document %q at revision %d (stored %d): %w",
				document.ID, document.Revision, stored.Revision, domain.ErrRevisionConflict)
		}
		file.put(encodeDocument(document))
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}

	file, err := r.snapshot()
	if err != nil {
		return domain.Document{}, err
	}

	entry, ok := file.find(id)
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return decodeDocument(entry)
}

func (r *Repository) List(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.snapshot()
	if err != nil {
		return nil, err
	}

	documents := make([]domain.Document, 0, len(file.Documents))
	for _, entry := range file.Documents {
		document, err := decodeDocument(entry)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, nil
}

func (r *Repository) snapshot() (fileSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

// update runs fn on the current file contents and writes the result back
// while holding the write lock. Nothing is written when fn fails.
func (r *Repository) update(ctx context.Context, fn func(*fileSchema) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(&file); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store(file)
}

func (r *Repository) load() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return fileSchema{Version: currentSchemaVersion}, nil
	}
	if err != nil {
		return fileSchema{}, fmt.Errorf("read documents file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode documents file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()
	file.sort()
	return file, nil
}

// store replaces the file atomically through a temp file in the same directory.
func (r *Repository) store(file fileSchema) (err error) {
	file.applyDefaults()
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode documents file: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, documentsDirMode); err != nil {
		return fmt.Errorf("create documents directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp documents file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(documentsFileMode)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write temp documents file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace documents file: %w", err)
	}
	return nil
}
