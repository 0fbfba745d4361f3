// Package markdown stores each document as <id>.md with a YAML frontmatter
// header carrying its metadata.
package markdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/spf13/viper"
)

const (
	DocumentsPathKey   = "documents.path"
	documentsDirMode   = 0o700
	documentFileMode   = 0o600
	documentsConfigDir = ".inline-edit"
	documentsDirName   = "documents"
	documentExt        = ".md"
	tempFilePattern    = ".document-*.md.tmp"
)

type Repository struct {
	root string
	mu   sync.RWMutex

	lastSelfWrite atomic.Int64
}

var _ ports.DocumentRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(DocumentsPathKey, filepath.Join(homeDir, documentsConfigDir, documentsDirName))

	root := cfg.GetString(DocumentsPathKey)
	if root == "" {
		return nil, errors.New("documents path is empty")
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve documents path: %w", err)
	}

	return &Repository{root: filepath.Clean(root)}, nil
}

func (r *Repository) Root() string {
	return r.root
}

// LastSelfWrite is when this repository last wrote a document file, or the
// zero time if it never did.
func (r *Repository) LastSelfWrite() time.Time {
	ms := r.lastSelfWrite.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (r *Repository) Save(ctx context.Context, document domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := document.Validate(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	data, err := encodeFrontmatter(frontmatter{
		Title:    document.Title,
		Kind:     string(document.Kind),
		Revision: document.Revision,
		Updated:  formatUpdated(document.UpdatedAt),
	}, document.Body)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", document.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.root, documentsDirMode); err != nil {
		return fmt.Errorf("create documents directory: %w", err)
	}

	tempFile, err := os.CreateTemp(r.root, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp document file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp document file: %w", err)
	}
	if err := tempFile.Chmod(documentFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp document file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp document file: %w", err)
	}

	r.lastSelfWrite.Store(time.Now().UnixMilli())
	if err := os.Rename(tempName, r.pathFor(document.ID)); err != nil {
		return fmt.Errorf("replace document file %q: %w", document.ID, err)
	}

	cleanup = false
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	if err := id.Validate(); err != nil {
		return domain.Document{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.read(id)
}

func (r *Repository) List(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Document{}, nil
		}
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	documents := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		id, ok := IDFromFileName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}

		document, err := r.read(id)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}

	return documents, nil
}

// IDFromFileName maps a document file name back to its id. It rejects names
// that are not documents, including temp files.
func IDFromFileName(name string) (domain.DocumentID, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, documentExt) {
		return "", false
	}

	id := domain.DocumentID(strings.TrimSuffix(base, documentExt))
	if id.Validate() != nil {
		return "", false
	}
	return id, true
}

func (r *Repository) read(id domain.DocumentID) (domain.Document, error) {
	path := r.pathFor(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return domain.Document{}, fmt.Errorf("read document %q: %w", id, err)
	}

	meta, body, err := decodeFrontmatter(string(data))
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document %q: %w", id, err)
	}

	kind, err := domain.ParseContentKind(meta.Kind)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document %q: %w", id, err)
	}

	title := meta.Title
	if title == "" {
		title = titleFromBody(body)
	}
	if title == "" {
		title = string(id)
	}

	updated := parseUpdated(meta.Updated)
	if updated.IsZero() {
		if info, err := os.Stat(path); err == nil {
			updated = info.ModTime()
		}
	}

	return domain.Document{
		ID:        id,
		Title:     title,
		Kind:      kind,
		Body:      body,
		Revision:  meta.Revision,
		UpdatedAt: updated,
	}, nil
}

func (r *Repository) pathFor(id domain.DocumentID) string {
	return filepath.Join(r.root, string(id)+documentExt)
}
