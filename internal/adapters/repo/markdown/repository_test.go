package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(DocumentsPathKey, t.TempDir())

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	document := domain.Document{
		ID:        "roadmap",
		Title:     "Roadmap: 2026",
		Kind:      domain.ContentKindTable,
		Body:      "| q | goal |\n|---|---|\n| 1 | ship |\n",
		Revision:  5,
		UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Save(context.Background(), document))

	got, err := repo.GetByID(context.Background(), "roadmap")
	require.NoError(t, err)
	assert.Equal(t, document, got)

	data, err := os.ReadFile(filepath.Join(repo.Root(), "roadmap.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: table\n")
	assert.Contains(t, string(data), "revision: 5\n")
}

func TestRepositoryBodyWithFenceLinesSurvives(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	document := domain.Document{
		ID:       "notes",
		Title:    "Notes",
		Kind:     domain.ContentKindRichText,
		Body:     "intro\n---\nafter rule\n",
		Revision: 1,
	}
	require.NoError(t, repo.Save(context.Background(), document))

	got, err := repo.GetByID(context.Background(), "notes")
	require.NoError(t, err)
	assert.Equal(t, document.Body, got.Body)
}

func TestRepositoryReadsPlainMarkdown(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "plain.md"), []byte("# Hand written\n\nbody\n"), 0o600))

	got, err := repo.GetByID(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, "Hand written", got.Title)
	assert.Equal(t, domain.ContentKindRichText, got.Kind)
	assert.Equal(t, "# Hand written\n\nbody\n", got.Body)
	assert.Zero(t, got.Revision)
	assert.False(t, got.UpdatedAt.IsZero(), "falls back to file mtime")
}

func TestRepositoryUntitledFallsBackToID(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "scratch.md"), []byte("just text"), 0o600))

	got, err := repo.GetByID(context.Background(), "scratch")
	require.NoError(t, err)
	assert.Equal(t, "scratch", got.Title)
}

func TestRepositoryMalformedFrontmatter(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "bad.md"), []byte("---\ntitle: [unclosed\n---\nbody"), 0o600))

	_, err := repo.GetByID(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode frontmatter")
}

func TestRepositoryUnsupportedKind(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "odd.md"), []byte("---\ntitle: Odd\nkind: hologram\n---\n"), 0o600))

	_, err := repo.GetByID(context.Background(), "odd")
	require.ErrorContains(t, err, "unsupported content kind")
}

func TestRepositoryListSkipsNonDocuments(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	require.NoError(t, repo.Save(context.Background(), domain.Document{ID: "a", Title: "A", Kind: domain.ContentKindRichText}))
	require.NoError(t, repo.Save(context.Background(), domain.Document{ID: "b", Title: "B", Kind: domain.ContentKindChart}))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "readme.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), ".hidden.md"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(repo.Root(), "dir.md"), 0o700))

	documents, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 2)

	ids := []domain.DocumentID{documents[0].ID, documents[1].ID}
	assert.ElementsMatch(t, []domain.DocumentID{"a", "b"}, ids)
}

func TestRepositoryMissingRoot(t *testing.T) {
	t.Parallel()

	config := viper.New()
	config.Set(DocumentsPathKey, filepath.Join(t.TempDir(), "missing"))
	repo, err := NewRepository(config)
	require.NoError(t, err)

	documents, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, documents)

	_, err = repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRepositoryRejectsTraversal(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "../secret")
	require.ErrorIs(t, err, domain.ErrInvalidDocumentID)

	err = repo.Save(context.Background(), domain.Document{ID: "../secret", Title: "x", Kind: domain.ContentKindRichText})
	require.ErrorIs(t, err, domain.ErrInvalidDocumentID)
}

func TestRepositoryRecordsSelfWrite(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	assert.True(t, repo.LastSelfWrite().IsZero())

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Save(context.Background(), domain.Document{ID: "a", Title: "A", Kind: domain.ContentKindRichText}))
	assert.True(t, repo.LastSelfWrite().After(before))

	info, err := os.Stat(filepath.Join(repo.Root(), "a.md"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestIDFromFileName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want domain.DocumentID
		ok   bool
	}{
		{name: "notes.md", want: "notes", ok: true},
		{name: "/tmp/docs/q3.metric.md", want: "q3.metric", ok: true},
		{name: "notes.txt"},
		{name: ".document-123.md.tmp"},
		{name: ".hidden.md"},
	}

	for _, tc := range cases {
		got, ok := IDFromFileName(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	t.Parallel()

	header, body, ok := splitFrontmatter("---\r\ntitle: x\r\n---\r\nbody")
	require.True(t, ok)
	assert.Equal(t, "title: x", header)
	assert.Equal(t, "body", body)

	_, body, ok = splitFrontmatter("---\nnever closed")
	assert.False(t, ok)
	assert.Equal(t, "---\nnever closed", body)
}
