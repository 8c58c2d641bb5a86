package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBooks struct {
	books []model.Book
	err   error
}

func (s staticBooks) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.books, s.err
}

func strPtr(s string) *string { return &s }

var defaultOpts = orphanOptions{MinAge: time.Hour}

// newStore writes names into a fresh upload dir, backdated past the default
// grace period.
func newStore(t *testing.T, names ...string) (*storage.AssetStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	backend, err := storage.NewLocalBackend(dir)
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(p, old, old))
	}
	return storage.NewAssetStore(backend, "/uploads", nil), dir
}

func TestOrphansCommand_Exists(t *testing.T) {
	require.NotNil(t, orphansCmd)
	assert.Equal(t, "orphans", orphansCmd.Use)
	assert.NotEmpty(t, orphansCmd.Short)
	assert.NotEmpty(t, orphansCmd.Long)
	assert.NotNil(t, orphansCmd.RunE)

	flag := orphansCmd.Flags().Lookup("delete")
	require.NotNil(t, flag)
	assert.Equal(t, "d", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)

	flag = orphansCmd.Flags().Lookup("min-age")
	require.NotNil(t, flag)
	assert.Equal(t, "1h0m0s", flag.DefValue)
}

func TestFindOrphans(t *testing.T) {
	store, _ := newStore(t, "book-a.png", "book-b.png", "book-c.jpg")
	books := staticBooks{books: []model.Book{
		{ID: 1, Image: strPtr("/uploads/book-a.png")},
		{ID: 2},
		{ID: 3, Image: strPtr("https://cdn.example.com/book-c.jpg")},
	}}

	orphans, err := findOrphans(context.Background(), store, books, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/book-b.png", "/uploads/book-c.jpg"}, orphans)
}

func TestFindOrphans_SkipsRecentUploads(t *testing.T) {
	store, dir := newStore(t, "book-old.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book-new.png"), []byte("x"), 0o644))

	orphans, err := findOrphans(context.Background(), store, staticBooks{}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/book-old.png"}, orphans)
}

func TestReportOrphans_DeleteKeepsUploadInFlight(t *testing.T) {
	store, dir := newStore(t)
	inFlight := filepath.Join(dir, "book-new.png")
	require.NoError(t, os.WriteFile(inFlight, []byte("x"), 0o644))
	var out bytes.Buffer

	opts := orphanOptions{Remove: true, MinAge: time.Hour}
	require.NoError(t, reportOrphans(context.Background(), &out, store, staticBooks{}, opts))

	assert.Equal(t, "No orphaned images.\n", out.String())
	_, err := os.Stat(inFlight)
	assert.NoError(t, err)

	// Once past the grace period it is fair game.
	opts.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	out.Reset()
	require.NoError(t, reportOrphans(context.Background(), &out, store, staticBooks{}, opts))

	assert.Contains(t, out.String(), "Removed 1 orphaned image(s).")
	_, err = os.Stat(inFlight)
	assert.True(t, os.IsNotExist(err))
}

func TestReportOrphans_DryRunKeepsFiles(t *testing.T) {
	store, dir := newStore(t, "book-a.png")
	var out bytes.Buffer

	require.NoError(t, reportOrphans(context.Background(), &out, store, staticBooks{}, defaultOpts))

	assert.Contains(t, out.String(), "/uploads/book-a.png")
	assert.Contains(t, out.String(), "--delete")
	_, err := os.Stat(filepath.Join(dir, "book-a.png"))
	assert.NoError(t, err)
}

func TestReportOrphans_Delete(t *testing.T) {
	store, dir := newStore(t, "book-a.png", "book-b.png")
	books := staticBooks{books: []model.Book{{ID: 1, Image: strPtr("/uploads/book-a.png")}}}
	var out bytes.Buffer

	require.NoError(t, reportOrphans(context.Background(), &out, store, books, orphanOptions{Remove: true, MinAge: time.Hour}))

	assert.Contains(t, out.String(), "Removed 1 orphaned image(s).")
	_, err := os.Stat(filepath.Join(dir, "book-a.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "book-b.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestReportOrphans_NothingToDo(t *testing.T) {
	store, _ := newStore(t)
	var out bytes.Buffer

	require.NoError(t, reportOrphans(context.Background(), &out, store, staticBooks{}, orphanOptions{Remove: true, MinAge: time.Hour}))
	assert.Equal(t, "No orphaned images.\n", out.String())
}

func TestReportOrphans_UpstreamFailure(t *testing.T) {
	store, dir := newStore(t, "book-a.png")
	var out bytes.Buffer

	err := reportOrphans(context.Background(), &out, store, staticBooks{err: errors.New("connection refused")}, orphanOptions{Remove: true})
	assert.Error(t, err)
	assert.Empty(t, out.String())

	_, statErr := os.Stat(filepath.Join(dir, "book-a.png"))
	assert.NoError(t, statErr)
}
