package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(Config{Dir: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New(Config{Dir: "  "})
	require.Error(t, err)
}

func TestList_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.docx", "c.pdf", "d.csv", "README"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	items, err := src.List(context.Background(), []string{".txt", ".docx", ".pdf"})
	require.NoError(t, err)
	require.Len(t, items, 3)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		require.Equal(t, contracts.SourceLocal, item.Source)
	}
	require.ElementsMatch(t, []string{"a.txt", "b.docx", "c.pdf"}, names)
}

func TestList_EmptyFolder(t *testing.T) {
	src, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	items, err := src.List(context.Background(), []string{".txt"})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestFetch_ReadsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msa.txt")
	require.NoError(t, os.WriteFile(path, []byte("MASTER SERVICES AGREEMENT"), 0o644))

	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), contracts.WorkItem{
		Name:     "msa.txt",
		Location: path,
		Source:   contracts.SourceLocal,
	})
	require.NoError(t, err)
	require.Equal(t, "MASTER SERVICES AGREEMENT", string(data))
}

func TestFetch_RejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), contracts.WorkItem{
		Name:     "passwd",
		Location: filepath.Join(dir, "..", "passwd"),
		Source:   contracts.SourceLocal,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes")
}
