package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func writePage(t *testing.T, pagesDir, name string, withMarkup bool) {
	t.Helper()
	full := filepath.Join(pagesDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full+".js", []byte("Page({onLoad(e){}})"), 0o644))
	if withMarkup {
		require.NoError(t, os.WriteFile(full+".wxml", []byte("<view></view>"), 0o644))
	}
}

func TestDiscoverPagesRequiresBothFiles(t *testing.T) {
	appDir := t.TempDir()
	pagesDir := filepath.Join(appDir, "pages")

	writePage(t, pagesDir, "index", true)
	writePage(t, pagesDir, "orphan", false) // .js only, no .wxml

	pages, err := DiscoverPages(context.Background(), afs.New(), appDir)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "index", pages[0].Name)
}

func TestDiscoverPagesNested(t *testing.T) {
	appDir := t.TempDir()
	pagesDir := filepath.Join(appDir, "pages")

	writePage(t, pagesDir, "index", true)
	writePage(t, pagesDir, filepath.Join("profile", "settings"), true)

	pages, err := DiscoverPages(context.Background(), afs.New(), appDir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "index", pages[0].Name, "sorted order")
}
