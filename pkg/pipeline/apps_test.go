package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAppsDirectory(t *testing.T) {
	dir := t.TempDir()

	apps, err := resolveApps(dir)
	require.NoError(t, err)
	require.Equal(t, []string{dir}, apps)
}

func TestResolveAppsIndexFile(t *testing.T) {
	dir := t.TempDir()
	appA := filepath.Join(dir, "app-a")
	appB := filepath.Join(dir, "app-b")

	indexPath := filepath.Join(dir, "index.txt")
	content := appA + "\n\n" + appB + "\n"
	require.NoError(t, os.WriteFile(indexPath, []byte(content), 0o644))

	apps, err := resolveApps(indexPath)
	require.NoError(t, err)
	require.Equal(t, []string{appA, appB}, apps)
}

func TestResolveAppsInvalidPath(t *testing.T) {
	_, err := resolveApps(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
