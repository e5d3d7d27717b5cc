package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeApp lays out one mini-program app directory with the given
// pages (name -> {js, wxml}) under t.TempDir(), returning the app path.
func writeApp(t *testing.T, basename string, pages map[string]string) string {
	t.Helper()
	root := t.TempDir()
	appDir := filepath.Join(root, basename)
	for name, js := range pages {
		pagesDir := filepath.Join(appDir, "pages")
		require.NoError(t, os.MkdirAll(pagesDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(pagesDir, name+".js"), []byte(js), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(pagesDir, name+".wxml"), []byte("<view></view>"), 0o644))
	}
	return appDir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '|'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows, "expected a header row at least")
	return rows[1:] // drop header
}

// TestEndToEndScenarios covers scenarios 1-5 of spec.md §8's numbered
// end-to-end scenarios (scenario 6 is TestConfigFilter) via the real parser/graph/dataflow/taint/report stack, not
// synthetic ast.Document builders — this is what exercises the
// tree-sitter method-shorthand conversion path every scenario's
// `Page({ name(e) { ... } })` syntax depends on.
func TestEndToEndScenarios(t *testing.T) {
	appDir := writeApp(t, "scenarios", map[string]string{
		// 1. Single page, direct flow.
		"foo": `Page({ onLoad(e) { const v = wx.getStorageSync('k'); wx.request({ url: v }); } })`,
		// 3. Event subscribe.
		"sub": `Page({ onLoad() { const ch = this.getOpenerEventChannel(); ch.on('msg', d => wx.request({ url: d })); } })`,
		// 4. Event emit.
		"emit": `Page({ go() { wx.navigateTo({ url: 'p', success(res) { res.eventChannel.emit('msg', userData); } }); } })`,
	})
	// 2. Double-binding form.
	require.NoError(t, os.WriteFile(
		filepath.Join(appDir, "pages", "bar.wxml"),
		[]byte(`<form bind:submit="sub"><input name="u" type="text"/></form>`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(appDir, "pages", "bar.js"),
		[]byte(`Page({ sub(e) { wx.request({ url: e.detail.value.u }); } })`), 0o644))

	outDir := t.TempDir()
	err := Run(context.Background(), Options{Input: appDir, Output: outDir, Jobs: 1})
	require.NoError(t, err)

	basename := filepath.Base(appDir)
	results := readCSV(t, filepath.Join(outDir, basename+"-result.csv"))

	require.Contains(t, results, []string{"foo", "onLoad", "v", "wx.getStorageSync", "wx.request"})
	require.Contains(t, results, []string{"bar", "sub", "url", "[data from double binding: u, type: text]", "wx.request"})
	for _, row := range results {
		require.NotEqual(t, "sub", row[0], "ch.on subscribe yields an event, not a direct-flow result")
	}

	// 5. Cross-page: emit's userData source joins sub's wx.request sink
	// through the shared "msg" event name.
	interPage := readCSV(t, filepath.Join(outDir, basename+"-inter-page-result.csv"))
	require.Contains(t, interPage, []string{"emit", "sub", "msg", "userData", "wx.request"})
}

// TestConfigFilter covers scenario 6: a config naming only
// wx.getStorageSync/wx.request keeps scenario 1's row and drops
// scenario 2's double-binding row.
func TestConfigFilter(t *testing.T) {
	appDir := writeApp(t, "filtered", map[string]string{
		"foo": `Page({ onLoad(e) { const v = wx.getStorageSync('k'); wx.request({ url: v }); } })`,
	})
	require.NoError(t, os.WriteFile(
		filepath.Join(appDir, "pages", "bar.wxml"),
		[]byte(`<form bind:submit="sub"><input name="u" type="text"/></form>`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(appDir, "pages", "bar.js"),
		[]byte(`Page({ sub(e) { wx.request({ url: e.detail.value.u }); } })`), 0o644))

	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath,
		[]byte(`{"sources":["wx.getStorageSync"],"sinks":["wx.request"]}`), 0o644))

	outDir := t.TempDir()
	err := Run(context.Background(), Options{Input: appDir, Output: outDir, Config: configPath, Jobs: 1})
	require.NoError(t, err)

	basename := filepath.Base(appDir)
	results := readCSV(t, filepath.Join(outDir, basename+"-result.csv"))

	require.Contains(t, results, []string{"foo", "onLoad", "v", "wx.getStorageSync", "wx.request"})
	for _, row := range results {
		require.NotEqual(t, "bar", row[0], "double-binding source should not survive the source filter")
	}
}

func TestEmptyInputDirectory(t *testing.T) {
	appDir := t.TempDir() // no pages/ subdirectory at all
	outDir := t.TempDir()

	err := Run(context.Background(), Options{Input: appDir, Output: outDir, Jobs: 1})
	require.NoError(t, err, "empty input yields exit 0, not an error")
}

func TestBenchFlag(t *testing.T) {
	appDir := writeApp(t, "benched", map[string]string{
		"foo": `Page({ onLoad(e) { const v = wx.getStorageSync('k'); wx.request({ url: v }); } })`,
	})
	outDir := t.TempDir()

	err := Run(context.Background(), Options{Input: appDir, Output: outDir, Jobs: 1, Bench: true})
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(outDir, "benched-bench.csv"))
	require.Len(t, rows, 1)
	require.Equal(t, "foo", rows[0][0])
}
