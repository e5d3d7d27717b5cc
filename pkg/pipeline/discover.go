// Package pipeline implements spec.md §5/§6's orchestration layer: page
// discovery, the bounded per-page worker pool, the CSV-writer and
// inter-page-event accumulator channels, and the CLI-facing Run entry
// point. Grounded on the teacher's pkg/tracer.Tracer.TraceDirectory
// (collectFiles + channel-based worker pool + result merge), generalized
// from a flat file scan to the js/wxml page-pair discovery spec.md §6
// names and from a WaitGroup-joined channel pool to an
// errgroup.Group-managed one per SPEC_FULL.md's domain stack.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
)

// Page is one discovered page: a page name (relative to the app's
// pages/ directory, without extension) plus its paired script and
// markup file URLs.
type Page struct {
	Name      string
	ScriptURL string
	MarkupURL string
}

// DiscoverPages walks appURL's pages/ subdirectory and returns every
// page for which both a `.js` and a `.wxml` file exist (spec.md §6: "A
// page is valid iff both exist"), sorted by name for deterministic
// processing order.
func DiscoverPages(ctx context.Context, fs afs.Service, appURL string) ([]Page, error) {
	pagesURL := filepath.Join(appURL, "pages")

	objects, err := fs.List(ctx, pagesURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("pipeline: list %s: %w", pagesURL, err)
	}

	seenJS := map[string]bool{}
	seenWXML := map[string]bool{}
	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		name := obj.Name()
		switch {
		case strings.HasSuffix(name, ".js"):
			seenJS[relativePageName(pagesURL, obj.URL(), ".js")] = true
		case strings.HasSuffix(name, ".wxml"):
			seenWXML[relativePageName(pagesURL, obj.URL(), ".wxml")] = true
		}
	}

	var names []string
	for name := range seenJS {
		if seenWXML[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for _, name := range names {
		pages = append(pages, Page{
			Name:      name,
			ScriptURL: filepath.Join(pagesURL, name+".js"),
			MarkupURL: filepath.Join(pagesURL, name+".wxml"),
		})
	}
	return pages, nil
}

// relativePageName strips pagesURL's prefix and ext from fileURL,
// yielding the page name retrieve_pages (original_source/taint_mini/
// taintmini.py) records, e.g. "sub/dir/page".
func relativePageName(pagesURL, fileURL, ext string) string {
	rel := strings.TrimPrefix(fileURL, pagesURL)
	rel = strings.TrimPrefix(rel, "/")
	return strings.TrimSuffix(rel, ext)
}
