package pipeline

import (
	"os"
	"path/filepath"

	"github.com/tidwall/sjson"

	"github.com/taintmini/taintmini/pkg/ast"
	"github.com/taintmini/taintmini/pkg/diagnostics"
)

// dumpIntermediateAST writes page's parsed document to
// `<intermediateDir>/<page>.json` (spec.md §6: "an intermediate-data/
// directory for ephemeral per-page AST JSON files, deletable"). A write
// failure here is never fatal to the page's analysis — it's logged and
// dropped. The page name is stamped into the dumped JSON with sjson
// rather than round-tripped through ast.Document, since that's the one
// field this layer adds that the document itself doesn't carry.
func dumpIntermediateAST(intermediateDir, page string, doc *ast.Document) {
	data, err := doc.MarshalJSON()
	if err != nil {
		diagnostics.Warnf("pipeline", "intermediate-data marshal error for %s: %v", page, err)
		return
	}
	if stamped, serr := sjson.SetBytes(data, "_page", page); serr == nil {
		data = stamped
	}

	dest := filepath.Join(intermediateDir, page+".json")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		diagnostics.Warnf("pipeline", "intermediate-data dir error for %s: %v", page, err)
		return
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		diagnostics.Warnf("pipeline", "intermediate-data write error for %s: %v", page, err)
	}
}
