package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/taintmini/taintmini/pkg/ast"
	"github.com/taintmini/taintmini/pkg/astcache"
	"github.com/taintmini/taintmini/pkg/cfg"
	"github.com/taintmini/taintmini/pkg/config"
	"github.com/taintmini/taintmini/pkg/dataflow"
	"github.com/taintmini/taintmini/pkg/diagnostics"
	"github.com/taintmini/taintmini/pkg/interpage"
	"github.com/taintmini/taintmini/pkg/markup"
	"github.com/taintmini/taintmini/pkg/report"
	"github.com/taintmini/taintmini/pkg/taint"
	"github.com/taintmini/taintmini/pkg/value"
)

// Bounding knobs, spec.md §5 table.
const (
	PageTimeout = 600 * time.Second
	MemoryCap   = 20 << 30 // 20 GB, spec.md §5
)

// Options configures one Run (spec.md §6 CLI flags).
type Options struct {
	Input  string
	Output string
	Config string
	Jobs   int
	Bench  bool
}

// Run is the CLI-facing entry point: it resolves Options.Input into one
// or more mini-program app directories (spec.md §6's two input modes)
// and analyzes each in turn. A returned error always corresponds to an
// I/O setup failure (spec.md §6: "non-zero only on I/O setup
// failures") — a page-level failure never propagates here.
func Run(ctx context.Context, opts Options) error {
	debug.SetMemoryLimit(MemoryCap)

	conf := config.Empty()
	if opts.Config != "" {
		c, err := config.Load(opts.Config)
		if err != nil {
			return err
		}
		conf = c
	}

	apps, err := resolveApps(opts.Input)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		diagnostics.Warnf("pipeline", "no app found")
		return nil
	}

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return fmt.Errorf("pipeline: invalid output path %s: %w", opts.Output, err)
	}

	fs := afs.New()
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = defaultJobs()
	}

	for _, app := range apps {
		if err := runApp(ctx, fs, app, opts.Output, conf, jobs, opts.Bench); err != nil {
			diagnostics.Warnf("pipeline", "critical error analyzing %s: %v", app, err)
		}
	}
	return nil
}

// pageOutcome is one finished page's accumulated work, handed to the
// writer/accumulator goroutine over the outcomes channel.
type pageOutcome struct {
	page     string
	results  []taint.Result
	events   []taint.Event
	start    int64
	end      int64
	timedOut bool
}

// runApp analyzes every page of one mini-program directory and writes
// its three output CSVs (spec.md §5's two-listener, worker-pool
// shape, realized over goroutines and channels instead of processes).
func runApp(ctx context.Context, fs afs.Service, appPath, outputDir string, conf *config.Config, jobs int, bench bool) error {
	pages, err := DiscoverPages(ctx, fs, appPath)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		diagnostics.Warnf("pipeline", "no page found")
		return nil
	}

	basename := filepath.Base(filepath.Clean(appPath))

	runID := uuid.New().String()
	intermediateDir := filepath.Join(outputDir, "intermediate-data", runID)
	if err := os.MkdirAll(intermediateDir, 0o755); err != nil {
		return fmt.Errorf("pipeline: create intermediate dir: %w", err)
	}

	cache, err := astcache.Open(filepath.Join(outputDir, "intermediate-data", "ast-cache.sqlite"))
	if err != nil {
		return err
	}
	defer cache.Close()

	resultWriter, err := report.NewResultWriter(outputDir, basename)
	if err != nil {
		return err
	}
	defer resultWriter.Close()

	var benchWriter *report.BenchWriter
	if bench {
		benchWriter, err = report.NewBenchWriter(outputDir, basename)
		if err != nil {
			return err
		}
		defer benchWriter.Close()
	}

	outcomes := make(chan pageOutcome, len(pages))
	writerDone := make(chan struct{})
	var allEvents []interpage.PageEvents
	go func() {
		defer close(writerDone)
		for oc := range outcomes {
			if werr := resultWriter.WritePage(oc.page, oc.results); werr != nil {
				diagnostics.Warnf("pipeline", "result write error for %s: %v", oc.page, werr)
			}
			allEvents = append(allEvents, interpage.PageEvents{Page: oc.page, Events: oc.events})
			if benchWriter != nil {
				if berr := benchWriter.WriteRow(oc.page, oc.start, oc.end, oc.timedOut); berr != nil {
					diagnostics.Warnf("pipeline", "bench write error for %s: %v", oc.page, berr)
				}
			}
		}
	}()

	sem := make(chan struct{}, jobs)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pages {
		p := p
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			oc := analyzePage(gctx, fs, cache, p, conf, intermediateDir)
			outcomes <- oc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		diagnostics.Warnf("pipeline", "worker error in %s: %v", appPath, err)
	}
	close(outcomes)
	<-writerDone

	recs := interpage.Stitch(allEvents)
	interPageWriter, err := report.NewInterPageWriter(outputDir, basename)
	if err != nil {
		return err
	}
	defer interPageWriter.Close()
	return interPageWriter.WriteRecords(recs)
}

// analyzePage runs the full single-page pipeline (parse, build graph,
// control flow, data flow, markup tagging, taint resolution) and never
// returns an error: every failure mode of spec.md §7 degrades to an
// empty pageOutcome instead, so a worker crash or build timeout never
// takes down the pool.
func analyzePage(ctx context.Context, fs afs.Service, cache *astcache.Cache, p Page, conf *config.Config, intermediateDir string) (oc pageOutcome) {
	start := time.Now().Unix()
	oc = pageOutcome{page: p.Name, start: start}
	defer func() {
		if r := recover(); r != nil {
			diagnostics.Warnf("pipeline", "worker crash for %s: %v", p.Name, r)
			oc = pageOutcome{page: p.Name, start: start, end: time.Now().Unix()}
		}
	}()

	source, err := fs.DownloadWithURL(ctx, p.ScriptURL)
	if err != nil {
		diagnostics.Warnf("pipeline", "parse failure (unreadable script) for %s: %v", p.Name, err)
		oc.end = time.Now().Unix()
		return oc
	}

	doc, err := cache.Parse(source)
	if err != nil {
		diagnostics.Warnf("pipeline", "parse failure for %s: %v", p.Name, err)
		oc.end = time.Now().Unix()
		return oc
	}

	dumpIntermediateAST(intermediateDir, p.Name, doc)

	g, root := ast.Build(doc)
	cfg.Build(g, root)

	if bindings, berr := loadFormBindings(ctx, fs, p.MarkupURL); berr == nil {
		markup.Apply(g, root, bindings)
	}

	pageCtx, cancel := context.WithTimeout(ctx, PageTimeout)
	defer cancel()

	eng := dataflow.New(pageCtx, g)
	if rerr := eng.Run(root); rerr != nil {
		oc.timedOut = rerr == dataflow.ErrBuildTimeout
		diagnostics.Warnf("pipeline", "build timeout or evaluation error for %s: %v", p.Name, rerr)
		oc.end = time.Now().Unix()
		return oc
	}

	eval := value.NewEvaluator(g)
	resolver := taint.New(g, eval, conf)
	results, events := resolver.Resolve(root)

	oc.results = results
	oc.events = events
	oc.end = time.Now().Unix()
	return oc
}

// loadFormBindings downloads and parses a page's markup file into
// pkg/markup.FormBinding records.
func loadFormBindings(ctx context.Context, fs afs.Service, markupURL string) ([]markup.FormBinding, error) {
	raw, err := fs.DownloadWithURL(ctx, markupURL)
	if err != nil {
		return nil, err
	}
	return markup.Extract(bytes.NewReader(raw))
}

func defaultJobs() int {
	return runtime.NumCPU()
}
