// Package importer implements the three-phase import pipeline: scan &
// graph build, reference resolution, and commit in dependency order.
// It is the orchestrator the watcher and the CLI both drive, built on
// the same one-struct-calls-many-services dispatch style the entity
// services are aggregated under, extended here into an explicit
// multi-phase pipeline since a single entity persisted directly has no
// multi-file, dependency-ordered commit concept of its own.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/menucost/engine/internal/graph"
	"github.com/menucost/engine/internal/importerr"
	"github.com/menucost/engine/internal/resolve"
	"github.com/menucost/engine/internal/service"
)

// FileError is one per-file failure, per §7's user-visible
// {file, kind, message} shape.
type FileError struct {
	File    string
	Kind    string
	Message string
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
}

// Stats accumulates the outcome counts of one import invocation.
type Stats struct {
	Created  int
	Upserted int
	Ignored  int
	Failed   int
}

// Options configures one Run.
type Options struct {
	// FailFast aborts on the first per-file error instead of collecting
	// it and continuing.
	FailFast bool
	// ImportOnly stops after phase 2 and returns the resolved payloads
	// instead of committing them.
	ImportOnly bool
	// ProjectRoot is the base directory @/ references resolve against.
	ProjectRoot string
	// Processors is the object-kind dispatch table entity services
	// register themselves under ("supplier", "ingredient", "recipe").
	Processors map[string]service.Processor
}

// Result is the outcome of one Run.
type Result struct {
	Stats     Stats
	Resolved  map[string]map[string]any
	Errors    []FileError
	SlugPaths map[string]string
}

// Pipeline is the three-phase import orchestrator of §4.4. Its graph,
// documents, statistics and errors accumulate across Run calls;
// ImportPath clears them before each call, so one Pipeline can serve
// every watcher-driven import.
type Pipeline struct {
	opts Options
	log  zerolog.Logger

	graph     *graph.Graph
	docs      map[string]*parsedFile // canonical path -> parsed file
	nodeFiles map[graph.Node]*parsedFile

	stats  Stats
	errors []FileError
}

// New builds a Pipeline ready for Run.
func New(opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		opts:      opts,
		log:       log.With().Str("component", "importer").Logger(),
		graph:     graph.New(),
		docs:      make(map[string]*parsedFile),
		nodeFiles: make(map[graph.Node]*parsedFile),
	}
}

// ImportPath satisfies watcher.Importer: a single-file importOnly run
// (phases 1–2, nothing persisted) used by the file watcher's
// importOnly-over-one-path step (§4.7.3). It resets the pipeline's
// per-run state first, so earlier calls do not affect the result.
func (p *Pipeline) ImportPath(ctx context.Context, path string) (string, error) {
	p.opts.ImportOnly = true
	p.graph = graph.New()
	p.docs = make(map[string]*parsedFile)
	p.nodeFiles = make(map[graph.Node]*parsedFile)
	p.stats = Stats{}
	p.errors = nil
	result, err := p.Run(ctx, []string{path})
	if err != nil {
		return "", err
	}
	if len(result.Errors) > 0 {
		return "", result.Errors[0]
	}
	doc, ok := p.docs[filepath.Clean(path)]
	if !ok {
		return "", importerr.Malformed("%q was not imported", path)
	}
	return doc.slug, nil
}

// Run executes phases 1–3 (or 1–2 when ImportOnly is set) over files.
func (p *Pipeline) Run(ctx context.Context, files []string) (Result, error) {
	if err := p.scan(ctx, files); err != nil {
		return p.result(), err
	}

	if err := p.graph.DetectCycle(); err != nil {
		return p.result(), err
	}

	order := p.graph.TopoOrder()
	resolved := p.resolveAll(order)

	result := p.result()
	result.Resolved = resolved

	if p.opts.ImportOnly {
		return result, nil
	}

	p.commit(ctx, order, resolved, &result)
	return result, nil
}

// PathForSlug satisfies service.SlugLookup, letting a processor report
// MissingDependency with the path a referent slug was committed under.
func (p *Pipeline) PathForSlug(slug string) (string, bool) {
	for _, doc := range p.docs {
		if doc.slug == slug {
			return doc.path, true
		}
	}
	return "", false
}

func (p *Pipeline) result() Result {
	slugPaths := make(map[string]string, len(p.docs))
	for path, doc := range p.docs {
		slugPaths[doc.slug] = path
	}
	return Result{Stats: p.stats, Errors: p.errors, SlugPaths: slugPaths}
}

// scan is phase 1: read, parse, validate, derive a slug, register the
// file's graph node, and recursively follow every path-style reference
// it carries so a referenced-but-not-passed-in file is pulled into the
// batch too. Symbolic slug: references are left unresolved here — per
// §4.4 they add no edge, since their referent may already be persisted
// rather than part of this invocation.
func (p *Pipeline) scan(ctx context.Context, files []string) error {
	type pendingEdge struct {
		fromPath string
		toPath   string
	}
	var pending []pendingEdge

	queue := make([]string, 0, len(files))
	for _, f := range files {
		queue = append(queue, filepath.Clean(f))
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path := queue[0]
		queue = queue[1:]
		if _, ok := p.docs[path]; ok {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if !p.recordError(path, importerr.ErrInputMalformed, err.Error()) {
				return err
			}
			continue
		}

		doc, err := decodeFile(path, content)
		if err != nil {
			if !p.recordError(path, importerr.ErrInputMalformed, err.Error()) {
				return err
			}
			continue
		}

		p.docs[path] = doc
		p.graph.AddNode(doc.node())
		p.nodeFiles[doc.node()] = doc

		for _, ref := range doc.references() {
			parsed, err := resolve.Resolve(ref.raw, p.opts.ProjectRoot, doc.dir, doc.ext)
			if err != nil {
				if !p.recordError(path, importerr.ErrInputMalformed, err.Error()) {
					return err
				}
				continue
			}
			if parsed.Kind == resolve.KindPath {
				queue = append(queue, parsed.Value)
				pending = append(pending, pendingEdge{fromPath: path, toPath: parsed.Value})
			}
		}
	}

	for _, pe := range pending {
		fromDoc := p.docs[pe.fromPath]
		toDoc, ok := p.docs[pe.toPath]
		if !ok {
			msg := fmt.Sprintf("reference to %q did not resolve to a known file", pe.toPath)
			if !p.recordError(pe.fromPath, importerr.ErrReferenceUnresolved, msg) {
				return importerr.Unresolved("%s", msg)
			}
			continue
		}
		p.graph.SetDependency(fromDoc.node(), toDoc.node())
	}

	return nil
}

// recordError records a phase-1 (scan) failure. A file that cannot be
// read or decoded never enters the graph; a reference that fails to
// resolve is recorded against a file that stays in the graph and is
// still committed in phase 3. Either way the error is surfaced through
// Result.Errors and does not count toward Stats.Failed, which only
// counts phase-3 failures (created + upserted + ignored + failed ==
// phase-1 successes).
func (p *Pipeline) recordError(file string, kind error, message string) bool {
	p.errors = append(p.errors, FileError{File: file, Kind: kind.Error(), Message: message})
	return !p.opts.FailFast
}

// commit is phase 3: invoke the registered processor for each file in
// dependency order, accumulating statistics and suppressing repeat
// commits of the same path within this Run.
func (p *Pipeline) commit(ctx context.Context, order []graph.Node, resolved map[string]map[string]any, result *Result) {
	committed := make(map[string]bool, len(order))

	for _, node := range order {
		doc, ok := p.nodeFiles[node]
		if !ok || committed[doc.path] {
			continue
		}
		payload, ok := resolved[doc.path]
		if !ok {
			continue
		}

		proc, ok := p.opts.Processors[doc.object]
		if !ok {
			p.errors = append(p.errors, FileError{File: doc.path, Kind: importerr.ErrInputMalformed.Error(), Message: fmt.Sprintf("no processor registered for object %q", doc.object)})
			p.stats.Failed++
			if p.opts.FailFast {
				break
			}
			continue
		}

		classification, err := proc(ctx, payload, doc.path, p)
		if err != nil {
			p.errors = append(p.errors, FileError{File: doc.path, Kind: classifyError(err), Message: err.Error()})
			p.stats.Failed++
			if p.opts.FailFast {
				break
			}
			continue
		}

		committed[doc.path] = true
		switch classification {
		case service.ClassificationCreated:
			p.stats.Created++
		case service.ClassificationUpserted:
			p.stats.Upserted++
		case service.ClassificationIgnored:
			p.stats.Ignored++
		}
	}

	result.Stats = p.stats
	result.Errors = p.errors
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, importerr.ErrMissingDependency):
		return "MissingDependency"
	case errors.Is(err, importerr.ErrImmutableField):
		return "ImmutableField"
	case errors.Is(err, importerr.ErrInvariantViolation):
		return "InvariantViolation"
	default:
		return "StoreFailure"
	}
}
