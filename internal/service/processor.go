// Package service implements the entity services for Supplier,
// Ingredient, and Recipe: existence checks, lookups, upserts, deletes,
// and the processor hook the import pipeline dispatches through.
//
// Each service follows the same repo + cache-invalidation + logger
// struct shape with a normalize-then-persist flow, aggregated behind
// one Dependencies/Services pair, generalised to slug-keyed, file-backed,
// processor-dispatching records instead of tenant-scoped CRUD.
package service

import "context"

// Classification is the outcome a processor reports for one imported
// entity, per §4.4's {created, upserted, ignored} result.
type Classification string

const (
	ClassificationCreated  Classification = "created"
	ClassificationUpserted Classification = "upserted"
	ClassificationIgnored  Classification = "ignored"
)

// SlugLookup resolves a slug to the canonical file path it was
// committed under, so a processor can report MissingDependency with
// enough context.
type SlugLookup interface {
	PathForSlug(slug string) (string, bool)
}

// Processor is the pipeline-facing hook each entity service exposes.
// resolvedData is the phase-2 output for one file: a plain map with
// every reference already replaced by its resolved slug. path is the
// file the payload was read from.
type Processor func(ctx context.Context, resolvedData map[string]any, path string, lookup SlugLookup) (Classification, error)
