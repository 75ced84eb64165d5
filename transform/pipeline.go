package transform

import (
	"pegc/graph"

	"github.com/tliron/commonlog"
)

// Settings mirrors original_source's CompilerSettings: which optional
// rewrite stages run. Trim, Sort and debug symbol inference always run;
// they're structural cleanup, not optimizations a caller would ever want to
// skip.
type Settings struct {
	MergeSeries    bool
	CacheInsertion bool
}

// Normal returns the settings a production compile uses: every optional
// stage on.
func Normal() Settings {
	return Settings{MergeSeries: true, CacheInsertion: true}
}

var log = commonlog.GetLogger("pegc.transform")

// Run applies the whole rewrite pipeline to p in place: trim and sort to
// give the graph a canonical shape, resolve delegates and optionally fold
// series as a first approximation, run the full normalize worklist to push
// those and eight further rewrites to a fixed point, deduplicate, optionally
// insert and assign cache points, infer debug symbols for anything a
// rewrite introduced, and sort once more so the result reads depth-first
// from the start instruction.
//
// Grounded on original_source/src/core/transformation/mod.rs's
// Parser::transform, extended with the cache_insertion/debug_symbol_inference
// stages that revision's transform() doesn't call directly but spec.md's
// data-flow row (§2) requires between dedup and the final sort.
func Run(p *graph.Parser, settings Settings) {
	log.Info("trim")
	Trim(p)
	log.Info("sort")
	Sort(p)

	log.Info("resolve-delegates")
	ResolveDelegates(p)

	if settings.MergeSeries {
		log.Info("merge-series")
		MergeSeries(p)
	}

	log.Info("normalize")
	Normalize(p, settings)

	log.Info("deduplicate")
	Deduplicate(p)

	if settings.CacheInsertion {
		log.Info("insert-cache-points")
		InsertCachePoints(p)
		log.Info("assign-cache-ids")
		AssignCacheIDs(p)
	}

	log.Info("infer-debug-symbols")
	InferDebugSymbols(p)

	log.Info("sort")
	Sort(p)
}
