// ABOUTME: Hybrid retrieval engine fusing BM25 and dense vector signals
// ABOUTME: Fixed-weight score fusion with graph-based context enrichment

package search

import (
	"sort"
	"strings"

	"github.com/nainya/sopmcp/pkg/document"
	"github.com/nainya/sopmcp/pkg/embedding"
	"github.com/nainya/sopmcp/pkg/graph"
	"github.com/nainya/sopmcp/pkg/lexical"
	"github.com/nainya/sopmcp/pkg/vector"
)

// Fusion policy constants. The weights are a fixed ranking policy carried
// over from the index tuning, not a configuration knob.
const (
	denseWeight   = 0.7
	lexicalWeight = 0.3
	excerptRunes  = 300
	maxNeighbors  = 3
)

// Scores carries the per-signal scores of one result.
type Scores struct {
	Dense float64 `json:"dense"`
	BM25  float64 `json:"bm25"`
}

// Result is one ranked section with its excerpt and graph context.
type Result struct {
	SectionID string   `json:"section_id"`
	Excerpt   string   `json:"excerpt"`
	Scores    Scores   `json:"scores"`
	Neighbors []string `json:"neighbors"`
}

// Engine answers hybrid search queries against the loaded artifacts. All
// referenced structures are read-only; the engine holds no mutable state.
type Engine struct {
	table *document.Table
	lex   *lexical.Index
	vec   *vector.Flat
	kg    *graph.Graph
	model *embedding.Model
}

// NewEngine wires the engine to the loaded resources.
func NewEngine(table *document.Table, lex *lexical.Index, vec *vector.Flat, kg *graph.Graph, model *embedding.Model) *Engine {
	return &Engine{table: table, lex: lex, vec: vec, kg: kg, model: model}
}

// fusedEntry accumulates both signals for one section id.
type fusedEntry struct {
	sectionID string
	dense     float64
	bm25      float64
}

func (e *fusedEntry) combined() float64 {
	return denseWeight*e.dense + lexicalWeight*e.bm25
}

// Search runs the lexical and dense passes, fuses the candidate sets and
// enriches the top k results. k must be positive.
func (e *Engine) Search(query string, k int) []Result {
	if k <= 0 {
		return []Result{}
	}

	var order []*fusedEntry
	byID := make(map[string]*fusedEntry)

	// Dense candidates enter the pool first so that ties on the combined
	// score preserve dense ranking order.
	for _, cand := range e.denseCandidates(query, k) {
		if entry, ok := byID[cand.sectionID]; ok {
			entry.dense = cand.dense
			continue
		}
		entry := &fusedEntry{sectionID: cand.sectionID, dense: cand.dense}
		byID[cand.sectionID] = entry
		order = append(order, entry)
	}

	for _, cand := range e.lexicalCandidates(query, k) {
		if entry, ok := byID[cand.sectionID]; ok {
			entry.bm25 = cand.bm25
			continue
		}
		entry := &fusedEntry{sectionID: cand.sectionID, bm25: cand.bm25}
		byID[cand.sectionID] = entry
		order = append(order, entry)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return order[a].combined() > order[b].combined()
	})
	if len(order) > k {
		order = order[:k]
	}

	results := make([]Result, 0, len(order))
	for _, entry := range order {
		results = append(results, e.enrich(entry))
	}
	return results
}

// lexicalCandidates scores every corpus position and keeps the top k with
// a positive score. The query is tokenized by whitespace only.
func (e *Engine) lexicalCandidates(query string, k int) []*fusedEntry {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}

	scores := e.lex.ScoreAll(tokens)
	positions := make([]int, len(scores))
	for i := range positions {
		positions[i] = i
	}
	sort.SliceStable(positions, func(a, b int) bool {
		return scores[positions[a]] > scores[positions[b]]
	})

	var out []*fusedEntry
	for _, pos := range positions {
		if len(out) >= k || scores[pos] <= 0 {
			break
		}
		out = append(out, &fusedEntry{
			sectionID: e.table.At(pos).SectionID,
			bm25:      scores[pos],
		})
	}
	return out
}

// denseCandidates embeds the query and runs kNN against the vector index,
// dropping padding sentinels.
func (e *Engine) denseCandidates(query string, k int) []*fusedEntry {
	vec := e.model.Embed(query)
	vector.Normalize(vec)

	var out []*fusedEntry
	for _, cand := range e.vec.Search(vec, k) {
		if cand.Position < 0 {
			continue
		}
		out = append(out, &fusedEntry{
			sectionID: e.table.At(cand.Position).SectionID,
			dense:     cand.Score,
		})
	}
	return out
}

// enrich resolves metadata and graph context for one fused entry. Metadata
// resolution is first-match: with duplicate section ids, the first table
// record decides. A section without a table record keeps an empty excerpt
// even when a graph node exists.
func (e *Engine) enrich(entry *fusedEntry) Result {
	excerpt := ""
	if _, ok := e.table.Lookup(entry.sectionID); ok {
		if node, ok := e.kg.Node(entry.sectionID); ok {
			excerpt = truncateRunes(node.Text, excerptRunes)
		}
	}

	neighbors := e.kg.Successors(entry.sectionID)
	if len(neighbors) > maxNeighbors {
		neighbors = neighbors[:maxNeighbors]
	}
	// Copy so results never alias the immutable graph, and marshal as []
	// rather than null when there are no neighbors.
	copied := make([]string, len(neighbors))
	copy(copied, neighbors)

	return Result{
		SectionID: entry.sectionID,
		Excerpt:   excerpt,
		Scores:    Scores{Dense: entry.dense, BM25: entry.bm25},
		Neighbors: copied,
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
