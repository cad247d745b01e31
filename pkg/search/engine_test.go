// ABOUTME: Tests for the hybrid retrieval engine
// ABOUTME: Verifies fusion, ranking, enrichment gating, and edge cases

package search

import (
	"strings"
	"testing"

	"github.com/nainya/sopmcp/pkg/document"
	"github.com/nainya/sopmcp/pkg/embedding"
	"github.com/nainya/sopmcp/pkg/graph"
	"github.com/nainya/sopmcp/pkg/lexical"
	"github.com/nainya/sopmcp/pkg/vector"
)

// corpusSection is one staged section used to build aligned test artifacts.
type corpusSection struct {
	id   string
	text string
}

var testCorpus = []corpusSection{
	{"SOP-001::SHUTDOWN", "reactor shutdown procedure for operators"},
	{"SOP-001::STARTUP", "reactor startup checklist"},
	{"SOP-002::BADGES", "visitor badge policy and escort rules"},
	{"SOP-002::ESCORT", "escort requirements for visitor access"},
}

func buildTestEngine(t *testing.T, sections []corpusSection) *Engine {
	texts := make([]string, len(sections))
	recs := make([]document.Record, len(sections))
	for i, s := range sections {
		texts[i] = s.text
		recs[i] = document.Record{SectionID: s.id, SOP: strings.SplitN(s.id, "::", 2)[0]}
	}

	model, err := embedding.Fit(texts)
	if err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	lex := lexical.New()
	vec := vector.New(model.Dimension())
	kg := graph.New()
	for i, s := range sections {
		lex.Add(s.text)
		emb := model.Embed(s.text)
		vector.Normalize(emb)
		if err := vec.Add(emb); err != nil {
			t.Fatalf("Failed to add vector: %v", err)
		}
		kg.AddNode(s.id, graph.Node{Text: s.text, SOP: recs[i].SOP})
	}

	return NewEngine(document.NewTable(recs), lex, vec, kg, model)
}

func TestSearchReturnsAtMostK(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	results := e.Search("reactor shutdown", 2)
	if len(results) > 2 {
		t.Fatalf("Expected at most 2 results, got %d", len(results))
	}
	if len(results) == 0 {
		t.Fatalf("Expected results for a matching query")
	}
	if results[0].SectionID != "SOP-001::SHUTDOWN" {
		t.Errorf("Best match should be the shutdown section, got %q", results[0].SectionID)
	}
}

func TestSearchCombinedScoreOrdering(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	results := e.Search("visitor escort", 4)
	for i := 1; i < len(results); i++ {
		prev := denseWeight*results[i-1].Scores.Dense + lexicalWeight*results[i-1].Scores.BM25
		cur := denseWeight*results[i].Scores.Dense + lexicalWeight*results[i].Scores.BM25
		if cur > prev {
			t.Errorf("Results not sorted by combined score at %d: %v > %v", i, cur, prev)
		}
	}
}

func TestSearchFusesBothSignals(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	results := e.Search("reactor shutdown procedure", 4)
	if len(results) == 0 {
		t.Fatalf("Expected results")
	}
	top := results[0]
	if top.Scores.Dense <= 0 {
		t.Errorf("Top result should carry a dense score, got %v", top.Scores.Dense)
	}
	if top.Scores.BM25 <= 0 {
		t.Errorf("Top result should carry a BM25 score, got %v", top.Scores.BM25)
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.SectionID] {
			t.Errorf("Section %q appears more than once in fused results", r.SectionID)
		}
		seen[r.SectionID] = true
	}
}

func TestSearchNonPositiveK(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	results := e.Search("reactor", 0)
	if results == nil {
		t.Fatalf("Expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Errorf("Expected no results for k=0, got %d", len(results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	// No lexical tokens and a zero query vector: results may exist from the
	// dense pass but every score must be zero.
	results := e.Search("", 3)
	for _, r := range results {
		if r.Scores.Dense != 0 || r.Scores.BM25 != 0 {
			t.Errorf("Empty query should not produce positive scores: %+v", r)
		}
	}
}

func TestSearchExcerptTruncation(t *testing.T) {
	long := strings.Repeat("badge policy wording ", 40)
	sections := []corpusSection{
		{"SOP-003::LONG", long},
		{"SOP-003::OTHER", "unrelated maintenance text"},
	}
	e := buildTestEngine(t, sections)

	results := e.Search("badge policy", 1)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	excerpt := []rune(results[0].Excerpt)
	if len(excerpt) != 300 {
		t.Errorf("Expected a 300-rune excerpt, got %d runes", len(excerpt))
	}
	if !strings.HasPrefix(long, results[0].Excerpt) {
		t.Errorf("Excerpt should be a prefix of the section text")
	}
}

func TestSearchNeighborsCapped(t *testing.T) {
	e := buildTestEngine(t, testCorpus)
	kg := e.kg
	kg.AddEdge("SOP-001::SHUTDOWN", "SOP-001::STARTUP")
	kg.AddEdge("SOP-001::SHUTDOWN", "SOP-002::BADGES")
	kg.AddEdge("SOP-001::SHUTDOWN", "SOP-002::ESCORT")
	kg.AddEdge("SOP-001::SHUTDOWN", "SOP-001::SHUTDOWN")

	results := e.Search("reactor shutdown", 1)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	n := results[0].Neighbors
	if len(n) != 3 {
		t.Fatalf("Expected 3 neighbors, got %d", len(n))
	}
	want := []string{"SOP-001::STARTUP", "SOP-002::BADGES", "SOP-002::ESCORT"}
	for i := range want {
		if n[i] != want[i] {
			t.Errorf("Neighbor %d = %q, want %q", i, n[i], want[i])
		}
	}
}

func TestSearchNeighborsNeverNil(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	results := e.Search("reactor shutdown", 1)
	if len(results) == 0 {
		t.Fatalf("Expected results")
	}
	if results[0].Neighbors == nil {
		t.Errorf("Neighbors should be an empty slice, not nil")
	}
}

func TestSearchExcerptRequiresTableRecord(t *testing.T) {
	e := buildTestEngine(t, testCorpus)

	// A graph node with no document-table record: reachable through edges
	// but never enriched with an excerpt.
	entry := &fusedEntry{sectionID: "SOP-009::GHOST", dense: 1.0}
	e.kg.AddNode("SOP-009::GHOST", graph.Node{Text: "orphan text"})

	result := e.enrich(entry)
	if result.Excerpt != "" {
		t.Errorf("Section without a table record should keep an empty excerpt, got %q", result.Excerpt)
	}
}
