// Package resources loads and owns the immutable retrieval artifacts.
package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nainya/sopmcp/pkg/document"
	"github.com/nainya/sopmcp/pkg/embedding"
	"github.com/nainya/sopmcp/pkg/graph"
	"github.com/nainya/sopmcp/pkg/lexical"
	"github.com/nainya/sopmcp/pkg/vector"
)

// Artifact file names, fixed relative to the index directory. The offline
// indexer writes these; the server only ever reads them.
const (
	DocMetaFile = "doc_meta.json"
	BM25File    = "bm25.gob"
	VectorsFile = "vectors.gob"
	GraphFile   = "kg.gob"
	ModelFile   = "model.gob"
)

// ErrNotBuilt signals that the index directory has never been populated.
var ErrNotBuilt = errors.New("indexes not built: run the offline indexer first")

// Store holds every artifact the handlers read. It is constructed once at
// startup, passed by reference, and never mutated afterwards.
type Store struct {
	Table   *document.Table
	Lexical *lexical.Index
	Vectors *vector.Flat
	Graph   *graph.Graph
	Model   *embedding.Model
}

// Load reads all artifacts from dir in a fixed order. A missing vector
// index means the build step never ran and yields ErrNotBuilt; every other
// failure is wrapped into the same fatal class. The process must not serve
// with partial resources, so there is no partial-success mode.
func Load(dir string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, VectorsFile)); err != nil {
		return nil, fmt.Errorf("%w (missing %s)", ErrNotBuilt, filepath.Join(dir, VectorsFile))
	}

	table, err := document.Load(filepath.Join(dir, DocMetaFile))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	lex, err := lexical.Load(filepath.Join(dir, BM25File))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	vectors, err := vector.Load(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	kg, err := graph.Load(filepath.Join(dir, GraphFile))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	model, err := embedding.Load(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	return &Store{
		Table:   table,
		Lexical: lex,
		Vectors: vectors,
		Graph:   kg,
		Model:   model,
	}, nil
}
