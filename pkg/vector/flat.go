// ABOUTME: Flat inner-product vector index over normalized embeddings
// ABOUTME: Exhaustive kNN with negative-position padding, gob persisted

package vector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
)

// Candidate is one nearest-neighbor hit. Position addresses the corpus row;
// a negative position marks a padding slot that holds no document (the
// index held fewer than k vectors) and must be skipped by callers.
type Candidate struct {
	Position int
	Score    float64
}

// Flat stores one normalized embedding per corpus position and answers
// k-nearest-neighbor queries by exhaustive inner product. Under L2
// normalization the inner product equals cosine similarity.
type Flat struct {
	dim  int
	rows [][]float32
}

// New creates an empty index for vectors of the given dimensionality.
func New(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dimension returns the vector dimensionality.
func (f *Flat) Dimension() int {
	return f.dim
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.rows)
}

// Add appends a vector at the next corpus position.
func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("vector dimension %d, index dimension %d", len(vec), f.dim)
	}
	f.rows = append(f.rows, vec)
	return nil
}

// Search returns the k highest inner-product matches in descending score
// order. The result always has length k: when fewer vectors exist, the
// tail is padded with Position -1 sentinels.
func (f *Flat) Search(query []float32, k int) []Candidate {
	if k <= 0 {
		return nil
	}

	scored := make([]Candidate, len(f.rows))
	for i, row := range f.rows {
		scored[i] = Candidate{Position: i, Score: dot(row, query)}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	out := make([]Candidate, k)
	for i := range out {
		if i < len(scored) {
			out[i] = scored[i]
		} else {
			out[i] = Candidate{Position: -1}
		}
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales vec to unit L2 length in place. Zero vectors are left
// unchanged.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

type payload struct {
	Dim  int
	Rows [][]float32
}

// GobEncode implements gob.GobEncoder.
func (f *Flat) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload{Dim: f.dim, Rows: f.rows}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (f *Flat) GobDecode(data []byte) error {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return err
	}
	f.dim = p.Dim
	f.rows = p.Rows
	return nil
}

// Load reads a gob-encoded index from path.
func Load(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading vector index: %w", err)
	}
	defer file.Close()

	f := &Flat{}
	if err := gob.NewDecoder(file).Decode(f); err != nil {
		return nil, fmt.Errorf("decoding vector index: %w", err)
	}
	return f, nil
}

// Save writes the gob-encoded index to path. Indexer and test use only.
func (f *Flat) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewEncoder(file).Encode(f)
}
