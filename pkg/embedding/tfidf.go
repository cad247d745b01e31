// ABOUTME: Frozen TF-IDF embedding model for query and section encoding
// ABOUTME: Vocabulary and IDF weights are fitted offline and gob persisted

package embedding

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Model is a TF-IDF vectorizer whose vocabulary and IDF weights were fitted
// over the SOP corpus by the offline indexer. At serving time it only
// encodes: text containing no vocabulary term embeds to the zero vector.
type Model struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
}

// Fit builds a model from the corpus: one vocabulary slot per distinct
// term, with smoothed IDF weights. Indexer and test use only.
func Fit(corpus []string) (*Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, errors.New("no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	// Stable vocabulary ordering so refitting the same corpus reproduces
	// the same vector layout.
	sort.Strings(terms)

	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		dimension:  len(terms),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return m, nil
}

// Dimension returns the dimensionality of produced vectors.
func (m *Model) Dimension() int {
	return m.dimension
}

// Embed encodes text as an L2-normalized TF-IDF vector. Unknown-only or
// empty input yields the zero vector.
func (m *Model) Embed(text string) []float32 {
	vec := make([]float32, m.dimension)

	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	var norm float64
	for idx, count := range tf {
		v := float64(count) / float64(total) * m.idf[idx]
		vec[idx] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range tf {
			vec[idx] /= float32(norm)
		}
	}
	return vec
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

type payload struct {
	Vocabulary map[string]int
	IDF        []float64
	Dimension  int
}

// GobEncode implements gob.GobEncoder.
func (m *Model) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(payload{
		Vocabulary: m.vocabulary,
		IDF:        m.idf,
		Dimension:  m.dimension,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (m *Model) GobDecode(data []byte) error {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return err
	}
	m.vocabulary = p.Vocabulary
	m.idf = p.IDF
	m.dimension = p.Dimension
	return nil
}

// Load reads a gob-encoded model from path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading embedding model: %w", err)
	}
	defer f.Close()

	m := &Model{}
	if err := gob.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("decoding embedding model: %w", err)
	}
	return m, nil
}

// Save writes the gob-encoded model to path. Indexer and test use only.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m)
}
