// ABOUTME: BM25 scorer over the positional SOP corpus
// ABOUTME: Frozen inverted index persisted as a gob artifact

package lexical

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"strings"
)

const (
	k1 = 1.2
	b  = 0.75
)

// Posting records how often a term occurs at one corpus position.
type Posting struct {
	Doc   int32
	Count int32
}

// Index is a positional BM25 index: documents are addressed by their corpus
// position, matching row i of the document table. It is built offline,
// loaded once, and never mutated while serving.
type Index struct {
	inverted    map[string][]Posting
	docLengths  []int32
	totalLength int64
}

// New creates an empty index. Add appends documents in corpus order.
func New() *Index {
	return &Index{inverted: make(map[string][]Posting)}
}

// Add appends a document at the next corpus position.
func (idx *Index) Add(text string) {
	doc := int32(len(idx.docLengths))
	tokens := tokenize(text)

	idx.docLengths = append(idx.docLengths, int32(len(tokens)))
	idx.totalLength += int64(len(tokens))

	tf := make(map[string]int32)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], Posting{Doc: doc, Count: count})
	}
}

// Len returns the number of corpus positions.
func (idx *Index) Len() int {
	return len(idx.docLengths)
}

// ScoreAll computes the BM25 score of every corpus position for the given
// query tokens. Positions sharing no term with the query score zero.
func (idx *Index) ScoreAll(tokens []string) []float64 {
	scores := make([]float64, len(idx.docLengths))
	if len(idx.docLengths) == 0 {
		return scores
	}

	avgDL := float64(idx.totalLength) / float64(len(idx.docLengths))

	for _, raw := range tokens {
		t := strings.ToLower(raw)
		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}

		idf := idx.computeIDF(len(postings))

		for _, p := range postings {
			tf := float64(p.Count)
			docLen := float64(idx.docLengths[p.Doc])

			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[p.Doc] += idf * (num / denom)
		}
	}

	return scores
}

func (idx *Index) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(len(idx.docLengths))
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// payload is the gob wire form of the index.
type payload struct {
	Inverted    map[string][]Posting
	DocLengths  []int32
	TotalLength int64
}

// GobEncode implements gob.GobEncoder.
func (idx *Index) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(payload{
		Inverted:    idx.inverted,
		DocLengths:  idx.docLengths,
		TotalLength: idx.totalLength,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (idx *Index) GobDecode(data []byte) error {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return err
	}
	idx.inverted = p.Inverted
	idx.docLengths = p.DocLengths
	idx.totalLength = p.TotalLength
	if idx.inverted == nil {
		idx.inverted = make(map[string][]Posting)
	}
	return nil
}

// Load reads a gob-encoded index from path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexical index: %w", err)
	}
	defer f.Close()

	idx := New()
	if err := gob.NewDecoder(f).Decode(idx); err != nil {
		return nil, fmt.Errorf("decoding lexical index: %w", err)
	}
	return idx, nil
}

// Save writes the gob-encoded index to path. Indexer and test use only.
func (idx *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(idx)
}
