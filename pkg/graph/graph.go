// ABOUTME: Directed context graph of SOP sections with related-section edges
// ABOUTME: Node attribute lookup and successor traversal, gob persisted

package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Node holds the attributes attached to a section in the context graph.
// Any field may be empty; the indexer carries attributes through verbatim.
type Node struct {
	Text    string
	Title   string
	SOP     string
	Section string
}

// Graph is a directed graph keyed by section id. Edges point from a section
// to its related or successor sections and drive context expansion during
// retrieval. Not every document-table record has a node here.
type Graph struct {
	nodes map[string]Node
	edges map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string][]string),
	}
}

// AddNode inserts or replaces the node for a section id.
func (g *Graph) AddNode(sectionID string, node Node) {
	g.nodes[sectionID] = node
}

// AddEdge appends a directed edge. Both endpoints should already exist as
// nodes; the graph does not create them implicitly.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the attributes for a section id. A missing node is a normal
// outcome, reported through the boolean rather than an error.
func (g *Graph) Node(sectionID string) (Node, bool) {
	n, ok := g.nodes[sectionID]
	return n, ok
}

// Successors returns the outgoing neighbor ids of a section in insertion
// order. A section with no node or no edges yields nil.
func (g *Graph) Successors(sectionID string) []string {
	return g.edges[sectionID]
}

type payload struct {
	Nodes map[string]Node
	Edges map[string][]string
}

// GobEncode implements gob.GobEncoder.
func (g *Graph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload{Nodes: g.nodes, Edges: g.edges}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Graph) GobDecode(data []byte) error {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return err
	}
	g.nodes = p.Nodes
	g.edges = p.Edges
	if g.nodes == nil {
		g.nodes = make(map[string]Node)
	}
	if g.edges == nil {
		g.edges = make(map[string][]string)
	}
	return nil
}

// Load reads a gob-encoded graph from path.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading context graph: %w", err)
	}
	defer f.Close()

	g := New()
	if err := gob.NewDecoder(f).Decode(g); err != nil {
		return nil, fmt.Errorf("decoding context graph: %w", err)
	}
	return g, nil
}

// Save writes the gob-encoded graph to path. Indexer and test use only.
func (g *Graph) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(g)
}
