// ABOUTME: Document table data model for indexed SOP sections
// ABOUTME: Defines the per-position record emitted by the offline indexer

package document

// Record describes one indexed SOP section. The offline indexer writes
// records in corpus order: record i corresponds to row i of the lexical
// index and row i of the vector index. That alignment is fixed at build
// time and is never re-derived here.
type Record struct {
	SectionID   string `json:"section_id"`
	SectionName string `json:"section_name"`
	Title       string `json:"title"`
	SOP         string `json:"sop,omitempty"`
}
