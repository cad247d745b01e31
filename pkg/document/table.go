// ABOUTME: Ordered document table with first-wins section lookup
// ABOUTME: Loads the JSON record list written by the offline indexer

package document

import (
	"encoding/json"
	"fmt"
	"os"
)

// Table holds the ordered document records plus a section_id lookup map
// built once at load time. When the indexer emitted duplicate section ids,
// the first record wins: later duplicates never replace an earlier entry.
type Table struct {
	records []Record
	byID    map[string]int
}

// NewTable builds a table from records already in corpus order.
func NewTable(records []Record) *Table {
	t := &Table{
		records: records,
		byID:    make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if _, ok := t.byID[rec.SectionID]; !ok {
			t.byID[rec.SectionID] = i
		}
	}
	return t
}

// Load reads the JSON document table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document table: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding document table: %w", err)
	}
	return NewTable(records), nil
}

// Save writes the record list to path. Used by the offline indexer and by
// test fixtures, never during serving.
func (t *Table) Save(path string) error {
	data, err := json.MarshalIndent(t.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Len returns the number of corpus positions.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns the record at corpus position i.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Lookup resolves a section id to its record with first-entry-wins
// semantics for duplicate ids.
func (t *Table) Lookup(sectionID string) (Record, bool) {
	i, ok := t.byID[sectionID]
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}
