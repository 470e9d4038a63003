package expression

import (
	"bytes"
	"encoding/json"

	"expdb/internal/table"
)

// Information is the descriptive record of one sample column.
type Information struct {
	Organism          string `json:"organism"`
	Cultivar          string `json:"cultivar"`
	Genotype          string `json:"genotype"`
	TissueOrgan       string `json:"tissue_organ"`
	Treatment         string `json:"treatment"`
	Inocula           string `json:"inocula"`
	TimePostTreatment string `json:"time_post_treatment"`
	AdditionalInfo    string `json:"additional_info"`
	Reference         string `json:"reference"`
	DOI               string `json:"doi"`
}

// MetadataEntry wraps an Information record as it appears in responses.
type MetadataEntry struct {
	Information Information `json:"information"`
}

// Metadata maps sample column names to their descriptions, preserving the
// order in which keys were first seen. It encodes as a JSON object.
type Metadata struct {
	keys    []string
	entries map[string]MetadataEntry
}

// NewMetadata returns an empty mapping.
func NewMetadata() *Metadata {
	return &Metadata{entries: make(map[string]MetadataEntry)}
}

// Set stores entry under key. Re-setting a key replaces its value but keeps
// its original position.
func (m *Metadata) Set(key string, entry MetadataEntry) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = entry
}

// Get returns the entry for key.
func (m *Metadata) Get(key string) (MetadataEntry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Keys returns keys in first-seen order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of distinct keys.
func (m *Metadata) Len() int { return len(m.keys) }

// MarshalJSON implements json.Marshaler, writing keys in first-seen order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResolveMetadata folds the rows of t into a Metadata mapping keyed by the
// "column" cell. Later rows with a duplicate key overwrite earlier ones.
// It fails only with *SchemaError.
func ResolveMetadata(t *table.Table) (*Metadata, error) {
	if err := Validate(t, MetadataColumns()); err != nil {
		return nil, err
	}
	out := NewMetadata()
	for i := 0; i < t.Len(); i++ {
		out.Set(t.Cell(i, MetadataKeyColumn), MetadataEntry{Information: Information{
			Organism:          t.Cell(i, "organism"),
			Cultivar:          t.Cell(i, "cultivar"),
			Genotype:          t.Cell(i, "genotype"),
			TissueOrgan:       t.Cell(i, "tissue_organ"),
			Treatment:         t.Cell(i, "treatment"),
			Inocula:           t.Cell(i, "inocula"),
			TimePostTreatment: t.Cell(i, "time_post_treatment"),
			AdditionalInfo:    t.Cell(i, "additional_info"),
			Reference:         t.Cell(i, "reference"),
			DOI:               t.Cell(i, "doi"),
		}})
	}
	return out, nil
}
