// Package expression resolves gene and transcript identifiers against
// expression dataset tables and shapes the results into response envelopes.
package expression

import (
	"math"
	"strconv"
	"strings"
)

// Expression is one condition column's value for a transcript. Value is nil
// when the cell is blank or not a finite number.
type Expression struct {
	Condition string   `json:"condition"`
	Value     *float64 `json:"value"`
}

// Transcript holds the expression values of one table row.
type Transcript struct {
	ID         string       `json:"transcript_id"`
	Expression []Expression `json:"expression"`
}

// GeneGroup collects the matched transcripts of one gene.
type GeneGroup struct {
	ID          string       `json:"id"`
	Transcripts []Transcript `json:"transcripts"`
}

// NotFound reports requested identifiers that matched nothing.
type NotFound struct {
	Genes       []string `json:"genes,omitempty"`
	Transcripts []string `json:"transcripts,omitempty"`
}

// Empty reports whether nothing is listed.
func (n NotFound) Empty() bool {
	return len(n.Genes) == 0 && len(n.Transcripts) == 0
}

// ParseValue coerces a raw cell to a finite float64. Blank, non-numeric,
// NaN and infinite cells yield nil; it never fails.
func ParseValue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func expressionFor(row []string, columns []string, index []int) []Expression {
	out := make([]Expression, len(columns))
	for i, col := range columns {
		out[i] = Expression{Condition: col, Value: ParseValue(row[index[i]])}
	}
	return out
}
