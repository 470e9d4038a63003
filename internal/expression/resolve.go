package expression

import "expdb/internal/table"

// Resolution is the outcome of a multi-identifier query.
//
// Genes carries one group per matched gene. Group order is unspecified:
// callers must treat Genes as a set. The current implementation happens to
// emit gene-matched groups in table order followed by transcript-matched
// groups in table order.
type Resolution struct {
	Genes    []GeneGroup
	NotFound *NotFound
}

// TranscriptCount returns the number of transcripts across all groups.
func (r Resolution) TranscriptCount() int {
	n := 0
	for _, g := range r.Genes {
		n += len(g.Transcripts)
	}
	return n
}

// Resolve matches ids against t and extracts the requested value columns.
//
// Identifiers are deduplicated and classified with Classify. Gene-like ids
// match every row whose id_gen equals the id; transcript-like ids match the
// first row whose id_transcript equals the id, unless that transcript was
// already emitted through its gene. Transcripts matched individually are
// grouped under their row's id_gen, so each gene appears at most once and no
// transcript appears twice. Older deployments emitted one group per
// individually matched transcript; for ids "g1.t1" and "g1.t2" they reported
// two genes where Resolve reports one group holding both transcripts.
//
// Errors: *SchemaError when the identifier columns are missing,
// *UnknownColumnError when any requested column is absent, *NoMatchError when
// nothing matched. Unmatched identifiers alongside at least one match are
// reported in Resolution.NotFound instead.
func Resolve(t *table.Table, ids, columns []string) (Resolution, error) {
	if err := Validate(t, GeneColumns()); err != nil {
		return Resolution{}, err
	}
	columns = dedupe(columns)
	colIndex := make([]int, len(columns))
	var unknown []string
	for i, col := range columns {
		j, ok := t.Index(col)
		if !ok {
			unknown = append(unknown, col)
			continue
		}
		colIndex[i] = j
	}
	if len(unknown) > 0 {
		return Resolution{}, &UnknownColumnError{Columns: unknown}
	}

	ids = dedupe(ids)
	geneIDs, txIDs := Classify(ids)
	wantGene := toSet(geneIDs)
	wantTx := toSet(txIDs)

	geneCol, _ := t.Index(ColumnGene)
	txCol, _ := t.Index(ColumnTranscript)

	var groups []GeneGroup
	groupOf := make(map[string]int)
	seen := make(map[string]struct{})
	txFirstRow := make(map[string]int)
	var txOrder []string

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		gene, tx := row[geneCol], row[txCol]
		if _, ok := wantGene[gene]; ok {
			gi, exists := groupOf[gene]
			if !exists {
				gi = len(groups)
				groupOf[gene] = gi
				groups = append(groups, GeneGroup{ID: gene})
			}
			groups[gi].Transcripts = append(groups[gi].Transcripts, Transcript{ID: tx, Expression: expressionFor(row, columns, colIndex)})
			seen[tx] = struct{}{}
		}
		if _, ok := wantTx[tx]; ok {
			if _, recorded := txFirstRow[tx]; !recorded {
				txFirstRow[tx] = i
				txOrder = append(txOrder, tx)
			}
		}
	}

	txGroupOf := make(map[string]int)
	for _, tx := range txOrder {
		if _, ok := seen[tx]; ok {
			continue
		}
		row := t.Row(txFirstRow[tx])
		gene := row[geneCol]
		gi, exists := txGroupOf[gene]
		if !exists {
			gi = len(groups)
			txGroupOf[gene] = gi
			groups = append(groups, GeneGroup{ID: gene})
		}
		groups[gi].Transcripts = append(groups[gi].Transcripts, Transcript{ID: tx, Expression: expressionFor(row, columns, colIndex)})
		seen[tx] = struct{}{}
	}

	if len(groups) == 0 {
		return Resolution{}, &NoMatchError{IDs: ids}
	}

	var report NotFound
	for _, g := range geneIDs {
		if _, ok := groupOf[g]; !ok {
			report.Genes = append(report.Genes, g)
		}
	}
	for _, tx := range txIDs {
		if _, ok := txFirstRow[tx]; !ok {
			report.Transcripts = append(report.Transcripts, tx)
		}
	}
	res := Resolution{Genes: groups}
	if !report.Empty() {
		res.NotFound = &report
	}
	return res, nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
