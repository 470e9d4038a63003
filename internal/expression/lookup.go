package expression

import "expdb/internal/table"

// LookupGene returns every row of t whose id_gen equals geneID, with all
// non-identifier columns as conditions in table order.
func LookupGene(t *table.Table, geneID string) (GeneGroup, error) {
	if err := Validate(t, GeneColumns()); err != nil {
		return GeneGroup{}, err
	}
	var columns []string
	var index []int
	for i, col := range t.Columns() {
		if isIdentifierColumn(col) {
			continue
		}
		columns = append(columns, col)
		index = append(index, i)
	}
	geneCol, _ := t.Index(ColumnGene)
	txCol, _ := t.Index(ColumnTranscript)

	group := GeneGroup{ID: geneID}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if row[geneCol] != geneID {
			continue
		}
		group.Transcripts = append(group.Transcripts, Transcript{ID: row[txCol], Expression: expressionFor(row, columns, index)})
	}
	if len(group.Transcripts) == 0 {
		return GeneGroup{}, &NotFoundError{ID: geneID}
	}
	return group, nil
}
