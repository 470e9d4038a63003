package expression

import "expdb/internal/table"

// Identifier columns every expression dataset carries.
const (
	ColumnGene       = "id_gen"
	ColumnTranscript = "id_transcript"
)

// MetadataKeyColumn keys metadata rows. Some legacy datasets use "library"
// instead; those are not supported.
const MetadataKeyColumn = "column"

// metadataFields is the fixed shape of a metadata information record, in
// output order.
var metadataFields = [...]string{
	"organism",
	"cultivar",
	"genotype",
	"tissue_organ",
	"treatment",
	"inocula",
	"time_post_treatment",
	"additional_info",
	"reference",
	"doi",
}

// GeneColumns returns the columns required by expression queries.
func GeneColumns() []string {
	return []string{ColumnGene, ColumnTranscript}
}

// MetadataColumns returns the columns required by metadata queries.
func MetadataColumns() []string {
	cols := make([]string, 0, len(metadataFields)+1)
	cols = append(cols, MetadataKeyColumn)
	return append(cols, metadataFields[:]...)
}

// Validate fails with *SchemaError when t lacks any required column.
func Validate(t *table.Table, required []string) error {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func isIdentifierColumn(name string) bool {
	return name == ColumnGene || name == ColumnTranscript
}
