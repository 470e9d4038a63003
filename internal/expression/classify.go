package expression

import "regexp"

// transcriptPattern marks identifiers such as "Vitvi01g00010.t1". A gene
// whose own name ends in ".t<digits>" is indistinguishable and is treated as
// a transcript.
var transcriptPattern = regexp.MustCompile(`^.+\.t\d+$`)

// IsTranscriptID reports whether id looks like a transcript identifier.
func IsTranscriptID(id string) bool {
	return transcriptPattern.MatchString(id)
}

// Classify partitions ids into gene-like and transcript-like identifiers,
// preserving input order within each side.
func Classify(ids []string) (genes, transcripts []string) {
	for _, id := range ids {
		if IsTranscriptID(id) {
			transcripts = append(transcripts, id)
		} else {
			genes = append(genes, id)
		}
	}
	return genes, transcripts
}
