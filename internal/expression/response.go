package expression

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"expdb/internal/table"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation names the query kind an envelope answers.
type Operation string

const (
	OperationGene     Operation = "gene"
	OperationGeneIDs  Operation = "gene_ids"
	OperationMetadata Operation = "metadata"
)

// Envelope is the response body shared by every operation.
type Envelope struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Result   any       `json:"result,omitempty"`
	NotFound *NotFound `json:"not_found,omitempty"`
}

// GeneResult is the payload of a successful single-gene lookup.
type GeneResult struct {
	ID          string       `json:"id"`
	Transcripts []Transcript `json:"transcripts"`
}

const contactSuffix = "Please try again later or contact an administrator."

var (
	msgDatasetNotFound   = "The requested file was not found. " + contactSuffix
	msgDatasetUnreadable = "An error occurred while reading the dataset data. " + contactSuffix
	msgSchema            = "The file is missing required columns. " + contactSuffix
	msgGeneSchema        = "The dataset is missing required gene columns. " + contactSuffix
	msgNoMatch           = "No matching gene or transcript IDs were found in the dataset."
	msgMetadataFound     = "Descriptive information about the dataset was found."
)

// Failure maps err to an error envelope and HTTP status code.
func Failure(op Operation, err error) (Envelope, int) {
	var (
		missing  *MissingParameterError
		schema   *SchemaError
		unknown  *UnknownColumnError
		noMatch  *NoMatchError
		notFound *NotFoundError
	)
	switch {
	case errors.As(err, &missing):
		return errorEnvelope(missing.Message), http.StatusBadRequest
	case errors.Is(err, table.ErrNotFound):
		return errorEnvelope(msgDatasetNotFound), http.StatusNotFound
	case errors.As(err, &unknown):
		return errorEnvelope(fmt.Sprintf("The following requested columns do not exist in the dataset: %s. %s",
			strings.Join(unknown.Columns, ", "), contactSuffix)), http.StatusBadRequest
	case errors.As(err, &schema):
		if op == OperationGeneIDs {
			return errorEnvelope(msgGeneSchema), http.StatusInternalServerError
		}
		return errorEnvelope(msgSchema), http.StatusInternalServerError
	case errors.As(err, &noMatch):
		return errorEnvelope(msgNoMatch), http.StatusNotFound
	case errors.As(err, &notFound):
		return errorEnvelope(fmt.Sprintf("id='%s' not found in the dataset.", notFound.ID)), http.StatusNotFound
	default:
		// table.ErrUnreadable and anything unexpected from the load path.
		return errorEnvelope(msgDatasetUnreadable), http.StatusInternalServerError
	}
}

// GeneSuccess builds the envelope for a single-gene lookup.
func GeneSuccess(group GeneGroup) (Envelope, int) {
	return Envelope{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Found %d transcript(s) for id='%s'.", len(group.Transcripts), group.ID),
		Result:  GeneResult{ID: group.ID, Transcripts: group.Transcripts},
	}, http.StatusOK
}

// GeneIDsSuccess builds the envelope for a multi-identifier query. A
// not_found report is attached only when something was unmatched.
func GeneIDsSuccess(res Resolution) (Envelope, int) {
	msg := fmt.Sprintf("Found %d transcript(s) across %d gene(s)", res.TranscriptCount(), len(res.Genes))
	env := Envelope{Status: StatusSuccess, Result: res.Genes}
	if res.NotFound != nil && !res.NotFound.Empty() {
		env.Message = msg + "; some IDs were not found."
		env.NotFound = res.NotFound
	} else {
		env.Message = msg + "."
	}
	return env, http.StatusOK
}

// MetadataSuccess builds the envelope for a metadata query.
func MetadataSuccess(md *Metadata) (Envelope, int) {
	return Envelope{Status: StatusSuccess, Message: msgMetadataFound, Result: md}, http.StatusOK
}

func errorEnvelope(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}
