package datasets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"expdb/internal/expression"
)

const (
	geneIDsPath    = "/expression/gene/ids"
	genePrefix     = "/expression/gene/"
	metadataPrefix = "/expression/metadata/"

	maxBodyBytes = 1 << 20
)

// Querier answers the expression operations. *expression.Service satisfies it.
type Querier interface {
	Gene(ctx context.Context, dataset, geneID string) (expression.Envelope, int)
	GeneIDs(ctx context.Context, q expression.IDsQuery) (expression.Envelope, int)
	Metadata(ctx context.Context, dataset string) (expression.Envelope, int)
}

// Handler provides HTTP access to expression and metadata queries.
type Handler struct {
	Service Querier
}

// NewHandler constructs a dataset HTTP handler.
func NewHandler(q Querier) *Handler {
	return &Handler{Service: q}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "expression service not configured")
		return
	}

	path := r.URL.Path
	switch {
	case strings.TrimSuffix(path, "/") == geneIDsPath:
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleGeneIDs(w, r)
	case strings.HasPrefix(path, genePrefix):
		if !isRead(r.Method) {
			methodNotAllowed(w, readMethods)
			return
		}
		h.handleGene(w, r, strings.TrimPrefix(path, genePrefix))
	case strings.HasPrefix(path, metadataPrefix):
		if !isRead(r.Method) {
			methodNotAllowed(w, readMethods)
			return
		}
		h.handleMetadata(w, r, strings.TrimPrefix(path, metadataPrefix))
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

// handleGene serves GET /expression/gene/{dataset...}/{gene_id}. The dataset
// may itself contain slashes; the gene id is the final segment.
func (h *Handler) handleGene(w http.ResponseWriter, r *http.Request, remainder string) {
	cut := strings.LastIndex(remainder, "/")
	if cut <= 0 || cut == len(remainder)-1 {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	env, code := h.Service.Gene(r.Context(), remainder[:cut], remainder[cut+1:])
	writeJSON(w, code, env)
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request, dataset string) {
	if dataset == "" {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	env, code := h.Service.Metadata(r.Context(), dataset)
	writeJSON(w, code, env)
}

func (h *Handler) handleGeneIDs(w http.ResponseWriter, r *http.Request) {
	q, err := decodeIDsQuery(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	env, code := h.Service.GeneIDs(r.Context(), q)
	writeJSON(w, code, env)
}

// decodeIDsQuery reads the request object field by field. A field of the wrong
// JSON type is left empty so that validation reports it with the same
// message as an absent field. Only a body that is not a JSON object fails.
func decodeIDsQuery(body io.Reader) (expression.IDsQuery, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return expression.IDsQuery{}, err
	}
	var q expression.IDsQuery
	if v, ok := raw["dataset"]; ok {
		_ = json.Unmarshal(v, &q.Dataset)
	}
	if v, ok := raw["gene_ids"]; ok {
		if err := json.Unmarshal(v, &q.GeneIDs); err != nil {
			q.GeneIDs = nil
		}
	}
	if v, ok := raw["columns"]; ok {
		if err := json.Unmarshal(v, &q.Columns); err != nil {
			q.Columns = nil
		}
	}
	return q, nil
}

// readMethods lists the methods accepted on lookup routes. The server drops
// the body of HEAD responses.
const readMethods = http.MethodGet + ", " + http.MethodHead

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, expression.Envelope{Status: expression.StatusError, Message: message})
}
