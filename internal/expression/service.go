package expression

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"expdb/internal/audit"
	"expdb/internal/observability"
	"expdb/internal/table"
)

// Loader reads a dataset into a table. *table.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, dataset string) (*table.Table, error)
}

// IDsQuery is a multi-identifier request.
type IDsQuery struct {
	Dataset string   `json:"dataset"`
	GeneIDs []string `json:"gene_ids"`
	Columns []string `json:"columns"`
}

// Service answers expression and metadata queries. Every call loads its
// dataset afresh; nothing is cached between calls, so a Service is safe for
// concurrent use as long as its collaborators are.
type Service struct {
	loader  Loader
	metrics observability.Recorder
	audit   audit.Store
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the metrics recorder.
func WithMetrics(r observability.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithAudit sets the audit store. A nil store disables auditing.
func WithAudit(store audit.Store) Option {
	return func(s *Service) { s.audit = store }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service over loader.
func NewService(loader Loader, opts ...Option) *Service {
	s := &Service{
		loader:  loader,
		metrics: observability.Noop{},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gene looks up every transcript of geneID in dataset.
func (s *Service) Gene(ctx context.Context, dataset, geneID string) (Envelope, int) {
	start := s.now()
	env, code, err := s.gene(ctx, dataset, geneID)
	s.finish(ctx, OperationGene, dataset, []string{geneID}, start, env, code, err)
	return env, code
}

func (s *Service) gene(ctx context.Context, dataset, geneID string) (Envelope, int, error) {
	if isBlank(dataset) || isBlank(geneID) {
		err := &MissingParameterError{Field: "dataset/gene_id", Message: "Missing data: gene ID and dataset path are required."}
		env, code := Failure(OperationGene, err)
		return env, code, err
	}
	t, err := s.loader.Load(ctx, dataset)
	if err != nil {
		env, code := Failure(OperationGene, err)
		return env, code, err
	}
	group, err := LookupGene(t, geneID)
	if err != nil {
		env, code := Failure(OperationGene, err)
		return env, code, err
	}
	env, code := GeneSuccess(group)
	return env, code, nil
}

// GeneIDs resolves a set of gene and transcript identifiers.
func (s *Service) GeneIDs(ctx context.Context, q IDsQuery) (Envelope, int) {
	start := s.now()
	env, code, err := s.geneIDs(ctx, q)
	s.finish(ctx, OperationGeneIDs, q.Dataset, q.GeneIDs, start, env, code, err)
	return env, code
}

func (s *Service) geneIDs(ctx context.Context, q IDsQuery) (Envelope, int, error) {
	if err := validateIDsQuery(q); err != nil {
		env, code := Failure(OperationGeneIDs, err)
		return env, code, err
	}
	t, err := s.loader.Load(ctx, q.Dataset)
	if err != nil {
		env, code := Failure(OperationGeneIDs, err)
		return env, code, err
	}
	res, err := Resolve(t, q.GeneIDs, q.Columns)
	if err != nil {
		env, code := Failure(OperationGeneIDs, err)
		return env, code, err
	}
	env, code := GeneIDsSuccess(res)
	return env, code, nil
}

func validateIDsQuery(q IDsQuery) error {
	if isBlank(q.Dataset) {
		return &MissingParameterError{Field: "dataset", Message: "You must provide the path to the dataset."}
	}
	if len(q.GeneIDs) == 0 || anyBlank(q.GeneIDs) {
		return &MissingParameterError{Field: "gene_ids", Message: "You must provide a non-empty list of valid IDs."}
	}
	if len(q.Columns) == 0 || anyBlank(q.Columns) {
		return &MissingParameterError{Field: "columns", Message: "You must provide a non-empty list of conditions to query."}
	}
	return nil
}

// Metadata returns the sample descriptions of dataset.
func (s *Service) Metadata(ctx context.Context, dataset string) (Envelope, int) {
	start := s.now()
	env, code, err := s.metadata(ctx, dataset)
	s.finish(ctx, OperationMetadata, dataset, nil, start, env, code, err)
	return env, code
}

func (s *Service) metadata(ctx context.Context, dataset string) (Envelope, int, error) {
	if isBlank(dataset) {
		err := &MissingParameterError{Field: "dataset", Message: "Missing data: dataset path is required."}
		env, code := Failure(OperationMetadata, err)
		return env, code, err
	}
	t, err := s.loader.Load(ctx, dataset)
	if err != nil {
		env, code := Failure(OperationMetadata, err)
		return env, code, err
	}
	md, err := ResolveMetadata(t)
	if err != nil {
		env, code := Failure(OperationMetadata, err)
		return env, code, err
	}
	env, code := MetadataSuccess(md)
	return env, code, nil
}

func (s *Service) finish(ctx context.Context, op Operation, dataset string, ids []string, start time.Time, env Envelope, code int, err error) {
	elapsed := s.now().Sub(start)
	s.metrics.Observe(ctx, string(op), err == nil, elapsed)

	switch {
	case err == nil:
		s.logger.Debug("query served",
			zap.String("operation", string(op)),
			zap.String("dataset", dataset),
			zap.Int("status", code),
			zap.Duration("duration", elapsed))
	case errors.Is(err, table.ErrUnreadable) || code >= 500:
		s.logger.Warn("query failed",
			zap.String("operation", string(op)),
			zap.String("dataset", dataset),
			zap.Int("status", code),
			zap.Error(err))
	default:
		s.logger.Info("query rejected",
			zap.String("operation", string(op)),
			zap.String("dataset", dataset),
			zap.Int("status", code),
			zap.Error(err))
	}

	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ID:          uuid.NewString(),
		Operation:   string(op),
		Dataset:     dataset,
		Identifiers: ids,
		Status:      env.Status,
		Code:        code,
		Message:     env.Message,
		DurationMS:  float64(elapsed) / float64(time.Millisecond),
		OccurredAt:  start.UTC(),
	}
	// Audit failures never change the response.
	if aerr := s.audit.Record(context.WithoutCancel(ctx), entry); aerr != nil {
		s.logger.Error("audit record failed", zap.String("operation", string(op)), zap.Error(aerr))
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func anyBlank(values []string) bool {
	for _, v := range values {
		if isBlank(v) {
			return true
		}
	}
	return false
}
