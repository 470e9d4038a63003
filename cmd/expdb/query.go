package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"expdb/internal/blob"
	"expdb/internal/expression"
	"expdb/internal/observability"
)

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single query against the configured dataset store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "gene <dataset> <gene_id>",
		Short: "Look up every transcript of one gene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, func(ctx context.Context, svc *expression.Service) (expression.Envelope, int) {
				return svc.Gene(ctx, args[0], args[1])
			})
		},
	})

	var q expression.IDsQuery
	ids := &cobra.Command{
		Use:   "ids",
		Short: "Resolve gene and transcript identifiers for selected conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, func(ctx context.Context, svc *expression.Service) (expression.Envelope, int) {
				return svc.GeneIDs(ctx, q)
			})
		},
	}
	ids.Flags().StringVar(&q.Dataset, "dataset", "", "Dataset path")
	ids.Flags().StringArrayVar(&q.GeneIDs, "id", nil, "Gene or transcript identifier (repeatable)")
	ids.Flags().StringArrayVar(&q.Columns, "column", nil, "Condition column to return (repeatable)")
	cmd.AddCommand(ids)

	cmd.AddCommand(&cobra.Command{
		Use:   "metadata <dataset>",
		Short: "Describe the sample columns of a metadata dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, func(ctx context.Context, svc *expression.Service) (expression.Envelope, int) {
				return svc.Metadata(ctx, args[0])
			})
		},
	})
	return cmd
}

// runQuery prints the envelope as indented JSON. An error envelope makes the
// command fail after printing.
func (a *app) runQuery(cmd *cobra.Command, fn func(context.Context, *expression.Service) (expression.Envelope, int)) error {
	ctx := cmd.Context()
	store, err := blob.Open(ctx, a.cfg.BlobConfig())
	if err != nil {
		return err
	}
	svc, cleanup, err := a.newService(ctx, store, observability.Noop{})
	if err != nil {
		return err
	}
	defer cleanup()

	env, code := fn(ctx, svc)
	if err := printJSON(cmd.OutOrStdout(), env); err != nil {
		return err
	}
	if env.Status != expression.StatusSuccess {
		return fmt.Errorf("%w: status %d", errQueryFailed, code)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
