// Command expdb serves and queries gene expression datasets.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"expdb/internal/audit"
	"expdb/internal/blob"
	"expdb/internal/config"
	"expdb/internal/expression"
	"expdb/internal/observability"
	"expdb/internal/table"
)

type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "expdb",
		Short:         "Gene expression dataset lookup service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger, err := newLogger(cfg.Logging, a.verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "expdb.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newDatasetsCmd(a))
	root.AddCommand(newAuditCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// newService wires the dataset store, audit store and metrics recorder into
// an expression service. The returned cleanup closes the audit store.
func (a *app) newService(ctx context.Context, store blob.Store, metrics observability.Recorder) (*expression.Service, func(), error) {
	auditStore, err := audit.Open(ctx, audit.Driver(a.cfg.Audit.Driver), a.cfg.Audit.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit store: %w", err)
	}
	cleanup := func() {
		if auditStore == nil {
			return
		}
		if err := auditStore.Close(); err != nil {
			a.logger.Warn("close audit store", zap.Error(err))
		}
	}
	svc := expression.NewService(table.NewLoader(store),
		expression.WithLogger(a.logger),
		expression.WithMetrics(metrics),
		expression.WithAudit(auditStore),
	)
	return svc, cleanup, nil
}

// errQueryFailed marks a query that produced an error envelope.
var errQueryFailed = errors.New("query failed")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
