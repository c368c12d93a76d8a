package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"warplan/internal/config"
	"warplan/internal/war"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		out    string
		traced bool
	)
	cmd := &cobra.Command{
		Use:   "plan <snapshot>",
		Short: "Plan one snapshot and write the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := config.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			opts := []war.Option{war.WithLogger(a.logger)}
			if traced {
				tp, err := newTracerProvider(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer func() { _ = tp.Shutdown(context.Background()) }()
				opts = append(opts, war.WithTracer(tp.Tracer("warplan")))
			}

			res, err := war.NewPlanner(a.cfg.War(), opts...).Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			if res.Degraded() {
				a.logger.Warn("plan is degraded",
					zap.String("snapshot", args[0]),
					zap.String("outcome", string(res.Outcome)),
					zap.String("solver_status", string(res.SolverStatus)))
			}
			return writeOutput(cmd.OutOrStdout(), out, res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&traced, "trace", false, "print the planning span to stderr")
	return cmd
}

// newTracerProvider exports spans synchronously to w as indented JSON.
func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}
