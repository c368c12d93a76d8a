package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"warplan/internal/config"
	"warplan/internal/milp"
	"warplan/internal/war"
)

type batchItem struct {
	File         string        `json:"file"`
	Outcome      war.Outcome   `json:"outcome,omitempty"`
	SolverStatus milp.Status   `json:"solver_status,omitempty"`
	Objective    float64       `json:"objective"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Rows         []war.PlanRow `json:"rows,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type batchSummary struct {
	Runs     int                 `json:"runs"`
	Failed   int                 `json:"failed"`
	Degraded int                 `json:"degraded"`
	Outcomes map[war.Outcome]int `json:"outcomes"`
	Elapsed  time.Duration       `json:"elapsed_ns"`
	Results  []batchItem         `json:"results"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		out     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch <snapshot>...",
		Short: "Plan many snapshots concurrently and write a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", workers)
			}
			planner := war.NewPlanner(a.cfg.War(), war.WithLogger(a.logger))
			summary, err := runBatch(cmd.Context(), planner, args, workers, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("batch done",
				zap.Int("runs", summary.Runs),
				zap.Int("failed", summary.Failed),
				zap.Int("degraded", summary.Degraded),
				zap.Duration("elapsed", summary.Elapsed))
			return writeOutput(cmd.OutOrStdout(), out, summary)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "summary file (default stdout)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 8, "snapshots planned in parallel")
	return cmd
}

// runBatch plans every file with at most workers plans in flight. A file
// that fails to load or validate is reported in its item; only
// cancellation stops the batch.
func runBatch(ctx context.Context, planner *war.Planner, files []string, workers int, logger *zap.Logger) (batchSummary, error) {
	started := time.Now()
	items := make([]batchItem, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			item := batchItem{File: file}
			defer func() { items[i] = item }()

			req, err := config.LoadSnapshot(file)
			if err != nil {
				item.Error = err.Error()
				logger.Warn("skipping snapshot", zap.String("file", file), zap.Error(err))
				return nil
			}
			res, err := planner.Plan(ctx, req)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				item.Error = err.Error()
				logger.Warn("snapshot not planned", zap.String("file", file), zap.Error(err))
				return nil
			}
			item.Outcome = res.Outcome
			item.SolverStatus = res.SolverStatus
			item.Objective = res.Objective
			item.Elapsed = res.Elapsed
			item.Rows = res.Rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batchSummary{}, fmt.Errorf("batch interrupted: %w", err)
	}

	summary := batchSummary{
		Runs:     len(files),
		Outcomes: map[war.Outcome]int{},
		Results:  items,
	}
	for _, item := range items {
		if item.Error != "" {
			summary.Failed++
			continue
		}
		summary.Outcomes[item.Outcome]++
		if (war.Result{Outcome: item.Outcome}).Degraded() {
			summary.Degraded++
		}
	}
	summary.Elapsed = time.Since(started)
	return summary, nil
}
