package cron

import (
	"context"
	"fmt"

	"github.com/dcastellanos/festivo-backend/internal/transactions"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
	"github.com/dcastellanos/festivo-backend/pkg/metrics"
)

const payoutJobName = "payout_processor"

// payoutRunner is the slice of the transactions service the job drives.
type payoutRunner interface {
	ProcessPayouts(ctx context.Context) (*transactions.PayoutReport, error)
}

// PayoutJobParams configures the scheduled payout batch.
type PayoutJobParams struct {
	Logger       *logger.Logger
	Transactions payoutRunner
	Metrics      *metrics.CronJobMetrics
}

type payoutJob struct {
	logg    *logger.Logger
	txns    payoutRunner
	metrics *metrics.CronJobMetrics
}

// NewPayoutJob constructs the payout processor cron job.
func NewPayoutJob(params PayoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transactions service required")
	}
	return &payoutJob{
		logg:    params.Logger,
		txns:    params.Transactions,
		metrics: params.Metrics,
	}, nil
}

func (j *payoutJob) Name() string {
	return payoutJobName
}

// Run drains one payout batch. A run with item failures still succeeds; the
// queue keeps the retryable rows for the next cycle.
func (j *payoutJob) Run(ctx context.Context) error {
	report, err := j.txns.ProcessPayouts(ctx)
	if err != nil {
		return fmt.Errorf("process payouts: %w", err)
	}

	if j.metrics != nil {
		j.metrics.AddItems(payoutJobName, "released", report.Released)
		j.metrics.AddItems(payoutJobName, "failed", report.Failed)
	}

	runCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": report.Processed,
		"released":  report.Released,
		"failed":    report.Failed,
	})
	j.logg.Info(runCtx, "payout batch complete")
	return nil
}
