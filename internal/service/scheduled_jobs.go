package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"adbidder/internal/bidding"
)

// ScheduledJobs holds the cron entry points. Each job checks its feature switch.
type ScheduledJobs struct {
	Bidder        *AutoBidder
	Settings      *SystemSettingsService
	Audit         *AuditService
	Defaults      bidding.Strategy
	RetentionDays int
	Logger        *zap.Logger
}

func (j *ScheduledJobs) log() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}

func (j *ScheduledJobs) AuditRetention(ctx context.Context) {
	if !j.Settings.IsEnabled(ctx, FeatureAuditRetention, true) {
		return
	}
	if _, err := j.Audit.Prune(ctx, j.RetentionDays); err != nil {
		j.log().Warn("audit retention failed", zap.Error(err))
	}
}

// ScheduledAutoBid starts one campaign cycle over the saved targets with the
// saved strategy. A run already in progress is left alone.
func (j *ScheduledJobs) ScheduledAutoBid(ctx context.Context) {
	if !j.Settings.IsEnabled(ctx, FeatureAutoBidSchedule, false) {
		return
	}
	if j.Bidder.Running() {
		j.log().Info("scheduled auto bid skipped, run in progress")
		return
	}
	targets, err := j.Settings.LoadCampaignTargets(ctx)
	if err != nil {
		j.log().Warn("load campaign targets failed", zap.Error(err))
		return
	}
	strategy, err := j.Settings.LoadStrategy(ctx, j.Defaults)
	if err != nil {
		j.log().Warn("load strategy failed", zap.Error(err))
		return
	}
	st, err := j.Bidder.Start(ctx, RunRequest{Mode: ModeCampaign, Campaigns: targets, Strategy: strategy})
	switch {
	case errors.Is(err, ErrNoTargets):
		j.log().Info("scheduled auto bid skipped, no saved targets")
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, ErrLeaseHeld):
		j.log().Info("scheduled auto bid skipped", zap.Error(err))
	case err != nil:
		j.log().Warn("scheduled auto bid failed to start", zap.Error(err))
	default:
		j.log().Info("scheduled auto bid started", zap.String("run_id", st.RunID), zap.Int("campaigns", len(targets)))
	}
}
