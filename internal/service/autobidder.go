package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"adbidder/internal/bidding"
	"adbidder/internal/config"
	"adbidder/internal/gateway"
	"adbidder/internal/models"
	"adbidder/internal/repository"
)

type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeSniper   Mode = "sniper"
)

type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StateWaiting RunState = "waiting"
)

// CampaignTarget selects ad groups of one campaign. Empty AdGroupIDs means all groups.
type CampaignTarget struct {
	CampaignID string   `json:"campaign_id"`
	AdGroupIDs []string `json:"ad_group_ids,omitempty"`
}

// WatchTarget is one keyword managed in sniper mode.
type WatchTarget struct {
	KeywordID string `json:"keyword_id"`
	AdGroupID string `json:"ad_group_id"`
	Keyword   string `json:"keyword,omitempty"`
}

type RunRequest struct {
	Mode      Mode             `json:"mode"`
	Campaigns []CampaignTarget `json:"campaigns,omitempty"`
	Keywords  []WatchTarget    `json:"keywords,omitempty"`
	Strategy  bidding.Strategy `json:"strategy"`
	Loop      bool             `json:"loop"`
}

type RunCounters struct {
	UnitsTotal     int `json:"units_total"`
	UnitsDone      int `json:"units_done"`
	UnitsSkipped   int `json:"units_skipped"`
	UnitsFailed    int `json:"units_failed"`
	KeywordsSeen   int `json:"keywords_seen"`
	BidsChanged    int `json:"bids_changed"`
	BidsSubmitted  int `json:"bids_submitted"`
	SubmitFailures int `json:"submit_failures"`
}

type RunStatus struct {
	State     RunState          `json:"state"`
	Mode      Mode              `json:"mode,omitempty"`
	RunID     string            `json:"run_id,omitempty"`
	Cycle     int               `json:"cycle"`
	Current   int               `json:"current"`
	Total     int               `json:"total"`
	Message   string            `json:"message"`
	Loop      bool              `json:"loop"`
	Strategy  *bidding.Strategy `json:"strategy,omitempty"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
	NextRunAt *time.Time        `json:"next_run_at,omitempty"`
	Counters  RunCounters       `json:"counters"`
}

// AutoBidder runs bid cycles over campaign ad groups or a keyword watch-list.
// At most one run is active; Stop cancels it at the next step boundary.
type AutoBidder struct {
	Gateway gateway.Gateway
	Runs    repository.BidRunRepository
	Watch   repository.WatchKeywordRepository
	Logger  *zap.Logger
	Config  config.BidderConfig
	Lease   *Lease
	Feed    *Feed

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	status   RunStatus
	starting bool // set while Start acquires the lease outside mu
	recent   []bidding.Result
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewAutoBidder(gw gateway.Gateway, runs repository.BidRunRepository, watch repository.WatchKeywordRepository, cfg config.BidderConfig, logger *zap.Logger) *AutoBidder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBidder{
		Gateway: gw,
		Runs:    runs,
		Watch:   watch,
		Logger:  logger,
		Config:  cfg,
		Feed:    NewFeed(),
		status:  RunStatus{State: StateIdle, Message: "idle"},
	}
}

func (b *AutoBidder) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *AutoBidder) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// Start validates req and launches the run in the background. The run is
// detached from ctx cancellation; use Stop to end it.
func (b *AutoBidder) Start(ctx context.Context, req RunRequest) (RunStatus, error) {
	req.Strategy = req.Strategy.Normalize()
	if err := req.Strategy.Validate(); err != nil {
		return RunStatus{}, err
	}
	switch req.Mode {
	case ModeCampaign:
		if len(req.Campaigns) == 0 {
			return RunStatus{}, ErrNoTargets
		}
	case ModeSniper:
		if len(req.Keywords) == 0 {
			return RunStatus{}, ErrNoTargets
		}
	default:
		return RunStatus{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	b.mu.Lock()
	if b.status.State != StateIdle || b.starting {
		b.mu.Unlock()
		return RunStatus{}, ErrAlreadyRunning
	}
	b.starting = true
	b.mu.Unlock()

	if err := b.Lease.Acquire(ctx); err != nil {
		b.mu.Lock()
		b.starting = false
		b.mu.Unlock()
		return RunStatus{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.starting = false

	req.Campaigns = append([]CampaignTarget(nil), req.Campaigns...)
	req.Keywords = append([]WatchTarget(nil), req.Keywords...)
	strategy := req.Strategy
	started := b.clock().UTC()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.done = make(chan struct{})
	b.status = RunStatus{
		State:     StateRunning,
		Mode:      req.Mode,
		RunID:     uuid.NewString(),
		Loop:      req.Loop,
		Strategy:  &strategy,
		StartedAt: &started,
		Message:   "starting",
	}
	snapshot := b.status
	b.log().Info("auto bidder started",
		zap.String("run_id", snapshot.RunID),
		zap.String("mode", string(req.Mode)),
		zap.Int("campaigns", len(req.Campaigns)),
		zap.Int("keywords", len(req.Keywords)),
		zap.Bool("loop", req.Loop),
	)
	go b.run(runCtx, snapshot.RunID, req, b.done)
	return snapshot, nil
}

func (b *AutoBidder) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status.State == StateIdle || b.cancel == nil {
		return ErrNotRunning
	}
	b.cancel()
	b.status.Message = "stopping"
	return nil
}

// SetLoop toggles looping. Disabling lets the current cycle finish; a run that
// is waiting for its next cycle ends right away.
func (b *AutoBidder) SetLoop(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Loop = on
	if !on && b.status.State == StateWaiting && b.cancel != nil {
		b.cancel()
	}
}

func (b *AutoBidder) Status() RunStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *AutoBidder) Running() bool {
	return b.Status().State != StateIdle
}

// Recent returns the latest decisions, newest first.
func (b *AutoBidder) Recent() []bidding.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bidding.Result(nil), b.recent...)
}

// Done is closed when the current run ends. It is closed already when idle.
func (b *AutoBidder) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return b.done
}

func (b *AutoBidder) Subscribe() <-chan FeedEvent {
	return b.Feed.Subscribe(64)
}

func (b *AutoBidder) Unsubscribe(ch <-chan FeedEvent) {
	b.Feed.Unsubscribe(ch)
}

func (b *AutoBidder) run(ctx context.Context, runID string, req RunRequest, done chan struct{}) {
	defer func() {
		if err := b.Lease.Release(context.WithoutCancel(ctx)); err != nil {
			b.log().Warn("release lease failed", zap.Error(err))
		}
		b.mu.Lock()
		msg := "completed"
		if ctx.Err() != nil {
			msg = "stopped"
		}
		b.status.State = StateIdle
		b.status.Message = msg
		b.status.NextRunAt = nil
		b.status.Current = 0
		b.cancel = nil
		b.mu.Unlock()
		b.publishStatus()
		close(done)
		b.log().Info("auto bidder finished", zap.String("run_id", runID), zap.String("result", msg))
	}()

	for cycle := 1; ; cycle++ {
		b.update(func(st *RunStatus) {
			st.State = StateRunning
			st.Cycle = cycle
			st.Current = 0
			st.Total = 0
			st.NextRunAt = nil
			st.Counters = RunCounters{}
			st.Message = fmt.Sprintf("cycle %d started", cycle)
		})
		c := &cycleRun{
			id:       fmt.Sprintf("%s-%03d", runID, cycle),
			cycle:    cycle,
			mode:     req.Mode,
			strategy: req.Strategy,
			started:  b.clock().UTC(),
		}
		b.saveRun(ctx, c, req, "running")

		switch req.Mode {
		case ModeCampaign:
			b.campaignCycle(ctx, c, req.Campaigns)
		case ModeSniper:
			b.sniperCycle(ctx, c, req.Keywords)
		}

		if ctx.Err() != nil {
			b.saveRun(ctx, c, req, "cancelled")
			return
		}
		b.saveRun(ctx, c, req, "completed")
		if !b.Status().Loop {
			return
		}

		interval := req.Strategy.LoopInterval()
		next := b.clock().Add(interval)
		b.update(func(st *RunStatus) {
			st.State = StateWaiting
			st.NextRunAt = &next
			st.Message = fmt.Sprintf("cycle %d done, next run at %s", cycle, next.Format("15:04:05"))
		})
		if err := b.waitNext(ctx, interval); err != nil {
			return
		}
		if !b.Status().Loop {
			return
		}
	}
}

func (b *AutoBidder) waitNext(ctx context.Context, d time.Duration) error {
	after := b.after
	if after == nil {
		after = time.After
	}
	timer := after(d)
	var refresh <-chan time.Time
	if b.Lease != nil && b.Lease.TTL > 0 {
		t := time.NewTicker(b.Lease.TTL / 2)
		defer t.Stop()
		refresh = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer:
			return nil
		case <-refresh:
			if err := b.Lease.Refresh(ctx); err != nil {
				b.log().Warn("refresh lease failed", zap.Error(err))
			}
		}
	}
}

// checkpoint is the cancellation point between steps.
func (b *AutoBidder) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Lease.Refresh(ctx); err != nil {
		b.log().Warn("refresh lease failed", zap.Error(err))
	}
	return nil
}

// cycleRun carries per-cycle bookkeeping.
type cycleRun struct {
	id       string
	cycle    int
	mode     Mode
	strategy bidding.Strategy
	started  time.Time
	counters RunCounters
	lastErr  string
}

func (b *AutoBidder) update(fn func(st *RunStatus)) {
	b.mu.Lock()
	fn(&b.status)
	b.mu.Unlock()
	b.publishStatus()
}

func (b *AutoBidder) progress(c *cycleRun, current int, msg string) {
	b.update(func(st *RunStatus) {
		st.Current = current
		st.Total = c.counters.UnitsTotal
		st.Counters = c.counters
		st.Message = fmt.Sprintf("[%d/%d] %s", current, c.counters.UnitsTotal, msg)
	})
}

func (b *AutoBidder) publishStatus() {
	st := b.Status()
	b.Feed.Publish(FeedEvent{Type: FeedStatus, Status: &st, At: b.clock()})
}

func (b *AutoBidder) record(res bidding.Result) {
	size := b.Config.RecentSize
	if size <= 0 {
		size = 50
	}
	b.mu.Lock()
	b.recent = append([]bidding.Result{res}, b.recent...)
	if len(b.recent) > size {
		b.recent = b.recent[:size]
	}
	b.mu.Unlock()
	b.Feed.Publish(FeedEvent{Type: FeedResult, Result: &res, At: res.At})
}

func (b *AutoBidder) fail(c *cycleRun, msg string, err error, fields ...zap.Field) {
	c.counters.UnitsFailed++
	c.lastErr = fmt.Sprintf("%s: %v", msg, err)
	b.log().Warn(msg, append(fields, zap.String("run_id", c.id), zap.Error(err))...)
	b.update(func(st *RunStatus) {
		st.Counters = c.counters
		st.Message = c.lastErr
	})
}

// submit sends updates in fixed-size chunks. Submissions that started finish
// even when the run is cancelled.
func (b *AutoBidder) submit(ctx context.Context, c *cycleRun, updates []gateway.BidUpdate) {
	if len(updates) == 0 {
		return
	}
	size := b.Config.BatchSize
	if size <= 0 {
		size = 50
	}
	ctx = context.WithoutCancel(ctx)
	for start := 0; start < len(updates); start += size {
		end := start + size
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]
		res, err := b.Gateway.BulkUpdateBids(ctx, chunk)
		if err != nil {
			c.counters.SubmitFailures += len(chunk)
			c.lastErr = fmt.Sprintf("bulk update: %v", err)
			b.log().Warn("bulk bid update failed", zap.String("run_id", c.id), zap.Int("size", len(chunk)), zap.Error(err))
			continue
		}
		c.counters.BidsSubmitted += res.Succeeded
		c.counters.SubmitFailures += res.Requested - res.Succeeded
	}
}

func (b *AutoBidder) audit(ctx context.Context, entries []gateway.AuditEntry) {
	if len(entries) == 0 {
		return
	}
	if err := b.Gateway.AppendAuditLog(context.WithoutCancel(ctx), entries); err != nil {
		b.log().Warn("append audit log failed", zap.Int("entries", len(entries)), zap.Error(err))
	}
}

func auditEntry(c *cycleRun, res bidding.Result, kw gateway.Keyword) gateway.AuditEntry {
	return gateway.AuditEntry{
		Time:       res.At,
		RunID:      c.id,
		Mode:       string(c.mode),
		KeywordID:  res.KeywordID,
		Keyword:    res.Keyword,
		AdGroupID:  res.AdGroupID,
		OldBid:     res.OldBid,
		NewBid:     res.NewBid,
		ReasonKind: string(res.Reason.Kind),
		Reason:     res.Reason.Text(),
		Details: map[string]any{
			"rank":        kw.CurrentRank,
			"target_rank": c.strategy.TargetRank,
			"impressions": kw.Stats.Impressions,
			"cause":       string(res.Reason.Cause),
			"limited":     res.Reason.Limited,
		},
	}
}

func (b *AutoBidder) saveRun(ctx context.Context, c *cycleRun, req RunRequest, status string) {
	if b.Runs == nil {
		return
	}
	strategyJSON, _ := json.Marshal(c.strategy)
	var targets any = req.Campaigns
	if req.Mode == ModeSniper {
		targets = req.Keywords
	}
	targetsJSON, _ := json.Marshal(targets)
	item := &models.BidRun{
		ID:             c.id,
		Mode:           string(c.mode),
		Cycle:          c.cycle,
		Status:         status,
		Strategy:       datatypes.JSON(strategyJSON),
		Targets:        datatypes.JSON(targetsJSON),
		UnitsTotal:     c.counters.UnitsTotal,
		UnitsDone:      c.counters.UnitsDone,
		UnitsSkipped:   c.counters.UnitsSkipped,
		UnitsFailed:    c.counters.UnitsFailed,
		KeywordsSeen:   c.counters.KeywordsSeen,
		BidsChanged:    c.counters.BidsChanged,
		BidsSubmitted:  c.counters.BidsSubmitted,
		SubmitFailures: c.counters.SubmitFailures,
		LastError:      c.lastErr,
		StartedAt:      c.started,
	}
	if status != "running" {
		fin := b.clock().UTC()
		item.FinishedAt = &fin
	}
	if err := b.Runs.UpsertBidRun(context.WithoutCancel(ctx), item); err != nil {
		b.log().Warn("save bid run failed", zap.String("run_id", c.id), zap.Error(err))
	}
}

// pause sleeps d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}
