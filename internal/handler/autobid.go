package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"adbidder/internal/bidding"
	"adbidder/internal/paas"
	"adbidder/internal/service"
)

// Bidder is the scheduler surface the HTTP layer drives.
type Bidder interface {
	Start(ctx context.Context, req service.RunRequest) (service.RunStatus, error)
	Stop() error
	SetLoop(on bool)
	Status() service.RunStatus
	Running() bool
	Recent() []bidding.Result
	Subscribe() <-chan service.FeedEvent
	Unsubscribe(ch <-chan service.FeedEvent)
}

type AutoBidHandler struct {
	Bidder    Bidder
	Settings  *service.SystemSettingsService
	Watchlist *service.WatchlistService
	Defaults  bidding.Strategy
}

func (h *AutoBidHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/autobid")
	g.GET("/strategy", h.getStrategy)
	g.PUT("/strategy", h.putStrategy)
	g.GET("/targets", h.getTargets)
	g.PUT("/targets", h.putTargets)
	g.POST("/start", h.start)
	g.POST("/stop", h.stop)
	g.PUT("/loop", h.loop)
	g.GET("/status", h.status)
	g.GET("/recent", h.recent)
	g.GET("/stream", h.stream)
}

// @Summary Get the saved bidding strategy
// @Tags autobid
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/strategy [get]
func (h *AutoBidHandler) getStrategy(c *gin.Context) {
	st, err := h.Settings.LoadStrategy(c.Request.Context(), h.Defaults)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, st, map[string]any{"defaults": h.Defaults})
}

// @Summary Save the bidding strategy
// @Tags autobid
// @Param body body bidding.Strategy true "strategy"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/autobid/strategy [put]
func (h *AutoBidHandler) putStrategy(c *gin.Context) {
	if h.Bidder.Running() {
		Error(c, http.StatusConflict, "strategy is locked while a run is active", nil)
		return
	}
	st := h.Defaults
	if err := c.ShouldBindJSON(&st); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if err := h.Settings.SaveStrategy(c.Request.Context(), st); err != nil {
		fail(c, err)
		return
	}
	paas.LogBestEffort(c, "searchad_strategy_saved", "info", map[string]any{
		"target_rank":    st.TargetRank,
		"ranked_max_bid": st.RankedMaxBid,
		"probe_max_bid":  st.ProbeMaxBid,
		"bid_step":       st.BidStep,
	})
	Ok(c, st.Normalize(), nil)
}

// @Summary Get the saved campaign targets used by scheduled runs
// @Tags autobid
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/targets [get]
func (h *AutoBidHandler) getTargets(c *gin.Context) {
	items, err := h.Settings.LoadCampaignTargets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []service.CampaignTarget{}
	}
	Ok(c, items, nil)
}

// @Summary Save the campaign targets used by scheduled runs
// @Tags autobid
// @Param body body []service.CampaignTarget true "targets"
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/targets [put]
func (h *AutoBidHandler) putTargets(c *gin.Context) {
	var items []service.CampaignTarget
	if err := c.ShouldBindJSON(&items); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	for _, it := range items {
		if it.CampaignID == "" {
			Error(c, http.StatusBadRequest, "campaign_id is required", nil)
			return
		}
	}
	if err := h.Settings.SaveCampaignTargets(c.Request.Context(), items); err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}

type startRequest struct {
	Mode      service.Mode             `json:"mode"`
	Campaigns []service.CampaignTarget `json:"campaigns"`
	Keywords  []service.WatchTarget    `json:"keywords"`
	Strategy  *bidding.Strategy        `json:"strategy"`
	Loop      bool                     `json:"loop"`
}

// @Summary Start an auto-bid run
// @Description Sniper mode falls back to the saved watch-list, and a missing strategy to the saved one.
// @Tags autobid
// @Param body body startRequest true "run request"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/autobid/start [post]
func (h *AutoBidHandler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	ctx := c.Request.Context()
	if req.Mode == "" {
		req.Mode = service.ModeCampaign
	}
	run := service.RunRequest{Mode: req.Mode, Campaigns: req.Campaigns, Keywords: req.Keywords, Loop: req.Loop}
	if req.Strategy != nil {
		run.Strategy = *req.Strategy
	} else {
		st, err := h.Settings.LoadStrategy(ctx, h.Defaults)
		if err != nil {
			fail(c, err)
			return
		}
		run.Strategy = st
	}
	if run.Mode == service.ModeSniper && len(run.Keywords) == 0 && h.Watchlist != nil {
		targets, err := h.Watchlist.Targets(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		run.Keywords = targets
	}
	st, err := h.Bidder.Start(ctx, run)
	if err != nil {
		fail(c, err)
		return
	}
	paas.LogBestEffort(c, "searchad_autobid_started", "info", map[string]any{
		"run_id":    st.RunID,
		"mode":      string(run.Mode),
		"campaigns": len(run.Campaigns),
		"keywords":  len(run.Keywords),
		"loop":      run.Loop,
	})
	Ok(c, st, nil)
}

// @Summary Stop the active run at the next checkpoint
// @Tags autobid
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/autobid/stop [post]
func (h *AutoBidHandler) stop(c *gin.Context) {
	if err := h.Bidder.Stop(); err != nil {
		fail(c, err)
		return
	}
	Ok(c, h.Bidder.Status(), nil)
}

type loopRequest struct {
	Enabled bool `json:"enabled"`
}

// @Summary Toggle looping of the active run
// @Tags autobid
// @Param body body loopRequest true "loop flag"
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/loop [put]
func (h *AutoBidHandler) loop(c *gin.Context) {
	var req loopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	h.Bidder.SetLoop(req.Enabled)
	Ok(c, h.Bidder.Status(), nil)
}

// @Summary Current run status
// @Tags autobid
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/status [get]
func (h *AutoBidHandler) status(c *gin.Context) {
	Ok(c, h.Bidder.Status(), nil)
}

// @Summary Latest bid decisions, newest first
// @Tags autobid
// @Param limit query int false "max items"
// @Success 200 {object} apiResponse
// @Router /api/v1/autobid/recent [get]
func (h *AutoBidHandler) recent(c *gin.Context) {
	items := h.Bidder.Recent()
	if limit := intQuery(c, "limit", 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []bidding.Result{}
	}
	Ok(c, items, map[string]any{"total": len(items)})
}
