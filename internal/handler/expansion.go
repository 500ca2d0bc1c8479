package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adbidder/internal/paas"
	"adbidder/internal/service"
)

type ExpansionHandler struct {
	Expander *service.OverflowExpander
	Batch    *service.KeywordBatchService
	Cloner   *service.CreativeCloner
}

func (h *ExpansionHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/expansion")
	g.POST("/combine", h.combine)
	g.POST("/batch", h.batch)
	g.POST("/overflow", h.overflow)
	r.POST("/api/v1/creatives/clone", h.clone)
}

type combineRequest struct {
	A         []string `json:"a"`
	B         []string `json:"b"`
	Forward   bool     `json:"forward"`
	Reverse   bool     `json:"reverse"`
	AdGroupID string   `json:"ad_group_id"`
}

// @Summary Build keyword combinations, optionally adding them to an ad group
// @Tags expansion
// @Param body body combineRequest true "word lists"
// @Success 200 {object} apiResponse
// @Router /api/v1/expansion/combine [post]
func (h *ExpansionHandler) combine(c *gin.Context) {
	var req combineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	words := service.Combine(req.A, req.B, req.Forward, req.Reverse)
	if len(words) == 0 {
		Error(c, http.StatusBadRequest, "no combinations", nil)
		return
	}
	adGroupID := strings.TrimSpace(req.AdGroupID)
	if adGroupID == "" {
		Ok(c, map[string]any{"keywords": words}, map[string]any{"total": len(words)})
		return
	}
	res, err := h.Expander.Expand(c.Request.Context(), adGroupID, words)
	if err != nil {
		fail(c, err)
		return
	}
	logExpansion(c, adGroupID, res)
	Ok(c, map[string]any{"keywords": words, "result": res}, map[string]any{"total": len(words)})
}

// @Summary Add region x main keyword combinations from "group | region1, region2" lines
// @Tags expansion
// @Param body body service.BatchRequest true "mapping text and main keywords"
// @Success 200 {object} apiResponse
// @Router /api/v1/expansion/batch [post]
func (h *ExpansionHandler) batch(c *gin.Context) {
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CampaignID) == "" {
		Error(c, http.StatusBadRequest, "campaign_id, text and main are required", nil)
		return
	}
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	res, err := h.Batch.Run(c.Request.Context(), req)
	if err != nil {
		failWithMeta(c, err, map[string]any{"invalid_lines": res.InvalidLines})
		return
	}
	paas.LogBestEffort(c, "searchad_keyword_batch", "info", map[string]any{
		"campaign_id": req.CampaignID,
		"lines":       len(res.Lines),
		"created":     res.Created,
		"failed":      res.Failed,
	})
	Ok(c, res, nil)
}

type overflowRequest struct {
	AdGroupID string   `json:"ad_group_id"`
	Keywords  []string `json:"keywords"`
}

// @Summary Add keywords, spilling past the per-group ceiling into new sibling groups
// @Tags expansion
// @Param body body overflowRequest true "target group and keywords"
// @Success 200 {object} apiResponse
// @Router /api/v1/expansion/overflow [post]
func (h *ExpansionHandler) overflow(c *gin.Context) {
	var req overflowRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AdGroupID) == "" {
		Error(c, http.StatusBadRequest, "ad_group_id and keywords are required", nil)
		return
	}
	res, err := h.Expander.Expand(c.Request.Context(), strings.TrimSpace(req.AdGroupID), req.Keywords)
	if err != nil {
		fail(c, err)
		return
	}
	logExpansion(c, req.AdGroupID, res)
	Ok(c, res, nil)
}

type cloneRequest struct {
	SourceAdGroupID string `json:"source_ad_group_id"`
	TargetAdGroupID string `json:"target_ad_group_id"`
}

// @Summary Copy ads and extensions from one ad group to another
// @Tags expansion
// @Param body body cloneRequest true "source and target"
// @Success 200 {object} apiResponse
// @Router /api/v1/creatives/clone [post]
func (h *ExpansionHandler) clone(c *gin.Context) {
	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	res, err := h.Cloner.Clone(c.Request.Context(), strings.TrimSpace(req.SourceAdGroupID), strings.TrimSpace(req.TargetAdGroupID))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, res, nil)
}

func logExpansion(c *gin.Context, adGroupID string, res service.ExpansionResult) {
	level := "info"
	if res.Error != "" {
		level = "warn"
	}
	paas.LogBestEffort(c, "searchad_keyword_expansion", level, map[string]any{
		"ad_group_id":    adGroupID,
		"requested":      res.Requested,
		"created":        res.Created,
		"failed":         res.Failed,
		"dropped":        res.Dropped,
		"groups_created": res.GroupsCreated,
	})
}
