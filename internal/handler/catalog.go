package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adbidder/internal/gateway"
)

// CatalogHandler exposes read-only views of the live ad account.
type CatalogHandler struct {
	Gateway gateway.Gateway
}

func (h *CatalogHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/campaigns", h.listCampaigns)
	group.GET("/adgroups", h.listAdGroups)
	group.GET("/keywords", h.listKeywords)
}

// @Summary List campaigns
// @Tags catalog
// @Param active query bool false "only running campaigns"
// @Success 200 {object} apiResponse
// @Router /api/v1/campaigns [get]
func (h *CatalogHandler) listCampaigns(c *gin.Context) {
	if h.Gateway == nil {
		Error(c, http.StatusInternalServerError, "gateway unavailable", nil)
		return
	}
	items, err := h.Gateway.FetchCampaigns(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if c.Query("active") == "true" {
		out := items[:0]
		for _, it := range items {
			if gateway.IsActive(it.Status) {
				out = append(out, it)
			}
		}
		items = out
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

// @Summary List ad groups of a campaign
// @Tags catalog
// @Param campaign_id query string true "campaign id"
// @Success 200 {object} apiResponse
// @Router /api/v1/adgroups [get]
func (h *CatalogHandler) listAdGroups(c *gin.Context) {
	if h.Gateway == nil {
		Error(c, http.StatusInternalServerError, "gateway unavailable", nil)
		return
	}
	campaignID := strings.TrimSpace(c.Query("campaign_id"))
	if campaignID == "" {
		Error(c, http.StatusBadRequest, "campaign_id is required", nil)
		return
	}
	items, err := h.Gateway.FetchAdGroups(c.Request.Context(), campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

// @Summary List keywords of an ad group with stats and rank
// @Tags catalog
// @Param adgroup_id query string true "ad group id"
// @Param device query string false "PC|MOBILE"
// @Param target_rank query int false "rank to fetch bid estimates for"
// @Success 200 {object} apiResponse
// @Router /api/v1/keywords [get]
func (h *CatalogHandler) listKeywords(c *gin.Context) {
	if h.Gateway == nil {
		Error(c, http.StatusInternalServerError, "gateway unavailable", nil)
		return
	}
	adGroupID := strings.TrimSpace(c.Query("adgroup_id"))
	if adGroupID == "" {
		Error(c, http.StatusBadRequest, "adgroup_id is required", nil)
		return
	}
	device := strings.ToUpper(strings.TrimSpace(c.Query("device")))
	if device == "" {
		device = gateway.DeviceMobile
	}
	if device != gateway.DevicePC && device != gateway.DeviceMobile {
		Error(c, http.StatusBadRequest, "device must be PC or MOBILE", nil)
		return
	}
	items, err := h.Gateway.FetchKeywords(c.Request.Context(), adGroupID, device, intQuery(c, "target_rank", 0))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items), "device": device})
}
