package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adbidder/internal/models"
	"adbidder/internal/service"
)

type WatchlistHandler struct {
	Service *service.WatchlistService
}

func (h *WatchlistHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/watchlist")
	g.GET("", h.list)
	g.POST("", h.add)
	g.GET("/search", h.search)
	g.DELETE("/:keyword_id", h.remove)
}

// @Summary List watched keywords
// @Tags watchlist
// @Success 200 {object} apiResponse
// @Router /api/v1/watchlist [get]
func (h *WatchlistHandler) list(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []models.WatchKeyword{}
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

type addWatchRequest struct {
	Keywords []service.WatchTarget `json:"keywords"`
}

// @Summary Pin keywords for sniper runs
// @Tags watchlist
// @Param body body addWatchRequest true "keywords"
// @Success 200 {object} apiResponse
// @Router /api/v1/watchlist [post]
func (h *WatchlistHandler) add(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req addWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Keywords) == 0 {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	added, err := h.Service.Add(c.Request.Context(), req.Keywords)
	if err != nil {
		failWithMeta(c, err, map[string]any{"added": len(added)})
		return
	}
	Ok(c, added, map[string]any{"added": len(added)})
}

// @Summary Unpin a keyword
// @Tags watchlist
// @Param keyword_id path string true "keyword id"
// @Success 200 {object} apiResponse
// @Router /api/v1/watchlist/{keyword_id} [delete]
func (h *WatchlistHandler) remove(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("keyword_id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid keyword id", nil)
		return
	}
	if err := h.Service.Remove(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	Ok(c, map[string]any{"keyword_id": id}, nil)
}

// @Summary Search keywords across all campaigns
// @Tags watchlist
// @Param q query string true "keyword text"
// @Success 200 {object} apiResponse
// @Router /api/v1/watchlist/search [get]
func (h *WatchlistHandler) search(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		Error(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	hits, err := h.Service.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	if hits == nil {
		hits = []service.KeywordHit{}
	}
	Ok(c, hits, map[string]any{"total": len(hits)})
}
