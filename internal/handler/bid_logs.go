package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adbidder/internal/repository"
	"adbidder/internal/service"
)

// utf8BOM lets spreadsheet apps detect the encoding of non-ASCII keywords.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type BidLogHandler struct {
	Repo  repository.Repository
	Audit *service.AuditService
}

func (h *BidLogHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/bid-logs", h.listLogs)
	r.GET("/api/v1/bid-logs/export", h.export)
	r.GET("/api/v1/bid-runs", h.listRuns)
	r.GET("/api/v1/bid-runs/:id", h.getRun)
	r.GET("/api/v1/expansion-runs", h.listExpansions)
}

// @Summary List audit entries
// @Tags history
// @Param run_id query string false "run id"
// @Param mode query string false "campaign|sniper|expansion"
// @Param keyword_id query string false "keyword id"
// @Param ad_group_id query string false "ad group id"
// @Param reason_kind query string false "reason kind"
// @Param since query string false "RFC3339"
// @Param until query string false "RFC3339"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/bid-logs [get]
func (h *BidLogHandler) listLogs(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	params := repository.ListBidLogsParams{
		Limit:      limit,
		Offset:     offset,
		RunID:      strQueryPtr(c, "run_id"),
		Mode:       strQueryPtr(c, "mode"),
		KeywordID:  strQueryPtr(c, "keyword_id"),
		AdGroupID:  strQueryPtr(c, "ad_group_id"),
		ReasonKind: strQueryPtr(c, "reason_kind"),
		Since:      timeQueryPtr(c, "since"),
		Until:      timeQueryPtr(c, "until"),
		OrderBy:    "logged_at",
		Asc:        boolPtr(false),
	}
	items, err := h.Repo.ListBidLogs(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountBidLogs(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Download one day of audit entries as CSV
// @Tags history
// @Produce text/csv
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {string} string
// @Router /api/v1/bid-logs/export [get]
func (h *BidLogHandler) export(c *gin.Context) {
	if h.Audit == nil {
		Error(c, http.StatusInternalServerError, "audit service unavailable", nil)
		return
	}
	day, err := h.Audit.ParseDay(strings.TrimSpace(c.Query("date")))
	if err != nil {
		Error(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	rows, err := h.Audit.WriteDailyCSV(c.Request.Context(), &buf, day)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="log_%s.csv"`, day.Format("2006-01-02")))
	c.Header("X-Row-Count", fmt.Sprint(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary List scheduler cycles
// @Tags history
// @Param mode query string false "campaign|sniper"
// @Param status query string false "running|completed|cancelled"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/bid-runs [get]
func (h *BidLogHandler) listRuns(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListBidRuns(c.Request.Context(), repository.ListBidRunsParams{
		Limit:   limit,
		Offset:  offset,
		Mode:    strQueryPtr(c, "mode"),
		Status:  strQueryPtr(c, "status"),
		OrderBy: "started_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}

// @Summary Get one scheduler cycle
// @Tags history
// @Param id path string true "run id"
// @Success 200 {object} apiResponse
// @Router /api/v1/bid-runs/{id} [get]
func (h *BidLogHandler) getRun(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	item, err := h.Repo.GetBidRun(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "run not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary List keyword expansion runs
// @Tags history
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/expansion-runs [get]
func (h *BidLogHandler) listExpansions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListExpansionRuns(c.Request.Context(), limit, offset)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}
