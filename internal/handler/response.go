package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"adbidder/internal/bidding"
	"adbidder/internal/client/searchad"
	"adbidder/internal/gateway"
	"adbidder/internal/service"
)

// apiResponse is the envelope for every JSON reply. Code is 0 on success and
// the HTTP status otherwise; Reason names the failure class for clients.
type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Reason  string         `json:"reason,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Failure classes carried in apiResponse.Reason.
const (
	reasonInvalid        = "invalid_request"
	reasonInvalidStrat   = "invalid_strategy"
	reasonNoTargets      = "no_targets"
	reasonAlreadyRunning = "already_running"
	reasonNotRunning     = "not_running"
	reasonLeaseHeld      = "lease_held"
	reasonNotFound       = "not_found"
	reasonUpstream       = "upstream_error"
)

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// classify maps service and gateway errors to a status and reason. Anything
// unrecognised is an upstream failure.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, bidding.ErrInvalidStrategy):
		return http.StatusBadRequest, reasonInvalidStrat
	case errors.Is(err, service.ErrNoTargets):
		return http.StatusBadRequest, reasonNoTargets
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, reasonInvalid
	case errors.Is(err, service.ErrAlreadyRunning):
		return http.StatusConflict, reasonAlreadyRunning
	case errors.Is(err, service.ErrNotRunning):
		return http.StatusConflict, reasonNotRunning
	case errors.Is(err, service.ErrLeaseHeld):
		return http.StatusConflict, reasonLeaseHeld
	case errors.Is(err, gateway.ErrNotFound), searchad.IsNotFound(err):
		return http.StatusNotFound, reasonNotFound
	default:
		return http.StatusBadGateway, reasonUpstream
	}
}

func errorStatus(err error) int {
	status, _ := classify(err)
	return status
}

// fail writes err with its mapped status. Platform errors also expose the
// upstream status so clients can tell throttling from rejection.
func fail(c *gin.Context, err error) {
	failWithMeta(c, err, nil)
}

func failWithMeta(c *gin.Context, err error, meta map[string]any) {
	status, reason := classify(err)
	var apiErr *searchad.APIError
	if errors.As(err, &apiErr) {
		if meta == nil {
			meta = map[string]any{}
		}
		meta["upstream_status"] = apiErr.Status
	}
	c.JSON(status, apiResponse{
		Code:    status,
		Message: err.Error(),
		Reason:  reason,
		Meta:    meta,
	})
}
