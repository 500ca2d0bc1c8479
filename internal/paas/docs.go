package paas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Search Ad Bidder

Automated keyword bidding and keyword expansion for a search-ad account.

## Auth

All /api/* routes require a Bearer JWT (HS256). Health endpoints are public.

## Routes

- GET  /healthz, /readyz, /swagger/index.html
- GET  /api/v1/campaigns, /api/v1/adgroups, /api/v1/keywords
- GET|PUT /api/v1/autobid/strategy, /api/v1/autobid/targets
- POST /api/v1/autobid/start, /api/v1/autobid/stop
- PUT  /api/v1/autobid/loop
- GET  /api/v1/autobid/status, /api/v1/autobid/recent, /api/v1/autobid/stream (websocket)
- GET|POST /api/v1/watchlist, DELETE /api/v1/watchlist/:keyword_id, GET /api/v1/watchlist/search
- POST /api/v1/expansion/combine, /api/v1/expansion/batch, /api/v1/expansion/overflow
- POST /api/v1/creatives/clone
- GET  /api/v1/bid-logs, /api/v1/bid-logs/export, /api/v1/bid-runs, /api/v1/bid-runs/:id, /api/v1/expansion-runs
- GET  /api/v1/system-settings, /api/v1/system-settings/switches
- PUT  /api/v1/system-settings/switches/:name
`)
	})
}
