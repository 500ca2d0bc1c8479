package searchad

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// MaxIDsPerRequest is the per-call id limit of /stats and the estimate API.
const MaxIDsPerRequest = 50

var statFields = []string{"impCnt", "clkCnt", "salesAmt", "ccnt", "avgRnk", "convAmt"}

// GetStats fetches report rows for at most MaxIDsPerRequest ids.
func (c *Client) GetStats(ctx context.Context, ids []string, tr TimeRange) ([]StatRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fields, _ := json.Marshal(statFields)
	rng, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	query := map[string]string{
		"ids":       strings.Join(ids, ","),
		"fields":    string(fields),
		"timeRange": string(rng),
	}
	var out statsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// EstimatePositionBids asks for the bid needed to reach position for each keyword id.
func (c *Client) EstimatePositionBids(ctx context.Context, device string, keywordIDs []string, position int) ([]PositionBid, error) {
	if len(keywordIDs) == 0 {
		return nil, nil
	}
	req := estimateRequest{Device: device, Items: make([]EstimateItem, 0, len(keywordIDs))}
	for _, id := range keywordIDs {
		req.Items = append(req.Items, EstimateItem{Key: id, Position: position})
	}
	var out estimateResponse
	if err := c.do(ctx, http.MethodPost, "/estimate/average-position-bid/id", nil, req, &out); err != nil {
		return nil, err
	}
	for i := range out.Estimate {
		if out.Estimate[i].Position == 0 {
			out.Estimate[i].Position = position
		}
	}
	return out.Estimate, nil
}
