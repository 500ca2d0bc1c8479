package searchad

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Campaign struct {
	ID           string `json:"nccCampaignId"`
	CustomerID   int64  `json:"customerId"`
	Name         string `json:"name"`
	CampaignType string `json:"campaignTp"`
	Status       string `json:"status"`
	StatusReason string `json:"statusReason"`
	UserLock     bool   `json:"userLock"`
}

type AdGroup struct {
	ID              string `json:"nccAdgroupId"`
	CampaignID      string `json:"nccCampaignId"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	BidAmt          int    `json:"bidAmt"`
	PCChannelID     string `json:"pcChannelId,omitempty"`
	MobileChannelID string `json:"mobileChannelId,omitempty"`
	UserLock        bool   `json:"userLock"`
	AdgroupType     string `json:"adgroupType,omitempty"`
}

type Keyword struct {
	ID             string `json:"nccKeywordId"`
	AdGroupID      string `json:"nccAdgroupId"`
	Keyword        string `json:"keyword"`
	BidAmt         int    `json:"bidAmt"`
	UseGroupBidAmt bool   `json:"useGroupBidAmt"`
	Status         string `json:"status"`
	UserLock       bool   `json:"userLock"`
}

type KeywordBidUpdate struct {
	ID             string `json:"nccKeywordId"`
	AdGroupID      string `json:"nccAdgroupId"`
	BidAmt         int    `json:"bidAmt"`
	UseGroupBidAmt bool   `json:"useGroupBidAmt"`
}

type NewKeyword struct {
	Keyword        string `json:"keyword"`
	BidAmt         int    `json:"bidAmt,omitempty"`
	UseGroupBidAmt bool   `json:"useGroupBidAmt"`
}

type Ad struct {
	ID        string          `json:"nccAdId,omitempty"`
	AdGroupID string          `json:"nccAdgroupId"`
	Type      string          `json:"type"`
	Ad        json.RawMessage `json:"ad"`
	UserLock  bool            `json:"userLock"`
	Status    string          `json:"status,omitempty"`
}

type AdExtension struct {
	ID              string          `json:"nccAdExtensionId,omitempty"`
	OwnerID         string          `json:"ownerId"`
	Type            string          `json:"type"`
	PCChannelID     string          `json:"pcChannelId,omitempty"`
	MobileChannelID string          `json:"mobileChannelId,omitempty"`
	AdExtension     json.RawMessage `json:"adExtension,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// StatRow is one entity's row from the /stats report.
type StatRow struct {
	ID          string          `json:"id"`
	Impressions int64           `json:"impCnt"`
	Clicks      int64           `json:"clkCnt"`
	Cost        decimal.Decimal `json:"salesAmt"`
	Conversions int64           `json:"ccnt"`
	AvgRank     float64         `json:"avgRnk"`
	ConvAmt     decimal.Decimal `json:"convAmt"`
}

type statsResponse struct {
	Data []StatRow `json:"data"`
}

type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

type EstimateItem struct {
	Key      string `json:"key"`
	Position int    `json:"position"`
}

type estimateRequest struct {
	Device string         `json:"device"`
	Items  []EstimateItem `json:"items"`
}

// PositionBid is the estimated bid needed to reach Position for a keyword.
type PositionBid struct {
	KeywordID    string `json:"keywordId"`
	NccKeywordID string `json:"nccKeywordId"`
	Key          string `json:"key"`
	Position     int    `json:"position"`
	Bid          int    `json:"bid"`
}

// ID returns whichever keyword identifier the API populated.
func (p PositionBid) ID() string {
	switch {
	case p.NccKeywordID != "":
		return p.NccKeywordID
	case p.KeywordID != "":
		return p.KeywordID
	default:
		return p.Key
	}
}

type estimateResponse struct {
	Estimate []PositionBid `json:"estimate"`
}
