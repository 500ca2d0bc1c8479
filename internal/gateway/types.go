package gateway

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusEligible     = "ELIGIBLE"
	StatusOn           = "ON"
	StatusOff          = "OFF"
	StatusPaused       = "PAUSED"
	StatusDeleted      = "DELETED"
	StatusUnregistered = "UNREGISTERED"
)

const (
	DevicePC     = "PC"
	DeviceMobile = "MOBILE"
)

// MinBid is the platform's minimum bid.
const MinBid = 70

// IsActive reports whether an entity status counts as running.
func IsActive(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case StatusEligible, StatusOn:
		return true
	default:
		return false
	}
}

// Stats is a performance snapshot for the current reporting window.
type Stats struct {
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Cost        decimal.Decimal `json:"cost"`
	Conversions int64           `json:"conversions"`
	ConvAmt     decimal.Decimal `json:"conv_amt"`
	AvgRank     float64         `json:"avg_rank"`
}

var hundred = decimal.NewFromInt(100)

// CTR is clicks/impressions in percent.
func (s Stats) CTR() decimal.Decimal {
	if s.Impressions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.Clicks).Div(decimal.NewFromInt(s.Impressions)).Mul(hundred).Round(2)
}

func (s Stats) CPC() decimal.Decimal {
	if s.Clicks <= 0 {
		return decimal.Zero
	}
	return s.Cost.Div(decimal.NewFromInt(s.Clicks)).Round(0)
}

func (s Stats) CPA() decimal.Decimal {
	if s.Conversions <= 0 {
		return decimal.Zero
	}
	return s.Cost.Div(decimal.NewFromInt(s.Conversions)).Round(0)
}

// ROAS is conversion amount over cost in percent.
func (s Stats) ROAS() decimal.Decimal {
	if !s.Cost.IsPositive() {
		return decimal.Zero
	}
	return s.ConvAmt.Div(s.Cost).Mul(hundred).Round(2)
}

func (s Stats) MarshalJSON() ([]byte, error) {
	type plain Stats
	return json.Marshal(struct {
		plain
		CTR  decimal.Decimal `json:"ctr"`
		CPC  decimal.Decimal `json:"cpc"`
		CPA  decimal.Decimal `json:"cpa"`
		ROAS decimal.Decimal `json:"roas"`
	}{plain(s), s.CTR(), s.CPC(), s.CPA(), s.ROAS()})
}

// BidEstimate is the platform's estimated bid to reach Rank.
type BidEstimate struct {
	Rank int `json:"rank"`
	Bid  int `json:"bid"`
}

type Keyword struct {
	ID          string        `json:"id"`
	AdGroupID   string        `json:"ad_group_id"`
	Text        string        `json:"text"`
	BidAmt      int           `json:"bid_amt"`
	Status      string        `json:"status"`
	UseGroupBid bool          `json:"use_group_bid"`
	Stats       Stats         `json:"stats"`
	CurrentRank int           `json:"current_rank"`
	Estimates   []BidEstimate `json:"estimates,omitempty"`
}

func (k Keyword) Active() bool { return IsActive(k.Status) }

// EstimateFor returns the estimated bid for rank, if one was fetched.
func (k Keyword) EstimateFor(rank int) (int, bool) {
	for _, e := range k.Estimates {
		if e.Rank == rank {
			return e.Bid, true
		}
	}
	return 0, false
}

type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type AdGroup struct {
	ID              string `json:"id"`
	CampaignID      string `json:"campaign_id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	BidAmt          int    `json:"bid_amt"`
	PCChannelID     string `json:"pc_channel_id,omitempty"`
	MobileChannelID string `json:"mobile_channel_id,omitempty"`
}

type Ad struct {
	ID          string `json:"id"`
	AdGroupID   string `json:"ad_group_id"`
	Type        string `json:"type"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	PCURL       string `json:"pc_url,omitempty"`
	MobileURL   string `json:"mobile_url,omitempty"`
	Locked      bool   `json:"locked"`
}

type Extension struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Type            string          `json:"type"`
	PCChannelID     string          `json:"pc_channel_id,omitempty"`
	MobileChannelID string          `json:"mobile_channel_id,omitempty"`
	Attributes      json.RawMessage `json:"attributes,omitempty"`
}

type BidUpdate struct {
	KeywordID string `json:"keyword_id"`
	AdGroupID string `json:"ad_group_id"`
	BidAmt    int    `json:"bid_amt"`
}

type BulkResult struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
}

type KeywordCreate struct {
	AdGroupID string `json:"ad_group_id"`
	Text      string `json:"text"`
	BidAmt    int    `json:"bid_amt"`
}

type KeywordCreateResult struct {
	AdGroupID string `json:"ad_group_id"`
	Text      string `json:"text"`
	KeywordID string `json:"keyword_id,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	Time       time.Time      `json:"time"`
	RunID      string         `json:"run_id,omitempty"`
	Mode       string         `json:"mode"`
	KeywordID  string         `json:"keyword_id,omitempty"`
	Keyword    string         `json:"keyword"`
	AdGroupID  string         `json:"ad_group_id,omitempty"`
	OldBid     int            `json:"old_bid"`
	NewBid     int            `json:"new_bid"`
	ReasonKind string         `json:"reason_kind"`
	Reason     string         `json:"reason"`
	Details    map[string]any `json:"details,omitempty"`
}
