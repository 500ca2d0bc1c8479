package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"adbidder/internal/client/searchad"
	"adbidder/internal/models"
	"adbidder/internal/paas"
	"adbidder/internal/repository"
)

// API is the subset of the search-ad client used by SearchAdGateway.
type API interface {
	ListCampaigns(ctx context.Context) ([]searchad.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*searchad.Campaign, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]searchad.AdGroup, error)
	GetAdGroup(ctx context.Context, id string) (*searchad.AdGroup, error)
	CreateAdGroup(ctx context.Context, campaignID, name string) (*searchad.AdGroup, error)
	ListKeywords(ctx context.Context, adGroupID string) ([]searchad.Keyword, error)
	UpdateKeywordBid(ctx context.Context, upd searchad.KeywordBidUpdate) error
	CreateKeywords(ctx context.Context, adGroupID string, items []searchad.NewKeyword) ([]searchad.Keyword, error)
	ListAds(ctx context.Context, adGroupID string) ([]searchad.Ad, error)
	CreateAd(ctx context.Context, ad searchad.Ad) (*searchad.Ad, error)
	ListAdExtensions(ctx context.Context, ownerID string) ([]searchad.AdExtension, error)
	CreateAdExtension(ctx context.Context, ext searchad.AdExtension) (*searchad.AdExtension, error)
	GetStats(ctx context.Context, ids []string, tr searchad.TimeRange) ([]searchad.StatRow, error)
	EstimatePositionBids(ctx context.Context, device string, keywordIDs []string, position int) ([]searchad.PositionBid, error)
}

// SearchAdGateway implements Gateway on top of the signed REST client.
// Audit entries go to Postgres and are mirrored to the PaaS log API while Forward reports true.
type SearchAdGateway struct {
	API    API
	Audit  repository.BidLogRepository
	Logger *zap.Logger

	// Concurrency bounds per-item bulk calls; defaults to 5.
	Concurrency int
	// Location picks the reporting day for stats; defaults to time.Local.
	Location *time.Location
	// StatsPause is slept between stats/estimate chunks.
	StatsPause time.Duration
	Forward    func(ctx context.Context) bool
}

var _ Gateway = (*SearchAdGateway)(nil)

func (g *SearchAdGateway) FetchCampaigns(ctx context.Context) ([]Campaign, error) {
	raw, err := g.API.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	out := make([]Campaign, 0, len(raw))
	for _, c := range raw {
		out = append(out, toCampaign(c))
	}
	return out, nil
}

func (g *SearchAdGateway) FetchCampaign(ctx context.Context, campaignID string) (*Campaign, error) {
	raw, err := g.API.GetCampaign(ctx, campaignID)
	if searchad.IsNotFound(err) {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", campaignID, err)
	}
	c := toCampaign(*raw)
	return &c, nil
}

func (g *SearchAdGateway) FetchAdGroups(ctx context.Context, campaignID string) ([]AdGroup, error) {
	raw, err := g.API.ListAdGroups(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list ad groups of %s: %w", campaignID, err)
	}
	out := make([]AdGroup, 0, len(raw))
	for _, a := range raw {
		out = append(out, toAdGroup(a))
	}
	return out, nil
}

func (g *SearchAdGateway) FetchAdGroup(ctx context.Context, adGroupID string) (*AdGroup, error) {
	raw, err := g.API.GetAdGroup(ctx, adGroupID)
	if searchad.IsNotFound(err) {
		return nil, fmt.Errorf("ad group %s: %w", adGroupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ad group %s: %w", adGroupID, err)
	}
	a := toAdGroup(*raw)
	return &a, nil
}

func (g *SearchAdGateway) FetchKeywords(ctx context.Context, adGroupID, device string, targetRank int) ([]Keyword, error) {
	group, err := g.API.GetAdGroup(ctx, adGroupID)
	if err != nil {
		return nil, fmt.Errorf("get ad group %s: %w", adGroupID, err)
	}
	raw, err := g.API.ListKeywords(ctx, adGroupID)
	if err != nil {
		return nil, fmt.Errorf("list keywords of %s: %w", adGroupID, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(raw))
	for _, k := range raw {
		ids = append(ids, k.ID)
	}

	stats, err := g.fetchStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	estimates := map[string]int{}
	if targetRank > 0 {
		estimates = g.fetchEstimates(ctx, device, ids, targetRank)
	}

	out := make([]Keyword, 0, len(raw))
	for _, k := range raw {
		bid := k.BidAmt
		if k.UseGroupBidAmt {
			bid = group.BidAmt
		}
		row := stats[k.ID]
		kw := Keyword{
			ID:          k.ID,
			AdGroupID:   k.AdGroupID,
			Text:        k.Keyword,
			BidAmt:      bid,
			Status:      k.Status,
			UseGroupBid: k.UseGroupBidAmt,
			Stats: Stats{
				Impressions: row.Impressions,
				Clicks:      row.Clicks,
				Cost:        row.Cost,
				Conversions: row.Conversions,
				ConvAmt:     row.ConvAmt,
				AvgRank:     row.AvgRank,
			},
			CurrentRank: rankFromAverage(row.AvgRank),
		}
		if kw.AdGroupID == "" {
			kw.AdGroupID = adGroupID
		}
		if est, ok := estimates[k.ID]; ok {
			kw.Estimates = []BidEstimate{{Rank: targetRank, Bid: est}}
		}
		out = append(out, kw)
	}
	return out, nil
}

func (g *SearchAdGateway) CountKeywords(ctx context.Context, adGroupID string) (int, error) {
	raw, err := g.API.ListKeywords(ctx, adGroupID)
	if err != nil {
		return 0, fmt.Errorf("list keywords of %s: %w", adGroupID, err)
	}
	return len(raw), nil
}

func (g *SearchAdGateway) fetchStats(ctx context.Context, ids []string) (map[string]searchad.StatRow, error) {
	day := time.Now().In(g.location()).Format("2006-01-02")
	tr := searchad.TimeRange{Since: day, Until: day}
	out := make(map[string]searchad.StatRow, len(ids))
	for i, chunk := range chunkStrings(ids, searchad.MaxIDsPerRequest) {
		if i > 0 && g.StatsPause > 0 {
			if err := sleepCtx(ctx, g.StatsPause); err != nil {
				return nil, err
			}
		}
		rows, err := g.API.GetStats(ctx, chunk, tr)
		if err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		for _, r := range rows {
			out[r.ID] = r
		}
	}
	return out, nil
}

// fetchEstimates is best-effort: a failed chunk leaves those keywords without an estimate.
func (g *SearchAdGateway) fetchEstimates(ctx context.Context, device string, ids []string, rank int) map[string]int {
	out := make(map[string]int, len(ids))
	for i, chunk := range chunkStrings(ids, searchad.MaxIDsPerRequest) {
		if i > 0 && g.StatsPause > 0 {
			if err := sleepCtx(ctx, g.StatsPause); err != nil {
				return out
			}
		}
		items, err := g.API.EstimatePositionBids(ctx, device, chunk, rank)
		if err != nil {
			if g.Logger != nil {
				g.Logger.Warn("position bid estimate failed", zap.Int("keywords", len(chunk)), zap.Error(err))
			}
			continue
		}
		for _, it := range items {
			if it.Position != rank || it.Bid <= 0 {
				continue
			}
			out[it.ID()] = it.Bid
		}
	}
	return out
}

func (g *SearchAdGateway) BulkUpdateBids(ctx context.Context, updates []BidUpdate) (BulkResult, error) {
	res := BulkResult{Requested: len(updates)}
	if len(updates) == 0 {
		return res, nil
	}
	var ok int64
	var mu sync.Mutex
	var firstErr error
	var eg errgroup.Group
	eg.SetLimit(g.concurrency())
	for _, u := range updates {
		u := u
		eg.Go(func() error {
			err := g.API.UpdateKeywordBid(ctx, searchad.KeywordBidUpdate{
				ID:        u.KeywordID,
				AdGroupID: u.AdGroupID,
				BidAmt:    u.BidAmt,
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				if g.Logger != nil {
					g.Logger.Debug("keyword bid update failed", zap.String("keyword_id", u.KeywordID), zap.Error(err))
				}
				return nil
			}
			atomic.AddInt64(&ok, 1)
			return nil
		})
	}
	_ = eg.Wait()
	res.Succeeded = int(ok)
	if res.Succeeded == 0 {
		return res, fmt.Errorf("bulk bid update: all %d items failed: %w", res.Requested, firstErr)
	}
	return res, nil
}

// BulkCreateKeywords posts one batch per ad group and falls back to per-item
// creation when the batch is rejected, so results are always per item.
func (g *SearchAdGateway) BulkCreateKeywords(ctx context.Context, items []KeywordCreate) ([]KeywordCreateResult, error) {
	if len(items) == 0 {
		return nil, nil
	}
	order := []string{}
	byGroup := map[string][]KeywordCreate{}
	for _, it := range items {
		if _, ok := byGroup[it.AdGroupID]; !ok {
			order = append(order, it.AdGroupID)
		}
		byGroup[it.AdGroupID] = append(byGroup[it.AdGroupID], it)
	}

	out := make([]KeywordCreateResult, 0, len(items))
	for _, groupID := range order {
		batch := byGroup[groupID]
		payload := make([]searchad.NewKeyword, 0, len(batch))
		for _, it := range batch {
			payload = append(payload, newKeyword(it))
		}
		created, err := g.API.CreateKeywords(ctx, groupID, payload)
		if err == nil {
			ids := map[string]string{}
			for _, k := range created {
				ids[k.Keyword] = k.ID
			}
			for _, it := range batch {
				r := KeywordCreateResult{AdGroupID: groupID, Text: it.Text, KeywordID: ids[it.Text]}
				if r.KeywordID != "" {
					r.OK = true
				} else {
					r.Error = "keyword missing from batch response"
				}
				out = append(out, r)
			}
			continue
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if g.Logger != nil {
			g.Logger.Info("keyword batch rejected, retrying per item",
				zap.String("ad_group_id", groupID), zap.Int("keywords", len(batch)), zap.Error(err))
		}
		out = append(out, g.createEach(ctx, groupID, batch)...)
	}
	return out, nil
}

func (g *SearchAdGateway) createEach(ctx context.Context, groupID string, batch []KeywordCreate) []KeywordCreateResult {
	results := make([]KeywordCreateResult, len(batch))
	var eg errgroup.Group
	eg.SetLimit(g.concurrency())
	for i, it := range batch {
		i, it := i, it
		eg.Go(func() error {
			r := KeywordCreateResult{AdGroupID: groupID, Text: it.Text}
			created, err := g.API.CreateKeywords(ctx, groupID, []searchad.NewKeyword{newKeyword(it)})
			if err != nil {
				r.Error = err.Error()
			} else {
				r.OK = true
				if len(created) > 0 {
					r.KeywordID = created[0].ID
				}
			}
			results[i] = r
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func (g *SearchAdGateway) CreateAdGroup(ctx context.Context, campaignID, name string) (*AdGroup, error) {
	raw, err := g.API.CreateAdGroup(ctx, campaignID, name)
	if err != nil {
		return nil, fmt.Errorf("create ad group %q: %w", name, err)
	}
	a := toAdGroup(*raw)
	return &a, nil
}

func (g *SearchAdGateway) FetchAds(ctx context.Context, adGroupID string) ([]Ad, error) {
	raw, err := g.API.ListAds(ctx, adGroupID)
	if err != nil {
		return nil, fmt.Errorf("list ads of %s: %w", adGroupID, err)
	}
	out := make([]Ad, 0, len(raw))
	for _, a := range raw {
		out = append(out, toAd(a))
	}
	return out, nil
}

func (g *SearchAdGateway) CreateAd(ctx context.Context, adGroupID string, ad Ad) (*Ad, error) {
	body, err := json.Marshal(adBody{
		Headline:    ad.Headline,
		Description: ad.Description,
		PC:          linkBody{Final: ad.PCURL},
		Mobile:      linkBody{Final: ad.MobileURL},
	})
	if err != nil {
		return nil, err
	}
	typ := ad.Type
	if typ == "" {
		typ = "TEXT_45"
	}
	raw, err := g.API.CreateAd(ctx, searchad.Ad{AdGroupID: adGroupID, Type: typ, Ad: body})
	if err != nil {
		return nil, fmt.Errorf("create ad in %s: %w", adGroupID, err)
	}
	out := toAd(*raw)
	return &out, nil
}

func (g *SearchAdGateway) FetchExtensions(ctx context.Context, adGroupID string) ([]Extension, error) {
	raw, err := g.API.ListAdExtensions(ctx, adGroupID)
	if err != nil {
		return nil, fmt.Errorf("list extensions of %s: %w", adGroupID, err)
	}
	out := make([]Extension, 0, len(raw))
	for _, e := range raw {
		out = append(out, toExtension(e))
	}
	return out, nil
}

func (g *SearchAdGateway) CreateExtension(ctx context.Context, adGroupID string, ext Extension) (*Extension, error) {
	raw, err := g.API.CreateAdExtension(ctx, searchad.AdExtension{
		OwnerID:         adGroupID,
		Type:            ext.Type,
		PCChannelID:     ext.PCChannelID,
		MobileChannelID: ext.MobileChannelID,
		AdExtension:     ext.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s extension in %s: %w", ext.Type, adGroupID, err)
	}
	out := toExtension(*raw)
	return &out, nil
}

func (g *SearchAdGateway) AppendAuditLog(ctx context.Context, entries []AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.BidLog, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toBidLog(e))
	}
	var err error
	if g.Audit != nil {
		err = g.Audit.InsertBidLogs(ctx, rows)
	}
	if g.Forward != nil && g.Forward(ctx) {
		for _, e := range entries {
			paas.LogBestEffortCtx(ctx, "searchad_bid_audit", "info", map[string]any{
				"run_id":     e.RunID,
				"mode":       e.Mode,
				"keyword_id": e.KeywordID,
				"keyword":    e.Keyword,
				"old_bid":    e.OldBid,
				"new_bid":    e.NewBid,
				"reason":     e.Reason,
			})
		}
	}
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func (g *SearchAdGateway) concurrency() int {
	if g.Concurrency <= 0 {
		return 5
	}
	return g.Concurrency
}

func (g *SearchAdGateway) location() *time.Location {
	if g.Location == nil {
		return time.Local
	}
	return g.Location
}

// rankFromAverage maps the reported average position to a whole rank; 0 means unranked.
func rankFromAverage(avg float64) int {
	if avg <= 0 || math.IsNaN(avg) {
		return 0
	}
	r := int(math.Round(avg))
	if r < 1 {
		return 1
	}
	return r
}

type adBody struct {
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	PC          linkBody `json:"pc"`
	Mobile      linkBody `json:"mobile"`
}

type linkBody struct {
	Final string `json:"final,omitempty"`
}

func newKeyword(it KeywordCreate) searchad.NewKeyword {
	bid := it.BidAmt
	if bid < MinBid {
		bid = MinBid
	}
	return searchad.NewKeyword{Keyword: strings.TrimSpace(it.Text), BidAmt: bid, UseGroupBidAmt: false}
}

func toCampaign(c searchad.Campaign) Campaign {
	return Campaign{ID: c.ID, Name: c.Name, Type: c.CampaignType, Status: c.Status}
}

func toAdGroup(a searchad.AdGroup) AdGroup {
	return AdGroup{
		ID:              a.ID,
		CampaignID:      a.CampaignID,
		Name:            a.Name,
		Status:          a.Status,
		BidAmt:          a.BidAmt,
		PCChannelID:     a.PCChannelID,
		MobileChannelID: a.MobileChannelID,
	}
}

func toAd(a searchad.Ad) Ad {
	var body adBody
	_ = json.Unmarshal(a.Ad, &body)
	return Ad{
		ID:          a.ID,
		AdGroupID:   a.AdGroupID,
		Type:        a.Type,
		Headline:    body.Headline,
		Description: body.Description,
		PCURL:       body.PC.Final,
		MobileURL:   body.Mobile.Final,
		Locked:      a.UserLock,
	}
}

func toExtension(e searchad.AdExtension) Extension {
	return Extension{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Type:            e.Type,
		PCChannelID:     e.PCChannelID,
		MobileChannelID: e.MobileChannelID,
		Attributes:      e.AdExtension,
	}
}

func toBidLog(e AuditEntry) models.BidLog {
	at := e.Time
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var details datatypes.JSON
	if len(e.Details) > 0 {
		if raw, err := json.Marshal(e.Details); err == nil {
			details = datatypes.JSON(raw)
		}
	}
	return models.BidLog{
		RunID:      e.RunID,
		Mode:       e.Mode,
		KeywordID:  e.KeywordID,
		Keyword:    e.Keyword,
		AdGroupID:  e.AdGroupID,
		OldBid:     e.OldBid,
		NewBid:     e.NewBid,
		Delta:      e.NewBid - e.OldBid,
		ReasonKind: e.ReasonKind,
		Reason:     e.Reason,
		Details:    details,
		LoggedAt:   at,
	}
}

func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var out [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrNotFound is returned by lookups when the remote entity no longer exists.
var ErrNotFound = errors.New("not found")
