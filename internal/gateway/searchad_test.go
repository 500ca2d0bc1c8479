package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"adbidder/internal/client/searchad"
)

type fakeAPI struct {
	mu sync.Mutex

	group     searchad.AdGroup
	keywords  []searchad.Keyword
	stats     []searchad.StatRow
	estimates []searchad.PositionBid
	estErr    error

	failUpdate map[string]bool
	updated    []searchad.KeywordBidUpdate

	rejectBatch bool
	rejectText  map[string]bool
	dropText    map[string]bool
	createCalls int
}

func (f *fakeAPI) ListCampaigns(ctx context.Context) ([]searchad.Campaign, error) { return nil, nil }
func (f *fakeAPI) GetCampaign(ctx context.Context, id string) (*searchad.Campaign, error) {
	return nil, &searchad.APIError{Status: 404}
}
func (f *fakeAPI) ListAdGroups(ctx context.Context, campaignID string) ([]searchad.AdGroup, error) {
	return []searchad.AdGroup{f.group}, nil
}
func (f *fakeAPI) GetAdGroup(ctx context.Context, id string) (*searchad.AdGroup, error) {
	g := f.group
	return &g, nil
}
func (f *fakeAPI) CreateAdGroup(ctx context.Context, campaignID, name string) (*searchad.AdGroup, error) {
	return &searchad.AdGroup{ID: "new", CampaignID: campaignID, Name: name}, nil
}
func (f *fakeAPI) ListKeywords(ctx context.Context, adGroupID string) ([]searchad.Keyword, error) {
	return f.keywords, nil
}
func (f *fakeAPI) UpdateKeywordBid(ctx context.Context, upd searchad.KeywordBidUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate[upd.ID] {
		return errors.New("boom")
	}
	f.updated = append(f.updated, upd)
	return nil
}
func (f *fakeAPI) CreateKeywords(ctx context.Context, adGroupID string, items []searchad.NewKeyword) ([]searchad.Keyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if len(items) > 1 && f.rejectBatch {
		return nil, &searchad.APIError{Status: 400, Body: "duplicate"}
	}
	out := make([]searchad.Keyword, 0, len(items))
	for _, it := range items {
		if f.rejectText[it.Keyword] {
			return nil, &searchad.APIError{Status: 400, Body: "duplicate"}
		}
		if f.dropText[it.Keyword] {
			continue
		}
		out = append(out, searchad.Keyword{ID: "id-" + it.Keyword, Keyword: it.Keyword, BidAmt: it.BidAmt})
	}
	return out, nil
}
func (f *fakeAPI) ListAds(ctx context.Context, adGroupID string) ([]searchad.Ad, error) {
	return nil, nil
}
func (f *fakeAPI) CreateAd(ctx context.Context, ad searchad.Ad) (*searchad.Ad, error) {
	return &ad, nil
}
func (f *fakeAPI) ListAdExtensions(ctx context.Context, ownerID string) ([]searchad.AdExtension, error) {
	return nil, nil
}
func (f *fakeAPI) CreateAdExtension(ctx context.Context, ext searchad.AdExtension) (*searchad.AdExtension, error) {
	return &ext, nil
}
func (f *fakeAPI) GetStats(ctx context.Context, ids []string, tr searchad.TimeRange) ([]searchad.StatRow, error) {
	return f.stats, nil
}
func (f *fakeAPI) EstimatePositionBids(ctx context.Context, device string, keywordIDs []string, position int) ([]searchad.PositionBid, error) {
	return f.estimates, f.estErr
}

func TestFetchKeywords_MergesGroupBidStatsAndEstimates(t *testing.T) {
	api := &fakeAPI{
		group: searchad.AdGroup{ID: "g1", BidAmt: 880},
		keywords: []searchad.Keyword{
			{ID: "k1", AdGroupID: "g1", Keyword: "running shoes", BidAmt: 500, Status: "ELIGIBLE"},
			{ID: "k2", AdGroupID: "g1", Keyword: "trail shoes", BidAmt: 70, UseGroupBidAmt: true, Status: "PAUSED"},
		},
		stats: []searchad.StatRow{
			{ID: "k1", Impressions: 120, Clicks: 6, Cost: decimal.NewFromInt(3000), AvgRank: 4.6},
			{ID: "k2", Impressions: 0, AvgRank: 0},
		},
		estimates: []searchad.PositionBid{{KeywordID: "k1", Position: 3, Bid: 1240}},
	}
	g := &SearchAdGateway{API: api}

	items, err := g.FetchKeywords(context.Background(), "g1", DeviceMobile, 3)
	if err != nil {
		t.Fatalf("FetchKeywords err=%v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len=%d want 2", len(items))
	}
	k1, k2 := items[0], items[1]
	if k1.CurrentRank != 5 {
		t.Fatalf("k1 rank=%d want 5", k1.CurrentRank)
	}
	if bid, ok := k1.EstimateFor(3); !ok || bid != 1240 {
		t.Fatalf("k1 estimate=%d ok=%v", bid, ok)
	}
	if k1.Stats.CTR().String() != "5" {
		t.Fatalf("k1 ctr=%s want 5", k1.Stats.CTR())
	}
	if k1.Stats.CPC().String() != "500" {
		t.Fatalf("k1 cpc=%s want 500", k1.Stats.CPC())
	}
	if k2.BidAmt != 880 || !k2.UseGroupBid {
		t.Fatalf("k2 should report the group bid, got %d", k2.BidAmt)
	}
	if k2.CurrentRank != 0 || k2.Active() {
		t.Fatalf("k2 rank=%d active=%v", k2.CurrentRank, k2.Active())
	}
}

func TestFetchKeywords_EstimateFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{
		group:    searchad.AdGroup{ID: "g1"},
		keywords: []searchad.Keyword{{ID: "k1", BidAmt: 500, Status: "ON"}},
		estErr:   errors.New("estimate down"),
	}
	g := &SearchAdGateway{API: api}
	items, err := g.FetchKeywords(context.Background(), "g1", DevicePC, 3)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 1 || len(items[0].Estimates) != 0 {
		t.Fatalf("items=%+v", items)
	}
}

func TestBulkUpdateBids_PartialFailureCounts(t *testing.T) {
	api := &fakeAPI{failUpdate: map[string]bool{"k2": true}}
	g := &SearchAdGateway{API: api, Concurrency: 2}
	res, err := g.BulkUpdateBids(context.Background(), []BidUpdate{
		{KeywordID: "k1", AdGroupID: "g", BidAmt: 600},
		{KeywordID: "k2", AdGroupID: "g", BidAmt: 700},
		{KeywordID: "k3", AdGroupID: "g", BidAmt: 800},
	})
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if res.Requested != 3 || res.Succeeded != 2 {
		t.Fatalf("res=%+v", res)
	}
}

func TestBulkUpdateBids_AllFailed(t *testing.T) {
	api := &fakeAPI{failUpdate: map[string]bool{"k1": true}}
	g := &SearchAdGateway{API: api}
	if _, err := g.BulkUpdateBids(context.Background(), []BidUpdate{{KeywordID: "k1"}}); err == nil {
		t.Fatalf("expected error when every item failed")
	}
}

func TestBulkCreateKeywords_FallsBackPerItem(t *testing.T) {
	api := &fakeAPI{rejectBatch: true, rejectText: map[string]bool{"dup": true}}
	g := &SearchAdGateway{API: api}
	res, err := g.BulkCreateKeywords(context.Background(), []KeywordCreate{
		{AdGroupID: "g", Text: "a"},
		{AdGroupID: "g", Text: "dup"},
		{AdGroupID: "g", Text: "b"},
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	ok := 0
	for _, r := range res {
		if r.OK {
			ok++
		}
	}
	if len(res) != 3 || ok != 2 {
		t.Fatalf("res=%+v", res)
	}
	if res[1].OK || res[1].Error == "" {
		t.Fatalf("dup should fail: %+v", res[1])
	}
}

func TestBulkCreateKeywords_MissingFromBatchResponseFails(t *testing.T) {
	api := &fakeAPI{dropText: map[string]bool{"b": true}}
	g := &SearchAdGateway{API: api}
	res, err := g.BulkCreateKeywords(context.Background(), []KeywordCreate{
		{AdGroupID: "g", Text: "a"},
		{AdGroupID: "g", Text: "b"},
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(res) != 2 || api.createCalls != 1 {
		t.Fatalf("res=%+v calls=%d", res, api.createCalls)
	}
	if !res[0].OK || res[0].KeywordID != "id-a" {
		t.Fatalf("a=%+v", res[0])
	}
	if res[1].OK || res[1].Error == "" {
		t.Fatalf("b should not be reported created: %+v", res[1])
	}
}

func TestFetchCampaign_NotFound(t *testing.T) {
	g := &SearchAdGateway{API: &fakeAPI{}}
	_, err := g.FetchCampaign(context.Background(), "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestRankFromAverage(t *testing.T) {
	cases := map[float64]int{0: 0, 0.3: 1, 1.4: 1, 2.5: 3, 7.9: 8}
	for in, want := range cases {
		if got := rankFromAverage(in); got != want {
			t.Fatalf("rankFromAverage(%v)=%d want %d", in, got, want)
		}
	}
}
