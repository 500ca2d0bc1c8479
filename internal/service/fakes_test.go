package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"adbidder/internal/gateway"
	"adbidder/internal/models"
	"adbidder/internal/repository"
)

// fakeGateway is an in-memory platform. Hooks run before the matching call.
type fakeGateway struct {
	mu sync.Mutex

	campaigns map[string]gateway.Campaign
	groups    map[string]gateway.AdGroup // by id
	groupIDs  []string                   // creation order
	keywords  map[string][]gateway.Keyword
	counts    map[string]int
	ads       map[string][]gateway.Ad
	exts      map[string][]gateway.Extension

	bulkCalls   [][]gateway.BidUpdate
	createCalls [][]gateway.KeywordCreate
	audits      []gateway.AuditEntry
	createdAds  map[string][]gateway.Ad
	createdExts map[string][]gateway.Extension
	fetchOrder  []string

	onFetchKeywords func(adGroupID string)
	createGroupErr  func(name string) error
	keywordsErr     map[string]error
	createAdErr     error
	adsErr          error
	extsErr         error
	nextID          int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		campaigns:   map[string]gateway.Campaign{},
		groups:      map[string]gateway.AdGroup{},
		keywords:    map[string][]gateway.Keyword{},
		counts:      map[string]int{},
		ads:         map[string][]gateway.Ad{},
		exts:        map[string][]gateway.Extension{},
		createdAds:  map[string][]gateway.Ad{},
		createdExts: map[string][]gateway.Extension{},
		keywordsErr: map[string]error{},
	}
}

func (f *fakeGateway) addCampaign(id, name, status string) {
	f.campaigns[id] = gateway.Campaign{ID: id, Name: name, Status: status}
}

func (f *fakeGateway) addGroup(g gateway.AdGroup) {
	if g.Status == "" {
		g.Status = gateway.StatusEligible
	}
	f.groups[g.ID] = g
	f.groupIDs = append(f.groupIDs, g.ID)
}

func (f *fakeGateway) FetchCampaigns(ctx context.Context) ([]gateway.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Campaign, 0, len(f.campaigns))
	for _, c := range f.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGateway) FetchCampaign(ctx context.Context, id string) (*gateway.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s: %w", id, gateway.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeGateway) FetchAdGroups(ctx context.Context, campaignID string) ([]gateway.AdGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gateway.AdGroup
	for _, id := range f.groupIDs {
		if g := f.groups[id]; g.CampaignID == campaignID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGateway) FetchAdGroup(ctx context.Context, id string) (*gateway.AdGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, fmt.Errorf("ad group %s: %w", id, gateway.ErrNotFound)
	}
	return &g, nil
}

func (f *fakeGateway) FetchKeywords(ctx context.Context, adGroupID, device string, targetRank int) ([]gateway.Keyword, error) {
	f.mu.Lock()
	f.fetchOrder = append(f.fetchOrder, adGroupID)
	hook := f.onFetchKeywords
	err := f.keywordsErr[adGroupID]
	out := append([]gateway.Keyword(nil), f.keywords[adGroupID]...)
	f.mu.Unlock()
	if hook != nil {
		hook(adGroupID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeGateway) CountKeywords(ctx context.Context, adGroupID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.counts[adGroupID]; ok {
		return n, nil
	}
	return len(f.keywords[adGroupID]), nil
}

func (f *fakeGateway) BulkUpdateBids(ctx context.Context, updates []gateway.BidUpdate) (gateway.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, append([]gateway.BidUpdate(nil), updates...))
	return gateway.BulkResult{Requested: len(updates), Succeeded: len(updates)}, nil
}

func (f *fakeGateway) BulkCreateKeywords(ctx context.Context, items []gateway.KeywordCreate) ([]gateway.KeywordCreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, append([]gateway.KeywordCreate(nil), items...))
	out := make([]gateway.KeywordCreateResult, 0, len(items))
	for _, it := range items {
		if it.Text == "rejected" {
			out = append(out, gateway.KeywordCreateResult{AdGroupID: it.AdGroupID, Text: it.Text, Error: "invalid keyword"})
			continue
		}
		f.counts[it.AdGroupID]++
		out = append(out, gateway.KeywordCreateResult{AdGroupID: it.AdGroupID, Text: it.Text, OK: true})
	}
	return out, nil
}

func (f *fakeGateway) CreateAdGroup(ctx context.Context, campaignID, name string) (*gateway.AdGroup, error) {
	if f.createGroupErr != nil {
		if err := f.createGroupErr(name); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g := gateway.AdGroup{
		ID:              fmt.Sprintf("grp-new-%d", f.nextID),
		CampaignID:      campaignID,
		Name:            name,
		Status:          gateway.StatusEligible,
		PCChannelID:     fmt.Sprintf("pc-new-%d", f.nextID),
		MobileChannelID: fmt.Sprintf("mo-new-%d", f.nextID),
	}
	f.groups[g.ID] = g
	f.groupIDs = append(f.groupIDs, g.ID)
	return &g, nil
}

func (f *fakeGateway) FetchAds(ctx context.Context, adGroupID string) ([]gateway.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.adsErr != nil {
		return nil, f.adsErr
	}
	return f.ads[adGroupID], nil
}

func (f *fakeGateway) CreateAd(ctx context.Context, adGroupID string, ad gateway.Ad) (*gateway.Ad, error) {
	if f.createAdErr != nil {
		return nil, f.createAdErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ad.AdGroupID = adGroupID
	f.createdAds[adGroupID] = append(f.createdAds[adGroupID], ad)
	return &ad, nil
}

func (f *fakeGateway) FetchExtensions(ctx context.Context, adGroupID string) ([]gateway.Extension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extsErr != nil {
		return nil, f.extsErr
	}
	return f.exts[adGroupID], nil
}

func (f *fakeGateway) CreateExtension(ctx context.Context, adGroupID string, ext gateway.Extension) (*gateway.Extension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ext.OwnerID = adGroupID
	f.createdExts[adGroupID] = append(f.createdExts[adGroupID], ext)
	return &ext, nil
}

func (f *fakeGateway) AppendAuditLog(ctx context.Context, entries []gateway.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, entries...)
	return nil
}

func (f *fakeGateway) bulkSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, 0, len(f.bulkCalls))
	for _, c := range f.bulkCalls {
		out = append(out, len(c))
	}
	return out
}

func (f *fakeGateway) auditCopy() []gateway.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.AuditEntry(nil), f.audits...)
}

func (f *fakeGateway) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetchOrder...)
}

// memRepo is a test-only in-memory repository.Repository.
type memRepo struct {
	mu         sync.Mutex
	logs       []models.BidLog
	runs       map[string]models.BidRun
	watch      map[string]models.WatchKeyword
	expansions []models.ExpansionRun
	settings   map[string]models.SystemSetting
}

var _ repository.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		runs:     map[string]models.BidRun{},
		watch:    map[string]models.WatchKeyword{},
		settings: map[string]models.SystemSetting{},
	}
}

func (r *memRepo) InsertBidLogs(ctx context.Context, items []models.BidLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, items...)
	return nil
}

func (r *memRepo) ListBidLogs(ctx context.Context, p repository.ListBidLogsParams) ([]models.BidLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BidLog
	for _, l := range r.logs {
		if p.Since != nil && l.LoggedAt.Before(*p.Since) {
			continue
		}
		if p.Until != nil && !l.LoggedAt.Before(*p.Until) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoggedAt.Before(out[j].LoggedAt) })
	if p.Offset >= len(out) {
		return nil, nil
	}
	out = out[p.Offset:]
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (r *memRepo) CountBidLogs(ctx context.Context, p repository.ListBidLogsParams) (int64, error) {
	items, err := r.ListBidLogs(ctx, repository.ListBidLogsParams{Since: p.Since, Until: p.Until})
	return int64(len(items)), err
}

func (r *memRepo) DeleteBidLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.logs[:0]
	var n int64
	for _, l := range r.logs {
		if l.LoggedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return n, nil
}

func (r *memRepo) UpsertBidRun(ctx context.Context, item *models.BidRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[item.ID] = *item
	return nil
}

func (r *memRepo) GetBidRun(ctx context.Context, id string) (*models.BidRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.runs[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r *memRepo) ListBidRuns(ctx context.Context, p repository.ListBidRunsParams) ([]models.BidRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BidRun, 0, len(r.runs))
	for _, v := range r.runs {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) UpsertWatchKeyword(ctx context.Context, item *models.WatchKeyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watch[item.KeywordID] = *item
	return nil
}

func (r *memRepo) ListWatchKeywords(ctx context.Context) ([]models.WatchKeyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.WatchKeyword, 0, len(r.watch))
	for _, v := range r.watch {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeywordID < out[j].KeywordID })
	return out, nil
}

func (r *memRepo) DeleteWatchKeyword(ctx context.Context, keywordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watch, keywordID)
	return nil
}

func (r *memRepo) TouchWatchKeyword(ctx context.Context, keywordID string, bid, rank int, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watch[keywordID]
	if !ok {
		return errors.New("not watched")
	}
	w.LastBid, w.LastRank, w.LastSeenAt = bid, rank, &seenAt
	r.watch[keywordID] = w
	return nil
}

func (r *memRepo) InsertExpansionRun(ctx context.Context, item *models.ExpansionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expansions = append(r.expansions, *item)
	return nil
}

func (r *memRepo) ListExpansionRuns(ctx context.Context, limit, offset int) ([]models.ExpansionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ExpansionRun(nil), r.expansions...), nil
}

func (r *memRepo) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[item.Key] = *item
	return nil
}

func (r *memRepo) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.settings[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r *memRepo) ListSystemSettings(ctx context.Context, p repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SystemSetting, 0, len(r.settings))
	for _, v := range r.settings {
		out = append(out, v)
	}
	return out, nil
}

func (r *memRepo) CountSystemSettings(ctx context.Context, p repository.ListSystemSettingsParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.settings)), nil
}

func watchRow(keywordID, adGroupID string) models.WatchKeyword {
	return models.WatchKeyword{KeywordID: keywordID, AdGroupID: adGroupID, Keyword: keywordID}
}
