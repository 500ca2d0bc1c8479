package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adbidder/internal/gateway"
	"adbidder/internal/models"
	"adbidder/internal/repository"
)

const watchSearchLimit = 20

type WatchlistService struct {
	Repo    repository.WatchKeywordRepository
	Gateway gateway.Gateway
	Logger  *zap.Logger
}

func (s *WatchlistService) List(ctx context.Context) ([]models.WatchKeyword, error) {
	return s.Repo.ListWatchKeywords(ctx)
}

// Targets returns the saved watch-list in sniper-mode form.
func (s *WatchlistService) Targets(ctx context.Context) ([]WatchTarget, error) {
	items, err := s.Repo.ListWatchKeywords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WatchTarget, 0, len(items))
	for _, it := range items {
		out = append(out, WatchTarget{KeywordID: it.KeywordID, AdGroupID: it.AdGroupID, Keyword: it.Keyword})
	}
	return out, nil
}

// Add pins keywords, filling in names from the platform.
func (s *WatchlistService) Add(ctx context.Context, targets []WatchTarget) ([]models.WatchKeyword, error) {
	var added []models.WatchKeyword
	for _, t := range targets {
		t.KeywordID = strings.TrimSpace(t.KeywordID)
		t.AdGroupID = strings.TrimSpace(t.AdGroupID)
		if t.KeywordID == "" || t.AdGroupID == "" {
			return added, fmt.Errorf("%w: keyword_id and ad_group_id are required", ErrInvalidRequest)
		}
		grp, err := s.Gateway.FetchAdGroup(ctx, t.AdGroupID)
		if err != nil {
			return added, err
		}
		item := models.WatchKeyword{
			KeywordID:   t.KeywordID,
			AdGroupID:   t.AdGroupID,
			Keyword:     strings.TrimSpace(t.Keyword),
			AdGroupName: grp.Name,
		}
		if camp, err := s.Gateway.FetchCampaign(ctx, grp.CampaignID); err == nil {
			item.CampaignName = camp.Name
		}
		if item.Keyword == "" {
			kws, err := s.Gateway.FetchKeywords(ctx, t.AdGroupID, "", 0)
			if err != nil {
				return added, err
			}
			kw, ok := findKeyword(kws, t.KeywordID)
			if !ok {
				return added, fmt.Errorf("keyword %s in %s: %w", t.KeywordID, t.AdGroupID, gateway.ErrNotFound)
			}
			item.Keyword = kw.Text
			item.LastBid = kw.BidAmt
		}
		if err := s.Repo.UpsertWatchKeyword(ctx, &item); err != nil {
			return added, err
		}
		added = append(added, item)
	}
	return added, nil
}

func (s *WatchlistService) Remove(ctx context.Context, keywordID string) error {
	return s.Repo.DeleteWatchKeyword(ctx, keywordID)
}

type KeywordHit struct {
	KeywordID    string `json:"keyword_id"`
	Keyword      string `json:"keyword"`
	BidAmt       int    `json:"bid_amt"`
	AdGroupID    string `json:"ad_group_id"`
	AdGroupName  string `json:"ad_group_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
}

// Search walks every campaign and group for keywords containing q and stops
// after the first 20 hits. Groups that fail to load are skipped.
func (s *WatchlistService) Search(ctx context.Context, q string) ([]KeywordHit, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil, fmt.Errorf("%w: search text is required", ErrInvalidRequest)
	}
	camps, err := s.Gateway.FetchCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	var hits []KeywordHit
	for _, c := range camps {
		groups, err := s.Gateway.FetchAdGroups(ctx, c.ID)
		if err != nil {
			s.warn("search: list groups failed", err, zap.String("campaign_id", c.ID))
			continue
		}
		for _, g := range groups {
			if err := ctx.Err(); err != nil {
				return hits, err
			}
			kws, err := s.Gateway.FetchKeywords(ctx, g.ID, "", 0)
			if err != nil {
				s.warn("search: list keywords failed", err, zap.String("ad_group_id", g.ID))
				continue
			}
			for _, kw := range kws {
				if !strings.Contains(strings.ToLower(kw.Text), q) {
					continue
				}
				hits = append(hits, KeywordHit{
					KeywordID:    kw.ID,
					Keyword:      kw.Text,
					BidAmt:       kw.BidAmt,
					AdGroupID:    g.ID,
					AdGroupName:  g.Name,
					CampaignID:   c.ID,
					CampaignName: c.Name,
				})
				if len(hits) >= watchSearchLimit {
					return hits, nil
				}
			}
		}
	}
	return hits, nil
}

func (s *WatchlistService) warn(msg string, err error, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Warn(msg, append(fields, zap.Error(err))...)
	}
}
