package searchad

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var out []Campaign
	if err := c.do(ctx, http.MethodGet, "/ncc/campaigns", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("campaign id is required")
	}
	var out Campaign
	if err := c.do(ctx, http.MethodGet, "/ncc/campaigns/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAdGroups(ctx context.Context, campaignID string) ([]AdGroup, error) {
	var query map[string]string
	if v := strings.TrimSpace(campaignID); v != "" {
		query = map[string]string{"nccCampaignId": v}
	}
	var out []AdGroup
	if err := c.do(ctx, http.MethodGet, "/ncc/adgroups", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAdGroup(ctx context.Context, id string) (*AdGroup, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("ad group id is required")
	}
	var out AdGroup
	if err := c.do(ctx, http.MethodGet, "/ncc/adgroups/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAdGroup(ctx context.Context, campaignID, name string) (*AdGroup, error) {
	if strings.TrimSpace(campaignID) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("campaign id and name are required")
	}
	body := map[string]any{
		"nccCampaignId": campaignID,
		"name":          name,
	}
	var out AdGroup
	if err := c.do(ctx, http.MethodPost, "/ncc/adgroups", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListKeywords(ctx context.Context, adGroupID string) ([]Keyword, error) {
	if strings.TrimSpace(adGroupID) == "" {
		return nil, fmt.Errorf("ad group id is required")
	}
	var out []Keyword
	query := map[string]string{"nccAdgroupId": adGroupID}
	if err := c.do(ctx, http.MethodGet, "/ncc/keywords", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateKeywordBid sets an explicit bid and detaches the keyword from the group default.
func (c *Client) UpdateKeywordBid(ctx context.Context, upd KeywordBidUpdate) error {
	if strings.TrimSpace(upd.ID) == "" {
		return fmt.Errorf("keyword id is required")
	}
	upd.UseGroupBidAmt = false
	query := map[string]string{"fields": "bidAmt,useGroupBidAmt"}
	return c.do(ctx, http.MethodPut, "/ncc/keywords/"+url.PathEscape(upd.ID), query, upd, nil)
}

func (c *Client) CreateKeywords(ctx context.Context, adGroupID string, items []NewKeyword) ([]Keyword, error) {
	if strings.TrimSpace(adGroupID) == "" {
		return nil, fmt.Errorf("ad group id is required")
	}
	if len(items) == 0 {
		return nil, nil
	}
	var out []Keyword
	query := map[string]string{"nccAdgroupId": adGroupID}
	if err := c.do(ctx, http.MethodPost, "/ncc/keywords", query, items, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAds(ctx context.Context, adGroupID string) ([]Ad, error) {
	var out []Ad
	query := map[string]string{"nccAdgroupId": adGroupID}
	if err := c.do(ctx, http.MethodGet, "/ncc/ads", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAd(ctx context.Context, ad Ad) (*Ad, error) {
	ad.ID = ""
	ad.Status = ""
	var out Ad
	if err := c.do(ctx, http.MethodPost, "/ncc/ads", nil, ad, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAdExtensions(ctx context.Context, ownerID string) ([]AdExtension, error) {
	var out []AdExtension
	query := map[string]string{"ownerId": ownerID}
	if err := c.do(ctx, http.MethodGet, "/ncc/ad-extensions", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAdExtension(ctx context.Context, ext AdExtension) (*AdExtension, error) {
	ext.ID = ""
	ext.Status = ""
	var out AdExtension
	if err := c.do(ctx, http.MethodPost, "/ncc/ad-extensions", nil, ext, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
