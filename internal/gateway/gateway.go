package gateway

import "context"

// Gateway is the remote ad-platform surface the bidder and expander depend on.
type Gateway interface {
	FetchCampaigns(ctx context.Context) ([]Campaign, error)
	FetchCampaign(ctx context.Context, campaignID string) (*Campaign, error)
	FetchAdGroups(ctx context.Context, campaignID string) ([]AdGroup, error)
	FetchAdGroup(ctx context.Context, adGroupID string) (*AdGroup, error)

	// FetchKeywords returns live keywords with stats, rank, and estimates for targetRank.
	// targetRank <= 0 skips the estimate lookup.
	FetchKeywords(ctx context.Context, adGroupID, device string, targetRank int) ([]Keyword, error)
	CountKeywords(ctx context.Context, adGroupID string) (int, error)

	// BulkUpdateBids applies explicit bids. Per-item failures only lower Succeeded.
	BulkUpdateBids(ctx context.Context, updates []BidUpdate) (BulkResult, error)
	BulkCreateKeywords(ctx context.Context, items []KeywordCreate) ([]KeywordCreateResult, error)

	CreateAdGroup(ctx context.Context, campaignID, name string) (*AdGroup, error)
	FetchAds(ctx context.Context, adGroupID string) ([]Ad, error)
	CreateAd(ctx context.Context, adGroupID string, ad Ad) (*Ad, error)
	FetchExtensions(ctx context.Context, adGroupID string) ([]Extension, error)
	CreateExtension(ctx context.Context, adGroupID string, ext Extension) (*Extension, error)

	// AppendAuditLog is best-effort; callers log and continue on error.
	AppendAuditLog(ctx context.Context, entries []AuditEntry) error
}
