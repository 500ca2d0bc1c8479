package repository

import (
	"context"
	"time"

	"adbidder/internal/models"
)

type BidLogRepository interface {
	InsertBidLogs(ctx context.Context, items []models.BidLog) error
	ListBidLogs(ctx context.Context, params ListBidLogsParams) ([]models.BidLog, error)
	CountBidLogs(ctx context.Context, params ListBidLogsParams) (int64, error)
	DeleteBidLogsBefore(ctx context.Context, before time.Time) (int64, error)
}

type BidRunRepository interface {
	UpsertBidRun(ctx context.Context, item *models.BidRun) error
	GetBidRun(ctx context.Context, id string) (*models.BidRun, error)
	ListBidRuns(ctx context.Context, params ListBidRunsParams) ([]models.BidRun, error)
}

type WatchKeywordRepository interface {
	UpsertWatchKeyword(ctx context.Context, item *models.WatchKeyword) error
	ListWatchKeywords(ctx context.Context) ([]models.WatchKeyword, error)
	DeleteWatchKeyword(ctx context.Context, keywordID string) error
	TouchWatchKeyword(ctx context.Context, keywordID string, bid, rank int, seenAt time.Time) error
}

type ExpansionRunRepository interface {
	InsertExpansionRun(ctx context.Context, item *models.ExpansionRun) error
	ListExpansionRuns(ctx context.Context, limit, offset int) ([]models.ExpansionRun, error)
}

type SystemSettingRepository interface {
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

// Repository is the unified store used by services and handlers.
type Repository interface {
	BidLogRepository
	BidRunRepository
	WatchKeywordRepository
	ExpansionRunRepository
	SystemSettingRepository
}

type ListBidLogsParams struct {
	Limit      int
	Offset     int
	RunID      *string
	Mode       *string
	KeywordID  *string
	AdGroupID  *string
	ReasonKind *string
	Since      *time.Time
	Until      *time.Time
	OrderBy    string
	Asc        *bool
}

type ListBidRunsParams struct {
	Limit   int
	Offset  int
	Mode    *string
	Status  *string
	OrderBy string
	Asc     *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}
