package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"adbidder/internal/models"
	"adbidder/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

// --- bid logs ---------------------------------------------------------------

func (s *Store) InsertBidLogs(ctx context.Context, items []models.BidLog) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return createInBatches(s.db.WithContext(ctx), items, 200)
}

func (s *Store) ListBidLogs(ctx context.Context, params repository.ListBidLogsParams) ([]models.BidLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyBidLogFilters(s.db.WithContext(ctx).Model(&models.BidLog{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "logged_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.BidLog
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBidLogs(ctx context.Context, params repository.ListBidLogsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := applyBidLogFilters(s.db.WithContext(ctx).Model(&models.BidLog{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DeleteBidLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("logged_at < ?", before).Delete(&models.BidLog{})
	return res.RowsAffected, res.Error
}

func applyBidLogFilters(query *gorm.DB, params repository.ListBidLogsParams) *gorm.DB {
	if v := trimmed(params.RunID); v != "" {
		query = query.Where("run_id = ?", v)
	}
	if v := trimmed(params.Mode); v != "" {
		query = query.Where("mode = ?", v)
	}
	if v := trimmed(params.KeywordID); v != "" {
		query = query.Where("keyword_id = ?", v)
	}
	if v := trimmed(params.AdGroupID); v != "" {
		query = query.Where("ad_group_id = ?", v)
	}
	if v := trimmed(params.ReasonKind); v != "" {
		query = query.Where("reason_kind = ?", v)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("logged_at >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("logged_at < ?", *params.Until)
	}
	return query
}

// --- bid runs ---------------------------------------------------------------

func (s *Store) UpsertBidRun(ctx context.Context, item *models.BidRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"units_total",
			"units_done",
			"units_skipped",
			"units_failed",
			"keywords_seen",
			"bids_changed",
			"bids_submitted",
			"submit_failures",
			"last_error",
			"finished_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetBidRun(ctx context.Context, id string) (*models.BidRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.BidRun
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListBidRuns(ctx context.Context, params repository.ListBidRunsParams) ([]models.BidRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.BidRun{})
	if v := trimmed(params.Mode); v != "" {
		query = query.Where("mode = ?", v)
	}
	if v := trimmed(params.Status); v != "" {
		query = query.Where("status = ?", v)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "started_at")
	var items []models.BidRun
	if err := query.Limit(normalizeLimit(params.Limit, 50)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- watch list -------------------------------------------------------------

func (s *Store) UpsertWatchKeyword(ctx context.Context, item *models.WatchKeyword) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.KeywordID = strings.TrimSpace(item.KeywordID)
	if item.KeywordID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ad_group_id",
			"keyword",
			"ad_group_name",
			"campaign_name",
			"last_bid",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListWatchKeywords(ctx context.Context) ([]models.WatchKeyword, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.WatchKeyword
	if err := s.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteWatchKeyword(ctx context.Context, keywordID string) error {
	if s == nil || s.db == nil {
		return nil
	}
	keywordID = strings.TrimSpace(keywordID)
	if keywordID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("keyword_id = ?", keywordID).Delete(&models.WatchKeyword{}).Error
}

func (s *Store) TouchWatchKeyword(ctx context.Context, keywordID string, bid, rank int, seenAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.WatchKeyword{}).
		Where("keyword_id = ?", strings.TrimSpace(keywordID)).
		Updates(map[string]any{
			"last_bid":     bid,
			"last_rank":    rank,
			"last_seen_at": seenAt,
		}).Error
}

// --- expansion runs ---------------------------------------------------------

func (s *Store) InsertExpansionRun(ctx context.Context, item *models.ExpansionRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListExpansionRuns(ctx context.Context, limit, offset int) ([]models.ExpansionRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ExpansionRun
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(normalizeLimit(limit, 50)).
		Offset(normalizeOffset(offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- system settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if v := trimmed(params.Prefix); v != "" {
		query = query.Where("key LIKE ?", v+"%")
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	var items []models.SystemSetting
	if err := query.Limit(normalizeLimit(params.Limit, 500)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if v := trimmed(params.Prefix); v != "" {
		query = query.Where("key LIKE ?", v+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func createInBatches[T any](db *gorm.DB, items []T, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return db.CreateInBatches(items, batchSize).Error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
