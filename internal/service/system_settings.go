package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"adbidder/internal/bidding"
	"adbidder/internal/models"
	"adbidder/internal/repository"
)

const (
	FeatureAutoBidSchedule = "feature.autobid_schedule"
	FeatureAuditRetention  = "feature.audit_retention"
	FeatureAuditForward    = "feature.audit_forward"
)

const (
	SettingStrategy        = "bidder.strategy"
	SettingCampaignTargets = "bidder.campaign_targets"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureAutoBidSchedule: false,
		FeatureAuditRetention:  true,
		FeatureAuditForward:    false,
	}
}

type FeatureSwitch struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SystemSettingsService struct {
	Repo repository.SystemSettingRepository
}

// EnsureDefaultSwitches seeds switches that have never been stored. Existing
// values are left as operators set them.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if _, known := DefaultFeatureSwitches()[key]; !known {
		return fmt.Errorf("%w: unknown switch %q", ErrInvalidRequest, key)
	}
	raw, _ := json.Marshal(enabled)
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		UpdatedAt:   time.Now().UTC(),
	}
	return s.Repo.UpsertSystemSetting(ctx, item)
}

// Switches lists every known switch with its effective value.
func (s *SystemSettingsService) Switches(ctx context.Context) []FeatureSwitch {
	defaults := DefaultFeatureSwitches()
	out := make([]FeatureSwitch, 0, len(defaults))
	for name, def := range defaults {
		sw := FeatureSwitch{Name: name, Enabled: def}
		if s != nil && s.Repo != nil {
			if item, err := s.Repo.GetSystemSettingByKey(ctx, name); err == nil && item != nil {
				var v bool
				if json.Unmarshal(item.Value, &v) == nil {
					sw.Enabled = v
				}
				sw.UpdatedAt = item.UpdatedAt
			}
		}
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadStrategy returns the saved strategy, or fallback when none is stored.
func (s *SystemSettingsService) LoadStrategy(ctx context.Context, fallback bidding.Strategy) (bidding.Strategy, error) {
	var out bidding.Strategy
	found, err := s.loadJSON(ctx, SettingStrategy, &out)
	if err != nil || !found {
		return fallback, err
	}
	return out.Normalize(), nil
}

func (s *SystemSettingsService) SaveStrategy(ctx context.Context, st bidding.Strategy) error {
	st = st.Normalize()
	if err := st.Validate(); err != nil {
		return err
	}
	return s.saveJSON(ctx, SettingStrategy, "saved bidder strategy", st)
}

func (s *SystemSettingsService) LoadCampaignTargets(ctx context.Context) ([]CampaignTarget, error) {
	var out []CampaignTarget
	_, err := s.loadJSON(ctx, SettingCampaignTargets, &out)
	return out, err
}

func (s *SystemSettingsService) SaveCampaignTargets(ctx context.Context, targets []CampaignTarget) error {
	return s.saveJSON(ctx, SettingCampaignTargets, "scheduled campaign targets", targets)
}

func (s *SystemSettingsService) loadJSON(ctx context.Context, key string, out any) (bool, error) {
	if s == nil || s.Repo == nil {
		return false, nil
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil {
		return false, err
	}
	if item == nil || len(item.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(item.Value, out); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

func (s *SystemSettingsService) saveJSON(ctx context.Context, key, desc string, v any) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Repo.UpsertSystemSetting(ctx, &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: desc,
		UpdatedAt:   time.Now().UTC(),
	})
}
