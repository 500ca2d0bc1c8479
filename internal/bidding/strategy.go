package bidding

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"adbidder/internal/config"
	"adbidder/internal/gateway"
)

var ErrInvalidStrategy = errors.New("invalid strategy")

// Strategy holds the tunables of one bidding run. It is copied when a run
// starts and never mutated while the run is active.
type Strategy struct {
	TargetRank          int    `json:"target_rank"`
	RankedMaxBid        int    `json:"ranked_max_bid"`
	ProbeMaxBid         int    `json:"probe_max_bid"`
	BidStep             int    `json:"bid_step"`
	MinImpressions      int64  `json:"min_impressions"`
	LoopIntervalMinutes int    `json:"loop_interval_minutes"`
	TargetDevice        string `json:"target_device"`
	// ClampProbe caps a probing raise at ProbeMaxBid.
	ClampProbe bool `json:"clamp_probe"`
}

func DefaultStrategy() Strategy {
	return Strategy{
		TargetRank:          3,
		RankedMaxBid:        30000,
		ProbeMaxBid:         7000,
		BidStep:             1000,
		MinImpressions:      30,
		LoopIntervalMinutes: 10,
		TargetDevice:        gateway.DeviceMobile,
		ClampProbe:          true,
	}
}

// StrategyFromConfig builds the default strategy from the bidder config section.
func StrategyFromConfig(cfg config.BidderConfig) Strategy {
	s := DefaultStrategy()
	if cfg.TargetRank != 0 {
		s.TargetRank = cfg.TargetRank
	}
	if cfg.RankedMaxBid != 0 {
		s.RankedMaxBid = cfg.RankedMaxBid
	}
	if cfg.ProbeMaxBid != 0 {
		s.ProbeMaxBid = cfg.ProbeMaxBid
	}
	if cfg.BidStep != 0 {
		s.BidStep = cfg.BidStep
	}
	if cfg.MinImpressions != nil {
		s.MinImpressions = *cfg.MinImpressions
	}
	if cfg.LoopIntervalMinutes != 0 {
		s.LoopIntervalMinutes = cfg.LoopIntervalMinutes
	}
	if v := strings.TrimSpace(cfg.TargetDevice); v != "" {
		s.TargetDevice = v
	}
	s.ClampProbe = cfg.ClampProbe
	return s.Normalize()
}

// Normalize upper-cases the device.
func (s Strategy) Normalize() Strategy {
	s.TargetDevice = strings.ToUpper(strings.TrimSpace(s.TargetDevice))
	return s
}

func (s Strategy) Validate() error {
	switch {
	case s.TargetRank < 1:
		return fmt.Errorf("%w: target_rank must be >= 1", ErrInvalidStrategy)
	case s.RankedMaxBid < gateway.MinBid:
		return fmt.Errorf("%w: ranked_max_bid must be >= %d", ErrInvalidStrategy, gateway.MinBid)
	case s.ProbeMaxBid < gateway.MinBid:
		return fmt.Errorf("%w: probe_max_bid must be >= %d", ErrInvalidStrategy, gateway.MinBid)
	case s.BidStep <= 0 || s.BidStep%10 != 0:
		return fmt.Errorf("%w: bid_step must be a positive multiple of 10", ErrInvalidStrategy)
	case s.MinImpressions < 0:
		return fmt.Errorf("%w: min_impressions must be >= 0", ErrInvalidStrategy)
	case s.LoopIntervalMinutes < 1:
		return fmt.Errorf("%w: loop_interval_minutes must be >= 1", ErrInvalidStrategy)
	}
	switch strings.ToUpper(strings.TrimSpace(s.TargetDevice)) {
	case gateway.DevicePC, gateway.DeviceMobile:
	default:
		return fmt.Errorf("%w: target_device must be PC or MOBILE", ErrInvalidStrategy)
	}
	return nil
}

func (s Strategy) LoopInterval() time.Duration {
	return time.Duration(s.LoopIntervalMinutes) * time.Minute
}
