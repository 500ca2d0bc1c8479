package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"adbidder/internal/bidding"
	"adbidder/internal/gateway"
)

// groupUnit is one ad group scheduled in a campaign cycle.
type groupUnit struct {
	campaignID     string
	campaignName   string
	campaignStatus string
	adGroupID      string
	adGroupName    string
	adGroupStatus  string
}

// snapshotGroups expands campaign targets into the fixed ad group list of
// this cycle. Campaigns that cannot be read are counted as failures.
func (b *AutoBidder) snapshotGroups(ctx context.Context, c *cycleRun, targets []CampaignTarget) []groupUnit {
	var units []groupUnit
	for _, t := range targets {
		if ctx.Err() != nil {
			return units
		}
		camp, err := b.Gateway.FetchCampaign(ctx, t.CampaignID)
		if err != nil {
			b.fail(c, "fetch campaign failed", err, zap.String("campaign_id", t.CampaignID))
			continue
		}
		groups, err := b.Gateway.FetchAdGroups(ctx, t.CampaignID)
		if err != nil {
			b.fail(c, "fetch ad groups failed", err, zap.String("campaign_id", t.CampaignID))
			continue
		}
		byID := make(map[string]gateway.AdGroup, len(groups))
		for _, g := range groups {
			byID[g.ID] = g
		}
		ids := t.AdGroupIDs
		if len(ids) == 0 {
			ids = make([]string, 0, len(groups))
			for _, g := range groups {
				ids = append(ids, g.ID)
			}
		}
		for _, id := range ids {
			u := groupUnit{
				campaignID:     camp.ID,
				campaignName:   camp.Name,
				campaignStatus: camp.Status,
				adGroupID:      id,
			}
			if g, ok := byID[id]; ok {
				u.adGroupName = g.Name
				u.adGroupStatus = g.Status
			}
			units = append(units, u)
		}
	}
	return units
}

// unitActive reports whether the unit's campaign and ad group are running.
// With recheck enabled both are fetched fresh instead of trusting the snapshot.
func (b *AutoBidder) unitActive(ctx context.Context, u groupUnit) (bool, string, error) {
	campStatus, groupStatus := u.campaignStatus, u.adGroupStatus
	if b.Config.RecheckStatus {
		camp, err := b.Gateway.FetchCampaign(ctx, u.campaignID)
		if err != nil {
			return false, "", fmt.Errorf("recheck campaign: %w", err)
		}
		grp, err := b.Gateway.FetchAdGroup(ctx, u.adGroupID)
		if errors.Is(err, gateway.ErrNotFound) {
			return false, "ad group not found", nil
		}
		if err != nil {
			return false, "", fmt.Errorf("recheck ad group: %w", err)
		}
		campStatus, groupStatus = camp.Status, grp.Status
	}
	if !gateway.IsActive(campStatus) {
		return false, "campaign " + campStatus, nil
	}
	if groupStatus == "" && !b.Config.RecheckStatus {
		return false, "ad group not found", nil
	}
	if !gateway.IsActive(groupStatus) {
		return false, "ad group " + groupStatus, nil
	}
	return true, "", nil
}

func (b *AutoBidder) campaignCycle(ctx context.Context, c *cycleRun, targets []CampaignTarget) {
	units := b.snapshotGroups(ctx, c, targets)
	c.counters.UnitsTotal = len(units)
	s := c.strategy

	for i, u := range units {
		if err := b.checkpoint(ctx); err != nil {
			return
		}
		if i > 0 && units[i-1].campaignID != u.campaignID {
			if err := pause(ctx, b.Config.CampaignDelay); err != nil {
				return
			}
		}
		label := displayName(u.campaignName, u.campaignID) + " / " + displayName(u.adGroupName, u.adGroupID)
		b.progress(c, i+1, label)

		active, why, err := b.unitActive(ctx, u)
		if err != nil {
			b.fail(c, "status check failed", err, zap.String("ad_group_id", u.adGroupID))
			continue
		}
		if !active {
			c.counters.UnitsSkipped++
			b.progress(c, i+1, label+": skipped ("+why+")")
			if err := pause(ctx, b.Config.SkipDelay); err != nil {
				return
			}
			continue
		}

		kws, err := b.Gateway.FetchKeywords(ctx, u.adGroupID, s.TargetDevice, s.TargetRank)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.fail(c, "fetch keywords failed", err, zap.String("ad_group_id", u.adGroupID))
			continue
		}

		var (
			updates []gateway.BidUpdate
			entries []gateway.AuditEntry
		)
		for _, kw := range kws {
			if !kw.Active() {
				continue
			}
			c.counters.KeywordsSeen++
			res := bidding.Evaluate(kw, s, b.clock())
			b.record(res)
			if res.Changed() {
				c.counters.BidsChanged++
				updates = append(updates, gateway.BidUpdate{KeywordID: kw.ID, AdGroupID: kw.AdGroupID, BidAmt: res.NewBid})
			}
			if res.Changed() || res.Reason.Protected() {
				entries = append(entries, auditEntry(c, res, kw))
			}
		}
		b.submit(ctx, c, updates)
		b.audit(ctx, entries)
		c.counters.UnitsDone++
		b.progress(c, i+1, fmt.Sprintf("%s: %d keywords, %d changed", label, len(kws), len(updates)))

		if err := pause(ctx, b.Config.StepDelay); err != nil {
			return
		}
	}
}

// sniperCycle decides each watched keyword against a fresh read of its ad
// group and submits the collected updates once at the end. A cancelled cycle
// submits nothing.
func (b *AutoBidder) sniperCycle(ctx context.Context, c *cycleRun, targets []WatchTarget) {
	c.counters.UnitsTotal = len(targets)
	s := c.strategy
	var (
		updates []gateway.BidUpdate
		entries []gateway.AuditEntry
	)

	for i, t := range targets {
		if err := b.checkpoint(ctx); err != nil {
			return
		}
		label := displayName(t.Keyword, t.KeywordID)
		b.progress(c, i+1, label)

		if b.Config.RecheckStatus {
			active, why, err := b.groupActive(ctx, t.AdGroupID)
			if err != nil {
				b.fail(c, "status check failed", err, zap.String("keyword_id", t.KeywordID))
				continue
			}
			if !active {
				c.counters.UnitsSkipped++
				b.progress(c, i+1, label+": skipped ("+why+")")
				continue
			}
		}

		kws, err := b.Gateway.FetchKeywords(ctx, t.AdGroupID, s.TargetDevice, s.TargetRank)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.fail(c, "fetch keywords failed", err, zap.String("keyword_id", t.KeywordID))
			continue
		}
		kw, found := findKeyword(kws, t.KeywordID)
		if !found || !kw.Active() {
			c.counters.UnitsSkipped++
			b.progress(c, i+1, label+": skipped (keyword missing or inactive)")
			continue
		}

		c.counters.KeywordsSeen++
		res := bidding.Evaluate(kw, s, b.clock())
		b.record(res)
		if res.Changed() {
			c.counters.BidsChanged++
			updates = append(updates, gateway.BidUpdate{KeywordID: kw.ID, AdGroupID: kw.AdGroupID, BidAmt: res.NewBid})
		}
		if res.Changed() || res.Reason.Frozen() {
			entries = append(entries, auditEntry(c, res, kw))
		}
		if b.Watch != nil {
			if err := b.Watch.TouchWatchKeyword(ctx, kw.ID, res.NewBid, kw.CurrentRank, res.At.UTC()); err != nil {
				b.log().Debug("touch watch keyword failed", zap.String("keyword_id", kw.ID), zap.Error(err))
			}
		}
		c.counters.UnitsDone++

		if err := pause(ctx, b.Config.SniperDelay); err != nil {
			return
		}
	}
	if ctx.Err() != nil {
		return
	}
	b.submit(ctx, c, updates)
	b.audit(ctx, entries)
	b.progress(c, len(targets), fmt.Sprintf("%d keywords checked, %d changed", c.counters.KeywordsSeen, len(updates)))
}

func (b *AutoBidder) groupActive(ctx context.Context, adGroupID string) (bool, string, error) {
	grp, err := b.Gateway.FetchAdGroup(ctx, adGroupID)
	if errors.Is(err, gateway.ErrNotFound) {
		return false, "ad group not found", nil
	}
	if err != nil {
		return false, "", err
	}
	if !gateway.IsActive(grp.Status) {
		return false, "ad group " + grp.Status, nil
	}
	camp, err := b.Gateway.FetchCampaign(ctx, grp.CampaignID)
	if err != nil {
		return false, "", err
	}
	if !gateway.IsActive(camp.Status) {
		return false, "campaign " + camp.Status, nil
	}
	return true, "", nil
}

func findKeyword(kws []gateway.Keyword, id string) (gateway.Keyword, bool) {
	for _, kw := range kws {
		if kw.ID == id {
			return kw, true
		}
	}
	return gateway.Keyword{}, false
}
