package bidding

import (
	"time"

	"adbidder/internal/gateway"
)

type Decision struct {
	NewBid int    `json:"new_bid"`
	Reason Reason `json:"reason"`
}

// Result is the observable outcome of deciding one keyword.
type Result struct {
	KeywordID string    `json:"keyword_id"`
	Keyword   string    `json:"keyword"`
	AdGroupID string    `json:"ad_group_id"`
	OldBid    int       `json:"old_bid"`
	NewBid    int       `json:"new_bid"`
	Reason    Reason    `json:"reason"`
	At        time.Time `json:"at"`
}

func (r Result) Changed() bool { return r.NewBid != r.OldBid }

// Evaluate runs Decide and packages the outcome for kw.
func Evaluate(kw gateway.Keyword, s Strategy, at time.Time) Result {
	d := Decide(kw, s)
	return Result{
		KeywordID: kw.ID,
		Keyword:   kw.Text,
		AdGroupID: kw.AdGroupID,
		OldBid:    kw.BidAmt,
		NewBid:    d.NewBid,
		Reason:    d.Reason,
		At:        at,
	}
}

// Decide picks the next bid for kw. Rules are checked in order and the first
// match wins; the result is then clamped to [MinBid, RankedMaxBid] and rounded
// down to a multiple of 10.
func Decide(kw gateway.Keyword, s Strategy) Decision {
	cur := kw.BidAmt
	next := cur
	var r Reason

	est, hasEstimate := kw.EstimateFor(s.TargetRank)
	switch {
	case hasEstimate && est > gateway.MinBid:
		next = est
		r = Reason{Kind: ReasonEstimateApplied, Rank: s.TargetRank}

	case kw.CurrentRank == 0:
		if cur < s.ProbeMaxBid {
			next = cur + s.BidStep
			if s.ClampProbe && next > s.ProbeMaxBid {
				next = s.ProbeMaxBid
			}
			r = Reason{Kind: ReasonProbing, Direction: DirectionUp}
		} else {
			r = Reason{Kind: ReasonFrozen, Cause: FreezeHighCost}
		}

	case kw.Stats.Impressions < s.MinImpressions:
		r = Reason{Kind: ReasonFrozen, Cause: FreezeLowData, Impressions: kw.Stats.Impressions}

	case kw.CurrentRank == s.TargetRank:
		r = Reason{Kind: ReasonGoalMet, Rank: kw.CurrentRank}

	case kw.CurrentRank < s.TargetRank:
		next = cur - s.BidStep
		if next < gateway.MinBid {
			next = gateway.MinBid
		}
		r = Reason{Kind: ReasonRankCorrection, Direction: DirectionDown, Rank: kw.CurrentRank}

	default:
		next = cur + s.BidStep
		r = Reason{Kind: ReasonRankCorrection, Direction: DirectionUp, Rank: kw.CurrentRank}
	}

	next, r.Limited = clampBid(next, s.RankedMaxBid)
	r.Delta = next - cur
	if r.Kind == ReasonEstimateApplied {
		switch {
		case r.Delta > 0:
			r.Direction = DirectionUp
		case r.Delta < 0:
			r.Direction = DirectionDown
		}
	}
	return Decision{NewBid: next, Reason: r}
}

func clampBid(bid, max int) (int, bool) {
	limited := false
	if bid > max {
		bid = max
		limited = true
	}
	if bid < gateway.MinBid {
		bid = gateway.MinBid
	}
	return bid / 10 * 10, limited
}
