package bidding

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ReasonKind string

const (
	ReasonGoalMet         ReasonKind = "goal_met"
	ReasonProbing         ReasonKind = "probing"
	ReasonFrozen          ReasonKind = "frozen"
	ReasonRankCorrection  ReasonKind = "rank_correction"
	ReasonEstimateApplied ReasonKind = "estimate_applied"
)

type FreezeCause string

const (
	// FreezeHighCost: unranked while already at or above the probe ceiling.
	FreezeHighCost FreezeCause = "high_cost"
	// FreezeLowData: too few impressions to trust the rank.
	FreezeLowData FreezeCause = "low_data"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Reason explains a decision. Control flow reads Kind/Cause; Text is for humans.
type Reason struct {
	Kind        ReasonKind  `json:"kind"`
	Cause       FreezeCause `json:"cause,omitempty"`
	Direction   Direction   `json:"direction,omitempty"`
	Rank        int         `json:"rank,omitempty"`
	Impressions int64       `json:"impressions,omitempty"`
	Delta       int         `json:"delta"`
	Limited     bool        `json:"limited,omitempty"`
}

// Frozen reports a hold outcome (goal met or either freeze cause).
func (r Reason) Frozen() bool {
	return r.Kind == ReasonFrozen || r.Kind == ReasonGoalMet
}

// Protected reports the high-cost freeze, which is always audited.
func (r Reason) Protected() bool {
	return r.Kind == ReasonFrozen && r.Cause == FreezeHighCost
}

func (r Reason) Text() string {
	var b strings.Builder
	switch r.Kind {
	case ReasonEstimateApplied:
		fmt.Fprintf(&b, "estimate applied (rank %d) %s", r.Rank, signedDelta(r.Delta))
	case ReasonProbing:
		b.WriteString("probing (unranked, raise)")
	case ReasonFrozen:
		switch r.Cause {
		case FreezeHighCost:
			b.WriteString("frozen (unranked, high-cost protection)")
		case FreezeLowData:
			fmt.Fprintf(&b, "frozen (low data: %d impressions)", r.Impressions)
		default:
			b.WriteString("frozen")
		}
	case ReasonGoalMet:
		b.WriteString("goal met (frozen)")
	case ReasonRankCorrection:
		if r.Direction == DirectionDown {
			fmt.Fprintf(&b, "rank management (overspend: rank %d)", r.Rank)
		} else {
			fmt.Fprintf(&b, "rank management (rank %d)", r.Rank)
		}
	default:
		b.WriteString(string(r.Kind))
	}
	if r.Limited {
		b.WriteString(" (limit applied)")
	}
	return b.String()
}

func (r Reason) String() string { return r.Text() }

func (r Reason) MarshalJSON() ([]byte, error) {
	type plain Reason
	return json.Marshal(struct {
		plain
		Text string `json:"text"`
	}{plain(r), r.Text()})
}

func signedDelta(d int) string {
	switch {
	case d > 0:
		return fmt.Sprintf("▲%d", d)
	case d < 0:
		return fmt.Sprintf("▼%d", -d)
	default:
		return "±0"
	}
}
