package bidding

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"adbidder/internal/config"
	"adbidder/internal/gateway"
)

var testTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func kw(bid, rank int, impressions int64) gateway.Keyword {
	return gateway.Keyword{
		ID:          "nkw-1",
		AdGroupID:   "grp-1",
		Text:        "running shoes",
		BidAmt:      bid,
		Status:      gateway.StatusEligible,
		CurrentRank: rank,
		Stats:       gateway.Stats{Impressions: impressions},
	}
}

func TestDecideRules(t *testing.T) {
	s := DefaultStrategy()
	tests := []struct {
		name      string
		kw        gateway.Keyword
		wantBid   int
		wantKind  ReasonKind
		wantCause FreezeCause
		wantDir   Direction
	}{
		{"rank too low raises", kw(500, 5, 100), 1500, ReasonRankCorrection, "", DirectionUp},
		{"rank too high lowers", kw(5000, 1, 100), 4000, ReasonRankCorrection, "", DirectionDown},
		{"lower floors at minimum", kw(500, 1, 100), 70, ReasonRankCorrection, "", DirectionDown},
		{"goal met holds", kw(2500, 3, 100), 2500, ReasonGoalMet, "", ""},
		{"low data freezes", kw(2500, 6, 12), 2500, ReasonFrozen, FreezeLowData, ""},
		{"unranked probes", kw(500, 0, 0), 1500, ReasonProbing, "", DirectionUp},
		{"unranked at ceiling freezes", kw(7000, 0, 0), 7000, ReasonFrozen, FreezeHighCost, ""},
		{"unranked above ceiling freezes", kw(9000, 0, 0), 9000, ReasonFrozen, FreezeHighCost, ""},
	}
	for _, tt := range tests {
		d := Decide(tt.kw, s)
		if d.NewBid != tt.wantBid {
			t.Fatalf("%s: bid=%d want %d", tt.name, d.NewBid, tt.wantBid)
		}
		if d.Reason.Kind != tt.wantKind || d.Reason.Cause != tt.wantCause || d.Reason.Direction != tt.wantDir {
			t.Fatalf("%s: reason=%+v", tt.name, d.Reason)
		}
		if d.Reason.Delta != tt.wantBid-tt.kw.BidAmt {
			t.Fatalf("%s: delta=%d", tt.name, d.Reason.Delta)
		}
	}
}

func TestDecideSmallStepRaise(t *testing.T) {
	s := DefaultStrategy()
	s.BidStep = 100
	d := Decide(kw(500, 5, 100), s)
	if d.NewBid != 600 {
		t.Fatalf("bid=%d want 600", d.NewBid)
	}
	if !strings.Contains(d.Reason.Text(), "rank management") {
		t.Fatalf("text=%q", d.Reason.Text())
	}
}

func TestDecideProbeClamp(t *testing.T) {
	s := DefaultStrategy()
	d := Decide(kw(6500, 0, 0), s)
	if d.NewBid != 7000 || d.Reason.Kind != ReasonProbing {
		t.Fatalf("clamped probe: %+v", d)
	}
	s.ClampProbe = false
	d = Decide(kw(6500, 0, 0), s)
	if d.NewBid != 7500 {
		t.Fatalf("unclamped probe bid=%d want 7500", d.NewBid)
	}
}

func TestDecideEstimateWins(t *testing.T) {
	s := DefaultStrategy()
	k := kw(2500, 3, 100) // would otherwise be goal met
	k.Estimates = []gateway.BidEstimate{{Rank: 1, Bid: 9000}, {Rank: 3, Bid: 3120}}
	d := Decide(k, s)
	if d.NewBid != 3120 || d.Reason.Kind != ReasonEstimateApplied || d.Reason.Direction != DirectionUp {
		t.Fatalf("decision=%+v", d)
	}
	if d.Reason.Text() != "estimate applied (rank 3) ▲620" {
		t.Fatalf("text=%q", d.Reason.Text())
	}
}

func TestDecideEstimateAtMinimumIgnored(t *testing.T) {
	s := DefaultStrategy()
	k := kw(500, 0, 0)
	k.Estimates = []gateway.BidEstimate{{Rank: 3, Bid: 70}}
	d := Decide(k, s)
	if d.Reason.Kind != ReasonProbing {
		t.Fatalf("estimate of %d should be ignored, got %+v", gateway.MinBid, d.Reason)
	}
}

func TestDecideEstimateOtherRankIgnored(t *testing.T) {
	s := DefaultStrategy()
	k := kw(2500, 5, 100)
	k.Estimates = []gateway.BidEstimate{{Rank: 1, Bid: 9000}}
	if d := Decide(k, s); d.Reason.Kind != ReasonRankCorrection {
		t.Fatalf("reason=%+v", d.Reason)
	}
}

func TestDecideGlobalClamp(t *testing.T) {
	s := DefaultStrategy()
	s.RankedMaxBid = 3000

	d := Decide(kw(2500, 5, 100), s)
	if d.NewBid != 3000 || !d.Reason.Limited {
		t.Fatalf("decision=%+v", d)
	}
	if !strings.HasSuffix(d.Reason.Text(), "(limit applied)") {
		t.Fatalf("text=%q", d.Reason.Text())
	}

	// goal met above the cap is still lowered
	d = Decide(kw(4000, 3, 100), s)
	if d.NewBid != 3000 || d.Reason.Kind != ReasonGoalMet || !d.Reason.Limited {
		t.Fatalf("goal met over cap: %+v", d)
	}

	k := kw(500, 3, 100)
	k.Estimates = []gateway.BidEstimate{{Rank: 3, Bid: 12345}}
	d = Decide(k, s)
	if d.NewBid != 3000 || d.Reason.Kind != ReasonEstimateApplied {
		t.Fatalf("estimate over cap: %+v", d)
	}
}

func TestDecideRoundsDown(t *testing.T) {
	s := DefaultStrategy()
	k := kw(500, 3, 100)
	k.Estimates = []gateway.BidEstimate{{Rank: 3, Bid: 1239}}
	if d := Decide(k, s); d.NewBid != 1230 {
		t.Fatalf("bid=%d want 1230", d.NewBid)
	}
	s.RankedMaxBid = 2995
	if d := Decide(kw(2500, 5, 100), s); d.NewBid != 2990 {
		t.Fatalf("bid=%d want 2990", d.NewBid)
	}
}

func TestDecideBounds(t *testing.T) {
	s := DefaultStrategy()
	for bid := 70; bid <= 40000; bid += 730 {
		for rank := 0; rank <= 8; rank++ {
			for _, imp := range []int64{0, 29, 30, 500} {
				d := Decide(kw(bid, rank, imp), s)
				if d.NewBid < gateway.MinBid || d.NewBid > s.RankedMaxBid || d.NewBid%10 != 0 {
					t.Fatalf("bid=%d rank=%d imp=%d -> %d out of bounds", bid, rank, imp, d.NewBid)
				}
			}
		}
	}
}

func TestDecideIdempotentAtGoal(t *testing.T) {
	s := DefaultStrategy()
	for _, bid := range []int{70, 1000, 2500, 30000} {
		k := kw(bid, s.TargetRank, s.MinImpressions)
		d := Decide(k, s)
		if d.NewBid != bid {
			t.Fatalf("bid=%d changed to %d", bid, d.NewBid)
		}
		k.BidAmt = d.NewBid
		if again := Decide(k, s); again.NewBid != d.NewBid {
			t.Fatalf("second decision moved %d -> %d", d.NewBid, again.NewBid)
		}
	}
}

func TestEvaluateResult(t *testing.T) {
	r := Evaluate(kw(500, 5, 100), DefaultStrategy(), testTime)
	if !r.Changed() || r.OldBid != 500 || r.NewBid != 1500 || r.KeywordID != "nkw-1" || r.AdGroupID != "grp-1" {
		t.Fatalf("result=%+v", r)
	}
	if !r.At.Equal(testTime) {
		t.Fatalf("at=%v", r.At)
	}
}

func TestReasonPredicates(t *testing.T) {
	cases := []struct {
		r         Reason
		frozen    bool
		protected bool
	}{
		{Reason{Kind: ReasonGoalMet}, true, false},
		{Reason{Kind: ReasonFrozen, Cause: FreezeLowData}, true, false},
		{Reason{Kind: ReasonFrozen, Cause: FreezeHighCost}, true, true},
		{Reason{Kind: ReasonProbing}, false, false},
		{Reason{Kind: ReasonRankCorrection, Direction: DirectionUp}, false, false},
	}
	for _, c := range cases {
		if c.r.Frozen() != c.frozen || c.r.Protected() != c.protected {
			t.Fatalf("%+v frozen=%v protected=%v", c.r, c.r.Frozen(), c.r.Protected())
		}
	}
}

func TestReasonJSONIncludesText(t *testing.T) {
	b, err := json.Marshal(Reason{Kind: ReasonFrozen, Cause: FreezeLowData, Impressions: 12})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["text"] != "frozen (low data: 12 impressions)" || got["cause"] != "low_data" {
		t.Fatalf("json=%s", b)
	}
}

func TestStrategyValidate(t *testing.T) {
	if err := DefaultStrategy().Validate(); err != nil {
		t.Fatalf("default invalid: %v", err)
	}
	bad := []func(*Strategy){
		func(s *Strategy) { s.TargetRank = 0 },
		func(s *Strategy) { s.RankedMaxBid = 50 },
		func(s *Strategy) { s.ProbeMaxBid = 10 },
		func(s *Strategy) { s.BidStep = 0 },
		func(s *Strategy) { s.BidStep = 105 },
		func(s *Strategy) { s.MinImpressions = -1 },
		func(s *Strategy) { s.LoopIntervalMinutes = 0 },
		func(s *Strategy) { s.TargetDevice = "TABLET" },
	}
	for i, mut := range bad {
		s := DefaultStrategy()
		mut(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidStrategy) {
			t.Fatalf("case %d: err=%v", i, err)
		}
	}
}

func TestStrategyFromConfig(t *testing.T) {
	s := StrategyFromConfig(config.BidderConfig{TargetRank: 2, BidStep: 500, TargetDevice: "pc"})
	if s.TargetRank != 2 || s.BidStep != 500 || s.TargetDevice != gateway.DevicePC {
		t.Fatalf("strategy=%+v", s)
	}
	if s.RankedMaxBid != 30000 || s.ProbeMaxBid != 7000 || s.MinImpressions != 30 {
		t.Fatalf("defaults not kept: %+v", s)
	}
}

func TestStrategyFromConfigZeroImpressionsDisablesFreeze(t *testing.T) {
	zero := int64(0)
	s := StrategyFromConfig(config.BidderConfig{MinImpressions: &zero})
	if s.MinImpressions != 0 {
		t.Fatalf("min impressions=%d want 0", s.MinImpressions)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	d := Decide(kw(1000, s.TargetRank, 0), s)
	if d.Reason.Kind != ReasonGoalMet {
		t.Fatalf("decision=%+v want goal met", d)
	}
}
