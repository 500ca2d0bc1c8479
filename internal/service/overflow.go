package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"adbidder/internal/config"
	"adbidder/internal/gateway"
	"adbidder/internal/models"
	"adbidder/internal/repository"
)

// Assignment is the slice of candidates routed to one ad group.
type Assignment struct {
	AdGroupID   string     `json:"ad_group_id"`
	AdGroupName string     `json:"ad_group_name"`
	BidAmt      int        `json:"bid_amt"`
	NewGroup    bool       `json:"new_group"`
	Keywords    []string   `json:"keywords"`
	Copy        CopyResult `json:"copy"`
}

// Plan routes candidates so that no ad group exceeds the keyword ceiling.
// When Err is set, Dropped counts the candidates that were never assigned.
type Plan struct {
	SourceAdGroupID string       `json:"source_ad_group_id"`
	SourceName      string       `json:"source_name"`
	CampaignID      string       `json:"campaign_id"`
	Existing        int          `json:"existing"`
	Requested       int          `json:"requested"`
	Assignments     []Assignment `json:"assignments"`
	Dropped         int          `json:"dropped"`
	Err             error        `json:"-"`
}

func (p Plan) GroupsCreated() int {
	n := 0
	for _, a := range p.Assignments {
		if a.NewGroup {
			n++
		}
	}
	return n
}

type GroupOutcome struct {
	AdGroupID   string `json:"ad_group_id"`
	AdGroupName string `json:"ad_group_name"`
	NewGroup    bool   `json:"new_group"`
	Requested   int    `json:"requested"`
	Created     int    `json:"created"`
}

type ExpansionResult struct {
	Requested     int            `json:"requested"`
	Created       int            `json:"created"`
	Failed        int            `json:"failed"`
	Dropped       int            `json:"dropped"`
	GroupsCreated int            `json:"groups_created"`
	Groups        []GroupOutcome `json:"groups"`
	Failures      []string       `json:"failures,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// OverflowExpander adds keywords to an ad group and spills the excess into
// new sibling groups named {base}_{n} carrying the source group's creatives.
type OverflowExpander struct {
	Gateway gateway.Gateway
	Runs    repository.ExpansionRunRepository
	Logger  *zap.Logger
	Config  config.ExpansionConfig
}

var trailingIndex = regexp.MustCompile(`_\d+$`)

// BaseName strips a trailing _<digits> so siblings of "shoes_2" are "shoes_n".
func BaseName(name string) string {
	return trailingIndex.ReplaceAllString(name, "")
}

func (e *OverflowExpander) ceiling() int {
	if e.Config.GroupKeywordCeiling > 0 {
		return e.Config.GroupKeywordCeiling
	}
	return 1000
}

func (e *OverflowExpander) chunkSize() int {
	if e.Config.CreateChunkSize > 0 {
		return e.Config.CreateChunkSize
	}
	return 100
}

func (e *OverflowExpander) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Plan decides where each candidate goes, creating sibling groups as needed.
// Sibling names are checked against a fresh group list before every creation.
func (e *OverflowExpander) Plan(ctx context.Context, adGroupID string, candidates []string) (Plan, error) {
	candidates = dedupe(candidates)
	if len(candidates) == 0 {
		return Plan{}, fmt.Errorf("%w: no keywords to add", ErrInvalidRequest)
	}
	src, err := e.Gateway.FetchAdGroup(ctx, adGroupID)
	if err != nil {
		return Plan{}, err
	}
	existing, err := e.Gateway.CountKeywords(ctx, adGroupID)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{
		SourceAdGroupID: src.ID,
		SourceName:      src.Name,
		CampaignID:      src.CampaignID,
		Existing:        existing,
		Requested:       len(candidates),
	}
	limit := e.ceiling()
	room := limit - existing
	if room < 0 {
		room = 0
	}
	if len(candidates) <= room {
		plan.Assignments = []Assignment{{AdGroupID: src.ID, AdGroupName: src.Name, BidAmt: src.BidAmt, Keywords: candidates}}
		return plan, nil
	}
	if room > 0 {
		plan.Assignments = append(plan.Assignments, Assignment{AdGroupID: src.ID, AdGroupName: src.Name, BidAmt: src.BidAmt, Keywords: candidates[:room]})
	}
	rest := candidates[room:]

	base := BaseName(src.Name)
	created := map[string]bool{}
	for start := 0; start < len(rest); start += limit {
		end := start + limit
		if end > len(rest) {
			end = len(rest)
		}
		chunk := rest[start:end]
		if ctx.Err() != nil {
			plan.abort(ctx.Err(), len(rest)-start)
			break
		}
		name, err := e.nextName(ctx, src.CampaignID, base, created)
		if err != nil {
			plan.abort(err, len(rest)-start)
			break
		}
		grp, err := e.Gateway.CreateAdGroup(ctx, src.CampaignID, name)
		if err != nil {
			plan.abort(fmt.Errorf("create ad group %q: %w", name, err), len(rest)-start)
			break
		}
		created[name] = true
		e.log().Info("overflow group created", zap.String("source", src.ID), zap.String("ad_group_id", grp.ID), zap.String("name", name))

		cp, err := copyCreatives(ctx, e.Gateway, e.log(), *src, *grp)
		if err != nil {
			e.log().Warn("copy creatives failed", zap.String("ad_group_id", grp.ID), zap.Error(err))
		}
		bid := grp.BidAmt
		if bid == 0 {
			bid = src.BidAmt
		}
		plan.Assignments = append(plan.Assignments, Assignment{
			AdGroupID:   grp.ID,
			AdGroupName: displayName(grp.Name, name),
			BidAmt:      bid,
			NewGroup:    true,
			Keywords:    chunk,
			Copy:        cp,
		})
	}
	if plan.Err != nil {
		e.auditAbort(ctx, plan)
	}
	return plan, nil
}

func (p *Plan) abort(err error, dropped int) {
	p.Err = err
	p.Dropped = dropped
}

// nextName returns {base}_{n} for the smallest n >= 1 not taken by the live
// group list or by groups created earlier in this plan.
func (e *OverflowExpander) nextName(ctx context.Context, campaignID, base string, created map[string]bool) (string, error) {
	groups, err := e.Gateway.FetchAdGroups(ctx, campaignID)
	if err != nil {
		return "", fmt.Errorf("list sibling groups: %w", err)
	}
	taken := make(map[string]bool, len(groups)+len(created))
	for _, g := range groups {
		taken[g.Name] = true
	}
	for name := range created {
		taken[name] = true
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d", base, n)
		if !taken[name] {
			return name, nil
		}
	}
}

func (e *OverflowExpander) auditAbort(ctx context.Context, p Plan) {
	e.log().Error("overflow expansion aborted",
		zap.String("source", p.SourceAdGroupID), zap.Int("dropped", p.Dropped), zap.Error(p.Err))
	entry := gateway.AuditEntry{
		Time:       time.Now().UTC(),
		Mode:       "expansion",
		Keyword:    p.SourceName,
		AdGroupID:  p.SourceAdGroupID,
		ReasonKind: "overflow_aborted",
		Reason:     fmt.Sprintf("group creation failed, %d keywords dropped: %v", p.Dropped, p.Err),
		Details: map[string]any{
			"requested": p.Requested,
			"dropped":   p.Dropped,
		},
	}
	if err := e.Gateway.AppendAuditLog(context.WithoutCancel(ctx), []gateway.AuditEntry{entry}); err != nil {
		e.log().Warn("append audit log failed", zap.Error(err))
	}
}

// Execute creates the planned keywords in chunks and counts per-item results.
func (e *OverflowExpander) Execute(ctx context.Context, p Plan) ExpansionResult {
	res := ExpansionResult{
		Requested:     p.Requested,
		Dropped:       p.Dropped,
		GroupsCreated: p.GroupsCreated(),
	}
	if p.Err != nil {
		res.Error = p.Err.Error()
	}
	size := e.chunkSize()
	for _, a := range p.Assignments {
		out := GroupOutcome{AdGroupID: a.AdGroupID, AdGroupName: a.AdGroupName, NewGroup: a.NewGroup, Requested: len(a.Keywords)}
		for start := 0; start < len(a.Keywords); start += size {
			end := start + size
			if end > len(a.Keywords) {
				end = len(a.Keywords)
			}
			if ctx.Err() != nil {
				res.Failed += len(a.Keywords) - start
				res.Error = ctx.Err().Error()
				break
			}
			items := make([]gateway.KeywordCreate, 0, end-start)
			for _, text := range a.Keywords[start:end] {
				items = append(items, gateway.KeywordCreate{AdGroupID: a.AdGroupID, Text: text, BidAmt: a.BidAmt})
			}
			results, err := e.Gateway.BulkCreateKeywords(ctx, items)
			ok := 0
			for _, r := range results {
				if r.OK {
					ok++
				} else if r.Error != "" {
					res.Failures = append(res.Failures, r.Text+": "+r.Error)
				}
			}
			if err != nil {
				e.log().Warn("bulk keyword create failed", zap.String("ad_group_id", a.AdGroupID), zap.Error(err))
				res.Failures = append(res.Failures, err.Error())
			}
			out.Created += ok
			res.Failed += len(items) - ok
		}
		res.Created += out.Created
		res.Groups = append(res.Groups, out)
	}
	e.saveRun(ctx, p, res)
	return res
}

// Expand plans and executes in one call.
func (e *OverflowExpander) Expand(ctx context.Context, adGroupID string, candidates []string) (ExpansionResult, error) {
	p, err := e.Plan(ctx, adGroupID, candidates)
	if err != nil {
		return ExpansionResult{}, err
	}
	return e.Execute(ctx, p), nil
}

func (e *OverflowExpander) saveRun(ctx context.Context, p Plan, res ExpansionResult) {
	if e.Runs == nil {
		return
	}
	raw, _ := json.Marshal(res.Groups)
	item := &models.ExpansionRun{
		SourceAdGroupID: p.SourceAdGroupID,
		SourceName:      p.SourceName,
		Requested:       res.Requested,
		Created:         res.Created,
		Failed:          res.Failed,
		Dropped:         res.Dropped,
		GroupsCreated:   res.GroupsCreated,
		Assignments:     datatypes.JSON(raw),
		Error:           res.Error,
	}
	if err := e.Runs.InsertExpansionRun(context.WithoutCancel(ctx), item); err != nil {
		e.log().Warn("save expansion run failed", zap.Error(err))
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
