package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adbidder/internal/gateway"
)

// Combine joins every a with every b. forward yields "ab", reverse yields "ba";
// with neither set forward is assumed. Output is deduplicated in first-seen order.
func Combine(a, b []string, forward, reverse bool) []string {
	if !forward && !reverse {
		forward = true
	}
	var out []string
	for _, x := range dedupe(a) {
		for _, y := range dedupe(b) {
			if forward {
				out = append(out, x+y)
			}
			if reverse {
				out = append(out, y+x)
			}
		}
	}
	return dedupe(out)
}

// BatchLine is one "group | region1, region2" mapping.
type BatchLine struct {
	Line    int      `json:"line"`
	Group   string   `json:"group"`
	Regions []string `json:"regions"`
}

// ParseBatchMapping reads lines of the form "group | region1, region2<TAB>region3".
// Regions are split on commas and tabs. Lines without a group or without any
// region are reported by line number.
func ParseBatchMapping(text string) ([]BatchLine, []int) {
	var (
		lines   []BatchLine
		invalid []int
	)
	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		group, rest, ok := strings.Cut(raw, "|")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			invalid = append(invalid, i+1)
			continue
		}
		regions := dedupe(strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == '\t' }))
		if len(regions) == 0 {
			invalid = append(invalid, i+1)
			continue
		}
		lines = append(lines, BatchLine{Line: i + 1, Group: group, Regions: regions})
	}
	return lines, invalid
}

// ResolveGroup matches name exactly first and then as a substring.
func ResolveGroup(groups []gateway.AdGroup, name string) (gateway.AdGroup, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	needle := strings.ToLower(name)
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), needle) {
			return g, true
		}
	}
	return gateway.AdGroup{}, false
}

type BatchLineResult struct {
	BatchLine
	Keywords    []string        `json:"keywords"`
	AdGroupID   string          `json:"ad_group_id"`
	AdGroupName string          `json:"ad_group_name"`
	Result      ExpansionResult `json:"result"`
	Error       string          `json:"error,omitempty"`
}

type BatchResult struct {
	Lines         []BatchLineResult `json:"lines"`
	MissingGroups []string          `json:"missing_groups,omitempty"`
	InvalidLines  []int             `json:"invalid_lines,omitempty"`
	Created       int               `json:"created"`
	Failed        int               `json:"failed"`
}

// BatchRequest crosses every mapping line's regions with the shared main
// keywords. Forward yields region+main, Reverse yields main+region.
type BatchRequest struct {
	CampaignID string   `json:"campaign_id"`
	Text       string   `json:"text"`
	Main       []string `json:"main"`
	Forward    bool     `json:"forward"`
	Reverse    bool     `json:"reverse"`
}

// KeywordBatchService applies a batch mapping to one campaign through the overflow expander.
type KeywordBatchService struct {
	Gateway  gateway.Gateway
	Expander *OverflowExpander
	Logger   *zap.Logger
}

func (s *KeywordBatchService) Run(ctx context.Context, req BatchRequest) (BatchResult, error) {
	var res BatchResult
	mainKeywords := dedupe(req.Main)
	if len(mainKeywords) == 0 {
		return res, fmt.Errorf("%w: main keywords are required", ErrInvalidRequest)
	}
	lines, invalid := ParseBatchMapping(req.Text)
	res.InvalidLines = invalid
	if len(lines) == 0 {
		return res, fmt.Errorf("%w: no valid mapping lines", ErrInvalidRequest)
	}
	groups, err := s.Gateway.FetchAdGroups(ctx, req.CampaignID)
	if err != nil {
		return res, err
	}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		g, ok := ResolveGroup(groups, line.Group)
		if !ok {
			res.MissingGroups = append(res.MissingGroups, line.Group)
			continue
		}
		keywords := Combine(line.Regions, mainKeywords, req.Forward, req.Reverse)
		lr := BatchLineResult{BatchLine: line, Keywords: keywords, AdGroupID: g.ID, AdGroupName: g.Name}
		out, err := s.Expander.Expand(ctx, g.ID, keywords)
		if err != nil {
			lr.Error = err.Error()
			if s.Logger != nil {
				s.Logger.Warn("batch line failed", zap.Int("line", line.Line), zap.String("group", g.Name), zap.Error(err))
			}
		}
		lr.Result = out
		res.Created += out.Created
		res.Failed += out.Failed
		res.Lines = append(res.Lines, lr)
	}
	return res, nil
}
