package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"adbidder/internal/bidding"
	"adbidder/internal/client/searchad"
	"adbidder/internal/gateway"
	"adbidder/internal/models"
	"adbidder/internal/repository"
	"adbidder/internal/service"
)

type stubBidder struct {
	mu       sync.Mutex
	running  bool
	startErr error
	started  []service.RunRequest
	loop     *bool
}

func (b *stubBidder) Start(ctx context.Context, req service.RunRequest) (service.RunStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return service.RunStatus{}, b.startErr
	}
	b.started = append(b.started, req)
	b.running = true
	return service.RunStatus{State: service.StateRunning, Mode: req.Mode, RunID: "run-1"}, nil
}

func (b *stubBidder) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return service.ErrNotRunning
	}
	b.running = false
	return nil
}

func (b *stubBidder) SetLoop(on bool) {
	b.mu.Lock()
	b.loop = &on
	b.mu.Unlock()
}

func (b *stubBidder) Status() service.RunStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return service.RunStatus{State: service.StateRunning}
	}
	return service.RunStatus{State: service.StateIdle}
}

func (b *stubBidder) Running() bool { return b.Status().State != service.StateIdle }

func (b *stubBidder) Recent() []bidding.Result {
	return []bidding.Result{{KeywordID: "k2"}, {KeywordID: "k1"}}
}

func (b *stubBidder) Subscribe() <-chan service.FeedEvent { return make(chan service.FeedEvent) }

func (b *stubBidder) Unsubscribe(ch <-chan service.FeedEvent) {}

// settingsStore backs the settings and watch-list services.
type settingsStore struct {
	mu       sync.Mutex
	settings map[string]models.SystemSetting
	watch    []models.WatchKeyword
}

func newSettingsStore() *settingsStore {
	return &settingsStore{settings: map[string]models.SystemSetting{}}
}

func (s *settingsStore) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[item.Key] = *item
	return nil
}

func (s *settingsStore) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.settings[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *settingsStore) ListSystemSettings(ctx context.Context, p repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	return nil, nil
}

func (s *settingsStore) CountSystemSettings(ctx context.Context, p repository.ListSystemSettingsParams) (int64, error) {
	return 0, nil
}

func (s *settingsStore) UpsertWatchKeyword(ctx context.Context, item *models.WatchKeyword) error {
	s.watch = append(s.watch, *item)
	return nil
}

func (s *settingsStore) ListWatchKeywords(ctx context.Context) ([]models.WatchKeyword, error) {
	return s.watch, nil
}

func (s *settingsStore) DeleteWatchKeyword(ctx context.Context, keywordID string) error { return nil }

func (s *settingsStore) TouchWatchKeyword(ctx context.Context, keywordID string, bid, rank int, seenAt time.Time) error {
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func newAutoBidRouter(b *stubBidder, store *settingsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &AutoBidHandler{
		Bidder:    b,
		Settings:  &service.SystemSettingsService{Repo: store},
		Watchlist: &service.WatchlistService{Repo: store},
		Defaults:  bidding.DefaultStrategy(),
	}
	h.Register(r)
	s := &SystemSettingsHandler{Settings: &service.SystemSettingsService{Repo: store}}
	s.Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func TestStrategyRoundTrip(t *testing.T) {
	store := newSettingsStore()
	r := newAutoBidRouter(&stubBidder{}, store)

	code, env := do(t, r, http.MethodGet, "/api/v1/autobid/strategy", "")
	if code != http.StatusOK {
		t.Fatalf("get code=%d", code)
	}
	var got bidding.Strategy
	_ = json.Unmarshal(env.Data, &got)
	if got != bidding.DefaultStrategy() {
		t.Fatalf("default strategy=%+v", got)
	}

	code, _ = do(t, r, http.MethodPut, "/api/v1/autobid/strategy", `{"target_rank":2,"bid_step":15}`)
	if code != http.StatusBadRequest {
		t.Fatalf("invalid step code=%d", code)
	}

	code, _ = do(t, r, http.MethodPut, "/api/v1/autobid/strategy", `{"target_rank":2,"bid_step":500,"target_device":"pc"}`)
	if code != http.StatusOK {
		t.Fatalf("put code=%d", code)
	}
	_, env = do(t, r, http.MethodGet, "/api/v1/autobid/strategy", "")
	_ = json.Unmarshal(env.Data, &got)
	if got.TargetRank != 2 || got.BidStep != 500 || got.TargetDevice != "PC" || got.RankedMaxBid != 30000 {
		t.Fatalf("saved strategy=%+v", got)
	}
}

func TestStrategyLockedWhileRunning(t *testing.T) {
	r := newAutoBidRouter(&stubBidder{running: true}, newSettingsStore())
	code, _ := do(t, r, http.MethodPut, "/api/v1/autobid/strategy", `{"target_rank":2}`)
	if code != http.StatusConflict {
		t.Fatalf("code=%d want 409", code)
	}
}

func TestStartUsesSavedStrategyAndWatchlist(t *testing.T) {
	store := newSettingsStore()
	store.watch = []models.WatchKeyword{{KeywordID: "k1", AdGroupID: "g1", Keyword: "shoes"}}
	b := &stubBidder{}
	r := newAutoBidRouter(b, store)

	if code, _ := do(t, r, http.MethodPut, "/api/v1/autobid/strategy", `{"target_rank":1}`); code != http.StatusOK {
		t.Fatalf("put strategy code=%d", code)
	}
	code, _ := do(t, r, http.MethodPost, "/api/v1/autobid/start", `{"mode":"sniper","loop":true}`)
	if code != http.StatusOK {
		t.Fatalf("start code=%d", code)
	}
	if len(b.started) != 1 {
		t.Fatalf("starts=%d", len(b.started))
	}
	req := b.started[0]
	if req.Strategy.TargetRank != 1 || !req.Loop || len(req.Keywords) != 1 || req.Keywords[0].KeywordID != "k1" {
		t.Fatalf("run request=%+v", req)
	}
}

func TestStartErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		want   int
		reason string
	}{
		{service.ErrAlreadyRunning, http.StatusConflict, "already_running"},
		{service.ErrLeaseHeld, http.StatusConflict, "lease_held"},
		{service.ErrNoTargets, http.StatusBadRequest, "no_targets"},
		{fmt.Errorf("%w: rank", bidding.ErrInvalidStrategy), http.StatusBadRequest, "invalid_strategy"},
	}
	for _, tc := range cases {
		r := newAutoBidRouter(&stubBidder{startErr: tc.err}, newSettingsStore())
		code, env := do(t, r, http.MethodPost, "/api/v1/autobid/start", `{"mode":"campaign","campaigns":[{"campaign_id":"c1"}]}`)
		if code != tc.want || env.Code != tc.want || env.Reason != tc.reason {
			t.Fatalf("err=%v code=%d reason=%q want %d %q", tc.err, code, env.Reason, tc.want, tc.reason)
		}
	}
}

func TestStopAndLoop(t *testing.T) {
	b := &stubBidder{}
	r := newAutoBidRouter(b, newSettingsStore())
	if code, _ := do(t, r, http.MethodPost, "/api/v1/autobid/stop", ""); code != http.StatusConflict {
		t.Fatalf("stop idle code=%d", code)
	}
	b.running = true
	if code, _ := do(t, r, http.MethodPost, "/api/v1/autobid/stop", ""); code != http.StatusOK {
		t.Fatalf("stop code=%d", code)
	}
	if code, _ := do(t, r, http.MethodPut, "/api/v1/autobid/loop", `{"enabled":false}`); code != http.StatusOK {
		t.Fatalf("loop code=%d", code)
	}
	if b.loop == nil || *b.loop {
		t.Fatalf("loop=%v", b.loop)
	}
	_, env := do(t, r, http.MethodGet, "/api/v1/autobid/recent?limit=1", "")
	var items []bidding.Result
	_ = json.Unmarshal(env.Data, &items)
	if len(items) != 1 || items[0].KeywordID != "k2" {
		t.Fatalf("recent=%+v", items)
	}
}

func TestSwitches(t *testing.T) {
	store := newSettingsStore()
	r := newAutoBidRouter(&stubBidder{}, store)
	if code, _ := do(t, r, http.MethodPut, "/api/v1/system-settings/switches/nope", `{"enabled":true}`); code != http.StatusBadRequest {
		t.Fatalf("unknown switch code=%d", code)
	}
	if code, _ := do(t, r, http.MethodPut, "/api/v1/system-settings/switches/autobid_schedule", `{"enabled":true}`); code != http.StatusOK {
		t.Fatalf("switch code=%d", code)
	}
	_, env := do(t, r, http.MethodGet, "/api/v1/system-settings/switches", "")
	var sws []service.FeatureSwitch
	_ = json.Unmarshal(env.Data, &sws)
	found := false
	for _, sw := range sws {
		if sw.Name == service.FeatureAutoBidSchedule {
			found = sw.Enabled
		}
	}
	if !found {
		t.Fatalf("switches=%+v", sws)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("ad group g1: %w", gateway.ErrNotFound), http.StatusNotFound},
		{&searchad.APIError{Status: http.StatusNotFound}, http.StatusNotFound},
		{&searchad.APIError{Status: http.StatusTooManyRequests}, http.StatusBadGateway},
		{fmt.Errorf("%w: empty", service.ErrInvalidRequest), http.StatusBadRequest},
		{errors.New("boom"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Fatalf("errorStatus(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

func TestFailExposesUpstreamStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		fail(c, fmt.Errorf("bulk update: %w", &searchad.APIError{Status: http.StatusTooManyRequests}))
	})
	code, env := do(t, r, http.MethodGet, "/x", "")
	if code != http.StatusBadGateway || env.Reason != "upstream_error" {
		t.Fatalf("code=%d reason=%q", code, env.Reason)
	}
	if v, _ := env.Meta["upstream_status"].(float64); int(v) != http.StatusTooManyRequests {
		t.Fatalf("meta=%v", env.Meta)
	}
}

func TestCombineWithoutGroupOnlyPreviews(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	(&ExpansionHandler{}).Register(r)
	code, env := do(t, r, http.MethodPost, "/api/v1/expansion/combine", `{"a":["seoul","busan"],"b":["hotel"],"reverse":true}`)
	if code != http.StatusOK {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(string(env.Data), `"hotelseoul"`) || strings.Contains(string(env.Data), `"seoulhotel"`) {
		t.Fatalf("data=%s", env.Data)
	}
}
