package searchad

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignature_KnownVector(t *testing.T) {
	a := Signature("secret", "1700000000000", "get", "/ncc/campaigns")
	b := Signature("secret", "1700000000000", "GET", "/ncc/campaigns")
	if a != b {
		t.Fatalf("method case changed signature: %s vs %s", a, b)
	}
	if c := Signature("secret", "1700000000001", "GET", "/ncc/campaigns"); c == a {
		t.Fatalf("timestamp not covered by signature")
	}
	if a == "" {
		t.Fatalf("empty signature")
	}
}

func TestClient_SignsPathWithoutQuery(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ncc/keywords" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("nccAdgroupId"); got != "grp-1" {
			t.Errorf("nccAdgroupId=%q", got)
		}
		if got := r.Header.Get("X-Timestamp"); got != "1700000000123" {
			t.Errorf("X-Timestamp=%q", got)
		}
		if got := r.Header.Get("X-API-KEY"); got != "key" {
			t.Errorf("X-API-KEY=%q", got)
		}
		if got := r.Header.Get("X-Customer"); got != "42" {
			t.Errorf("X-Customer=%q", got)
		}
		want := Signature("sec", "1700000000123", "GET", "/ncc/keywords")
		if got := r.Header.Get("X-Signature"); got != want {
			t.Errorf("X-Signature=%q want %q", got, want)
		}
		_ = json.NewEncoder(w).Encode([]Keyword{{ID: "kw-1", AdGroupID: "grp-1", Keyword: "shoes", BidAmt: 500, Status: "ELIGIBLE"}})
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Credentials: Credentials{APIKey: "key", SecretKey: "sec", CustomerID: "42"}})
	c.now = func() time.Time { return fixed }

	items, err := c.ListKeywords(context.Background(), "grp-1")
	if err != nil {
		t.Fatalf("ListKeywords err=%v", err)
	}
	if len(items) != 1 || items[0].BidAmt != 500 || items[0].Keyword != "shoes" {
		t.Fatalf("items=%+v", items)
	}
}

func TestClient_UpdateKeywordBidDetachesGroupBid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/ncc/keywords/kw-9" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "bidAmt,useGroupBidAmt" {
			t.Errorf("fields=%q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body KeywordBidUpdate
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.BidAmt != 610 || body.UseGroupBidAmt {
			t.Errorf("body=%+v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	err := c.UpdateKeywordBid(context.Background(), KeywordBidUpdate{ID: "kw-9", AdGroupID: "g", BidAmt: 610, UseGroupBidAmt: true})
	if err != nil {
		t.Fatalf("UpdateKeywordBid err=%v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":1018,"title":"not found"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.GetAdGroup(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v want *APIError", err)
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound=false for %v", err)
	}
}

func TestClient_EstimateFillsPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req estimateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Device != "MOBILE" || len(req.Items) != 2 || req.Items[0].Position != 3 {
			t.Errorf("req=%+v", req)
		}
		_, _ = w.Write([]byte(`{"estimate":[{"keywordId":"a","bid":1200},{"nccKeywordId":"b","position":3,"bid":900}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	out, err := c.EstimatePositionBids(context.Background(), "MOBILE", []string{"a", "b"}, 3)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 2 || out[0].ID() != "a" || out[0].Position != 3 || out[1].ID() != "b" || out[1].Bid != 900 {
		t.Fatalf("out=%+v", out)
	}
}
