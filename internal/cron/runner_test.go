package cronrunner

import (
	"context"
	"testing"
	"time"
)

type ctxKey struct{}

func TestRunnerRunsJobWithBaseContext(t *testing.T) {
	base := context.WithValue(context.Background(), ctxKey{}, "base")
	r := New(nil, base)
	got := make(chan any, 1)
	if _, err := r.Add("probe", "* * * * * *", func(ctx context.Context) {
		select {
		case got <- ctx.Value(ctxKey{}):
		default:
		}
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	r.Start()
	defer r.Stop()
	select {
	case v := <-got:
		if v != "base" {
			t.Fatalf("ctx value=%v", v)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.Add("bad", "every minute", func(context.Context) {}); err == nil {
		t.Fatalf("expected spec error")
	}
	if id, err := r.Add("off", "", func(context.Context) {}); err != nil || id != 0 {
		t.Fatalf("empty spec id=%v err=%v", id, err)
	}
}
