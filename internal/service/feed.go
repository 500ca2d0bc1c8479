package service

import (
	"sync"
	"sync/atomic"
	"time"

	"adbidder/internal/bidding"
)

const (
	FeedResult = "result"
	FeedStatus = "status"
)

// FeedEvent is one message on the live bidding feed.
type FeedEvent struct {
	Type   string          `json:"type"`
	Result *bidding.Result `json:"result,omitempty"`
	Status *RunStatus      `json:"status,omitempty"`
	At     time.Time       `json:"at"`
}

// Feed fans events out to websocket subscribers. Slow subscribers lose
// events rather than stalling the bidding loop.
type Feed struct {
	mu      sync.RWMutex
	subs    map[<-chan FeedEvent]chan FeedEvent
	dropped uint64
}

func NewFeed() *Feed {
	return &Feed{subs: map[<-chan FeedEvent]chan FeedEvent{}}
}

func (f *Feed) Subscribe(buf int) <-chan FeedEvent {
	if buf <= 0 {
		buf = 32
	}
	ch := make(chan FeedEvent, buf)
	f.mu.Lock()
	f.subs[ch] = ch
	f.mu.Unlock()
	return ch
}

func (f *Feed) Unsubscribe(ch <-chan FeedEvent) {
	f.mu.Lock()
	if c, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(c)
	}
	f.mu.Unlock()
}

func (f *Feed) Publish(ev FeedEvent) {
	if f == nil {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&f.dropped, 1)
		}
	}
}

func (f *Feed) Dropped() uint64 {
	if f == nil {
		return 0
	}
	return atomic.LoadUint64(&f.dropped)
}
