package meta

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeFetcher struct {
	topCalls    int
	formatCalls int
	err         error
}

func (f *fakeFetcher) TopCommanders(_ context.Context) ([]*CommanderRank, error) {
	f.topCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []*CommanderRank{{Rank: 1, Name: "Tatyova, Benthic Druid", Decks: 1200}}, nil
}

func (f *fakeFetcher) Format(_ context.Context, format string) (*FormatMeta, error) {
	f.formatCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &FormatMeta{Format: format, TotalDecks: 5000}, nil
}

func TestTopCommandersCached(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewService(fetcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ranks, err := svc.TopCommanders(ctx)
		if err != nil {
			t.Fatalf("TopCommanders failed: %v", err)
		}
		if len(ranks) != 1 || ranks[0].Name != "Tatyova, Benthic Druid" {
			t.Fatalf("unexpected ranks: %+v", ranks)
		}
	}

	if fetcher.topCalls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.topCalls)
	}
}

func TestTopCommandersRefreshAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewService(fetcher)
	ctx := context.Background()

	now := time.Now()
	svc.nowFunc = func() time.Time { return now }

	if _, err := svc.TopCommanders(ctx); err != nil {
		t.Fatalf("TopCommanders failed: %v", err)
	}

	now = now.Add(defaultCacheTTL + time.Minute)
	if _, err := svc.TopCommanders(ctx); err != nil {
		t.Fatalf("TopCommanders failed: %v", err)
	}

	if fetcher.topCalls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.topCalls)
	}
}

func TestFormatCachedPerFormat(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewService(fetcher)
	ctx := context.Background()

	if _, err := svc.Format(ctx, "commander"); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if _, err := svc.Format(ctx, "commander"); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if _, err := svc.Format(ctx, "brawl"); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if fetcher.formatCalls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.formatCalls)
	}
}

func TestFetchErrorNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("server unavailable")}
	svc := NewService(fetcher)
	ctx := context.Background()

	if _, err := svc.TopCommanders(ctx); err == nil {
		t.Fatal("expected error")
	}

	fetcher.err = nil
	ranks, err := svc.TopCommanders(ctx)
	if err != nil {
		t.Fatalf("TopCommanders after recovery failed: %v", err)
	}
	if len(ranks) != 1 {
		t.Errorf("got %d ranks, want 1", len(ranks))
	}
	if fetcher.topCalls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.topCalls)
	}
}
