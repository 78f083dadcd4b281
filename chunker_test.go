package kiteconnect

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return tm.UTC()
}

func TestSplitForward_WithinLimitReturnsSingleChunk(t *testing.T) {
	from := mustParse(t, "2023-01-01 09:15:00")
	to := mustParse(t, "2023-01-05 15:30:00")

	chunks := splitForward(from, to, IntervalDay)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].From.Equal(from) || !chunks[0].To.Equal(to) {
		t.Errorf("single chunk should equal the whole range, got %+v", chunks[0])
	}
}

func TestSplitForward_ZeroDurationRange(t *testing.T) {
	from := mustParse(t, "2023-01-01 09:15:00")
	chunks := splitForward(from, from, IntervalMinute)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a zero-duration range, got %d", len(chunks))
	}
	if chunks[0].From != chunks[0].To {
		t.Error("zero-duration chunk should have From == To")
	}
}

func TestSplitForward_NoOverlapAndAscending(t *testing.T) {
	from := mustParse(t, "2023-01-01 09:15:00")
	to := mustParse(t, "2023-07-20 15:30:00")

	chunks := splitForward(from, to, IntervalFiveMinute)
	if len(chunks) < 2 {
		t.Fatalf("expected a multi-chunk split, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if !chunks[i-1].To.Before(chunks[i].From) {
			t.Errorf("chunk %d.To (%v) must be strictly before chunk %d.From (%v)", i-1, chunks[i-1].To, i, chunks[i].From)
		}
	}
	if !chunks[0].From.Equal(from) {
		t.Errorf("first chunk should start at %v, got %v", from, chunks[0].From)
	}
	if !chunks[len(chunks)-1].To.Equal(to) {
		t.Errorf("last chunk should end at %v, got %v", to, chunks[len(chunks)-1].To)
	}
}

func TestSplitReverse_NoOverlapAndDescending(t *testing.T) {
	from := mustParse(t, "2023-01-01 09:15:00")
	to := mustParse(t, "2023-07-20 15:30:00")

	chunks := splitReverse(from, to, IntervalFiveMinute)
	if len(chunks) < 2 {
		t.Fatalf("expected a multi-chunk split, got %d", len(chunks))
	}
	if !chunks[0].To.Equal(to) {
		t.Errorf("first reverse chunk should end at %v, got %v", to, chunks[0].To)
	}
	if !chunks[len(chunks)-1].From.Equal(from) {
		t.Errorf("last reverse chunk should start at %v, got %v", from, chunks[len(chunks)-1].From)
	}
	for i := 1; i < len(chunks); i++ {
		if !chunks[i].To.Before(chunks[i-1].From) {
			t.Errorf("chunk %d.To (%v) must be strictly before chunk %d.From (%v)", i, chunks[i].To, i-1, chunks[i-1].From)
		}
	}
}

func TestSplitForwardAndReverse_SameChunkCount(t *testing.T) {
	from := mustParse(t, "2020-01-01 00:00:00")
	to := mustParse(t, "2025-06-15 00:00:00")

	forward := splitForward(from, to, IntervalDay)
	reverse := splitReverse(from, to, IntervalDay)

	if len(forward) != len(reverse) {
		t.Errorf("forward (%d) and reverse (%d) splits should produce the same chunk count", len(forward), len(reverse))
	}
}

func TestValidateRange_RejectsInverted(t *testing.T) {
	from := mustParse(t, "2023-01-05 00:00:00")
	to := mustParse(t, "2023-01-01 00:00:00")

	if err := validateRange(from, to); err == nil {
		t.Fatal("expected an error for from > to")
	}
}

func TestNeedsChunking(t *testing.T) {
	from := mustParse(t, "2023-01-01 00:00:00")
	within := from.Add(50 * 24 * time.Hour)
	beyond := from.Add(150 * 24 * time.Hour)

	if needsChunking(from, within, IntervalFiveMinute) {
		t.Error("50-day span should be within the 100-day limit for 5minute")
	}
	if !needsChunking(from, beyond, IntervalFiveMinute) {
		t.Error("150-day span should exceed the 100-day limit for 5minute")
	}
}
