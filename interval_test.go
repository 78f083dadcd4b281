package kiteconnect

import (
	"encoding/json"
	"testing"
)

func TestInterval_UnmarshalString(t *testing.T) {
	var i Interval
	if err := json.Unmarshal([]byte(`"15minute"`), &i); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i != IntervalFifteenMinute {
		t.Errorf("expected IntervalFifteenMinute, got %v", i)
	}
}

func TestInterval_UnmarshalInt(t *testing.T) {
	var i Interval
	if err := json.Unmarshal([]byte(`2`), &i); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i != IntervalThreeMinute {
		t.Errorf("expected IntervalThreeMinute, got %v", i)
	}
}

func TestInterval_UnmarshalInvalid(t *testing.T) {
	var i Interval
	if err := json.Unmarshal([]byte(`"fortnight"`), &i); err == nil {
		t.Fatal("expected an error for an unrecognized interval string")
	}
	if err := json.Unmarshal([]byte(`99`), &i); err == nil {
		t.Fatal("expected an error for an out-of-range interval integer")
	}
}

func TestInterval_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(IntervalSixtyMinute)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"60minute"` {
		t.Errorf("expected %q, got %q", `"60minute"`, out)
	}
}

func TestInterval_MaxSpanDays(t *testing.T) {
	cases := map[Interval]int{
		IntervalDay:           2000,
		IntervalMinute:        60,
		IntervalFiveMinute:    100,
		IntervalFifteenMinute: 200,
		IntervalSixtyMinute:   400,
	}
	for interval, want := range cases {
		if got := interval.maxSpanDays(); got != want {
			t.Errorf("%v: expected max span %d, got %d", interval, want, got)
		}
	}
}
