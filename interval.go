package kiteconnect

import (
	"encoding/json"
	"fmt"
)

// Interval is the closed enumeration of historical-candle timeframes. It
// serializes to its string form and deserializes from either the string
// or integer form, accepting whichever shape the broker sends.
type Interval int8

const (
	IntervalDay Interval = iota
	IntervalMinute
	IntervalThreeMinute
	IntervalFiveMinute
	IntervalTenMinute
	IntervalFifteenMinute
	IntervalThirtyMinute
	IntervalSixtyMinute
)

var intervalStrings = map[Interval]string{
	IntervalDay:           "day",
	IntervalMinute:        "minute",
	IntervalThreeMinute:   "3minute",
	IntervalFiveMinute:    "5minute",
	IntervalTenMinute:     "10minute",
	IntervalFifteenMinute: "15minute",
	IntervalThirtyMinute:  "30minute",
	IntervalSixtyMinute:   "60minute",
}

var intervalFromString = func() map[string]Interval {
	m := make(map[string]Interval, len(intervalStrings))
	for k, v := range intervalStrings {
		m[v] = k
	}
	return m
}()

func (i Interval) String() string {
	if s, ok := intervalStrings[i]; ok {
		return s
	}
	return fmt.Sprintf("Interval(%d)", int8(i))
}

// maxSpanDays is the broker's documented per-request limit for each
// interval.
func (i Interval) maxSpanDays() int {
	switch i {
	case IntervalDay:
		return 2000
	case IntervalMinute:
		return 60
	case IntervalThreeMinute, IntervalFiveMinute, IntervalTenMinute:
		return 100
	case IntervalFifteenMinute, IntervalThirtyMinute:
		return 200
	case IntervalSixtyMinute:
		return 400
	default:
		return 0
	}
}

// MarshalJSON always emits the string form.
func (i Interval) MarshalJSON() ([]byte, error) {
	s, ok := intervalStrings[i]
	if !ok {
		return nil, invalidParameter(fmt.Sprintf("unknown interval value %d", int8(i)))
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts either the string or integer form.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v, ok := intervalFromString[asString]
		if !ok {
			return invalidParameter(fmt.Sprintf("unknown interval %q", asString))
		}
		*i = v
		return nil
	}

	var asInt int8
	if err := json.Unmarshal(data, &asInt); err == nil {
		if asInt < 0 || int(asInt) > int(IntervalSixtyMinute) {
			return invalidParameter(fmt.Sprintf("interval integer %d out of range", asInt))
		}
		*i = Interval(asInt)
		return nil
	}

	return invalidParameter("interval must be a string or an integer")
}
