package kiteconnect

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Candle is one OHLCV(+OI) bar. Internal representation is always the
// named-field form; the wire representation may be either a positional
// array or a named-field object, both handled by UnmarshalJSON.
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume uint64
	OI     *uint64
}

// candleObject is the named-field wire shape, used both for decoding the
// object form and for always serializing.
type candleObject struct {
	Date   json.RawMessage `json:"date"`
	Open   json.RawMessage `json:"open"`
	High   json.RawMessage `json:"high"`
	Low    json.RawMessage `json:"low"`
	Close  json.RawMessage `json:"close"`
	Volume json.RawMessage `json:"volume"`
	OI     json.RawMessage `json:"oi,omitempty"`
}

// TypicalPrice returns (high+low+close)/3.
func (c Candle) TypicalPrice() float64 { return (c.High + c.Low + c.Close) / 3.0 }

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool { return c.Close > c.Open }

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool { return c.Close < c.Open }

// BodySize returns the absolute distance between open and close.
func (c Candle) BodySize() float64 { return absFloat(c.Close - c.Open) }

// Range returns high-low.
func (c Candle) Range() float64 { return c.High - c.Low }

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// UnmarshalJSON branches on the JSON kind: a 6- or 7-element array decodes
// positionally, anything else decodes as a named-field object. This is the
// "polymorphic JSON" pattern called out in — a custom
// deserializer that branches on the JSON kind rather than inheritance.
func (c *Candle) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return c.unmarshalArray(data)
	}
	return c.unmarshalObject(data)
}

func (c *Candle) unmarshalArray(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return dataError(fmt.Sprintf("candle array: %v", err))
	}
	if len(raw) != 6 && len(raw) != 7 {
		return dataError(fmt.Sprintf("candle array must have 6 or 7 elements, got %d", len(raw)))
	}

	date, err := parseCandleDate(raw[0])
	if err != nil {
		return err
	}
	open, err := parseCandleFloat(raw[1], "open")
	if err != nil {
		return err
	}
	high, err := parseCandleFloat(raw[2], "high")
	if err != nil {
		return err
	}
	low, err := parseCandleFloat(raw[3], "low")
	if err != nil {
		return err
	}
	closeP, err := parseCandleFloat(raw[4], "close")
	if err != nil {
		return err
	}
	volume, err := parseCandleUint(raw[5], "volume")
	if err != nil {
		return err
	}

	c.Date = date
	c.Open = open
	c.High = high
	c.Low = low
	c.Close = closeP
	c.Volume = volume
	c.OI = nil

	if len(raw) == 7 {
		oi, err := parseCandleUint(raw[6], "oi")
		if err != nil {
			return err
		}
		c.OI = &oi
	}
	return nil
}

func (c *Candle) unmarshalObject(data []byte) error {
	var obj candleObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return dataError(fmt.Sprintf("candle object: %v", err))
	}

	date, err := parseCandleDate(obj.Date)
	if err != nil {
		return err
	}
	open, err := parseCandleFloat(obj.Open, "open")
	if err != nil {
		return err
	}
	high, err := parseCandleFloat(obj.High, "high")
	if err != nil {
		return err
	}
	low, err := parseCandleFloat(obj.Low, "low")
	if err != nil {
		return err
	}
	closeP, err := parseCandleFloat(obj.Close, "close")
	if err != nil {
		return err
	}
	volume, err := parseCandleUint(obj.Volume, "volume")
	if err != nil {
		return err
	}

	c.Date = date
	c.Open = open
	c.High = high
	c.Low = low
	c.Close = closeP
	c.Volume = volume
	c.OI = nil

	if len(obj.OI) > 0 && string(obj.OI) != "null" {
		oi, err := parseCandleUint(obj.OI, "oi")
		if err != nil {
			return err
		}
		c.OI = &oi
	}
	return nil
}

// MarshalJSON always emits the named-field object form with an ISO-8601 UTC
// date.
func (c Candle) MarshalJSON() ([]byte, error) {
	type wire struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume uint64  `json:"volume"`
		OI     *uint64 `json:"oi,omitempty"`
	}
	return json.Marshal(wire{
		Date:   c.Date.UTC().Format(time.RFC3339),
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: c.Volume,
		OI:     c.OI,
	})
}

// parseCandleDate accepts ISO-8601 with a numeric offset, ISO-8601 with a Z
// suffix, or an integer Unix-seconds timestamp, converting all three to UTC.
func parseCandleDate(raw json.RawMessage) (time.Time, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		for _, layout := range []string{
			"2006-01-02T15:04:05-0700",
			time.RFC3339,
		} {
			if t, err := time.Parse(layout, asString); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, dataError(fmt.Sprintf("candle date %q is not a recognized ISO-8601 form", asString))
	}

	var asInt int64
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return time.Unix(asInt, 0).UTC(), nil
	}

	return time.Time{}, dataError("candle date must be a string or an integer Unix timestamp")
}

// parseCandleFloat accepts either a JSON number or a numeric string.
func parseCandleFloat(raw json.RawMessage, field string) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, dataError(fmt.Sprintf("candle field %s: %v", field, err))
		}
		return v, nil
	}
	return 0, dataError(fmt.Sprintf("candle field %s must be a number or numeric string", field))
}

func parseCandleUint(raw json.RawMessage, field string) (uint64, error) {
	var u uint64
	if err := json.Unmarshal(raw, &u); err == nil {
		return u, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f >= 0 {
		return uint64(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, dataError(fmt.Sprintf("candle field %s: %v", field, err))
		}
		return v, nil
	}
	return 0, dataError(fmt.Sprintf("candle field %s must be an integer or numeric string", field))
}
