package kiteconnect

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCandle_UnmarshalArray_SixElements(t *testing.T) {
	raw := `["2023-01-02T09:15:00+0530", 100.5, 105.0, 99.5, 102.25, 12345]`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Open != 100.5 || c.High != 105.0 || c.Low != 99.5 || c.Close != 102.25 || c.Volume != 12345 {
		t.Errorf("unexpected fields: %+v", c)
	}
	if c.OI != nil {
		t.Error("6-element array should not carry OI")
	}
}

func TestCandle_UnmarshalArray_SevenElementsWithOI(t *testing.T) {
	raw := `["2023-01-02T09:15:00+0530", 100.5, 105.0, 99.5, 102.25, 12345, 500]`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.OI == nil || *c.OI != 500 {
		t.Errorf("expected OI 500, got %v", c.OI)
	}
}

func TestCandle_UnmarshalArray_TooShortIsError(t *testing.T) {
	raw := `["2023-01-02T09:15:00+0530", 100.5, 105.0]`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err == nil {
		t.Fatal("expected an error for a too-short candle array")
	}
}

func TestCandle_UnmarshalObject(t *testing.T) {
	raw := `{"date":"2023-01-02T09:15:00+0530","open":100.5,"high":105.0,"low":99.5,"close":102.25,"volume":12345,"oi":500}`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.OI == nil || *c.OI != 500 {
		t.Errorf("expected OI 500, got %v", c.OI)
	}
}

func TestCandle_UnmarshalObject_UnixTimestamp(t *testing.T) {
	raw := `{"date":1672646100,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10}`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Unix(1672646100, 0).UTC()
	if !c.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, c.Date)
	}
}

func TestCandle_UnmarshalObject_ZSuffixDate(t *testing.T) {
	raw := `{"date":"2023-01-02T03:45:00Z","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Date.Hour() != 3 || c.Date.Minute() != 45 {
		t.Errorf("unexpected parsed time: %v", c.Date)
	}
}

func TestCandle_NumericStringFields(t *testing.T) {
	raw := `{"date":"2023-01-02T03:45:00Z","open":"1.5","high":"2.5","low":"0.5","close":"2.0","volume":"10"}`
	var c Candle
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Open != 1.5 || c.Volume != 10 {
		t.Errorf("expected numeric-string fields to parse, got %+v", c)
	}
}

func TestCandle_MarshalJSON_AlwaysObjectForm(t *testing.T) {
	oi := uint64(7)
	c := Candle{
		Date: time.Date(2023, 1, 2, 3, 45, 0, 0, time.UTC),
		Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, OI: &oi,
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(out, &asMap); err != nil {
		t.Fatalf("re-unmarshal as map: %v", err)
	}
	if _, ok := asMap["date"].(string); !ok {
		t.Error("serialized form must be the named-object form with a string date")
	}
}

func TestCandle_ConvenienceAccessors(t *testing.T) {
	bullish := Candle{Open: 10, High: 15, Low: 9, Close: 14}
	if !bullish.IsBullish() || bullish.IsBearish() {
		t.Error("expected a bullish candle")
	}
	if bullish.BodySize() != 4 {
		t.Errorf("expected body size 4, got %v", bullish.BodySize())
	}
	if bullish.Range() != 6 {
		t.Errorf("expected range 6, got %v", bullish.Range())
	}
	want := (15.0 + 9.0 + 14.0) / 3.0
	if bullish.TypicalPrice() != want {
		t.Errorf("expected typical price %v, got %v", want, bullish.TypicalPrice())
	}
}
