package kiteconnect

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// HistoricalDataRequest describes one historical-candle query. Use
// NewHistoricalDataRequest and the builder methods to construct one; the
// zero value is not valid (Interval defaults to "day" but InstrumentToken
// must be set).
type HistoricalDataRequest struct {
	InstrumentToken int
	FromDate        time.Time
	ToDate           time.Time
	Interval         Interval
	continuous       bool
	withOI           bool
	reverse          bool
}

// NewHistoricalDataRequest builds a request for instrumentToken's candles
// over [from, to] at the given interval.
func NewHistoricalDataRequest(instrumentToken int, from, to time.Time, interval Interval) HistoricalDataRequest {
	return HistoricalDataRequest{
		InstrumentToken: instrumentToken,
		FromDate:        from,
		ToDate:          to,
		Interval:        interval,
	}
}

// Continuous marks the request as a continuous-futures query, carrying
// forward contract rollovers, and returns the request for chaining.
func (r HistoricalDataRequest) Continuous() HistoricalDataRequest {
	r.continuous = true
	return r
}

// WithOI requests open-interest data alongside OHLCV, when the broker
// supports it for this instrument's segment.
func (r HistoricalDataRequest) WithOI() HistoricalDataRequest {
	r.withOI = true
	return r
}

// Reverse requests newest-first chunk traversal with early termination on
// the first empty chunk, used to efficiently probe how far back history
// exists for an instrument.
func (r HistoricalDataRequest) Reverse() HistoricalDataRequest {
	r.reverse = true
	return r
}

// HistoricalData is the merged, chronologically ascending result of a
// (possibly chunked) historical-candle query.
type HistoricalData struct {
	Candles []Candle
}

type historicalPayload struct {
	Candles []Candle `json:"candles"`
}

// HistoricalData executes req, transparently splitting it into multiple
// broker calls when its span exceeds the interval's max-span limit, and
// returns the merged, date-ascending candle series.
func (c *Client) HistoricalData(ctx context.Context, req HistoricalDataRequest) (*HistoricalData, error) {
	if req.InstrumentToken <= 0 {
		return nil, invalidParameter("instrument token must be positive")
	}
	if err := validateRange(req.FromDate, req.ToDate); err != nil {
		return nil, err
	}

	var chunks []DateChunk
	if req.reverse {
		chunks = splitReverse(req.FromDate, req.ToDate, req.Interval)
	} else {
		chunks = splitForward(req.FromDate, req.ToDate, req.Interval)
	}

	var batches [][]Candle
	for _, chunk := range chunks {
		if c.metrics != nil {
			c.metrics.ChunksTotal.Inc()
		}

		candles, err := c.fetchHistoricalChunk(ctx, req, chunk)
		if err != nil {
			return nil, err
		}

		if req.reverse && len(candles) == 0 {
			// No data in this newest-first chunk: older chunks will be
			// empty too, so stop probing instead of issuing calls that
			// can't return anything.
			break
		}

		batches = append(batches, candles)
	}

	merged := mergeCandleBatches(batches)
	return &HistoricalData{Candles: merged}, nil
}

func (c *Client) fetchHistoricalChunk(ctx context.Context, req HistoricalDataRequest, chunk DateChunk) ([]Candle, error) {
	path := fmt.Sprintf("/instruments/historical/%d/%s", req.InstrumentToken, req.Interval.String())

	query := url.Values{}
	query.Set("from", chunk.From.UTC().Format("2006-01-02 15:04:05"))
	query.Set("to", chunk.To.UTC().Format("2006-01-02 15:04:05"))
	if req.continuous {
		query.Set("continuous", "1")
	}
	if req.withOI {
		query.Set("oi", "1")
	}

	var payload historicalPayload
	endpoint := "historical." + req.Interval.String()
	if err := c.dispatchGet(ctx, ratelimit.CategoryHistorical, endpoint, path, query, &payload); err != nil {
		return nil, err
	}
	return payload.Candles, nil
}

// mergeCandleBatches flattens the per-chunk candle slices and sorts the
// result into chronological ascending order, regardless of whether the
// batches were fetched oldest-first or newest-first.
func mergeCandleBatches(batches [][]Candle) []Candle {
	var total int
	for _, b := range batches {
		total += len(b)
	}
	merged := make([]Candle, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}
