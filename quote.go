package kiteconnect

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// DepthLevel is one price level of a market-depth order book.
type DepthLevel struct {
	Price    float64 `json:"price"`
	Quantity uint32  `json:"quantity"`
	Orders   uint32  `json:"orders"`
}

// MarketDepthFull is the full five-level order book the /quote endpoint
// returns for each instrument.
type MarketDepthFull struct {
	Buy  []DepthLevel `json:"buy"`
	Sell []DepthLevel `json:"sell"`
}

// BestBid returns the highest buy price level, if any.
func (d MarketDepthFull) BestBid() (DepthLevel, bool) {
	if len(d.Buy) == 0 {
		return DepthLevel{}, false
	}
	return d.Buy[0], true
}

// BestAsk returns the lowest sell price level, if any.
func (d MarketDepthFull) BestAsk() (DepthLevel, bool) {
	if len(d.Sell) == 0 {
		return DepthLevel{}, false
	}
	return d.Sell[0], true
}

// Spread returns BestAsk - BestBid, when both sides are present.
func (d MarketDepthFull) Spread() (float64, bool) {
	bid, ok := d.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := d.BestAsk()
	if !ok {
		return 0, false
	}
	return ask.Price - bid.Price, true
}

// Quote is one instrument's full market snapshot from GET /quote.
type Quote struct {
	InstrumentToken int             `json:"instrument_token"`
	Timestamp       time.Time       `json:"timestamp"`
	LastPrice       float64         `json:"last_price"`
	LastQuantity    uint32          `json:"last_quantity"`
	AveragePrice    float64         `json:"average_price"`
	Volume          uint64          `json:"volume"`
	BuyQuantity     uint32          `json:"buy_quantity"`
	SellQuantity    uint32          `json:"sell_quantity"`
	Open            float64         `json:"ohlc_open"`
	High            float64         `json:"ohlc_high"`
	Low             float64         `json:"ohlc_low"`
	Close           float64         `json:"ohlc_close"`
	NetChange       float64         `json:"net_change"`
	Depth           MarketDepthFull `json:"depth"`
}

// Quotes fetches full market quotes for the given exchange:tradingsymbol
// keys (e.g. "NSE:INFY"), the request shape used by GET /quote. Together
// with LTP it is one of the two calls that exercise the Quote rate-limit
// category.
func (c *Client) Quotes(ctx context.Context, instruments []string) (map[string]Quote, error) {
	if len(instruments) == 0 {
		return nil, invalidParameter("at least one instrument is required")
	}

	query := url.Values{}
	for _, instrument := range instruments {
		query.Add("i", instrument)
	}

	var out map[string]Quote
	if err := c.dispatchGet(ctx, ratelimit.CategoryQuote, "quote", "/quote", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LTP fetches only the last traded price for the given instruments,
// the lighter-weight sibling of Quotes (GET /quote/ltp).
func (c *Client) LTP(ctx context.Context, instruments []string) (map[string]float64, error) {
	if len(instruments) == 0 {
		return nil, invalidParameter("at least one instrument is required")
	}
	query := url.Values{}
	for _, instrument := range instruments {
		query.Add("i", instrument)
	}

	var raw map[string]struct {
		InstrumentToken int     `json:"instrument_token"`
		LastPrice       float64 `json:"last_price"`
	}
	if err := c.dispatchGet(ctx, ratelimit.CategoryQuote, "quote.ltp", "/quote/ltp", query, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		out[strings.TrimSpace(k)] = v.LastPrice
	}
	return out, nil
}
