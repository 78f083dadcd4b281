package kiteconnect

import (
	"context"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// MarginFunds is the funds breakdown within a segment's margin data.
type MarginFunds struct {
	Cash           float64 `json:"cash"`
	OpeningBalance float64 `json:"opening_balance"`
	LiveBalance    float64 `json:"live_balance"`
	AdhocMargin    float64 `json:"adhoc_margin"`
	Collateral     float64 `json:"collateral"`
	IntradayPayin  float64 `json:"intraday_payin"`
}

// MarginUtilisation is the utilised-margin breakdown within a segment.
type MarginUtilisation struct {
	Debits         float64 `json:"debits"`
	Exposure       float64 `json:"exposure"`
	M2MUnrealised  float64 `json:"m2m_unrealised"`
	M2MRealised    float64 `json:"m2m_realised"`
	OptionPremium  float64 `json:"option_premium"`
	Span           float64 `json:"span"`
}

// SegmentMargin is one trading segment's (equity or commodity) margin
// snapshot.
type SegmentMargin struct {
	Available MarginFunds        `json:"available"`
	Utilised  MarginUtilisation  `json:"utilised"`
	Net       float64            `json:"net"`
}

// MarginData is the response of GET /user/margins.
type MarginData struct {
	Equity    *SegmentMargin `json:"equity"`
	Commodity *SegmentMargin `json:"commodity"`
}

// HasSufficientFunds reports whether the segment's available cash covers
// the required amount.
func (s SegmentMargin) HasSufficientFunds(required float64) bool {
	return s.Available.Cash >= required
}

// Margins fetches the account's equity and commodity margin data via GET
// /user/margins.
func (c *Client) Margins(ctx context.Context) (*MarginData, error) {
	var m MarginData
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "user.margins", "/user/margins", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
