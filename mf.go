package kiteconnect

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// MFOrder is one mutual-fund order.
type MFOrder struct {
	OrderID           string     `json:"order_id"`
	ExchangeOrderID   *string    `json:"exchange_order_id"`
	TradingSymbol     string     `json:"tradingsymbol"`
	Fund              string     `json:"fund"`
	Status            string     `json:"status"`
	StatusMessage     *string    `json:"status_message"`
	Folio             *string    `json:"folio"`
	TransactionType   string     `json:"transaction_type"`
	Amount            *float64   `json:"amount"`
	Quantity          *float64   `json:"quantity"`
	PurchaseType      *string    `json:"purchase_type"`
	OrderTimestamp    time.Time  `json:"order_timestamp"`
	AveragePrice      *float64   `json:"average_price"`
	Tag               *string    `json:"tag"`
}

// MFOrderParams is the request shape for PlaceMFOrder, built via
// NewMFPurchase or NewMFRedemption.
type MFOrderParams struct {
	TradingSymbol   string
	TransactionType string
	Amount          *float64
	Quantity        *float64
	Tag             string
}

// NewMFPurchase builds a purchase order of amount rupees in tradingSymbol.
func NewMFPurchase(tradingSymbol string, amount float64) MFOrderParams {
	return MFOrderParams{TradingSymbol: tradingSymbol, TransactionType: "BUY", Amount: &amount}
}

// NewMFRedemption builds a redemption order of quantity units in tradingSymbol.
func NewMFRedemption(tradingSymbol string, quantity float64) MFOrderParams {
	return MFOrderParams{TradingSymbol: tradingSymbol, TransactionType: "SELL", Quantity: &quantity}
}

// WithTag attaches a caller-defined tag and returns the params for chaining.
func (p MFOrderParams) WithTag(tag string) MFOrderParams {
	p.Tag = tag
	return p
}

func (p MFOrderParams) values() url.Values {
	v := url.Values{}
	v.Set("tradingsymbol", p.TradingSymbol)
	v.Set("transaction_type", p.TransactionType)
	if p.Amount != nil {
		v.Set("amount", strconv.FormatFloat(*p.Amount, 'f', -1, 64))
	}
	if p.Quantity != nil {
		v.Set("quantity", strconv.FormatFloat(*p.Quantity, 'f', -1, 64))
	}
	if p.Tag != "" {
		v.Set("tag", p.Tag)
	}
	return v
}

// PlaceMFOrder submits a mutual-fund purchase or redemption order via
// POST /mf/orders.
func (c *Client) PlaceMFOrder(ctx context.Context, params MFOrderParams) (orderID string, err error) {
	var resp struct {
		OrderID string `json:"order_id"`
	}
	if err := c.dispatchForm(ctx, "mf.orders.place", "POST", "/mf/orders", params.values(), &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

// MFOrders fetches the account's mutual-fund order book via GET /mf/orders.
func (c *Client) MFOrders(ctx context.Context) ([]MFOrder, error) {
	var out []MFOrder
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "mf.orders.list", "/mf/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrdersByStatus filters a fetched order list by status.
func OrdersByStatus(orders []MFOrder, status string) []MFOrder {
	var matched []MFOrder
	for _, o := range orders {
		if o.Status == status {
			matched = append(matched, o)
		}
	}
	return matched
}
