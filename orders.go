package kiteconnect

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// Order is the broker's order record. Decoded through the same generic
// envelope pipeline as every other response; this package does not
// special-case order shapes.
type Order struct {
	AccountID               string     `json:"account_id"`
	OrderID                 string     `json:"order_id"`
	ExchangeOrderID         *string    `json:"exchange_order_id"`
	ParentOrderID           *string    `json:"parent_order_id"`
	Status                  string     `json:"status"`
	StatusMessage           *string    `json:"status_message"`
	OrderTimestamp          time.Time  `json:"order_timestamp"`
	ExchangeTimestamp       *time.Time `json:"exchange_timestamp"`
	TradingSymbol           string     `json:"tradingsymbol"`
	Exchange                string     `json:"exchange"`
	InstrumentToken         uint32     `json:"instrument_token"`
	OrderType               string     `json:"order_type"`
	TransactionType         string     `json:"transaction_type"`
	Validity                string     `json:"validity"`
	Product                 string     `json:"product"`
	Quantity                uint32     `json:"quantity"`
	DisclosedQuantity       uint32     `json:"disclosed_quantity"`
	Price                   float64    `json:"price"`
	TriggerPrice            float64    `json:"trigger_price"`
	AveragePrice            float64    `json:"average_price"`
	FilledQuantity          uint32     `json:"filled_quantity"`
	PendingQuantity         uint32     `json:"pending_quantity"`
	CancelledQuantity       uint32     `json:"cancelled_quantity"`
	Tag                     *string    `json:"tag"`
	GUID                    string     `json:"guid"`
}

// OrderParams is the request shape for PlaceOrder ( order
// endpoint catalogue).
type OrderParams struct {
	Exchange          string
	TradingSymbol     string
	TransactionType   string
	Quantity          int
	Product           string
	OrderType         string
	Price             float64
	TriggerPrice      float64
	DisclosedQuantity int
	Validity          string
	Tag               string
}

func (p OrderParams) values() url.Values {
	v := url.Values{}
	v.Set("exchange", p.Exchange)
	v.Set("tradingsymbol", p.TradingSymbol)
	v.Set("transaction_type", p.TransactionType)
	v.Set("quantity", strconv.Itoa(p.Quantity))
	v.Set("product", p.Product)
	v.Set("order_type", p.OrderType)
	if p.Price != 0 {
		v.Set("price", strconv.FormatFloat(p.Price, 'f', -1, 64))
	}
	if p.TriggerPrice != 0 {
		v.Set("trigger_price", strconv.FormatFloat(p.TriggerPrice, 'f', -1, 64))
	}
	if p.DisclosedQuantity != 0 {
		v.Set("disclosed_quantity", strconv.Itoa(p.DisclosedQuantity))
	}
	if p.Validity != "" {
		v.Set("validity", p.Validity)
	}
	if p.Tag != "" {
		v.Set("tag", p.Tag)
	}
	return v
}

// PlaceOrder submits a new order via POST /orders/{variety}. Together with
// CancelOrder it routes through the Order category, with its per-second
// rate and 3000/day budget.
func (c *Client) PlaceOrder(ctx context.Context, variety string, params OrderParams) (orderID string, err error) {
	var resp struct {
		OrderID string `json:"order_id"`
	}
	path := "/orders/" + variety
	if err := c.dispatch(ctx, ratelimit.CategoryOrder, "orders.place", "POST", path, nil, params.values(), &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

// CancelOrder cancels an open order via DELETE /orders/{variety}/{orderID}.
func (c *Client) CancelOrder(ctx context.Context, variety, orderID string) error {
	var resp struct {
		OrderID string `json:"order_id"`
	}
	path := "/orders/" + variety + "/" + orderID
	return c.dispatch(ctx, ratelimit.CategoryOrder, "orders.cancel", "DELETE", path, nil, url.Values{}, &resp)
}

// Orders returns the day's order book via GET /orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "orders.list", "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
