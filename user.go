package kiteconnect

import (
	"context"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// UserProfile is the account profile record returned by GET /user/profile.
type UserProfile struct {
	UserID        string       `json:"user_id"`
	UserName      string       `json:"user_name"`
	UserShortname string       `json:"user_shortname"`
	UserType      string       `json:"user_type"`
	Email         string       `json:"email"`
	AvatarURL     *string      `json:"avatar_url"`
	Broker        string       `json:"broker"`
	Exchanges     []string     `json:"exchanges"`
	Products      []string     `json:"products"`
	OrderTypes    []string     `json:"order_types"`
	Meta          *SessionMeta `json:"meta,omitempty"`
}

// HasExchange reports whether the profile grants access to exchange.
func (p UserProfile) HasExchange(exchange string) bool {
	for _, e := range p.Exchanges {
		if e == exchange {
			return true
		}
	}
	return false
}

// Profile fetches the authenticated user's profile via GET /user/profile.
func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var p UserProfile
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "user.profile", "/user/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Trade is one fill record, the shape catalogued in for
// GET /trades and GET /orders/{order_id}/trades.
type Trade struct {
	TradeID         string  `json:"trade_id"`
	OrderID         string  `json:"order_id"`
	Exchange        string  `json:"exchange"`
	TradingSymbol   string  `json:"tradingsymbol"`
	InstrumentToken uint32  `json:"instrument_token"`
	Product         string  `json:"product"`
	AveragePrice    float64 `json:"average_price"`
	Quantity        uint32  `json:"quantity"`
	FillTimestamp   string  `json:"fill_timestamp"`
}

// Trades fetches the day's trade book via GET /trades.
func (c *Client) Trades(ctx context.Context) ([]Trade, error) {
	var out []Trade
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "trades.list", "/trades", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderTrades fetches the fills for a specific order via
// GET /orders/{orderID}/trades.
func (c *Client) OrderTrades(ctx context.Context, orderID string) ([]Trade, error) {
	var out []Trade
	path := "/orders/" + orderID + "/trades"
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "orders.trades", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
