package kiteconnect

import (
	"context"
	"strconv"
	"time"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// GTTCondition is the trigger condition of a Good Till Triggered order,
// the shape catalogued in GTT endpoint entry.
type GTTCondition struct {
	Exchange        string    `json:"exchange"`
	TradingSymbol   string    `json:"tradingsymbol"`
	InstrumentToken uint32    `json:"instrument_token"`
	TriggerValues   []float64 `json:"trigger_values"`
	LastPrice       float64   `json:"last_price"`
}

// GTT is a single Good Till Triggered order, field set mirroring the
// shape catalogues for GET /gtt/triggers.
type GTT struct {
	ID           int            `json:"id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	Condition    GTTCondition   `json:"condition"`
	Orders       []OrderParams  `json:"orders"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// GTTs fetches the account's active GTT orders via GET /gtt/triggers.
func (c *Client) GTTs(ctx context.Context) ([]GTT, error) {
	var out []GTT
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "gtt.list", "/gtt/triggers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteGTT cancels a GTT order via DELETE /gtt/triggers/{id}.
func (c *Client) DeleteGTT(ctx context.Context, id int) error {
	var resp struct {
		TriggerID int `json:"trigger_id"`
	}
	path := "/gtt/triggers/" + strconv.Itoa(id)
	return c.dispatch(ctx, ratelimit.CategoryStandard, "gtt.delete", "DELETE", path, nil, nil, &resp)
}
