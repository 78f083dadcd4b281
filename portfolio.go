package kiteconnect

import (
	"context"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// Position is one entry of the day's or the standing position book.
type Position struct {
	TradingSymbol     string  `json:"tradingsymbol"`
	Exchange          string  `json:"exchange"`
	InstrumentToken   uint32  `json:"instrument_token"`
	Product           string  `json:"product"`
	Quantity          int32   `json:"quantity"`
	OvernightQuantity int32   `json:"overnight_quantity"`
	Multiplier        float64 `json:"multiplier"`
	AveragePrice      float64 `json:"average_price"`
	ClosePrice        float64 `json:"close_price"`
	LastPrice         float64 `json:"last_price"`
	Value             float64 `json:"value"`
	PNL               float64 `json:"pnl"`
	M2M               float64 `json:"m2m"`
	Unrealised        float64 `json:"unrealised"`
	Realised          float64 `json:"realised"`
	BuyQuantity       uint32  `json:"buy_quantity"`
	BuyPrice          float64 `json:"buy_price"`
	SellQuantity      uint32  `json:"sell_quantity"`
	SellPrice         float64 `json:"sell_price"`
}

// Positions is the net/day split GET /portfolio/positions returns.
type Positions struct {
	Net []Position `json:"net"`
	Day []Position `json:"day"`
}

// Holding is one entry of the demat holdings book.
type Holding struct {
	TradingSymbol      string  `json:"tradingsymbol"`
	Exchange           string  `json:"exchange"`
	ISIN               string  `json:"isin"`
	Product            string  `json:"product"`
	InstrumentToken    uint32  `json:"instrument_token"`
	Quantity           int32   `json:"quantity"`
	T1Quantity         int32   `json:"t1_quantity"`
	AveragePrice       float64 `json:"average_price"`
	LastPrice          float64 `json:"last_price"`
	ClosePrice         float64 `json:"close_price"`
	PNL                float64 `json:"pnl"`
	DayChange          float64 `json:"day_change"`
	DayChangePercentage float64 `json:"day_change_percentage"`
}

// Positions fetches the day's and net position books via GET
// /portfolio/positions.
func (c *Client) Positions(ctx context.Context) (*Positions, error) {
	var p Positions
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "portfolio.positions", "/portfolio/positions", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Holdings fetches the demat holdings book via GET /portfolio/holdings.
func (c *Client) Holdings(ctx context.Context) ([]Holding, error) {
	var h []Holding
	if err := c.dispatchGet(ctx, ratelimit.CategoryStandard, "portfolio.holdings", "/portfolio/holdings", nil, &h); err != nil {
		return nil, err
	}
	return h, nil
}
