package kiteconnect

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sawpanic/CProtocol/data/cache"
	"golang.org/x/sync/singleflight"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

// Instrument is one row of the broker's tradable-instrument master list,
// downloaded as gzip-compressed CSV from /instruments.
type Instrument struct {
	InstrumentToken int
	ExchangeToken   int
	TradingSymbol   string
	Name            string
	LastPrice       float64
	Expiry          *time.Time
	Strike          float64
	TickSize        float64
	LotSize         int
	InstrumentType  string
	Segment         string
	Exchange        string
}

// MFInstrument is one row of the mutual-fund instrument master list,
// downloaded as CSV from /mf/instruments.
type MFInstrument struct {
	TradingSymbol                    string
	AMC                              string
	Name                             string
	FundType                         string
	Plan                             string
	SettlementType                   string
	MinimumPurchaseAmount            float64
	PurchaseAmountMultiplier         float64
	MinimumAdditionalPurchaseAmount  float64
	MinimumRedemptionQuantity        float64
	RedemptionQuantityMultiplier     float64
	DividendType                     string
	SchemeType                       string
	LastPrice                        float64
	LastPriceDate                    *time.Time
}

// instrumentsCacheKey is the single key the instrument master list is
// stored under; one Client holds one list, never more.
const instrumentsCacheKey = "instruments"

// instrumentsCache is an in-process TTL cache for the instrument master
// list, backed by cache.NewAuto()'s byte-blob store, with concurrent-miss
// coalescing via singleflight so that N goroutines racing to refresh an
// expired entry trigger exactly one download. Deliberately in-process
// only; nothing is written to disk.
type instrumentsCache struct {
	backing cache.Cache
	ttl     time.Duration
	group   singleflight.Group
}

func newInstrumentsCache(ttl time.Duration) *instrumentsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &instrumentsCache{backing: cache.NewAuto(), ttl: ttl}
}

func (c *instrumentsCache) get() ([]Instrument, bool) {
	raw, ok := c.backing.Get(instrumentsCacheKey)
	if !ok {
		return nil, false
	}
	var instruments []Instrument
	if err := json.Unmarshal(raw, &instruments); err != nil {
		return nil, false
	}
	return instruments, true
}

func (c *instrumentsCache) set(instruments []Instrument) {
	raw, err := json.Marshal(instruments)
	if err != nil {
		return
	}
	c.backing.Set(instrumentsCacheKey, raw, c.ttl)
}

// Instruments returns the full instrument master list, downloading and
// caching it for the client's configured TTL. Concurrent callers racing
// a cache miss share a single in-flight download.
func (c *Client) Instruments(ctx context.Context) ([]Instrument, error) {
	if cached, ok := c.instrumentsCache.get(); ok {
		if c.metrics != nil {
			c.metrics.InstrumentCacheHits.Inc()
		}
		return cached, nil
	}
	if c.metrics != nil {
		c.metrics.InstrumentCacheMisses.Inc()
	}

	v, err, _ := c.instrumentsCache.group.Do("instruments", func() (interface{}, error) {
		if cached, ok := c.instrumentsCache.get(); ok {
			return cached, nil
		}
		instruments, err := c.downloadInstruments(ctx, "/instruments")
		if err != nil {
			return nil, err
		}
		c.instrumentsCache.set(instruments)
		return instruments, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Instrument), nil
}

// InstrumentsForExchange returns the instrument master list filtered to a
// single exchange, downloaded directly and not cached: the broker serves
// it as a distinct, smaller resource.
func (c *Client) InstrumentsForExchange(ctx context.Context, exchange string) ([]Instrument, error) {
	return c.downloadInstruments(ctx, "/instruments/"+exchange)
}

func (c *Client) downloadInstruments(ctx context.Context, path string) ([]Instrument, error) {
	if err := c.limiter.Acquire(ctx, ratelimit.CategoryStandard); err != nil {
		return nil, newTransportError("rate limit wait cancelled", err, ctx.Err() != nil)
	}

	req, err := c.buildRequest(ctx, http.MethodGet, path, nil, nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError("GET "+path, err, ctx.Err() != nil)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, classifyFromStatus(resp.StatusCode, string(body))
	}

	return parseInstrumentsCSV(body)
}

var instrumentsHeader = []string{
	"instrument_token", "exchange_token", "tradingsymbol", "name", "last_price",
	"expiry", "strike", "tick_size", "lot_size", "instrument_type", "segment", "exchange",
}

// parseInstrumentsCSV streams the broker's CSV master list into typed
// Instrument records. The header row is not checked against a fixed column
// order: lookups below are by column name.
func parseInstrumentsCSV(data []byte) ([]Instrument, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, dataError("instruments CSV: empty response")
	}
	idx := csvColumnIndex(header)

	var instruments []Instrument
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dataError("instruments CSV: malformed row: " + err.Error())
		}
		inst, perr := parseInstrumentRecord(record, idx)
		if perr != nil {
			return nil, perr
		}
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

func csvColumnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func parseInstrumentRecord(record []string, idx map[string]int) (Instrument, error) {
	field := func(name string) string {
		if i, ok := idx[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	token, err := strconv.Atoi(field("instrument_token"))
	if err != nil {
		return Instrument{}, dataError("instruments CSV: bad instrument_token: " + err.Error())
	}
	exchToken, _ := strconv.Atoi(field("exchange_token"))
	lastPrice, _ := strconv.ParseFloat(field("last_price"), 64)
	strike, _ := strconv.ParseFloat(field("strike"), 64)
	tickSize, _ := strconv.ParseFloat(field("tick_size"), 64)
	lotSize, _ := strconv.Atoi(field("lot_size"))

	inst := Instrument{
		InstrumentToken: token,
		ExchangeToken:   exchToken,
		TradingSymbol:   field("tradingsymbol"),
		Name:            field("name"),
		LastPrice:       lastPrice,
		Strike:          strike,
		TickSize:        tickSize,
		LotSize:         lotSize,
		InstrumentType:  field("instrument_type"),
		Segment:         field("segment"),
		Exchange:        field("exchange"),
	}

	if exp := strings.TrimSpace(field("expiry")); exp != "" {
		if t, err := time.Parse("2006-01-02", exp); err == nil {
			inst.Expiry = &t
		}
	}
	return inst, nil
}

// MFInstruments downloads the mutual-fund instrument master list.
func (c *Client) MFInstruments(ctx context.Context) ([]MFInstrument, error) {
	if err := c.limiter.Acquire(ctx, ratelimit.CategoryStandard); err != nil {
		return nil, newTransportError("rate limit wait cancelled", err, ctx.Err() != nil)
	}
	req, err := c.buildRequest(ctx, http.MethodGet, "/mf/instruments", nil, nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError("GET /mf/instruments", err, ctx.Err() != nil)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, classifyFromStatus(resp.StatusCode, string(body))
	}
	return parseMFInstrumentsCSV(body)
}

func parseMFInstrumentsCSV(data []byte) ([]MFInstrument, error) {
	r := csv.NewReader(strings.NewReader(string(data)))

	header, err := r.Read()
	if err != nil {
		return nil, dataError("mf instruments CSV: empty response")
	}
	idx := csvColumnIndex(header)

	field := func(record []string, name string) string {
		if i, ok := idx[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	var out []MFInstrument
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dataError("mf instruments CSV: malformed row: " + err.Error())
		}
		minPurchase, _ := strconv.ParseFloat(field(record, "minimum_purchase_amount"), 64)
		purchaseMultiplier, _ := strconv.ParseFloat(field(record, "purchase_amount_multiplier"), 64)
		minAdditional, _ := strconv.ParseFloat(field(record, "minimum_additional_purchase_amount"), 64)
		minRedemption, _ := strconv.ParseFloat(field(record, "minimum_redemption_quantity"), 64)
		redemptionMultiplier, _ := strconv.ParseFloat(field(record, "redemption_quantity_multiplier"), 64)
		lastPrice, _ := strconv.ParseFloat(field(record, "last_price"), 64)

		mf := MFInstrument{
			TradingSymbol:                   field(record, "tradingsymbol"),
			AMC:                             field(record, "amc"),
			Name:                            field(record, "name"),
			FundType:                        field(record, "fund_type"),
			Plan:                            field(record, "plan"),
			SettlementType:                  field(record, "settlement_type"),
			MinimumPurchaseAmount:           minPurchase,
			PurchaseAmountMultiplier:        purchaseMultiplier,
			MinimumAdditionalPurchaseAmount: minAdditional,
			MinimumRedemptionQuantity:       minRedemption,
			RedemptionQuantityMultiplier:    redemptionMultiplier,
			DividendType:                    field(record, "dividend_type"),
			SchemeType:                      field(record, "scheme_type"),
			LastPrice:                       lastPrice,
		}
		if d := strings.TrimSpace(field(record, "last_price_date")); d != "" {
			if t, err := time.Parse("2006-01-02", d); err == nil {
				mf.LastPriceDate = &t
			}
		}
		out = append(out, mf)
	}
	return out, nil
}
