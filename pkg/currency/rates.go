package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Fallback is the hardcoded rate table used when no fetched or cached
// rates are available. Values mirror the client-side defaults.
func Fallback() Rates {
	return Rates{
		USD: decimal.NewFromInt(1),
		EUR: decimal.RequireFromString("0.85"),
		IQD: decimal.NewFromInt(1300),
		BTC: decimal.RequireFromString("0.000016"),
	}
}

const ratesCacheKey = "rates:latest"

// Provider fetches exchange rates from the upstream HTTP feeds and keeps
// the last good table in memory and in Redis. A failed or malformed fetch
// never surfaces to callers; Current always returns a usable table.
type Provider struct {
	FiatURL  string
	BTCURL   string
	Client   *http.Client
	Redis    *redis.Client
	Logger   *logrus.Logger
	CacheTTL time.Duration

	mu        sync.RWMutex
	current   Rates
	fetchedAt time.Time
}

func NewProvider(fiatURL, btcURL string, rdb *redis.Client, logger *logrus.Logger, cacheTTL time.Duration) *Provider {
	return &Provider{
		FiatURL:  fiatURL,
		BTCURL:   btcURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Redis:    rdb,
		Logger:   logger,
		CacheTTL: cacheTTL,
		current:  Fallback(),
	}
}

// Current returns the most recent rate table and when it was fetched.
// The zero fetchedAt means the table is the hardcoded fallback.
func (p *Provider) Current() (Rates, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(Rates, len(p.current))
	for k, v := range p.current {
		out[k] = v
	}
	return out, p.fetchedAt
}

type cachedRates struct {
	Rates     map[Code]string `json:"rates"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Load restores the last-known table from Redis. Called once at startup,
// before the first Refresh; errors leave the fallback in place.
func (p *Provider) Load(ctx context.Context) {
	if p.Redis == nil {
		return
	}
	b, err := p.Redis.Get(ctx, ratesCacheKey).Bytes()
	if err != nil {
		return
	}
	var cached cachedRates
	if err := json.Unmarshal(b, &cached); err != nil {
		return
	}
	rates := make(Rates, len(cached.Rates))
	for code, s := range cached.Rates {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return
		}
		rates[code] = d
	}
	if _, ok := rates[USD]; !ok {
		return
	}
	p.mu.Lock()
	p.current = rates
	p.fetchedAt = cached.FetchedAt
	p.mu.Unlock()
}

// Refresh pulls fresh rates from the fiat and BTC endpoints. One request
// per endpoint, no retries; on failure the previous table is kept.
func (p *Provider) Refresh(ctx context.Context) {
	rates := Rates{USD: decimal.NewFromInt(1)}

	fiat, err := p.fetchFiat(ctx)
	if err != nil {
		if p.Logger != nil {
			p.Logger.WithError(err).Warn("fiat rates fetch failed, keeping previous table")
		}
		return
	}
	rates[EUR] = fiat[EUR]
	rates[IQD] = fiat[IQD]

	btc, err := p.fetchBTC(ctx)
	if err != nil {
		if p.Logger != nil {
			p.Logger.WithError(err).Warn("btc rate fetch failed, using fallback rate")
		}
		btc = Fallback()[BTC]
	}
	rates[BTC] = btc

	now := time.Now().UTC()
	p.mu.Lock()
	p.current = rates
	p.fetchedAt = now
	p.mu.Unlock()

	p.cache(ctx, rates, now)
}

type fiatResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (p *Provider) fetchFiat(ctx context.Context) (Rates, error) {
	var body fiatResponse
	if err := p.getJSON(ctx, p.FiatURL, &body); err != nil {
		return nil, err
	}
	fb := Fallback()
	out := Rates{}
	for _, code := range []Code{EUR, IQD} {
		if v, ok := body.Rates[string(code)]; ok && v > 0 {
			out[code] = decimal.NewFromFloat(v)
		} else {
			out[code] = fb[code]
		}
	}
	return out, nil
}

type btcResponse struct {
	Bitcoin struct {
		USD float64 `json:"usd"`
	} `json:"bitcoin"`
}

func (p *Provider) fetchBTC(ctx context.Context) (decimal.Decimal, error) {
	var body btcResponse
	if err := p.getJSON(ctx, p.BTCURL, &body); err != nil {
		return decimal.Zero, err
	}
	if body.Bitcoin.USD <= 0 {
		return decimal.Zero, &MissingRateError{Code: BTC}
	}
	// Upstream quotes USD per BTC; the table stores BTC per USD.
	return decimal.NewFromInt(1).Div(decimal.NewFromFloat(body.Bitcoin.USD)), nil
}

func (p *Provider) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return &statusError{URL: url, Status: res.StatusCode}
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

func (p *Provider) cache(ctx context.Context, rates Rates, fetchedAt time.Time) {
	if p.Redis == nil {
		return
	}
	cached := cachedRates{Rates: make(map[Code]string, len(rates)), FetchedAt: fetchedAt}
	for code, d := range rates {
		cached.Rates[code] = d.String()
	}
	b, _ := json.Marshal(cached)
	if err := p.Redis.Set(ctx, ratesCacheKey, b, p.CacheTTL).Err(); err != nil && p.Logger != nil {
		p.Logger.WithError(err).Warn("rates cache write failed")
	}
}

type statusError struct {
	URL    string
	Status int
}

func (e *statusError) Error() string {
	return "currency: unexpected status " + http.StatusText(e.Status) + " from " + e.URL
}
