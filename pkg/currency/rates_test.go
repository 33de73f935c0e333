package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestProvider(fiatURL, btcURL string) *Provider {
	p := NewProvider(fiatURL, btcURL, nil, nil, time.Hour)
	p.Client = &http.Client{Timeout: time.Second}
	return p
}

func TestProviderStartsWithFallback(t *testing.T) {
	p := newTestProvider("", "")
	rates, fetchedAt := p.Current()
	if !fetchedAt.IsZero() {
		t.Fatal("fetchedAt should be zero before any refresh")
	}
	if !rates[IQD].Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("fallback IQD rate = %s, want 1300", rates[IQD])
	}
}

func TestRefreshAppliesFetchedRates(t *testing.T) {
	fiat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates": {"EUR": 0.9, "IQD": 1310}}`))
	}))
	defer fiat.Close()
	btc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin": {"usd": 50000}}`))
	}))
	defer btc.Close()

	p := newTestProvider(fiat.URL, btc.URL)
	p.Refresh(context.Background())

	rates, fetchedAt := p.Current()
	if fetchedAt.IsZero() {
		t.Fatal("fetchedAt not set after successful refresh")
	}
	if !rates[IQD].Equal(decimal.NewFromInt(1310)) {
		t.Fatalf("IQD = %s, want 1310", rates[IQD])
	}
	if !rates[EUR].Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("EUR = %s, want 0.9", rates[EUR])
	}
	// 1/50000 BTC per USD
	want := decimal.NewFromInt(1).Div(decimal.NewFromInt(50000))
	if !rates[BTC].Equal(want) {
		t.Fatalf("BTC = %s, want %s", rates[BTC], want)
	}
	if !rates[USD].Equal(decimal.NewFromInt(1)) {
		t.Fatalf("USD pivot = %s, want 1", rates[USD])
	}
}

func TestRefreshKeepsPreviousTableOnFiatFailure(t *testing.T) {
	fiat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer fiat.Close()

	p := newTestProvider(fiat.URL, "")
	before, _ := p.Current()
	p.Refresh(context.Background())
	after, fetchedAt := p.Current()

	if !fetchedAt.IsZero() {
		t.Fatal("failed refresh must not bump fetchedAt")
	}
	for code, v := range before {
		if !after[code].Equal(v) {
			t.Fatalf("rate for %s changed on failed refresh: %s -> %s", code, v, after[code])
		}
	}
}

func TestRefreshMalformedFiatBody(t *testing.T) {
	fiat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer fiat.Close()

	p := newTestProvider(fiat.URL, "")
	p.Refresh(context.Background())

	rates, fetchedAt := p.Current()
	if !fetchedAt.IsZero() {
		t.Fatal("malformed response must not be treated as a successful fetch")
	}
	if !rates[IQD].Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("IQD = %s, want fallback 1300", rates[IQD])
	}
}

func TestRefreshFallsBackOnBTCFailure(t *testing.T) {
	fiat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates": {"EUR": 0.88, "IQD": 1305}}`))
	}))
	defer fiat.Close()
	btc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin": {"usd": 0}}`))
	}))
	defer btc.Close()

	p := newTestProvider(fiat.URL, btc.URL)
	p.Refresh(context.Background())

	rates, fetchedAt := p.Current()
	if fetchedAt.IsZero() {
		t.Fatal("fiat succeeded, refresh should have applied")
	}
	if !rates[IQD].Equal(decimal.NewFromInt(1305)) {
		t.Fatalf("IQD = %s, want 1305", rates[IQD])
	}
	if !rates[BTC].Equal(Fallback()[BTC]) {
		t.Fatalf("BTC = %s, want fallback %s", rates[BTC], Fallback()[BTC])
	}
}
