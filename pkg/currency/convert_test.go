package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertSameCurrency(t *testing.T) {
	amount := decimal.RequireFromString("123.456")
	got, err := Convert(amount, IQD, IQD, Rates{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !got.Equal(amount) {
		t.Fatalf("identity conversion changed the amount: got %s", got)
	}
}

func TestConvertPivotsThroughUSD(t *testing.T) {
	rates := Fallback()
	tests := []struct {
		name   string
		amount string
		from   Code
		to     Code
		want   string
	}{
		{"usd to iqd", "10", USD, IQD, "13000"},
		{"iqd to usd", "1300", IQD, USD, "1"},
		{"eur to iqd", "0.85", EUR, IQD, "1300"},
		{"usd to btc", "1", USD, BTC, "0.000016"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to, rates)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Fatalf("Convert(%s %s -> %s) = %s, want %s", tt.amount, tt.from, tt.to, got, want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	rates := Fallback()
	amount := decimal.RequireFromString("250000")
	usd, err := Convert(amount, IQD, USD, rates)
	if err != nil {
		t.Fatalf("to USD: %v", err)
	}
	back, err := Convert(usd, USD, IQD, rates)
	if err != nil {
		t.Fatalf("back to IQD: %v", err)
	}
	if !back.Round(8).Equal(amount) {
		t.Fatalf("round trip drifted: %s -> %s", amount, back)
	}
}

func TestConvertMissingRate(t *testing.T) {
	rates := Rates{USD: decimal.NewFromInt(1), IQD: decimal.NewFromInt(1300)}

	_, err := Convert(decimal.NewFromInt(5), EUR, USD, rates)
	var missing *MissingRateError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRateError, got %v", err)
	}
	if missing.Code != EUR {
		t.Fatalf("MissingRateError.Code = %s, want EUR", missing.Code)
	}

	// A zero rate is as unusable as an absent one.
	rates[BTC] = decimal.Zero
	if _, err := Convert(decimal.NewFromInt(5), BTC, USD, rates); !errors.As(err, &missing) {
		t.Fatalf("expected MissingRateError for zero rate, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount string
		code   Code
		want   string
	}{
		{"1200.5", IQD, "1200.50 IQD"},
		{"0.000016", BTC, "0.00001600 BTC"},
		{"3.14159", USD, "3.14 USD"},
	}
	for _, tt := range tests {
		if got := Format(decimal.RequireFromString(tt.amount), tt.code); got != tt.want {
			t.Fatalf("Format(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestCodeValid(t *testing.T) {
	for _, c := range Codes {
		if !c.Valid() {
			t.Fatalf("%s should be valid", c)
		}
	}
	if Code("GBP").Valid() {
		t.Fatal("GBP should not be valid")
	}
}
