package main

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAmountUnmarshalJSON(t *testing.T) {
	tests := []struct {
		payload string
		present bool
		want    float64
	}{
		{`{"Amount": 750, "TransactionInformation": "Koodoo Mortgage Co."}`, true, 750},
		{`{"Amount": "750"}`, true, 750},
		{`{"Amount": null}`, true, 0},
		{`{"Amount": ""}`, true, 0},
		{`{"TransactionInformation": "Koodoo Mortgage Co."}`, false, math.NaN()},
		{`{"Amount": "£750"}`, true, math.NaN()},
		{`{"Amount": -12.5e1}`, true, -125},
		{`{"Amount": true}`, true, 1},
		{`{"Amount": false}`, true, 0},
		{`{"Amount": [5]}`, true, math.NaN()},
		{`{"Amount": {"value": 5}}`, true, math.NaN()},
		{`{"Amount": 1e400}`, true, math.Inf(1)},
	}
	for _, tt := range tests {
		var r PaymentRecord
		if err := json.Unmarshal([]byte(tt.payload), &r); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.payload, err)
		}
		if r.Amount.Present() != tt.present {
			t.Fatalf("%s: expected present=%v", tt.payload, tt.present)
		}
		if !tt.present {
			continue
		}
		got := r.Amount.Float64()
		if math.IsNaN(tt.want) {
			if !math.IsNaN(got) {
				t.Fatalf("%s: expected NaN, got %v", tt.payload, got)
			}
			continue
		}
		if got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.payload, tt.want, got)
		}
	}
}

func TestAmountUnmarshalKeepsTransactionInformation(t *testing.T) {
	var records []PaymentRecord
	payload := `[{"Amount": "1.50", "TransactionInformation": "Payment One"}, {"TransactionInformation": "Payment Two"}]`
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TransactionInformation != "Payment One" || records[1].TransactionInformation != "Payment Two" {
		t.Fatalf("unexpected records: %#v", records)
	}
	if records[1].Amount.Present() {
		t.Fatalf("expected second amount to be missing")
	}
}

func TestParseNumericString(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"750", 750},
		{"  750\n", 750},
		{"", 0},
		{"   ", 0},
		{"-0.5", -0.5},
		{"+3", 3},
		{".25", 0.25},
		{"4.", 4},
		{"1e3", 1000},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"0x1F", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"1e999", math.Inf(1)},
	}
	for _, tt := range tests {
		if got := parseNumericString(tt.in); got != tt.want {
			t.Fatalf("parseNumericString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseNumericStringInvalid(t *testing.T) {
	for _, in := range []string{"£750", "750£", "1,000", "1_000", "inf", "NaN", "infinity", "0x", "0xZZ", "-0x10", "0x1p3", "12abc", "."} {
		if got := parseNumericString(in); !math.IsNaN(got) {
			t.Fatalf("parseNumericString(%q) = %v, want NaN", in, got)
		}
	}
}

func TestAmountString(t *testing.T) {
	tests := map[string]Amount{
		"<missing>": {},
		"null":      nullAmount(),
		`"£750"`:    stringAmount("£750"),
		"78.12345":  numberAmount(78.12345),
	}
	for want, a := range tests {
		if got := a.String(); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
