package main

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

type PaymentRecord struct {
	Amount                 Amount `json:"Amount"`
	TransactionInformation string `json:"TransactionInformation"`
}

// Summary holds the statistics of one set of payments. Only Mean and
// StandardDeviation are rounded to two decimal places; Min, Max and Median
// are reported as computed.
type Summary struct {
	Min               float64
	Max               float64
	Mean              float64
	Median            float64
	StandardDeviation float64
}

// MarshalJSON writes non-finite statistics as null, which encoding/json
// would otherwise refuse.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min               *float64 `json:"min"`
		Max               *float64 `json:"max"`
		Mean              *float64 `json:"mean"`
		Median            *float64 `json:"median"`
		StandardDeviation *float64 `json:"standardDeviation"`
	}{finite(s.Min), finite(s.Max), finite(s.Mean), finite(s.Median), finite(s.StandardDeviation)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func sanitizeAmounts(records []PaymentRecord) []float64 {
	amounts := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.Amount.Present() {
			continue
		}
		amounts = append(amounts, r.Amount.Float64())
	}
	return amounts
}

func analysePayments(records []PaymentRecord) Summary {
	amounts := sanitizeAmounts(records)
	n := len(amounts)
	if n == 0 {
		nan := math.NaN()
		return Summary{Min: nan, Max: nan, Mean: nan, Median: nan, StandardDeviation: nan}
	}

	// sort.Float64s puts NaN first, so s[0] is NaN whenever any amount is.
	s := append([]float64(nil), amounts...)
	sort.Float64s(s)
	min := s[0]
	max := s[n-1]
	if math.IsNaN(min) {
		max = min
	}

	var median float64
	if n%2 == 1 {
		median = s[n/2]
	} else {
		median = (s[n/2-1] + s[n/2]) / 2.0
	}

	return Summary{
		Min:               min,
		Max:               max,
		Mean:              roundToTwoDp(mean(amounts)),
		Median:            median,
		StandardDeviation: roundToTwoDp(standardDeviation(amounts)),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// standardDeviation is the population standard deviation (divides by N).
func standardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if constant(values) {
		return 0
	}
	m := mean(values)
	var sumsq float64
	for _, v := range values {
		d := v - m
		sumsq += d * d
	}
	return math.Sqrt(sumsq / float64(len(values)))
}

// constant reports whether values repeat a single finite value. The summed mean
// of a constant sequence can be off by an ulp, which would leak into the
// deviation.
func constant(values []float64) bool {
	if math.IsNaN(values[0]) || math.IsInf(values[0], 0) {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// roundToTwoDp rounds half away from zero on the shortest decimal form of
// value, so 35.125 becomes 35.13 rather than following its binary expansion.
func roundToTwoDp(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
