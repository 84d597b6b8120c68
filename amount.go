package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type amountKind int

const (
	amountMissing amountKind = iota
	amountNull
	amountNumber
	amountString
	amountBool
	amountOther
)

// Amount is the loosely typed Amount field of a payment record. The zero
// value is a missing amount, which is distinct from an explicit null.
type Amount struct {
	kind amountKind
	num  float64
	text string
}

func nullAmount() Amount { return Amount{kind: amountNull} }
func numberAmount(v float64) Amount { return Amount{kind: amountNumber, num: v} }
func stringAmount(s string) Amount { return Amount{kind: amountString, text: s} }

func boolAmount(b bool) Amount {
	if b {
		return Amount{kind: amountBool, num: 1}
	}
	return Amount{kind: amountBool, num: 0}
}

// Present reports whether the record carried an Amount key at all.
func (a Amount) Present() bool { return a.kind != amountMissing }

// Float64 coerces the amount to a number. Null and blank strings are 0,
// anything that is not a number is NaN. A missing amount is also NaN, callers
// are expected to check Present first.
func (a Amount) Float64() float64 {
	switch a.kind {
	case amountNull:
		return 0
	case amountNumber, amountBool:
		return a.num
	case amountString:
		return parseNumericString(a.text)
	default:
		return math.NaN()
	}
}

func (a Amount) String() string {
	switch a.kind {
	case amountMissing:
		return "<missing>"
	case amountNull:
		return "null"
	case amountString:
		return strconv.Quote(a.text)
	case amountOther:
		return a.text
	default:
		return strconv.FormatFloat(a.num, 'g', -1, 64)
	}
}

// UnmarshalJSON is only invoked when the key exists, so an absent key keeps
// the zero value.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty amount")
	}
	switch data[0] {
	case 'n':
		*a = nullAmount()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = stringAmount(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = boolAmount(b)
		return nil
	case '{', '[':
		*a = Amount{kind: amountOther, text: string(data)}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return err
	}
	*a = numberAmount(v)
	return nil
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumericString follows the string-to-number rules of JavaScript's
// Number(): whitespace is trimmed, blank is 0, Infinity and 0x/0o/0b literals
// are accepted, everything else that is not a plain decimal is NaN.
func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadix(s[2:], 16)
		case 'o', 'O':
			return parseRadix(s[2:], 8)
		case 'b', 'B':
			return parseRadix(s[2:], 2)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

func parseRadix(digits string, base int) float64 {
	v := 0.0
	for _, r := range digits {
		d := -1
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case r >= 'a' && r <= 'f':
			d = int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			d = int(r-'A') + 10
		}
		if d < 0 || d >= base {
			return math.NaN()
		}
		v = v*float64(base) + float64(d)
	}
	return v
}
