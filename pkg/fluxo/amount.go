package fluxo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces a JSON amount into a decimal. The backend sends
// amounts either as numbers or as numeric strings; null, missing and
// empty values are zero. Any other value is an error and parses as zero.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("invalid amount %s: %w", raw, err)
		}
	}

	return ParseAmountText(text)
}

// ParseAmountText parses a user- or backend-supplied amount string.
// A decimal comma is accepted when no dot is present.
func ParseAmountText(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(text, ",") && !strings.Contains(text, ".") {
		text = strings.Replace(text, ",", ".", 1)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// cents is one hundredth of the currency unit
var cents = decimal.New(1, -2)
