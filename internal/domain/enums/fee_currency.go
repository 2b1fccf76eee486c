package enums

import (
	"fmt"
	"strings"
)

type FeeCurrency string

const (
	FeeCurrencyPostaal FeeCurrency = "postaal"
	FeeCurrencyEUR     FeeCurrency = "eur"
)

func ParseFeeCurrency(value string) (FeeCurrency, error) {
	normalized := FeeCurrency(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case FeeCurrencyPostaal, FeeCurrencyEUR:
		return normalized, nil
	case "":
		return FeeCurrencyPostaal, nil
	default:
		return "", fmt.Errorf("unsupported fee currency %q", value)
	}
}
