package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// accessor pulls one candidate value out of a raw payload. Accessors
// are evaluated in a fixed priority order; the first non-empty result
// wins.
type accessor func(raw map[string]any) string

// lookup evaluates candidates in order and returns the first non-empty
// result.
func lookup(raw map[string]any, candidates []accessor) string {
	for _, c := range candidates {
		if v := c(raw); v != "" {
			return v
		}
	}
	return ""
}

// key reads the first non-empty of the given top-level keys. Multiple
// names cover the historical snake_case and camelCase payload shapes.
func key(names ...string) accessor {
	return func(raw map[string]any) string {
		for _, n := range names {
			if v := asString(raw[n]); v != "" {
				return v
			}
		}
		return ""
	}
}

// defaultAddress reads from the payload's default_address substructure.
func defaultAddress(names ...string) accessor {
	return func(raw map[string]any) string {
		addr, ok := raw["default_address"].(map[string]any)
		if !ok {
			return ""
		}
		for _, n := range names {
			if v := asString(addr[n]); v != "" {
				return v
			}
		}
		return ""
	}
}

// addressList reads from the addresses array, preferring the entry
// flagged default and falling back to the first one.
func addressList(names ...string) accessor {
	return func(raw map[string]any) string {
		list, ok := raw["addresses"].([]any)
		if !ok || len(list) == 0 {
			return ""
		}

		chosen, _ := list[0].(map[string]any)
		for _, entry := range list {
			addr, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if flag, _ := addr["default"].(bool); flag {
				chosen = addr
				break
			}
		}
		if chosen == nil {
			return ""
		}

		for _, n := range names {
			if v := asString(chosen[n]); v != "" {
				return v
			}
		}
		return ""
	}
}

// asString renders scalar JSON values as strings. Numbers are common
// where the upstream switched a field from string to numeric (order
// numbers, ids).
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asInt64 parses permissively; anything unparseable is zero.
func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// asDecimal parses permissively; anything unparseable is zero.
func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	default:
		return decimal.Zero
	}
}

// intField reads the first present key as a permissive int.
func intField(raw map[string]any, names ...string) int64 {
	for _, n := range names {
		if v, ok := raw[n]; ok {
			return asInt64(v)
		}
	}
	return 0
}

// decimalField reads the first present key as a permissive decimal.
func decimalField(raw map[string]any, names ...string) decimal.Decimal {
	for _, n := range names {
		if v, ok := raw[n]; ok {
			return asDecimal(v)
		}
	}
	return decimal.Zero
}

// timeField reads the first parseable timestamp among the given keys.
func timeField(raw map[string]any, names ...string) *time.Time {
	for _, n := range names {
		s := asString(raw[n])
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t
		}
	}
	return nil
}

// clampDecimal floors monetary values at zero.
func clampDecimal(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// clampInt floors quantity values at zero.
func clampInt(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}
