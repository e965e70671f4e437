package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a numeric input field as the desk screens send it: a JSON number,
// a numeric string, null or "". Blank input reads as zero. Text that is not a
// number does not fail decoding; it is reported per field by the DTO.
type Number struct {
	Value   decimal.Decimal
	Raw     string
	Invalid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{Value: decimal.Zero}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	n.Raw = raw
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	// "1 500" and "1500,5" as typed on a French keyboard
	raw = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(raw)
	raw = strings.Replace(raw, ",", ".", 1)

	v, err := decimal.NewFromString(raw)
	if err != nil {
		n.Invalid = true
		return nil
	}
	n.Value = v
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return n.Value.MarshalJSON()
}

// Whole reports whether the value has no fractional part.
func (n Number) Whole() bool {
	return n.Value.Equal(n.Value.Truncate(0))
}

// Int returns the value as a count, reporting false for fractions and for
// values outside the int64 range.
func (n Number) Int() (int64, bool) {
	if !n.Whole() || !n.Value.BigInt().IsInt64() {
		return 0, false
	}
	return n.Value.IntPart(), true
}
