package models

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Price accepts a JSON number or a numeric string. Anything that cannot be
// coerced to a finite number decodes to zero, which request validation treats as missing.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*p = 0
		return nil
	}
	*p = Price(v)
	return nil
}

func (p Price) Float64() float64 { return float64(p) }
