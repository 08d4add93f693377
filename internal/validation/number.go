package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Number decodes a JSON number leniently. Models sometimes quote numbers or
// decorate them ("$2.5", "12%", "1,200"); those are parsed, anything else
// decodes to zero rather than failing the whole report. Non-finite values
// ("NaN", "Infinity", 1e999) are zero too, so a report always re-encodes.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(parseLooseFloat(s))
		return nil
	}
	if b[0] == 't' || b[0] == 'f' || b[0] == '{' || b[0] == '[' {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return err
	}
	*n = Number(finite(v))
	return nil
}

func (n Number) Float() float64 { return float64(n) }

func (n Number) Int() int { return int(n) }

func parseLooseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", "%", "", "_", "").Replace(s)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
