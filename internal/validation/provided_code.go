package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProvidedCode is a one-time code as sent by clients, either as a JSON number
// (482913) or as a JSON string ("482913"). Both decode to the same decimal text.
type ProvidedCode string

// ProvidedCodeError reports a providedCode that is neither a number nor a string.
type ProvidedCodeError struct {
	Raw string
}

func (e *ProvidedCodeError) Error() string {
	return fmt.Sprintf("providedCode must be a number or a numeric string, got %s", e.Raw)
}

func (c *ProvidedCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &ProvidedCodeError{Raw: string(data)}
		}
		*c = ProvidedCode(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return &ProvidedCodeError{Raw: string(data)}
	}
	*c = ProvidedCode(canonicalNumber(n))
	return nil
}

func (c ProvidedCode) String() string {
	return string(c)
}

// canonicalNumber renders integral numbers without exponent or fraction,
// so 482913, 482913.0 and 4.82913e5 all become "482913".
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1e15 {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}
