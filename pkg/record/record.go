// Package record defines the structured record extracted from a single
// log line and the persistence codec used between pipeline stages.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Record maps field names to scalar values extracted from one log line
// by one parser. Values are strings, bools, or json.Number; numbers are
// kept as json.Number so 64-bit integers survive persistence intact.
type Record map[string]any

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders a record value as a table cell. Missing fields
// (nil) render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
