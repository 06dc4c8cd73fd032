package builtin

import (
	"fmt"
	"strconv"
	"time"
)

// asString converts common driver and JSON value types to their string form
// without going through fmt for the hot cases.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// 'f' avoids exponent notation for large integral salaries.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// stringValue reports the value as a string only when it already is textual.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

// numericText renders strings, bytes, integers and floats in their string
// form. Any other type reports false.
func numericText(v any) (string, bool) {
	switch t := v.(type) {
	case string, []byte:
		return stringValue(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32, float64:
		return asString(t), true
	default:
		return "", false
	}
}
