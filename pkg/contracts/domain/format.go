package domain

import (
	"fmt"
	"strconv"
	"time"
)

// DateTimeLayout is how date/time cells are rendered as text
const DateTimeLayout = "2006-01-02 15:04:05"

// FormatValue renders a cell value as text. The second result is false
// when v is not a scalar cell value; the text is then fmt's default form.
func FormatValue(v Value) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(DateTimeLayout), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	}

	if n, ok := AsInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	if n, ok := v.(uint64); ok {
		return strconv.FormatUint(n, 10), true
	}
	return fmt.Sprint(v), false
}

// IsNumber reports whether v is an integer or float kind
func IsNumber(v Value) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// AsInt64 converts signed and small unsigned integer kinds to int64
func AsInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) <= 1<<63-1 {
			return int64(n), true
		}
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}
