package commands

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Args converts any Go slice or array into an argument list. Strings and
// byte slices are single values, not sequences, and are rejected.
func Args(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case []string:
		args := make([]any, len(x))
		for i, s := range x {
			args[i] = s
		}
		return args, nil
	case [][]byte:
		args := make([]any, len(x))
		for i, b := range x {
			args[i] = b
		}
		return args, nil
	case nil:
		return nil, fmt.Errorf("%w: expected a slice, got nil", ErrInvalidArguments)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		fallthrough
	case reflect.Array:
		args := make([]any, rv.Len())
		for i := range args {
			args[i] = rv.Index(i).Interface()
		}
		return args, nil
	}
	return nil, fmt.Errorf("%w: expected a slice, got %T", ErrInvalidArguments, v)
}

// toNumber coerces an argument the permissive way clients pass counts around:
// numeric text is parsed, empty text and nil are 0, anything else is NaN.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case string:
		return parseNumber(x)
	case []byte:
		return parseNumber(string(x))
	case fmt.Stringer:
		return parseNumber(x.String())
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return f
	}
	// 0x, 0o and 0b prefixed integers
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n)
	}
	return math.NaN()
}

// toText renders an argument the way it is compared against protocol tokens.
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// textOf returns the argument when it is textual (string or []byte).
func textOf(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

// equalToken compares s against an ASCII protocol token ignoring ASCII case.
func equalToken(s, token string) bool {
	if len(s) != len(token) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if lower(s[i]) != lower(token[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// externalKeyNameLength returns the length of the key part of a SORT pattern
// such as "hash:*->field", that is everything before the first "->".
func externalKeyNameLength(v any) int {
	key := toText(v)
	if pos := strings.Index(key, "->"); pos >= 0 {
		return pos
	}
	return len(key)
}
