package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// asObject requires value to be a JSON object, the shape a Message
// serialises from/into.
func asObject(value any) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", value)
	}
	return m, nil
}

// asArraySlice requires value to be a JSON array.
func asArraySlice(value any) ([]any, error) {
	a, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", value)
	}
	return a, nil
}

// asString requires value to be a JSON string.
func asString(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", value)
	}
	return s, nil
}

// asBool requires value to be a JSON boolean.
func asBool(value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", value)
	}
	return b, nil
}

// asUint64 accepts any of the numeric shapes encoding/json can hand back
// (json.Number when the decoder uses UseNumber, float64 otherwise, or a
// Go-native int/int64/uint64 when the value was built in-process rather than
// decoded) and requires it to be representable as a uint64.
func asUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case json.Number:
		u, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%v: %w", v, err)
		}
		return u, nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative number %v cannot convert to u64", v)
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative number %v cannot convert to u64", v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative number %v cannot convert to u64", v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

// asInt64 is asUint64's signed counterpart.
func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return i, nil
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
