package scenario

import (
	"fmt"
	"math"
	"strconv"
)

func paramUint(params map[string]any, name string) (uint64, error) {
	raw, ok := params[name]
	if !ok {
		return 0, missingParam(name)
	}
	return toUint(name, raw)
}

func paramUintOr(params map[string]any, name string, def uint64) (uint64, error) {
	if _, ok := params[name]; !ok {
		return def, nil
	}
	return paramUint(params, name)
}

func paramUints(params map[string]any, name string) ([]uint64, error) {
	raw, ok := params[name]
	if !ok {
		return nil, missingParam(name)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, invalidParam(name, raw)
	}
	out := make([]uint64, 0, len(list))
	for _, item := range list {
		v, err := toUint(name, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func paramString(params map[string]any, name string) (string, error) {
	raw, ok := params[name]
	if !ok {
		return "", missingParam(name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidParam(name, raw)
	}
	return s, nil
}

func paramBool(params map[string]any, name string) (bool, error) {
	raw, ok := params[name]
	if !ok {
		return false, missingParam(name)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalidParam(name, raw)
	}
	return b, nil
}

// toUint accepts the integer shapes yaml.v3 produces, plus decimal strings
// for amounts beyond int range
func toUint(name string, raw any) (uint64, error) {
	switch v := raw.(type) {
	case int:
		if v >= 0 {
			return uint64(v), nil
		}
	case int64:
		if v >= 0 {
			return uint64(v), nil
		}
	case uint64:
		return v, nil
	case float64:
		if v >= 0 && v < math.MaxUint64 && v == math.Trunc(v) {
			return uint64(v), nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, invalidParam(name, raw)
}

// sameValue compares a YAML expectation with a step output
func sameValue(expected, actual any) bool {
	return fmt.Sprint(expected) == fmt.Sprint(actual)
}
