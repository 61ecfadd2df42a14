package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// fields reads loosely typed frontmatter. YAML decodes unquoted dates as
// time.Time and numbers as int or float64, so scalar reads coerce to string.
type fields map[string]any

func (f fields) lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := f[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (f fields) String(def string, keys ...string) string {
	v, ok := f.lookup(keys...)
	if !ok {
		return def
	}
	s := strings.TrimSpace(scalarString(v))
	if s == "" {
		return def
	}
	return s
}

func (f fields) Int(def int, keys ...string) (int, error) {
	v, ok := f.lookup(keys...)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidField, keys[0])
		}
		return int(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidField, keys[0])
		}
		return parsed, nil
	case []any:
		return len(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidField, keys[0])
	}
}

func (f fields) Bool(def bool, keys ...string) bool {
	v, ok := f.lookup(keys...)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	}
	return def
}

// Strings accepts a list or a comma-separated string.
func (f fields) Strings(keys ...string) []string {
	v, ok := f.lookup(keys...)
	if !ok {
		return []string{}
	}
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s := strings.TrimSpace(scalarString(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range list {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, part := range strings.Split(scalarString(v), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func (f fields) Map(keys ...string) (fields, bool) {
	v, ok := f.lookup(keys...)
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return fields(m), true
	case map[any]any:
		out := make(fields, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func (f fields) List(keys ...string) []any {
	v, ok := f.lookup(keys...)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format(time.DateOnly)
		}
		return s.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
