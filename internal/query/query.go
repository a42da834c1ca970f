// Package query builds upstream request URLs from an endpoint path and an
// ordered set of query parameters.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query parameter. A nil Value (or nil pointer) means absent.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered list of query parameters. Order is preserved on the wire.
type Params []Param

// Set replaces the value of an existing parameter in place, or appends it.
func (p Params) Set(name string, value any) Params {
	for i := range p {
		if p[i].Name == name {
			out := make(Params, len(p))
			copy(out, p)
			out[i].Value = value
			return out
		}
	}
	return append(p[:len(p):len(p)], Param{Name: name, Value: value})
}

// Get returns the formatted value of a parameter and whether it would be sent.
func (p Params) Get(name string) (string, bool) {
	for _, pr := range p {
		if pr.Name == name {
			return format(pr.Value)
		}
	}
	return "", false
}

// Serialize joins base and endpoint with exactly one "/" and appends params.
// A query already present in endpoint is kept; params override same-named
// pairs in place. Pairs whose value is empty or absent are never emitted.
func Serialize(base, endpoint string, params Params) string {
	path, rawQuery, _ := strings.Cut(endpoint, "?")
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")

	merged := embedded(rawQuery)
	for _, pr := range params {
		merged = merged.Set(pr.Name, pr.Value)
	}

	parts := make([]string, 0, len(merged))
	for _, pr := range merged {
		v, ok := format(pr.Value)
		if !ok {
			continue
		}
		parts = append(parts, escape(pr.Name)+"="+escape(v))
	}
	if len(parts) == 0 {
		return u
	}
	return u + "?" + strings.Join(parts, "&")
}

// embedded parses a raw query string keeping pair order.
func embedded(raw string) Params {
	if raw == "" {
		return nil
	}
	var out Params
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		out = out.Set(k, v)
	}
	return out
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// format renders a scalar value. The bool is false for absent or empty values.
func format(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case *string:
		if x == nil {
			return "", false
		}
		s = *x
	case bool:
		s = strconv.FormatBool(x)
	case *bool:
		if x == nil {
			return "", false
		}
		s = strconv.FormatBool(*x)
	case int:
		s = strconv.Itoa(x)
	case *int:
		if x == nil {
			return "", false
		}
		s = strconv.Itoa(*x)
	case int8, int16, int32, int64:
		s = fmt.Sprintf("%d", x)
	case uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprintf("%d", x)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return "", false
		}
		s = strconv.FormatFloat(*x, 'f', -1, 64)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return s, s != ""
}
