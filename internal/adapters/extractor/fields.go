package extractor

import (
	"fmt"
	"strings"
)

// lookup достаёт значение по пути вида "author.username".
func lookup(item map[string]any, path string) any {
	var cur any = item
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func firstString(item map[string]any, paths ...string) string {
	for _, p := range paths {
		if s, ok := lookup(item, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstValue(item map[string]any, paths ...string) any {
	for _, p := range paths {
		v := lookup(item, p)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

// metadata собирает непустые значения по ключам.
func metadata(item map[string]any, fields map[string][]string) map[string]any {
	out := make(map[string]any, len(fields))
	for name, paths := range fields {
		if v := firstValue(item, paths...); v != nil {
			out[name] = v
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			switch e := el.(type) {
			case string:
				parts = append(parts, e)
			case map[string]any:
				if s := firstString(e, "plaintext", "srt", "text"); s != "" {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(t)
	}
}
