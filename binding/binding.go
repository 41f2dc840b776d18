// Package binding fills ${path} placeholders in markup with values from
// decoded JSON data.
package binding

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将 markup 中的 ${path.to.value} 替换为 data 中的值，值会做 HTML 转义，
// 避免数据破坏标记结构。data 为空或路径不存在时保留原占位符。
func Interpolate(markup string, data any) string {
	return interpolate(markup, data, html.EscapeString)
}

// InterpolateRaw is Interpolate without escaping, for data that carries
// trusted markup of its own.
func InterpolateRaw(markup string, data any) string {
	return interpolate(markup, data, func(s string) string { return s })
}

func interpolate(markup string, data any, escape func(string) string) string {
	if data == nil {
		return markup
	}
	return placeholder.ReplaceAllStringFunc(markup, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Lookup(data, path)
		if !ok {
			return match
		}
		return escape(format(val))
	})
}

// format 保证 JSON 数字不以科学计数法输出。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Lookup resolves a dotted path with optional [index] suffixes, such as
// "order.items[0].name", against maps and slices from encoding/json.
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			list, isList := current.([]any)
			if !isList || idx < 0 || idx >= len(list) {
				return nil, false
			}
			current = list[idx]
		}
	}
	return current, true
}

func parseSegment(segment string) (name string, indexes []int, ok bool) {
	i := strings.IndexByte(segment, '[')
	if i < 0 {
		return segment, nil, true
	}
	name, rest := segment[:i], segment[i:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}
