// Package jsonpath evaluates a practical subset of JSONPath against
// JSON documents. Dot and bracket selectors ($.users[0].name,
// $["users"][0]) are supported; filters and recursive descent are not.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract evaluates path against doc and returns the matched value as
// a string. Null matches return "null"; a path with no match is an
// error.
func Extract(doc, path string) (string, error) {
	if doc == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty path expression")
	}

	result := gjson.Get(doc, toGjson(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// toGjson rewrites a JSONPath expression into gjson syntax: the $
// root marker is dropped and selectors become dot-joined segments.
// Dots inside quoted keys are escaped so $['a.b'] stays one segment.
func toGjson(path string) string {
	path = strings.TrimPrefix(path, "$")

	var segs []string
	var cur strings.Builder
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '.' {
				cur.WriteString(`\.`)
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[' || c == ']' || c == '.':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if len(segs) == 0 {
		return "@this"
	}
	return strings.Join(segs, ".")
}
