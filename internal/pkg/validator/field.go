package validator

import (
	"reflect"
	"strings"
	"unicode"
)

// fieldName reports a struct field by its json name when tagged, otherwise
// by its Go name in snake_case, so error keys match what clients send.
func fieldName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}

	return snakeCase(f.Name)
}

// snakeCase lowers s and inserts "_" at word boundaries, keeping initialisms
// together: TokenID -> token_id, HTTPServer -> http_server.
func snakeCase(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
