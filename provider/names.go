package provider

import (
	"strings"
	"unicode"
)

// lowerCamel lowercases the leading upper-case run of s so that Go and Java
// member names become field names: "Actor" -> "actor", "ID" -> "id",
// "URLPath" -> "urlPath".
func lowerCamel(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	if n == 0 {
		return s
	}
	if n > 1 && n < len(r) {
		// The last upper-case rune of the run starts the next word.
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// propertyName derives a bean property name from a Java accessor name.
// Names that are not accessors are returned unchanged.
func propertyName(method string) (string, bool) {
	for _, prefix := range []string{"get", "is"} {
		rest, ok := strings.CutPrefix(method, prefix)
		if ok && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
			return lowerCamel(rest), true
		}
	}
	return method, false
}
