package typescript

import (
	"strings"
	"unicode"
)

// TypeScript reserved words, plus the strict mode words a class body
// rejects as parameter names.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "implements": true,
	"import": true, "in": true, "instanceof": true, "interface": true,
	"let": true, "new": true, "null": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "type": true,
	"typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "arguments": true, "eval": true,
}

// escapeReservedWord escapes a reserved word by appending an underscore.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// ident makes name a valid TypeScript identifier.
func ident(name string) string {
	if name == "" {
		return "_"
	}

	var result strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			result.WriteRune('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return escapeReservedWord(result.String())
}
