package scala

import "unicode"

// Reserved words of Scala 2 and the soft keywords Scala 3 made hard.
var reservedWords = map[string]bool{
	"abstract": true, "case": true, "catch": true, "class": true,
	"def": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "final": true,
	"finally": true, "for": true, "forSome": true, "given": true,
	"if": true, "implicit": true, "import": true, "lazy": true,
	"macro": true, "match": true, "new": true, "null": true,
	"object": true, "override": true, "package": true, "private": true,
	"protected": true, "return": true, "sealed": true, "super": true,
	"then": true, "this": true, "throw": true, "trait": true,
	"true": true, "try": true, "type": true, "val": true,
	"var": true, "while": true, "with": true, "yield": true,
	"_": true,
}

// ident quotes a name with backticks when Scala would not accept it bare.
func ident(name string) string {
	if reservedWords[name] || !plainIdent(name) {
		return "`" + name + "`"
	}
	return name
}

func plainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
