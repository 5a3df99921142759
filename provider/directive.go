package provider

import (
	"go/ast"
	"strings"
)

// Directives are line comments in the doc comment of a Go type:
//
//	//vocabgen:abstract
//	//vocabgen:ignore
//
// The abstract directive marks a struct as abstract, since Go has no
// abstract structs. The ignore directive leaves the type out of the
// vocabulary; referencing it as a supertype is a discovery error.
type directive string

const (
	directiveAbstract directive = "abstract"
	directiveIgnore   directive = "ignore"
)

const directivePrefix = "//vocabgen:"

// directives collects the vocabgen directives in a doc comment. Unknown
// directives are returned separately so callers can warn about them.
func directives(doc *ast.CommentGroup) (found map[directive]bool, unknown []string) {
	if doc == nil {
		return nil, nil
	}
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) == 0 {
			continue
		}
		switch d := directive(parts[0]); d {
		case directiveAbstract, directiveIgnore:
			if found == nil {
				found = make(map[directive]bool)
			}
			found[d] = true
		default:
			unknown = append(unknown, parts[0])
		}
	}
	return found, unknown
}
