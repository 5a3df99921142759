package render

import (
	"bytes"
	"strings"

	"github.com/broady/vocabgen/ir"
)

// WriteDoc writes doc as a /** */ block comment, the form shared by
// Scaladoc and JSDoc. Nothing is written for empty documentation.
func WriteDoc(buf *bytes.Buffer, indent string, doc ir.Documentation) {
	if doc.IsZero() {
		return
	}
	text := doc.Body
	if text == "" {
		text = doc.Summary
	}
	var lines []string
	if text != "" {
		lines = strings.Split(strings.TrimSpace(text), "\n")
	}

	if len(lines) == 1 && doc.Deprecated == nil {
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(escapeComment(strings.TrimSpace(lines[0])))
		buf.WriteString(" */\n")
		return
	}

	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(" *")
		if line = strings.TrimSpace(line); line != "" {
			buf.WriteString(" ")
			buf.WriteString(escapeComment(line))
		}
		buf.WriteString("\n")
	}
	if doc.Deprecated != nil {
		buf.WriteString(indent)
		buf.WriteString(" * @deprecated")
		if *doc.Deprecated != "" {
			buf.WriteString(" ")
			buf.WriteString(escapeComment(*doc.Deprecated))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(indent)
	buf.WriteString(" */\n")
}

// escapeComment keeps documentation from closing the comment early.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}
