package spec

import "strings"

var escapeReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
	`\`, `\\`,
	`"`, `\"`,
	"*/", "*_/",
	"/*", "/_*",
)

// EscapeText makes documentation text safe to embed in a generated doc
// comment or string literal. Every Description and Notes field in the IR holds
// escaped text; the Unescaped* fields keep the source.
func EscapeText(s string) string {
	return escapeReplacer.Replace(s)
}
