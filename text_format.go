package gridview

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Humanize turns an attribute name into a label: "createdAt" and
// "created_at" become "Created At" and "Created at". Runs of capitals are
// kept together ("userID" becomes "User ID").
func Humanize(name string) string {
	var b strings.Builder

	prevUpper := false
	for _, r := range name {
		isUpper := unicode.IsUpper(r)
		if isUpper && !prevUpper {
			b.WriteRune(' ')
		}
		prevUpper = isUpper

		switch r {
		case '_', '-', '.':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.TrimSpace(b.String())
	if s == "" {
		return s
	}

	first, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(first)) + s[size:]
}
