package htmltext

import "regexp"

var (
	reBreak = regexp.MustCompile(`(?i)<br>`)
	reRule  = regexp.MustCompile(`(?i)<hr>`)
	reNBSP  = regexp.MustCompile(`(?i)&nbsp;`)
)

// sanitize makes common HTML-isms well-formed XML: void tags are
// self-closed and &nbsp; becomes a numeric reference. Empty text becomes a
// single space.
func sanitize(text string) string {
	if text == "" {
		return " "
	}
	text = reBreak.ReplaceAllString(text, "<br/>")
	text = reRule.ReplaceAllString(text, "<hr/>")
	return reNBSP.ReplaceAllString(text, "&#160;")
}
