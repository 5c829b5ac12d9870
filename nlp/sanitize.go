package nlp

import (
	"regexp"
	"strings"
)

var (
	scriptTagRe    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	javascriptRe   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	sqlFragmentRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
		regexp.MustCompile(`(?i)\bunion\s+select\b`),
		regexp.MustCompile(`(?i)\bdrop\s+table\b`),
		regexp.MustCompile(`(?i)\bdelete\s+from\b`),
		regexp.MustCompile(`(?i)\binsert\s+into\b`),
		regexp.MustCompile(`(?i);\s*--`),
	}
	dangerousChars = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
)

// Sanitize strips script tags, javascript: URIs, inline event handlers,
// common SQL-injection fragments, leftover HTML tags, and the characters
// <>"'& from raw user input before it reaches a validator.
func Sanitize(input string) string {
	out := scriptTagRe.ReplaceAllString(input, "")
	out = javascriptRe.ReplaceAllString(out, "")
	out = eventHandlerRe.ReplaceAllString(out, "")
	for _, re := range sqlFragmentRes {
		out = re.ReplaceAllString(out, "")
	}
	out = htmlTagRe.ReplaceAllString(out, "")
	out = dangerousChars.Replace(out)
	return strings.TrimSpace(out)
}
