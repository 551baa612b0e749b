package llm

import (
	"regexp"
	"strings"
)

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`__(.+?)__`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile(`_(.+?)_`), "$1"},
	{regexp.MustCompile("`(.+?)`"), "$1"},
	{regexp.MustCompile(`(?m)^#+\s*`), ""},
}

var (
	latexCommand = regexp.MustCompile(`\\([a-zA-Z]+)`)
	dollarSigns  = regexp.MustCompile(`\$+`)
	dashes       = strings.NewReplacer("—", "-", "–", "-")
)

// StripMarkdown removes formatting that does not survive being read aloud:
// emphasis, inline code, headers, long dashes and LaTeX markup.
func StripMarkdown(text string) string {
	for _, r := range markdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = dashes.Replace(text)
	text = latexCommand.ReplaceAllString(text, "$1")
	text = dollarSigns.ReplaceAllString(text, "")
	return text
}
