package edit

import "strings"

// Reindent strips the indentation common to all non-blank lines of content
// and then indents every non-blank line by n spaces. Blank lines stay empty
// and a trailing newline is preserved.
func Reindent(content string, n int) string {
	lines := strings.Split(content, "\n")

	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lead := len(l) - len(strings.TrimLeft(l, " \t"))
		if common == -1 || lead < common {
			common = lead
		}
	}
	if common == -1 {
		return content
	}

	pad := strings.Repeat(" ", n)
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = pad + l[common:]
	}
	return strings.Join(lines, "\n")
}
