package content

import (
	"strings"
)

// Excerpt budgets in runes, per kind.
const (
	CrewExcerptLength   = 150
	NPCExcerptLength    = 120
	LoreExcerptLength   = 160
	LogExcerptLength    = 200
	SystemExcerptLength = 200
)

const ellipsis = "..."

var inlineMarkers = strings.NewReplacer("**", "", "__", "", "`", "", "~~", "")

// Excerpt takes the first line of body that is neither blank nor a heading,
// strips inline markdown, truncates it to budget runes and appends an
// ellipsis. The ellipsis is appended even when nothing was cut.
func Excerpt(body string, budget int) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || isRule(line) {
			continue
		}
		line = strings.TrimSpace(inlineMarkers.Replace(stripListMarker(line)))
		if line == "" {
			continue
		}
		runes := []rune(line)
		if budget >= 0 && len(runes) > budget {
			line = strings.TrimRight(string(runes[:budget]), " ")
		}
		return line + ellipsis
	}
	return ""
}

func stripListMarker(line string) string {
	for _, prefix := range []string{"> ", "- ", "* ", "+ "} {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):]
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && strings.HasPrefix(line[i:], ". ") {
		return line[i+2:]
	}
	return line
}

func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "-") == "" || strings.Trim(line, "*") == "" || strings.Trim(line, "_") == ""
}
