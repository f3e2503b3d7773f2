package agents

import (
	"fmt"
	"strings"
)

// Placeholder explanations used when commentary could not be produced
const (
	NoAnalysisText   = "No analysis available."
	RateLimitedText  = "Rate limited. Try again later."
	UnavailableText  = "Unable to analyze news."
	maxHeadlineWords = 15
)

var commentaryPreambles = []string{
	"Certainly!",
	"Here's a market-oriented interpretation",
	"Here's my analysis",
	"Market analysis:",
	"Market interpretation:",
	"**Interpretation:**",
}

// ParseCommentary splits a numbered commentary answer into exactly expected explanations.
// Lines that start with "N. " open a new explanation; other lines continue the current one
// and are dropped while no explanation has been opened yet.
func ParseCommentary(text string, expected int) []string {
	if expected < 0 {
		expected = 0
	}

	var explanations []string
	var current strings.Builder
	open := false

	flush := func() {
		if open {
			explanations = append(explanations, CleanExplanation(current.String()))
			current.Reset()
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if body, ok := numberedItem(line); ok {
			flush()
			current.WriteString(body)
			open = true
			continue
		}

		if open {
			current.WriteByte(' ')
			current.WriteString(line)
		}
	}
	flush()

	for len(explanations) < expected {
		explanations = append(explanations, NoAnalysisText)
	}
	return explanations[:expected]
}

// numberedItem reports whether line starts with a digit and has ". " within its first
// four characters, returning the text after the first ". ".
func numberedItem(line string) (string, bool) {
	if line[0] < '0' || line[0] > '9' {
		return "", false
	}
	head := line
	if len(head) > 4 {
		head = head[:4]
	}
	if !strings.Contains(head, ". ") {
		return "", false
	}
	_, body, _ := strings.Cut(line, ". ")
	return body, true
}

// CleanExplanation strips canned preambles and a bold headline echo from one explanation
func CleanExplanation(text string) string {
	cleaned := stripPreambles(strings.TrimSpace(text))

	if strings.Count(cleaned, "**") >= 2 {
		parts := strings.SplitN(cleaned, "**", 3)
		if len(parts) == 3 && len(strings.Fields(parts[1])) <= maxHeadlineWords {
			rest := stripPreambles(strings.TrimSpace(parts[2]))
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "**"))
			cleaned = stripPreambles(rest)
		}
	}

	return cleaned
}

func stripPreambles(text string) string {
	for _, p := range commentaryPreambles {
		if strings.HasPrefix(text, p) {
			text = strings.TrimSpace(text[len(p):])
		}
	}
	return text
}

// GenericExplanation is served per headline once the daily commentary budget is spent
func GenericExplanation(title string) string {
	return fmt.Sprintf("Daily analysis limit reached. %q may move prices in the related sector; check back tomorrow for a detailed interpretation.", title)
}

func repeatText(text string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = text
	}
	return out
}
