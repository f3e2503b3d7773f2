package services

import (
	"fmt"
	"strings"
)

const commentarySystemPrompt = "You are a helpful financial analyst."

// BuildCommentaryPrompt numbers the headlines so the answer can be split back per headline
func BuildCommentaryPrompt(headlines []string) string {
	var b strings.Builder
	b.WriteString("Here are some financial news headlines. For each one, explain what the market might think: ")
	b.WriteString("highlight potential impact, risks, or opportunities, and provide a concise market-oriented interpretation. ")
	b.WriteString("Answer with one numbered paragraph per headline, in the same order.\n\n")
	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	return b.String()
}
