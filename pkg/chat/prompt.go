package chat

import (
	"fmt"
	"strings"

	"NutriGuide/pkg/services"
)

const baseSystemInstruction = `You are a helpful nutrition information assistant.
Your primary focus is to provide clear, factual nutrition information and dietary advice.
Always include disclaimers when appropriate, reminding users to consult healthcare professionals or registered dietitians for personalized advice.`

// SystemInstruction builds the per-request system prompt. First
// interactions get a greeting directive; later ones are steered by the
// running summary when there is one.
func SystemInstruction(username string, firstInteraction bool, summary string) string {
	if firstInteraction {
		return fmt.Sprintf(`You are a helpful nutrition information assistant talking with %s.
Your primary focus is to provide clear, factual nutrition information and dietary advice.
Always include disclaimers when appropriate, reminding users to consult healthcare professionals or registered dietitians for personalized advice.
Since this is your first interaction, greet %s by name and be welcoming before providing nutrition information.`, username, username)
	}
	if strings.TrimSpace(summary) != "" {
		return fmt.Sprintf(`%s
Based on this conversation summary: "%s",
provide a focused nutrition response that maintains contextual relevance.`, baseSystemInstruction, summary)
	}
	return baseSystemInstruction
}

// SummaryRequestPrompt wraps the user's message with the instruction to
// answer and keep the running summary current, in the RESPONSE:/SUMMARY:
// format ParseModelOutput expects.
func SummaryRequestPrompt(message, currentSummary string) string {
	if strings.TrimSpace(currentSummary) != "" {
		return fmt.Sprintf(`Current conversation summary: %s

%s

===
Based on our conversation, please provide two things:
1. A direct response to my nutrition question above.
2. An updated brief summary (2-3 sentences) of our entire nutrition-related conversation including this latest exchange.

Format your answer with "RESPONSE:" followed by your response, then "SUMMARY:" followed by the updated summary.`, currentSummary, message)
	}
	return fmt.Sprintf(`%s

===
Please provide two things:
1. A direct response to my nutrition question above.
2. A brief summary (1-2 sentences) of what we've just discussed related to nutrition.

Format your answer with "RESPONSE:" followed by your response, then "SUMMARY:" followed by the summary.`, message)
}

// SnippetBlock renders knowledge-base hits as numbered reference
// material the model is told to ground its answer in. Empty input
// yields an empty string.
func SnippetBlock(snippets []services.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant Information:\n")
	for i, sn := range snippets {
		title := sn.Title
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Source %d", i+1)
		}
		fmt.Fprintf(&b, "\n--- [%d] %s ---\n%s\n", i+1, title, sn.Text)
	}
	b.WriteString("\nPrefer the information provided above when it answers the question, and cite sources with their [n] marker.")
	return b.String()
}
