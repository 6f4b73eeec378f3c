package chat

import (
	"regexp"
	"strings"
)

// ModelOutput is the structured form of a raw model reply. The model is
// asked to emit RESPONSE: and SUMMARY: sections but does not always
// comply, so parsing degrades through two fallbacks before giving up on
// finding a summary.
type ModelOutput struct {
	Response     string
	Summary      string
	SummaryFound bool
}

const (
	responseMarker = "RESPONSE:"
	summaryMarker  = "SUMMARY:"
)

// ParseModelOutput splits a raw reply into the answer shown to the user
// and the running conversation summary.
//
// Tier 1: explicit RESPONSE:/SUMMARY: markers.
// Tier 2: a short trailing paragraph mentioning "summary".
// Tier 3: the whole text is the response; no summary found.
func ParseModelOutput(raw string) ModelOutput {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ModelOutput{}
	}

	if out, ok := parseMarkers(text); ok {
		return out
	}

	// The model sometimes emits the response marker without a summary
	// section; the marker must never reach the user.
	if ri := strings.Index(text, responseMarker); ri >= 0 {
		if rest := strings.TrimSpace(text[ri+len(responseMarker):]); rest != "" {
			text = rest
		}
	}

	if out, ok := parseTrailingSummary(text); ok {
		return out
	}
	return ModelOutput{Response: text}
}

func parseMarkers(text string) (ModelOutput, bool) {
	si := strings.Index(text, summaryMarker)
	if si < 0 {
		return ModelOutput{}, false
	}

	responsePart := text[:si]
	summaryPart := strings.TrimSpace(text[si+len(summaryMarker):])

	if ri := strings.Index(responsePart, responseMarker); ri >= 0 {
		responsePart = responsePart[ri+len(responseMarker):]
	}
	responsePart = strings.TrimSpace(responsePart)

	if responsePart == "" || summaryPart == "" {
		return ModelOutput{}, false
	}
	return ModelOutput{Response: responsePart, Summary: summaryPart, SummaryFound: true}, true
}

// blankLineRe matches a paragraph break even when the blank line
// carries stray whitespace.
var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// parseTrailingSummary catches replies where the model appended a
// summary paragraph without the marker. The paragraph must follow a
// blank line, mention "summary", and stay short enough to not be part
// of the actual answer.
func parseTrailingSummary(text string) (ModelOutput, bool) {
	breaks := blankLineRe.FindAllStringIndex(text, -1)
	if len(breaks) == 0 {
		return ModelOutput{}, false
	}
	idx := breaks[len(breaks)-1][0]

	last := strings.TrimSpace(text[idx:])
	if last == "" || len(last) >= 250 || !strings.Contains(strings.ToLower(last), "summary") {
		return ModelOutput{}, false
	}

	response := strings.TrimSpace(text[:idx])
	if response == "" {
		return ModelOutput{}, false
	}
	return ModelOutput{Response: response, Summary: last, SummaryFound: true}, true
}

// FallbackSummary builds a minimal summary from the user's own words
// when the model never produced one.
func FallbackSummary(userText string) string {
	words := strings.Fields(strings.TrimSpace(userText))
	if len(words) > 5 {
		words = words[:5]
	}
	return "Conversation about " + strings.Join(words, " ") + "..."
}
