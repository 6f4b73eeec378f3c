package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// aiTitleLimit caps AI-generated titles; the ellipsis counts toward it.
const aiTitleLimit = 50

// TitlePrompt asks the model to name a conversation from its first
// message.
func TitlePrompt(userMessage string) string {
	return fmt.Sprintf(`Task: Create a short, descriptive title (3-5 words) for a conversation about a nutrition topic based on this first message.
Message: "%s"

Requirements:
- Keep it under 5 words
- Make it descriptive of the nutrition topic
- No quotes or punctuation
- No explanations, just the title

Title:`, userMessage)
}

var (
	titlePrefixRe  = regexp.MustCompile(`(?i)^(title|chat title|conversation title)\s*[:\-]\s*`)
	leadInPrefixRe = regexp.MustCompile(`(?i)^(about|regarding|re:|on)\s+`)
	markdownRe     = regexp.MustCompile("[*_`#>]+")
)

// CleanTitle normalizes a model-produced title: strips markdown, quotes
// and lead-in prefixes, enforces the length limit, and title-cases the
// result. Cleaning an already-clean title changes nothing.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if title == "" {
		return ""
	}

	// Only the first line matters; models sometimes add commentary.
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}

	truncated := strings.HasSuffix(title, "...")
	title = strings.TrimSuffix(title, "...")

	title = markdownRe.ReplaceAllString(title, "")
	title = strings.Trim(title, `"'“”‘’ `)
	title = titlePrefixRe.ReplaceAllString(title, "")
	title = leadInPrefixRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(strings.Trim(title, `"' .`))
	if title == "" {
		return ""
	}

	runes := []rune(title)
	if len(runes) > aiTitleLimit || (truncated && len(runes) > aiTitleLimit-3) {
		// The cut can land on punctuation that the cleaning pass above
		// would strip; trim it again so re-cleaning is a no-op.
		title = strings.TrimSpace(strings.Trim(string(runes[:aiTitleLimit-3]), `"'“”‘’ .`))
		if title == "" {
			return ""
		}
		truncated = true
	}

	title = titleCase(title)
	if truncated {
		title += "..."
	}
	return title
}

// DefaultTitle is the fallback name used when title generation fails.
func DefaultTitle(at time.Time) string {
	return "New Chat " + at.Format("2006-01-02 15:04")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
