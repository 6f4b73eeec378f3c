package services

import (
	"reflect"
	"testing"
)

func TestExtractCandidateText(t *testing.T) {
	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"Eat more fiber."}]}}]}`)
	text, ok := ExtractCandidateText(body)
	if !ok || text != "Eat more fiber." {
		t.Fatalf("got %q ok=%v", text, ok)
	}
}

func TestExtractCandidateTextSkipsEmptyParts(t *testing.T) {
	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"  "},{"text":"Second part."}]}}]}`)
	text, ok := ExtractCandidateText(body)
	if !ok || text != "Second part." {
		t.Fatalf("got %q ok=%v", text, ok)
	}
}

func TestExtractCandidateTextMalformed(t *testing.T) {
	for _, body := range []string{
		``,
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{}}]}`,
		`not json`,
	} {
		if _, ok := ExtractCandidateText([]byte(body)); ok {
			t.Fatalf("expected failure for %q", body)
		}
	}
}

func TestBuildPayloadNormalizesRoles(t *testing.T) {
	p := buildPayload(GenerateRequest{
		System:          "be helpful",
		Contents:        []Content{{Role: "assistant", Text: "hi"}, {Role: "Model", Text: "ok"}},
		Temperature:     0.5,
		MaxOutputTokens: 100,
	})

	contents := p["contents"].([]any)
	first := contents[0].(map[string]any)
	if first["role"] != "user" {
		t.Fatalf("unknown role should fall back to user, got %v", first["role"])
	}
	second := contents[1].(map[string]any)
	if second["role"] != "model" {
		t.Fatalf("role casing should normalize, got %v", second["role"])
	}
	if _, ok := p["systemInstruction"]; !ok {
		t.Fatalf("system instruction missing")
	}
}

func TestBuildPayloadOmitsEmptySystem(t *testing.T) {
	p := buildPayload(GenerateRequest{Contents: []Content{{Role: "user", Text: "hi"}}})
	if _, ok := p["systemInstruction"]; ok {
		t.Fatalf("empty system instruction must be omitted")
	}
}

func TestModelAttempts(t *testing.T) {
	cases := map[string][]string{
		"gemini-1.5-pro":   {"gemini-1.5-pro", "gemini-2.0-flash"},
		"gemini-2.0-flash": {"gemini-2.0-flash"},
		"":                 {"gemini-2.0-flash"},
		"  ":               {"gemini-2.0-flash"},
	}
	for configured, want := range cases {
		if got := modelAttempts(configured); !reflect.DeepEqual(got, want) {
			t.Fatalf("modelAttempts(%q) = %v, want %v", configured, got, want)
		}
	}
}

func TestIsRetriable(t *testing.T) {
	cases := map[string]bool{
		"status 503: overloaded":         true,
		"status 429: RESOURCE_EXHAUSTED": true,
		"quota exceeded":                 true,
		"status 400: bad request":        false,
		"status 500: internal":           false,
	}
	for msg, want := range cases {
		if got := isRetriable(errString(msg)); got != want {
			t.Fatalf("isRetriable(%q) = %v, want %v", msg, got, want)
		}
	}
	if isRetriable(nil) {
		t.Fatalf("nil error is not retriable")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
