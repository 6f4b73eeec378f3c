package chat

import (
	"path/filepath"
	"testing"
)

func TestClassifierMatchesNutritionKeywords(t *testing.T) {
	c := DefaultClassifier()
	for _, q := range []string{
		"What food is high in protein?",
		"How many calories should I eat per day?",
		"Is intermittent fasting safe?",
		"Tell me about the mediterranean diet",
	} {
		if !c.IsNutritionQuery(q) {
			t.Fatalf("expected nutrition query: %q", q)
		}
	}
}

func TestClassifierExclusionsWin(t *testing.T) {
	c := DefaultClassifier()
	for _, q := range []string{
		"What's the weather like for my meal prep day?",
		"best sports energy drinks",
		"food scenes in that movie",
	} {
		if c.IsNutritionQuery(q) {
			t.Fatalf("exclusion should override keywords: %q", q)
		}
	}
}

func TestClassifierRejectsOffTopic(t *testing.T) {
	c := DefaultClassifier()
	if c.IsNutritionQuery("how do I tie a bowline knot") {
		t.Fatalf("off-topic query classified as nutrition")
	}
}

func TestClassifierMatchTopics(t *testing.T) {
	c := DefaultClassifier()
	topics := c.MatchTopics("does the keto diet lower cholesterol?")
	want := map[string]bool{"keto": true, "health-benefits": true}
	for _, topic := range topics {
		delete(want, topic)
	}
	if len(want) != 0 {
		t.Fatalf("missing topics %v in %v", want, topics)
	}
}

func TestLoadClassifierFromFile(t *testing.T) {
	c, err := LoadClassifier(filepath.Join("..", "..", "configs", "keywords.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Keywords) == 0 || len(c.Exclusions) == 0 || len(c.Topics) == 0 {
		t.Fatalf("keyword file incomplete: %+v", c)
	}
	if !c.IsNutritionQuery("high protein breakfast ideas") {
		t.Fatalf("file-backed classifier should match nutrition query")
	}
}
