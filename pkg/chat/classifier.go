package chat

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Classifier decides whether a message is on-topic for the assistant.
// Exclusions win over everything else.
type Classifier struct {
	Keywords   []string            `toml:"keywords"`
	Exclusions []string            `toml:"exclusions"`
	Topics     map[string][]string `toml:"topics"`
}

// LoadClassifier reads keyword data from a TOML file.
func LoadClassifier(path string) (*Classifier, error) {
	var c Classifier
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultClassifier returns the built-in keyword set, used when no data
// file is configured or it fails to load.
func DefaultClassifier() *Classifier {
	return &Classifier{
		Keywords: []string{
			"food", "diet", "nutrition", "eat", "meal", "health", "healthy",
			"vitamin", "mineral", "protein", "carb", "fat", "calorie",
			"nutrient", "supplement", "weight", "energy", "metabolism",
		},
		Exclusions: []string{
			"weather", "sports", "politics", "news", "movie", "film",
			"music", "song", "artist", "actor", "celebrity", "game",
			"gaming", "technology", "coding", "programming", "travel",
			"geography", "history", "mathematics", "physics",
		},
		Topics: map[string][]string{
			"mediterranean":        {"mediterranean", "med diet"},
			"dash":                 {"dash", "dash diet", "dietary approaches to stop hypertension"},
			"keto":                 {"keto", "ketogenic", "low carb high fat"},
			"paleo":                {"paleo", "paleolithic", "stone age diet"},
			"plant-based":          {"plant-based", "plant based", "vegan", "vegetarian"},
			"intermittent-fasting": {"intermittent fasting", "time restricted eating", "trf"},
			"health-benefits": {
				"health", "benefit", "advantage", "effect", "heart", "diabetes",
				"blood pressure", "weight", "loss", "disease", "cholesterol",
			},
			"nutrients": {
				"nutrient", "nutrition", "vitamin", "mineral", "protein",
				"carb", "fat", "calorie", "fiber",
			},
		},
	}
}

// IsNutritionQuery reports whether the message should go through the
// full knowledge-augmented path.
func (c *Classifier) IsNutritionQuery(message string) bool {
	q := strings.ToLower(message)

	for _, ex := range c.Exclusions {
		if strings.Contains(q, ex) {
			return false
		}
	}
	for _, kw := range c.Keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return len(c.MatchTopics(message)) > 0
}

// MatchTopics returns the topic groups the message touches, sorted for
// stable output.
func (c *Classifier) MatchTopics(message string) []string {
	q := strings.ToLower(message)
	var matched []string
	for topic, terms := range c.Topics {
		for _, t := range terms {
			if strings.Contains(q, t) {
				matched = append(matched, topic)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}
