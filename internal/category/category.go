// Package category assigns community-event category labels from keyword
// matching over an event's name and description. The tables are process-wide
// read-only configuration; classification is deterministic, and an event
// that matches nothing is filed under "Community".
package category

import "strings"

// Fallback is the label applied when no keyword matches.
const Fallback = "Community"

// Cross-cutting community tags checked before the general categories.
const (
	SouthAsian    = "South Asian"
	MiddleEastern = "Middle Eastern"
)

var southAsianKeywords = []string{
	"south asian", "indian", "pakistani", "bengali", "desi", "nepali", "sri lankan",
	"bangladeshi", "afghan", "tamil", "punjabi", "gujarati", "marathi", "telugu",
	"bollywood", "bhangra", "garba", "dandiya", "kathak", "bharatanatyam",
	"holi", "diwali", "navratri", "durga puja", "ganesh", "onam", "pongal", "baisakhi",
	"biryani", "samosa", "chai", "tandoori", "naan", "curry", "masala", "thali",
	"mehndi", "henna", "rangoli", "sari", "saree", "kurta", "salwar",
	"cricket", "kabaddi", "carrom",
}

var middleEasternKeywords = []string{
	"middle eastern", "arab", "persian", "iranian", "lebanese", "syrian", "palestinian",
	"egyptian", "moroccan", "turkish", "afghan", "iraqi", "jordanian", "yemeni",
	"eid", "ramadan", "iftar", "nowruz", "norooz",
	"mosque", "masjid", "islamic", "muslim",
	"halal", "falafel", "hummus", "shawarma", "kebab", "kabob", "baklava", "tahini",
	"belly dance", "dabke", "oud", "arabic music",
	"hookah", "shisha", "arabic calligraphy",
}

// categoryOrder fixes the priority (and display) order of the general
// category labels. Go map iteration is randomized, so the keyword table is
// walked through this slice to keep output stable.
var categoryOrder = []string{
	"Arts & Crafts",
	"Food & Markets",
	"Theater & Film",
	"Comedy",
	"Coffee & Chai",
	"Sports & Outdoors",
	"Music & Dance",
	"Talks & Lectures",
	"Cultural Festival",
	"Religious",
	"Career & Tech",
	"Community",
}

var categoryKeywords = map[string][]string{
	"Arts & Crafts":    {"art", "craft", "painting", "pottery", "calligraphy", "drawing", "sculpture", "gallery", "exhibition", "workshop"},
	"Food & Markets":   {"food", "cuisine", "cooking", "restaurant", "market", "bazaar", "tasting", "culinary", "chef", "dining"},
	"Theater & Film":   {"theater", "theatre", "film", "movie", "cinema", "play", "drama", "screening", "documentary"},
	"Comedy":           {"comedy", "standup", "stand-up", "comedian", "improv", "open mic", "laugh"},
	"Coffee & Chai":    {"coffee", "chai", "tea", "cafe", "café", "coffeehouse"},
	"Sports & Outdoors": {"sports", "cricket", "soccer", "basketball", "hiking", "outdoor", "fitness", "yoga", "run", "marathon", "kabaddi"},
	"Music & Dance":    {"music", "dance", "concert", "performance", "dj", "live music", "recital", "bhangra", "bollywood", "classical", "qawwali"},
	"Talks & Lectures": {"talk", "lecture", "seminar", "discussion", "panel", "speaker", "conversation", "symposium", "conference", "ama", "fireside"},
	"Cultural Festival": {"festival", "mela", "celebration", "holi", "diwali", "eid", "navratri", "nowruz", "cultural"},
	"Religious":        {"religious", "spiritual", "prayer", "temple", "mosque", "church", "meditation", "puja", "namaz"},
	"Career & Tech":    {"career", "professional", "intern", "startup", "entrepreneur", "tech", "coding", "aws", "cloud", "ai", "machine learning", "job", "hiring", "resume"},
	"Community":        {"community", "meetup", "networking", "social", "gathering"},
}

// Classify returns the category labels for an event given its name and
// description. Labels are not mutually exclusive; the result is never empty.
func Classify(name, description string) []string {
	text := strings.ToLower(name + " " + description)

	var labels []string

	if containsAny(text, southAsianKeywords) {
		labels = append(labels, SouthAsian)
	}
	if containsAny(text, middleEasternKeywords) {
		labels = append(labels, MiddleEastern)
	}

	for _, cat := range categoryOrder {
		if containsAny(text, categoryKeywords[cat]) {
			labels = append(labels, cat)
		}
	}

	if len(labels) == 0 {
		return []string{Fallback}
	}
	return labels
}

// generalInterestKeywords widen the relevance net beyond the community
// tags: craft, wellness, and world-culture programming the audience also
// goes to.
var generalInterestKeywords = []string{
	"painting", "pottery", "art class", "workshop", "dance class", "crafts",
	"drawing", "mosaic", "calligraphy", "cultural", "world music", "cooking class",
	"yoga", "meditation", "mindfulness", "gallery", "exhibition",
}

// Relevant reports whether an event belongs in the catalog at all. Source
// adapters that crawl broad city listings use it to drop unrelated events
// before normalization.
func Relevant(name, description string) bool {
	text := strings.ToLower(name + " " + description)
	return containsAny(text, southAsianKeywords) ||
		containsAny(text, middleEasternKeywords) ||
		containsAny(text, generalInterestKeywords)
}

// Has reports whether a label appears in a category set.
func Has(categories []string, label string) bool {
	for _, c := range categories {
		if c == label {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
