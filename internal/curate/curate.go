// Package curate turns the canonical catalog into a bounded, ordered digest
// for one distribution run: filter to the coming week, drop junk, apply the
// audience's preferences, then score and rank with a weather-driven
// indoor/outdoor bias.
package curate

import (
	"sort"
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/category"
	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/weather"
)

const (
	// WindowDays is the length of the distribution window in days.
	WindowDays = 7
	// MaxPicks caps the digest size.
	MaxPicks = 7
)

// Audience holds one subscriber's curation preferences. A nil Audience (or
// one with no fields set) applies no preference filtering.
type Audience struct {
	Interests  []string // interest tags, mapped to categories below
	Location   string   // substring filter over location+address, "" or "all" disables
	PricePrefs []string // subset of {"free", "paid"}
}

// interestToCategory maps signup-form interest tags to catalog categories.
var interestToCategory = map[string][]string{
	"desi":     {category.SouthAsian, "Music & Dance"},
	"arab":     {category.MiddleEastern},
	"arts":     {"Arts & Crafts"},
	"music":    {"Music & Dance"},
	"food":     {"Food & Markets"},
	"cultural": {"Cultural Festival"},
	"wellness": {"Sports & Outdoors"},
	"career":   {"Career & Tech", "Talks & Lectures"},
}

// junkNameFragments flags scraped boilerplate that is not an event.
var junkNameFragments = []string{
	"cookie", "sign up", "log in", "privacy", "terms",
}

// recurringNonEvents are permanent attractions that sites list as events
// every single day.
var recurringNonEvents = []string{
	"skywalk observatory",
	"view boston",
	"freedom trail daily tour",
}

// Indoor/outdoor classification tables. Category mapping wins; otherwise
// keyword hints over name+location decide, outdoor hints checked first.
// Events that match nothing count as indoor since the weather risk of a
// wrong outdoor guess is the worse mistake.
var (
	indoorCategories = map[string]bool{
		"Arts & Crafts":    true,
		"Theater & Film":   true,
		"Food & Markets":   true,
		"Comedy":           true,
		"Coffee & Chai":    true,
		"Talks & Lectures": true,
		"Career & Tech":    true,
		"Religious":        true,
	}
	outdoorCategories = map[string]bool{
		"Sports & Outdoors": true,
		"Cultural Festival": true,
	}
	outdoorHints = []string{
		"park", "beach", "trail", "hike", "outdoor", "garden", "field",
		"plaza", "street", "marathon", "run", "walk",
	}
	indoorHints = []string{
		"museum", "gallery", "restaurant", "theater", "theatre", "cinema",
		"studio", "lounge", "cafe", "coffee", "library", "center", "centre",
		"hall", "room", "hotel", "bar", "club", "temple", "mosque", "church",
	}
)

// Scoring weights.
const (
	scoreEthnicityTag     = 100
	scoreCulturalFestival = 50
	scoreMusicOrFood      = 40
	scoreFreePrice        = 30
	scoreWeatherFit       = 20
	scoreHasTime          = 10
)

// Pick curates at most MaxPicks events for the coming week, ordered by
// score descending with earlier dates breaking ties.
func Pick(events []*event.Event, cond weather.Condition, aud *Audience) []*event.Event {
	now := clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := today.AddDate(0, 0, WindowDays)

	var kept []*event.Event
	for _, evt := range events {
		date, err := evt.When()
		if err != nil {
			continue
		}
		if date.Before(today) || date.After(windowEnd) {
			continue
		}
		if isJunk(evt.Name) {
			continue
		}
		if !matchesAudience(evt, aud) {
			continue
		}
		kept = append(kept, evt)
	}

	type scored struct {
		evt   *event.Event
		score int
		date  time.Time
	}
	ranked := make([]scored, len(kept))
	for i, evt := range kept {
		date, _ := evt.When()
		ranked[i] = scored{evt: evt, score: Score(evt, cond), date: date}
	}

	// Stable: fully tied entries keep their catalog order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].date.Before(ranked[j].date)
	})

	// The same event often appears under two different source URLs; a
	// second identical name is a duplicate regardless of identity key.
	seenNames := make(map[string]bool)
	var picks []*event.Event
	for _, r := range ranked {
		name := strings.ToLower(strings.TrimSpace(r.evt.Name))
		if seenNames[name] {
			continue
		}
		seenNames[name] = true
		picks = append(picks, r.evt)
		if len(picks) == MaxPicks {
			break
		}
	}
	return picks
}

// Score computes an event's rank points for the given weather condition.
func Score(evt *event.Event, cond weather.Condition) int {
	score := 0
	if category.Has(evt.Categories, category.SouthAsian) {
		score += scoreEthnicityTag
	}
	if category.Has(evt.Categories, category.MiddleEastern) {
		score += scoreEthnicityTag
	}
	if category.Has(evt.Categories, "Cultural Festival") {
		score += scoreCulturalFestival
	}
	if category.Has(evt.Categories, "Music & Dance") {
		score += scoreMusicOrFood
	}
	if category.Has(evt.Categories, "Food & Markets") {
		score += scoreMusicOrFood
	}
	if isFree(evt.Price) {
		score += scoreFreePrice
	}
	if IsIndoor(evt) == cond.PrefersIndoor() {
		score += scoreWeatherFit
	}
	if evt.Time != "" {
		score += scoreHasTime
	}
	return score
}

// IsIndoor classifies an event as indoor or outdoor.
func IsIndoor(evt *event.Event) bool {
	for _, cat := range evt.Categories {
		if indoorCategories[cat] {
			return true
		}
		if outdoorCategories[cat] {
			return false
		}
	}

	text := strings.ToLower(evt.Name + " " + evt.Location)
	for _, hint := range outdoorHints {
		if strings.Contains(text, hint) {
			return false
		}
	}
	for _, hint := range indoorHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return true
}

func isJunk(name string) bool {
	lower := strings.ToLower(name)
	if strings.TrimSpace(lower) == "" {
		return true
	}
	for _, frag := range junkNameFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	for _, known := range recurringNonEvents {
		if strings.Contains(lower, known) {
			return true
		}
	}
	return false
}

func matchesAudience(evt *event.Event, aud *Audience) bool {
	if aud == nil {
		return true
	}

	if cats := aud.categories(); len(cats) > 0 {
		match := false
		for _, c := range cats {
			if category.Has(evt.Categories, c) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	if aud.Location != "" && aud.Location != "all" {
		place := strings.ToLower(evt.Location + " " + evt.Address)
		if !strings.Contains(place, strings.ToLower(aud.Location)) {
			return false
		}
	}

	return matchesPrice(evt.Price, aud.PricePrefs)
}

// categories expands the audience's interest tags through the static map.
func (a *Audience) categories() []string {
	var cats []string
	for _, tag := range a.Interests {
		cats = append(cats, interestToCategory[strings.ToLower(tag)]...)
	}
	return cats
}

func matchesPrice(price string, prefs []string) bool {
	wantFree := false
	wantPaid := false
	for _, p := range prefs {
		switch strings.ToLower(p) {
		case "free":
			wantFree = true
		case "paid":
			wantPaid = true
		}
	}
	// No preference, or both, means no filtering on this axis.
	if wantFree == wantPaid {
		return true
	}
	if wantFree {
		return isFree(price)
	}
	return price != "" && !isFree(price)
}

func isFree(price string) bool {
	return strings.Contains(strings.ToLower(price), "free")
}
