package domain

import (
	"regexp"
	"strings"
)

// UnknownLocation is the sentinel for messages with no recognizable location
// phrase. The geocoder skips it without a network call.
const UnknownLocation = "Unknown location"

// Classification is the structured outcome of parsing one message body.
type Classification struct {
	HazardType string
	Urgency    string
	Location   string
}

// keywordCategory pairs a category label with its trigger keywords.
// Tables are evaluated in order; the first category with any substring
// match wins.
type keywordCategory struct {
	category string
	triggers []string
}

var hazardTable = []keywordCategory{
	{"flood", []string{"flood", "flooding", "water"}},
	{"tsunami", []string{"tsunami", "tidal", "surge"}},
	{"storm", []string{"storm", "cyclone", "hurricane", "rain"}},
	{"waves", []string{"wave", "waves", "swell"}},
}

var urgencyTable = []keywordCategory{
	{"urgent", []string{"urgent", "emergency", "help", "sos", "now"}},
	{"medium", []string{"soon", "rising", "worse"}},
	{"low", []string{"watch", "monitor", "fyi"}},
}

// locationRe captures the phrase after "at", "in", or "near", terminated at a
// comma, period, or newline. e.g. "Flooding near Marina Beach, urgent" -> "Marina Beach".
var locationRe = regexp.MustCompile(`(?i)\b(?:at|in|near)\s+([^,.\n]+)`)

// ClassifyMessage derives hazard type, urgency, and a location phrase from a
// raw message body. It is pure and deterministic: no I/O, same input always
// yields the same result. An empty body classifies as "other"/"medium" with
// the unknown-location sentinel.
func ClassifyMessage(body string) Classification {
	folded := strings.ToLower(body)

	return Classification{
		HazardType: matchCategory(folded, hazardTable, "other"),
		Urgency:    matchCategory(folded, urgencyTable, "medium"),
		Location:   extractLocation(body),
	}
}

// matchCategory returns the first category whose triggers match text, or the
// fallback when none do.
func matchCategory(text string, table []keywordCategory, fallback string) string {
	for _, c := range table {
		for _, trigger := range c.triggers {
			if strings.Contains(text, trigger) {
				return c.category
			}
		}
	}
	return fallback
}

// extractLocation pulls the location phrase from the original (case-preserved)
// body so "Marina Beach" is not folded to "marina beach".
func extractLocation(body string) string {
	matches := locationRe.FindStringSubmatch(body)
	if len(matches) != 2 {
		return UnknownLocation
	}
	phrase := strings.TrimSpace(matches[1])
	if phrase == "" {
		return UnknownLocation
	}
	return phrase
}
