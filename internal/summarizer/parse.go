package summarizer

import (
	"encoding/json"
	"regexp"

	"paperapi/internal/model"
)

// jsonObject spans from the first opening brace to the last closing one.
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type modelAnswer struct {
	Summary  string          `json:"summary"`
	Sections []model.Section `json:"sections"`
}

// ParseResponse splits a model answer into a summary and sections.
// parsed is false when no JSON object could be decoded and the raw text was used instead.
func ParseResponse(text string) (summary string, sections []model.Section, parsed bool) {
	raw := []model.Section{{Title: "AI Analysis", Content: text}}

	match := jsonObject.FindString(text)
	if match == "" {
		return text, raw, false
	}

	var ans modelAnswer
	if err := json.Unmarshal([]byte(match), &ans); err != nil {
		return text, raw, false
	}

	summary = ans.Summary
	if summary == "" {
		summary = text
	}
	sections = ans.Sections
	if sections == nil {
		sections = []model.Section{}
	}
	return summary, sections, true
}
