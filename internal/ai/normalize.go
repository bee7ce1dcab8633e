package ai

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/david/opportunity-finder/internal/models"
)

var ratingAliases = map[string]models.Rating{
	"alta":   models.RatingHigh,
	"high":   models.RatingHigh,
	"media":  models.RatingMedium,
	"medio":  models.RatingMedium,
	"medium": models.RatingMedium,
	"baja":   models.RatingLow,
	"low":    models.RatingLow,
}

// Text fields rendered as labels or paragraphs. The build prompt and the email body
// are copied verbatim by users, so they keep their markup.
var displayFields = map[string]bool{
	"sector":                true,
	"businessType":          true,
	"urgentNeed":            true,
	"aiSolutionName":        true,
	"aiSolutionDescription": true,
	"subject":               true,
	"justification":         true,
}

var numericFields = map[string]bool{
	"score":              true,
	"easeOfCreation":     true,
	"opportunityForGain": true,
}

var textPolicy = bluemonday.StrictPolicy()

// normalizeItems cleans every record in place before schema validation: strings are
// trimmed, markup is stripped from display fields, numeric strings become numbers and
// rating synonyms map to the canonical literal.
func normalizeItems(items []any) {
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			normalizeObject(obj)
		}
	}
}

func normalizeObject(obj map[string]any) {
	for key, val := range obj {
		switch v := val.(type) {
		case map[string]any:
			normalizeObject(v)
		case string:
			obj[key] = normalizeString(key, v)
		}
	}
}

func normalizeString(key, v string) any {
	v = strings.TrimSpace(v)

	if numericFields[key] {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
		return v
	}
	if key == "rating" {
		if r, ok := ratingAliases[strings.ToLower(v)]; ok {
			return string(r)
		}
		return v
	}
	if key == "managerEmail" {
		return strings.ToLower(v)
	}
	if displayFields[key] {
		return stripMarkup(v)
	}
	return v
}

// stripMarkup removes HTML tags while keeping the text readable.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
