// Package classify maps a raw decoded payload to a typed, tagged record.
// Classification is pure, total and deterministic: any input, however
// malformed, yields exactly one category and never an error.
package classify

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/vigil-gate/vigil/internal/model"
)

// summaryLimit bounds the display summary for plain-text payloads.
const summaryLimit = 100

var (
	digitsRe       = regexp.MustCompile(`^\d+$`)
	appointmentRef = regexp.MustCompile(`APT-([A-F0-9]+)`)
)

// Classify maps raw payload text to a ClassifiedRecord.
func Classify(raw string) model.ClassifiedRecord {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.ClassifiedRecord{
			Category: model.CategoryUnknown,
			Title:    "Inconnu",
			Summary:  "Aucune donnée",
			Raw:      raw,
		}
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return classifyStructured(parsed, raw)
	}

	return classifyPlain(trimmed, raw)
}

// classifyStructured dispatches a successfully parsed payload through the
// ordered rule list.
func classifyStructured(parsed any, raw string) model.ClassifiedRecord {
	fields, ok := parsed.(map[string]any)
	if !ok {
		// Valid JSON but not an object. A bare number is how printed
		// appointment tickets encode their ID.
		if s, isString := parsed.(string); isString {
			return classifyPlain(s, raw)
		}
		if trimmed := strings.TrimSpace(raw); digitsRe.MatchString(trimmed) {
			return referenceRecord(trimmed, raw)
		}
		return model.ClassifiedRecord{
			Category: model.CategoryJSON,
			Title:    "Données JSON",
			Summary:  "Données structurées détectées",
			Fields:   map[string]any{"value": parsed},
			Raw:      raw,
		}
	}

	for _, rule := range structuredRules {
		if rule.matches(fields) {
			return model.ClassifiedRecord{
				Category: rule.category,
				Title:    rule.title,
				Summary:  rule.summary(fields),
				Fields:   fields,
				Raw:      raw,
			}
		}
	}

	return model.ClassifiedRecord{
		Category: model.CategoryJSON,
		Title:    "Données JSON",
		Summary:  "Données structurées détectées",
		Fields:   fields,
		Raw:      raw,
	}
}

// classifyPlain handles payloads that are not structured data: appointment
// reference patterns first, then URLs, then plain text.
func classifyPlain(trimmed, raw string) model.ClassifiedRecord {
	if digitsRe.MatchString(trimmed) {
		return referenceRecord(trimmed, raw)
	}
	if m := appointmentRef.FindStringSubmatch(strings.ToUpper(trimmed)); m != nil {
		return referenceRecord("APT-"+m[1], raw)
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return model.ClassifiedRecord{
			Category: model.CategoryURL,
			Title:    "Lien Web",
			Summary:  trimmed,
			Fields:   map[string]any{"url": trimmed},
			Raw:      raw,
		}
	}

	return model.ClassifiedRecord{
		Category: model.CategoryText,
		Title:    "Texte",
		Summary:  truncate(trimmed, summaryLimit),
		Fields:   map[string]any{"text": trimmed},
		Raw:      raw,
	}
}

func referenceRecord(ref, raw string) model.ClassifiedRecord {
	return model.ClassifiedRecord{
		Category: model.CategoryAppointment,
		Title:    "Rendez-vous",
		Summary:  "Référence " + ref,
		Fields:   map[string]any{"appointment_ref": ref},
		Raw:      raw,
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
