package classify

import (
	"fmt"
	"strings"

	"github.com/vigil-gate/vigil/internal/model"
)

// structuredRule is one classification predicate over a parsed payload.
// Rules are evaluated in slice order; the first match wins.
type structuredRule struct {
	category model.Category
	title    string
	matches  func(fields map[string]any) bool
	summary  func(fields map[string]any) string
}

// structuredRules is the explicit category priority order:
// service, appointment, user, document. Later rules never shadow earlier
// ones, so a payload carrying both service and user markers is a service.
var structuredRules = []structuredRule{
	{
		category: model.CategoryService,
		title:    "Service Consulaire",
		matches: func(f map[string]any) bool {
			return f["type"] == "service" || has(f, "service_id")
		},
		summary: func(f map[string]any) string {
			return fmt.Sprintf("%s - %s",
				stringOr(f, "service_name", "Service"),
				stringOr(f, "category_display", "Catégorie"))
		},
	},
	{
		category: model.CategoryAppointment,
		title:    "Rendez-vous",
		matches: func(f map[string]any) bool {
			return has(f, "appointment_id") || has(f, "appointmentId") || has(f, "appointment")
		},
		summary: func(f map[string]any) string {
			return "Rendez-vous du " + appointmentDate(f)
		},
	},
	{
		category: model.CategoryUser,
		title:    "Utilisateur",
		matches: func(f map[string]any) bool {
			return has(f, "user_id") || has(f, "userId") || has(f, "email")
		},
		summary: func(f map[string]any) string {
			name := strings.TrimSpace(stringOr(f, "first_name", "") + " " + stringOr(f, "last_name", ""))
			if name != "" {
				return name
			}
			if email := stringOr(f, "email", ""); email != "" {
				return email
			}
			return "Utilisateur"
		},
	},
	{
		category: model.CategoryDocument,
		title:    "Document",
		matches: func(f map[string]any) bool {
			return has(f, "document_id") || has(f, "documentId") || has(f, "document_type")
		},
		summary: func(f map[string]any) string {
			return "Document " + stringOr(f, "document_type", "inconnu")
		},
	},
}

func has(fields map[string]any, key string) bool {
	v, ok := fields[key]
	return ok && v != nil
}

func stringOr(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// appointmentDate digs the date out of either the flat or the nested
// appointment payload shape.
func appointmentDate(fields map[string]any) string {
	if d := stringOr(fields, "date", ""); d != "" {
		return d
	}
	if nested, ok := fields["appointment"].(map[string]any); ok {
		if d := stringOr(nested, "date", ""); d != "" {
			return d
		}
	}
	return "date inconnue"
}
