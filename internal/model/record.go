package model

import "time"

// Category tags a classified payload.
type Category string

// Payload categories, in classification priority order.
const (
	CategoryService     Category = "service"
	CategoryAppointment Category = "appointment"
	CategoryUser        Category = "user"
	CategoryDocument    Category = "document"
	CategoryJSON        Category = "json"
	CategoryURL         Category = "url"
	CategoryText        Category = "text"
	CategoryUnknown     Category = "unknown"
)

// ClassifiedRecord is the typed result of classifying a raw payload.
// Derived deterministically from the payload text; never mutated.
type ClassifiedRecord struct {
	Category Category
	Title    string
	Summary  string
	Fields   map[string]any
	Raw      string
}

// Field returns a string field from the structured payload, or "" when the
// field is absent or not a string.
func (r ClassifiedRecord) Field(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// VerificationResult is the terminal artifact of the scan pipeline.
// Granted is always accompanied by a non-empty human-readable Reason.
type VerificationResult struct {
	DecidedAt time.Time
	Reason    string
	Record    ClassifiedRecord
	Granted   bool
}
