// Package policy evaluates a classified payload against temporal and
// business validity rules and produces the access decision shown to the
// guard.
//
// Note that for every category except appointment the decision is driven by
// classification alone: payloads are not signed and no server round-trip
// confirms their authenticity. That mirrors the upstream system and is a
// known gap, not a security guarantee.
package policy

import (
	"log/slog"
	"time"

	"github.com/vigil-gate/vigil/internal/model"
)

// Decision reasons shown to the operator. Every result carries one.
const (
	ReasonAppointmentConfirmed = "Rendez-vous confirmé"
	ReasonAppointmentExpired   = "QR code expiré"
	ReasonAppointmentNotToday  = "Rendez-vous non valide pour aujourd'hui"
	ReasonAppointmentPending   = "Rendez-vous non confirmé"
	ReasonUserVerified         = "Utilisateur vérifié"
	ReasonUserUnverified       = "Utilisateur non vérifié ou inactif"
	ReasonServiceRecognized    = "Service consulaire reconnu"
	ReasonDocumentRecognized   = "Document reconnu"
	ReasonGeneralAccess        = "Accès général autorisé"
	ReasonUnknownCategory      = "Catégorie non reconnue"
)

// confirmedStatus is the only appointment status that grants access.
const confirmedStatus = "CONFIRMED"

// Verify renders the access decision for a classified payload at the given
// instant. Pure: the caller supplies the clock and submits the audit record.
func Verify(record model.ClassifiedRecord, now time.Time) model.VerificationResult {
	granted, reason := decide(record, now)

	slog.Debug("verification decided",
		"category", record.Category,
		"granted", granted,
		"reason", reason)

	return model.VerificationResult{
		DecidedAt: now,
		Granted:   granted,
		Reason:    reason,
		Record:    record,
	}
}

func decide(record model.ClassifiedRecord, now time.Time) (bool, string) {
	switch record.Category {
	case model.CategoryAppointment:
		return decideAppointment(record, now)
	case model.CategoryUser:
		return decideUser(record)
	case model.CategoryService:
		return true, ReasonServiceRecognized
	case model.CategoryDocument:
		return true, ReasonDocumentRecognized
	case model.CategoryJSON, model.CategoryURL, model.CategoryText:
		return true, ReasonGeneralAccess
	default:
		return false, ReasonUnknownCategory
	}
}

// decideAppointment grants access only for an appointment dated today, in
// the verifier's local timezone, whose expiry instant has not been reached.
// The expiry boundary itself is already expired.
func decideAppointment(record model.ClassifiedRecord, now time.Time) (bool, string) {
	date, ok := appointmentDate(record, now.Location())
	if !ok || !sameDay(date, now) {
		return false, ReasonAppointmentNotToday
	}

	if validUntil, ok := expiryInstant(record); ok {
		if !now.Before(validUntil) {
			return false, ReasonAppointmentExpired
		}
	}

	if status := appointmentStatus(record); status != "" && status != confirmedStatus {
		return false, ReasonAppointmentPending
	}

	return true, ReasonAppointmentConfirmed
}

// decideUser denies only when the payload itself marks the user inactive or
// unverified; otherwise classification carries the decision.
func decideUser(record model.ClassifiedRecord) (bool, string) {
	for _, key := range []string{"is_active", "is_verified"} {
		if v, ok := lookup(record, key).(bool); ok && !v {
			return false, ReasonUserUnverified
		}
	}
	return true, ReasonUserVerified
}

// appointmentDate parses the encoded appointment date, flat or nested.
func appointmentDate(record model.ClassifiedRecord, loc *time.Location) (time.Time, bool) {
	raw, ok := lookup(record, "date").(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// expiryInstant parses the encoded validity deadline, flat or nested under
// the instructions block. An appointment without one stays valid for its
// calendar day.
func expiryInstant(record model.ClassifiedRecord) (time.Time, bool) {
	raw, ok := lookup(record, "validUntil").(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func appointmentStatus(record model.ClassifiedRecord) string {
	s, _ := lookup(record, "status").(string)
	return s
}

// lookup finds a field at the top level or inside the nested appointment
// and instructions blocks of the richer payload shape.
func lookup(record model.ClassifiedRecord, key string) any {
	if v, ok := record.Fields[key]; ok {
		return v
	}
	for _, block := range []string{"appointment", "instructions", "user"} {
		if nested, ok := record.Fields[block].(map[string]any); ok {
			if v, ok := nested[key]; ok {
				return v
			}
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
