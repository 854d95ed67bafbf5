package policy

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-gate/vigil/internal/classify"
	"github.com/vigil-gate/vigil/internal/model"
)

func TestVerify_Appointment(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local)
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	tests := []struct {
		name        string
		raw         string
		wantGranted bool
		wantReason  string
	}{
		{
			name:        "today and not expired",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, today, now.Add(time.Hour).Format(time.RFC3339)),
			wantGranted: true,
			wantReason:  ReasonAppointmentConfirmed,
		},
		{
			name:        "expired",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, today, now.Add(-time.Hour).Format(time.RFC3339)),
			wantGranted: false,
			wantReason:  ReasonAppointmentExpired,
		},
		{
			name:        "expiry boundary is already expired",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, today, now.Format(time.RFC3339)),
			wantGranted: false,
			wantReason:  ReasonAppointmentExpired,
		},
		{
			name:        "wrong day",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, yesterday, now.Add(time.Hour).Format(time.RFC3339)),
			wantGranted: false,
			wantReason:  ReasonAppointmentNotToday,
		},
		{
			name:        "no date at all",
			raw:         `{"appointment_id":42}`,
			wantGranted: false,
			wantReason:  ReasonAppointmentNotToday,
		},
		{
			name:        "today without expiry stays valid for the day",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q}`, today),
			wantGranted: true,
			wantReason:  ReasonAppointmentConfirmed,
		},
		{
			name:        "unconfirmed status",
			raw:         fmt.Sprintf(`{"appointment_id":42,"date":%q,"status":"PENDING"}`, today),
			wantGranted: false,
			wantReason:  ReasonAppointmentPending,
		},
		{
			name: "nested payload shape",
			raw: fmt.Sprintf(`{"appointment":{"id":"9","date":%q,"status":"CONFIRMED"},"instructions":{"validUntil":%q}}`,
				today, now.Add(time.Hour).Format(time.RFC3339)),
			wantGranted: true,
			wantReason:  ReasonAppointmentConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := classify.Classify(tt.raw)
			require.Equal(t, model.CategoryAppointment, record.Category)

			result := Verify(record, now)
			assert.Equal(t, tt.wantGranted, result.Granted)
			assert.Equal(t, tt.wantReason, result.Reason)
			assert.Equal(t, now, result.DecidedAt)
		})
	}
}

func TestVerify_ReasonMentionsConfirmeAndExpire(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	today := now.Format("2006-01-02")

	granted := Verify(classify.Classify(
		fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, today, now.Add(time.Hour).Format(time.RFC3339))), now)
	assert.True(t, granted.Granted)
	assert.Contains(t, granted.Reason, "confirmé")

	denied := Verify(classify.Classify(
		fmt.Sprintf(`{"appointment_id":42,"date":%q,"validUntil":%q}`, today, now.Add(-time.Hour).Format(time.RFC3339))), now)
	assert.False(t, denied.Granted)
	assert.Contains(t, denied.Reason, "expiré")
}

func TestVerify_OtherCategories(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		raw         string
		wantGranted bool
		wantReason  string
	}{
		{
			name:        "service granted by classification",
			raw:         `{"type":"service","service_id":7,"service_name":"Visa"}`,
			wantGranted: true,
			wantReason:  ReasonServiceRecognized,
		},
		{
			name:        "document granted",
			raw:         `{"document_type":"passeport"}`,
			wantGranted: true,
			wantReason:  ReasonDocumentRecognized,
		},
		{
			name:        "verified user granted",
			raw:         `{"user_id":5,"is_active":true,"is_verified":true}`,
			wantGranted: true,
			wantReason:  ReasonUserVerified,
		},
		{
			name:        "inactive user denied",
			raw:         `{"user_id":5,"is_active":false,"is_verified":true}`,
			wantGranted: false,
			wantReason:  ReasonUserUnverified,
		},
		{
			name:        "unverified user denied",
			raw:         `{"user_id":5,"is_verified":false}`,
			wantGranted: false,
			wantReason:  ReasonUserUnverified,
		},
		{
			name:        "plain text gets general access",
			raw:         "hello",
			wantGranted: true,
			wantReason:  ReasonGeneralAccess,
		},
		{
			name:        "url gets general access",
			raw:         "https://example.org",
			wantGranted: true,
			wantReason:  ReasonGeneralAccess,
		},
		{
			name:        "unknown denied",
			raw:         "",
			wantGranted: false,
			wantReason:  ReasonUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Verify(classify.Classify(tt.raw), now)
			assert.Equal(t, tt.wantGranted, result.Granted)
			assert.Equal(t, tt.wantReason, result.Reason)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestVerify_AlwaysHasReason(t *testing.T) {
	now := time.Now()
	for _, raw := range []string{"", "x", "{}", `{"user_id":1}`, "123", "https://a", `{"appointment_id":1}`} {
		result := Verify(classify.Classify(raw), now)
		assert.NotEmpty(t, result.Reason, "raw %q", raw)
	}
}
