package model

import "time"

// Role is an operator role in the host identity system.
type Role string

// Operator roles. Only RoleVigile may operate the security scanner.
const (
	RoleVigile Role = "VIGILE"
	RoleAdmin  Role = "ADMIN"
	RoleUser   Role = "USER"
)

// Operator identifies the person running the scanner. Read from the ambient
// identity collaborator; used for audit attribution only.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// CanScan reports whether the operator holds the designated security role.
func (o Operator) CanScan() bool {
	return o.Role == RoleVigile
}

// AuditAction labels an audit record by payload category.
type AuditAction string

// Audit actions, matching the recording backend's vocabulary.
const (
	ActionScanAppointment AuditAction = "QR_SCAN_APPOINTMENT"
	ActionScanUser        AuditAction = "QR_SCAN_USER"
	ActionScanGeneral     AuditAction = "QR_SCAN_GENERAL"
)

// AuditActionFor maps a payload category to its audit action.
func AuditActionFor(c Category) AuditAction {
	switch c {
	case CategoryAppointment:
		return ActionScanAppointment
	case CategoryUser:
		return ActionScanUser
	default:
		return ActionScanGeneral
	}
}

// AuditRecord is the fire-and-forget record emitted to the external audit
// collaborator for every resolved verification.
type AuditRecord struct {
	At       time.Time     `json:"scan_timestamp"`
	ID       string        `json:"id"`
	Action   AuditAction   `json:"action"`
	Category Category      `json:"category"`
	Reason   string        `json:"reason"`
	Raw      string        `json:"qr_data"`
	Operator Operator      `json:"scanned_by"`
	Source   PayloadSource `json:"source"`
	Granted  bool          `json:"is_valid"`
}
