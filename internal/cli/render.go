package cli

import (
	"fmt"
	"strings"

	"github.com/vigil-gate/vigil/internal/model"
)

// RenderResult renders a verification decision for the operator: a colored
// box with the decision, the reason, and what was recognized in the payload.
func RenderResult(result model.VerificationResult) string {
	var b strings.Builder

	if result.Granted {
		b.WriteString(FormatSuccess("Accès autorisé"))
	} else {
		b.WriteString(FormatError("Accès refusé"))
	}
	b.WriteString("\n")
	b.WriteString(BoldStyle.Render(result.Reason))
	b.WriteString("\n\n")

	b.WriteString(result.Record.Title)
	if result.Record.Summary != "" {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(result.Record.Summary))
	}
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("Catégorie: %s · %s",
		result.Record.Category,
		result.DecidedAt.Format("15:04:05"))))

	style := DeniedBoxStyle
	title := ErrorIcon + " Vérification"
	if result.Granted {
		style = GrantedBoxStyle
		title = SuccessIcon + " Vérification"
	}
	return renderBoxWith(style, title, b.String())
}

// RenderReport renders the capability snapshot: what the host supports and
// any remediation hints, most severe first.
func RenderReport(report model.CapabilityReport) string {
	var b strings.Builder

	if report.CameraUsable() {
		b.WriteString(FormatSuccess("Caméra utilisable"))
	} else {
		b.WriteString(FormatError("Caméra indisponible"))
	}
	b.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Origine", report.Origin.Scheme + "://" + report.Origin.Hostname},
		{"Contexte sécurisé", yesNo(report.SecureContext)},
		{"Moteur", string(report.Engine)},
		{"Appareil", deviceFamily(report)},
		{"API", variantList(report.APIVariants)},
		{"Permission", string(report.PermissionState)},
		{"Application installée", yesNo(report.InstalledApp)},
	}
	for _, row := range rows {
		b.WriteString(TableCellStyle.Render(BoldStyle.Render(row.label + ":")))
		b.WriteString(row.value)
		b.WriteString("\n")
	}

	for _, hint := range report.Hints {
		b.WriteString("\n")
		b.WriteString(renderHint(hint))
	}

	return RenderBox(ScanIcon+" Capacités", strings.TrimRight(b.String(), "\n"))
}

// RenderAttempts renders the acquisition audit trail, one line per strategy.
func RenderAttempts(attempts []model.AcquisitionAttempt) string {
	if len(attempts) == 0 {
		return SubtleStyle.Render("Aucune tentative d'acquisition")
	}

	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Tentatives d'acquisition"))
	b.WriteString("\n")
	for i, a := range attempts {
		line := fmt.Sprintf("%d. %s", i+1, a.Strategy)
		if a.Constraints != "" {
			line += " (" + a.Constraints + ")"
		}
		switch a.Outcome {
		case model.AttemptSucceeded:
			b.WriteString(SuccessStyle.Render(SuccessIcon + " " + line))
		case model.AttemptSkipped:
			b.WriteString(SubtleStyle.Render("- " + line + ": " + a.Err))
		default:
			b.WriteString(ErrorStyle.Render(ErrorIcon + " " + line + ": " + a.Err))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderHistory renders recent scan records, newest first.
func RenderHistory(records []model.AuditRecord) string {
	if len(records) == 0 {
		return SubtleStyle.Render("Aucun scan enregistré")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render("Historique des scans"))
	b.WriteString("\n")
	for _, r := range records {
		decision := StyleError("refusé")
		if r.Granted {
			decision = StyleSuccess("autorisé")
		}
		b.WriteString(fmt.Sprintf("%s  %-12s %s  %s\n",
			r.At.Format("02/01 15:04"),
			r.Category,
			decision,
			SubtleStyle.Render(r.Reason)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHint(hint model.RemediationHint) string {
	msg := hint.Message
	if hint.Solution != "" {
		msg += "\n  " + SubtleStyle.Render(hint.Solution)
	}
	switch hint.Severity {
	case model.HintError:
		return FormatError(msg)
	case model.HintWarning:
		return FormatWarning(msg)
	default:
		return FormatInfo(msg)
	}
}

func deviceFamily(report model.CapabilityReport) string {
	switch {
	case report.IOS:
		return "mobile (iOS)"
	case report.Android:
		return "mobile (Android)"
	case report.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

func variantList(variants []model.APIVariant) string {
	if len(variants) == 0 {
		return "aucune"
	}
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func yesNo(v bool) string {
	if v {
		return "oui"
	}
	return "non"
}
