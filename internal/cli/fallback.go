package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FallbackModel is the manual-entry form shown when the camera path is
// unavailable. The operator types (or pastes) the code printed under the QR
// image; empty submissions are rejected in place.
type FallbackModel struct {
	input     textinput.Model
	errMsg    string
	value     string
	submitted bool
	cancelled bool
}

// NewFallbackModel creates the manual-entry form.
func NewFallbackModel() FallbackModel {
	input := textinput.New()
	input.Placeholder = "Saisir le code QR..."
	input.CharLimit = 500
	input.Width = 50
	input.Focus()

	return FallbackModel{input: input}
}

// Init returns initial commands.
func (m FallbackModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m FallbackModel) Update(msg tea.Msg) (FallbackModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyEnter:
		trimmed := strings.TrimSpace(m.input.Value())
		if trimmed == "" {
			m.errMsg = "Veuillez saisir un code QR"
			return m, nil
		}
		m.value = trimmed
		m.submitted = true
		return m, tea.Quit

	case tea.KeyEsc, tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	}

	m.errMsg = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

// View renders the form.
func (m FallbackModel) View() string {
	var b strings.Builder
	b.WriteString(FormatTitle("Saisie manuelle"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(KeyboardIcon + " Caméra indisponible — saisissez le code sous le QR"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(FormatWarning(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(SubtleStyle.Render("entrée: valider · échap: annuler"))
	return b.String()
}

// Value returns the submitted text and whether a submission happened.
func (m FallbackModel) Value() (string, bool) {
	return m.value, m.submitted
}

// Cancelled reports whether the operator dismissed the form.
func (m FallbackModel) Cancelled() bool {
	return m.cancelled
}

// fallbackProgram adapts FallbackModel to tea.Model for tea.NewProgram.
type fallbackProgram struct {
	FallbackModel
}

func (p fallbackProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := p.FallbackModel.Update(msg)
	return fallbackProgram{m}, cmd
}

// RunFallbackForm runs the manual-entry form to completion and returns the
// submitted text. ok is false when the operator cancelled.
func RunFallbackForm() (text string, ok bool, err error) {
	final, err := tea.NewProgram(fallbackProgram{NewFallbackModel()}).Run()
	if err != nil {
		return "", false, err
	}
	p, isForm := final.(fallbackProgram)
	if !isForm || p.Cancelled() {
		return "", false, nil
	}
	text, ok = p.Value()
	return text, ok, nil
}
