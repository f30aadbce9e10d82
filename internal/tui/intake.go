// internal/tui/intake.go
//
// The intake form asks the cause-of-loss questions one at a time and builds
// job_metadata.json. It is a plain bubbletea model: a single text input that
// is reused for every question, with the cause-specific questions appended
// once the cause is known.

package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/kingrea/claimflow/internal/claim"
)

// AnswerKind controls how an answer is validated and stored.
type AnswerKind int

const (
	AnswerText AnswerKind = iota
	AnswerYesNo
	AnswerNumber
	AnswerChoice
)

// Question is one prompt of the intake form.
type Question struct {
	Key     string
	Prompt  string
	Kind    AnswerKind
	Choices []string
}

var (
	intakeTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	intakePromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	intakeDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	intakeErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	intakeHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// CauseQuestion is always asked first.
func CauseQuestion() Question {
	choices := make([]string, 0, len(claim.Perils()))
	for _, p := range claim.Perils() {
		choices = append(choices, string(p))
	}
	return Question{Key: "cause", Prompt: "Cause of loss", Kind: AnswerChoice, Choices: choices}
}

// FollowUps returns the questions asked for a cause of loss.
func FollowUps(cause claim.Peril) []Question {
	switch cause {
	case claim.PerilFlood:
		return []Question{
			{Key: "flood_water_height_in", Prompt: "How high did the water rise? (inches)", Kind: AnswerNumber},
			{Key: "pre_mitigation_photos", Prompt: "Were photos taken before mitigation? (yes/no)", Kind: AnswerYesNo},
		}
	case claim.PerilFire:
		return []Question{
			{Key: "fire_type", Prompt: "Kitchen fire, electrical, lightning, or unknown?", Kind: AnswerText},
			{Key: "smoke_whole_home", Prompt: "Did smoke affect the entire home? (yes/no)", Kind: AnswerYesNo},
		}
	case claim.PerilStorm, claim.PerilWater, claim.PerilWind:
		return []Question{
			{Key: "roof_damage", Prompt: "Was there roof damage? (yes/no)", Kind: AnswerYesNo},
			{Key: "interior_damage", Prompt: "Was there interior water damage? (yes/no)", Kind: AnswerYesNo},
		}
	}
	return nil
}

// Normalize validates a raw answer and returns its canonical text form.
func (q Question) Normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch q.Kind {
	case AnswerChoice:
		lower := strings.ToLower(value)
		if lower == "" {
			return "", fmt.Errorf("choose one of %s", strings.Join(q.Choices, ", "))
		}
		for _, choice := range q.Choices {
			if lower == choice {
				return choice, nil
			}
		}
		if matches := fuzzy.Find(lower, q.Choices); len(matches) > 0 {
			return matches[0].Str, nil
		}
		return "", fmt.Errorf("%q is not one of %s", value, strings.Join(q.Choices, ", "))
	case AnswerYesNo:
		switch strings.ToLower(value) {
		case "y", "yes":
			return "yes", nil
		case "n", "no":
			return "no", nil
		}
		return "", fmt.Errorf("answer yes or no")
	case AnswerNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
			return "", fmt.Errorf("enter a number of inches, e.g. 18")
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		if value == "" {
			return "unknown", nil
		}
		return strings.ToLower(value), nil
	}
}

// Intake is the bubbletea model of the intake form.
type Intake struct {
	jobID     string
	questions []Question
	index     int
	answers   map[string]string
	input     textinput.Model
	err       string
	done      bool
	aborted   bool
}

// NewIntake creates the form for a job.
func NewIntake(jobID string) *Intake {
	input := textinput.New()
	input.CharLimit = 64
	input.Width = 40
	input.Focus()
	return &Intake{
		jobID:     jobID,
		questions: []Question{CauseQuestion()},
		answers:   map[string]string{},
		input:     input,
	}
}

// Init implements tea.Model.
func (m *Intake) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Intake) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Intake) submit() (tea.Model, tea.Cmd) {
	q := m.questions[m.index]
	value, err := q.Normalize(m.input.Value())
	if err != nil {
		m.err = err.Error()
		m.input.Reset()
		return m, nil
	}
	m.err = ""
	m.answers[q.Key] = value
	if q.Key == "cause" {
		m.questions = append([]Question{q}, FollowUps(claim.ParsePeril(value))...)
	}
	m.input.Reset()
	m.index++
	if m.index >= len(m.questions) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Intake) View() string {
	var b strings.Builder
	b.WriteString(intakeTitleStyle.Render(fmt.Sprintf("Claim intake · %s", m.jobID)))
	b.WriteString("\n\n")
	for i := 0; i < m.index && i < len(m.questions); i++ {
		q := m.questions[i]
		b.WriteString(intakeDoneStyle.Render(fmt.Sprintf("✓ %s: %s", q.Prompt, m.answers[q.Key])))
		b.WriteString("\n")
	}
	if m.done {
		b.WriteString("\n")
		b.WriteString(intakeHintStyle.Render("Intake complete."))
		b.WriteString("\n")
		return b.String()
	}
	q := m.questions[m.index]
	prompt := q.Prompt
	if q.Kind == AnswerChoice {
		prompt = fmt.Sprintf("%s [%s]", prompt, strings.Join(q.Choices, ", "))
	}
	b.WriteString(intakePromptStyle.Render(prompt))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(intakeErrStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(intakeHintStyle.Render("enter to confirm · esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// Completed reports whether every question was answered.
func (m *Intake) Completed() bool {
	return m.done && !m.aborted
}

// Aborted reports whether the user cancelled the form.
func (m *Intake) Aborted() bool {
	return m.aborted
}

// Answers returns the canonical answers keyed by question key.
func (m *Intake) Answers() map[string]string {
	out := make(map[string]string, len(m.answers))
	for key, value := range m.answers {
		out[key] = value
	}
	return out
}

// Metadata converts the answers into the job_metadata.json document.
func (m *Intake) Metadata() map[string]any {
	return BuildMetadata(m.jobID, m.questions, m.answers)
}

// BuildMetadata types each answer by its question kind.
func BuildMetadata(jobID string, questions []Question, answers map[string]string) map[string]any {
	meta := map[string]any{"job_id": jobID}
	for _, q := range questions {
		value, ok := answers[q.Key]
		if !ok {
			continue
		}
		switch q.Kind {
		case AnswerYesNo:
			meta[q.Key] = value == "yes"
		case AnswerNumber:
			n, _ := strconv.ParseFloat(value, 64)
			if n == math.Trunc(n) {
				meta[q.Key] = int64(n)
			} else {
				meta[q.Key] = n
			}
		default:
			meta[q.Key] = value
		}
	}
	return meta
}
