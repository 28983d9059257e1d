package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/blueprince/internal/cycle"
	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateStepping
	stateConfirmResources
	stateAnnotating
)

type model struct {
	state     sessionState
	cycle     *cycle.Cycle
	game      *game.State
	textInput textinput.Model
	viewport  viewport.Model
	log       string
	width     int
	height    int

	// pending operator work
	resourcePrompt   *cycle.ResourcePrompt
	confirmed        map[game.Resource]int
	annotationPrompt *cycle.AnnotationPrompt
	annotations      []cycle.DoorAnnotation
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)
)

func NewModel(c *cycle.Cycle, g *game.State) model {
	ti := textinput.New()
	ti.Placeholder = "/step, /map, /status, /note, /save, /quit"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 60

	return model{
		state:     stateIdle,
		cycle:     c,
		game:      g,
		textInput: ti,
		confirmed: make(map[game.Resource]int),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type stepDoneMsg struct {
	prompt cycle.Prompt
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.75)
		m.viewport.Height = msg.Height - 6
		if m.viewport.Width > 0 {
			m.viewport.SetContent(m.log)
		}

	case stepDoneMsg:
		return m.handleStepDone(msg)
	}

	if m.state != stateStepping {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textInput.Value())
	m.textInput.Reset()

	switch m.state {
	case stateConfirmResources:
		return m.handleResourceInput(input)

	case stateAnnotating:
		return m.handleAnnotationInput(input)

	case stateIdle:
		switch input {
		case "", "/step":
			m.state = stateStepping
			m.appendLog(userStyle.Render("> step"))
			return m, m.step()
		case "/map":
			m.appendLog(m.renderMap())
			return m, nil
		case "/status":
			m.appendLog(gameStyle.Render(m.game.Summarize()))
			return m, nil
		case "/save":
			m.appendLog(gameStyle.Render("saving happens at the end of each cycle; step to persist"))
			return m, nil
		case "/note":
			title, err := m.cycle.CaptureNote(context.Background())
			if err != nil {
				m.appendLog(warnStyle.Render(err.Error()))
				return m, nil
			}
			m.appendLog(gameStyle.Render("noted: " + title))
			return m, nil
		case "/quit":
			return m, tea.Quit
		default:
			m.appendLog(helpStyle.Render("unknown command " + input))
			return m, nil
		}
	}
	return m, nil
}

// handleResourceInput collects one "resource=value" correction per line; an
// empty line accepts the remaining observed values and resumes the cycle.
func (m model) handleResourceInput(input string) (tea.Model, tea.Cmd) {
	if input != "" {
		name, value, ok := strings.Cut(input, "=")
		if !ok {
			m.appendLog(helpStyle.Render("expected resource=value, e.g. coins=5"))
			return m, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			m.appendLog(helpStyle.Render("value must be a non-negative integer"))
			return m, nil
		}
		m.confirmed[game.Resource(strings.ToLower(strings.TrimSpace(name)))] = n
		return m, nil
	}
	for r, reading := range m.resourcePrompt.Readings {
		if _, ok := m.confirmed[r]; !ok {
			m.confirmed[r] = reading.Value
		}
	}
	confirmed := m.confirmed
	m.confirmed = make(map[game.Resource]int)
	m.resourcePrompt = nil
	m.state = stateStepping
	return m, func() tea.Msg {
		prompt, err := m.cycle.ResumeResources(context.Background(), confirmed)
		return stepDoneMsg{prompt, err}
	}
}

// handleAnnotationInput collects door annotations, one per line, in the form
// "N leads_to=HALLWAY locked=false security=true"; /done resumes.
func (m model) handleAnnotationInput(input string) (tea.Model, tea.Cmd) {
	if input != "/done" {
		ann, err := parseAnnotation(input)
		if err != nil {
			m.appendLog(helpStyle.Render(err.Error()))
			return m, nil
		}
		m.annotations = append(m.annotations, ann)
		return m, nil
	}
	annotations := m.annotations
	m.annotations = nil
	m.annotationPrompt = nil
	m.state = stateStepping
	return m, func() tea.Msg {
		prompt, err := m.cycle.ResumeAnnotation(context.Background(), annotations)
		return stepDoneMsg{prompt, err}
	}
}

func parseAnnotation(input string) (cycle.DoorAnnotation, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return cycle.DoorAnnotation{}, fmt.Errorf("expected: <direction> [leads_to=X] [locked=bool] [security=bool]")
	}
	dir, err := house.ParseDirection(fields[0])
	if err != nil {
		return cycle.DoorAnnotation{}, err
	}
	ann := cycle.DoorAnnotation{Door: dir}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return cycle.DoorAnnotation{}, fmt.Errorf("expected key=value, got %q", f)
		}
		switch strings.ToLower(key) {
		case "leads_to":
			ann.LeadsTo = value
		case "locked":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cycle.DoorAnnotation{}, fmt.Errorf("locked: %v", err)
			}
			ann.Locked = &b
		case "security":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cycle.DoorAnnotation{}, fmt.Errorf("security: %v", err)
			}
			ann.Security = &b
		default:
			return cycle.DoorAnnotation{}, fmt.Errorf("unknown field %q", key)
		}
	}
	return ann, nil
}

func (m model) handleStepDone(msg stepDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.game.Stale() {
			m.appendLog(warnStyle.Render("warning: the on-disk snapshot is stale"))
		}
		m.appendLog(warnStyle.Render(msg.err.Error()))
		m.state = stateIdle
		return m, nil
	}
	for _, conflict := range m.cycle.Conflicts() {
		m.appendLog(warnStyle.Render("adjacency conflict: " + conflict.String()))
	}
	switch prompt := msg.prompt.(type) {
	case nil:
		if m.cycle.DayEnded() {
			m.appendLog(gameStyle.Bold(true).Render(fmt.Sprintf("Day %d is over.", m.game.Day)))
		} else {
			m.appendLog(gameStyle.Render("cycle complete"))
		}
		m.state = stateIdle
	case cycle.ResourcePrompt:
		m.resourcePrompt = &prompt
		m.state = stateConfirmResources
		var lines []string
		for r, reading := range prompt.Readings {
			lines = append(lines, fmt.Sprintf("  %s: read %d (confidence %.2f)", r, reading.Value, reading.Confidence))
		}
		m.appendLog(gameStyle.Render("confirm these readings (resource=value to correct, empty line to accept):\n" + strings.Join(lines, "\n")))
		m.textInput.Placeholder = "coins=5 ... empty line accepts"
	case cycle.AnnotationPrompt:
		m.annotationPrompt = &prompt
		m.state = stateAnnotating
		m.appendLog(gameStyle.Render(fmt.Sprintf(
			"annotate the doors of %s (%d doors missing, unresolved: %v); one per line, /done when finished",
			prompt.Room, prompt.DoorsShort, prompt.Unresolved)))
		m.textInput.Placeholder = "N leads_to=HALLWAY locked=false security=true"
	}
	return m, nil
}

func (m *model) appendLog(s string) {
	m.log += s + "\n\n"
	if m.viewport.Width == 0 && m.width > 0 {
		m.viewport = viewport.New(int(float64(m.width)*0.75), m.height-6)
	}
	m.viewport.SetContent(m.log)
	m.viewport.GotoBottom()
}

func (m model) renderMap() string {
	var b strings.Builder
	for line := range m.game.House.Render() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return gameStyle.Render(b.String())
}

func (m model) View() string {
	logView := m.viewport.View()
	sideView := m.renderSidePanel()

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, logView, sideView)

	help := helpStyle.Render("Commands: /step, /map, /status, /note, /quit. Enter steps the cycle.")
	if m.state == stateStepping {
		help = helpStyle.Render("Working...")
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+m.textInput.View(),
		"\n"+help,
	) + "\n"
}

func (m model) renderSidePanel() string {
	day := titleStyle.Render("DAY") + "\n" + strconv.Itoa(m.game.Day) + "\n\n"

	location := titleStyle.Render("LOCATION") + "\n"
	if m.game.Current != nil {
		location += m.game.Current.Name
	}
	location += "\n\n"

	phase := titleStyle.Render("PHASE") + "\n" + string(m.cycle.Phase())
	if m.game.Stale() {
		phase += warnStyle.Render(" (stale)")
	}
	phase += "\n\n"

	resources := titleStyle.Render("RESOURCES") + "\n"
	for _, r := range game.AllResources {
		resources += fmt.Sprintf("%s: %d\n", r, m.game.Resources[r])
	}
	resources += "\n"

	invTitle := titleStyle.Render("INVENTORY") + "\n"
	inventory := ""
	if len(m.game.Inventory) == 0 {
		inventory = "(empty)"
	} else {
		for _, item := range m.game.Inventory {
			inventory += "- " + item.Name + "\n"
		}
	}

	content := day + location + phase + resources + invTitle + inventory

	sideWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(sideWidth).Height(m.viewport.Height).Render(content)
}

func (m model) step() tea.Cmd {
	return func() tea.Msg {
		prompt, err := m.cycle.Step(context.Background())
		return stepDoneMsg{prompt, err}
	}
}

func Run(c *cycle.Cycle, g *game.State) error {
	p := tea.NewProgram(NewModel(c, g), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
