// Package wizard implements the interactive init flow that writes the
// initial `.covrun.yaml`.
package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/covrun/internal/application"
)

type (
	wizardState int

	initWizardModel struct {
		state     wizardState
		config    application.Config
		crates    []wizardCrate
		cursor    int
		confirmed bool
		aborted   bool
	}

	wizardCrate struct {
		name     string
		excluded bool
	}
)

const (
	stateIntro wizardState = iota
	stateEdit
	stateConfirm
)

// Run walks the user through reviewing the detected workspace and returns
// the config to write. The second return value is false when the user
// cancelled.
func Run(cfg application.Config, members []string, stdout io.Writer, stdin io.Reader) (application.Config, bool, error) {
	return runInitWizard(cfg, members, stdout, stdin)
}

func runInitWizard(cfg application.Config, members []string, stdout io.Writer, stdin io.Reader) (application.Config, bool, error) {
	model := newInitWizardModel(cfg, members)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return cfg, false, err
	}
	finalModel, ok := res.(*initWizardModel)
	if !ok {
		return cfg, false, fmt.Errorf("unexpected wizard state")
	}
	if finalModel.aborted || !finalModel.confirmed {
		return cfg, false, nil
	}
	return finalModel.toConfig(), true, nil
}

func newInitWizardModel(cfg application.Config, members []string) *initWizardModel {
	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		excluded[name] = true
	}
	crates := make([]wizardCrate, len(members))
	for i, name := range members {
		crates[i] = wizardCrate{name: name, excluded: excluded[name]}
	}
	return &initWizardModel{
		state:  stateIntro,
		config: cfg,
		crates: crates,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			switch m.state {
			case stateIntro:
				m.state = stateEdit
			case stateEdit:
				m.state = stateConfirm
			case stateConfirm:
				m.confirmed = true
				return m, tea.Quit
			}
		case "esc":
			if m.state == stateConfirm {
				m.state = stateEdit
			}
		case "up":
			if m.state == stateEdit {
				m.moveCursor(-1)
			}
		case "down":
			if m.state == stateEdit {
				m.moveCursor(1)
			}
		case " ", "x":
			if m.state == stateEdit {
				m.toggleSelection()
			}
		}
	}
	return m, nil
}

func (m *initWizardModel) View() string {
	switch m.state {
	case stateIntro:
		return m.viewIntro()
	case stateEdit:
		return m.viewEdit()
	case stateConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

func (m *initWizardModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > len(m.crates)-1 {
		m.cursor = len(m.crates) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *initWizardModel) toggleSelection() {
	if m.cursor < 0 || m.cursor >= len(m.crates) {
		return
	}
	m.crates[m.cursor].excluded = !m.crates[m.cursor].excluded
}

func (m *initWizardModel) viewIntro() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\ncovrun init wizard\n\n")
	fmt.Fprintf(&b, "covrun detected a workspace with %d member crates.\n", len(m.crates))
	fmt.Fprintf(&b, "The wizard lets you exclude crates from whole-workspace coverage runs.\n\n")
	fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewEdit() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReview workspace crates\n\n")
	fmt.Fprintf(&b, "Use ↑/↓ to move, space to toggle exclusion.\n\n")
	for idx, crate := range m.crates {
		prefix := "  "
		if m.cursor == idx {
			prefix = "> "
		}
		mark := "[ ]"
		if crate.excluded {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, mark, crate.name)
	}
	fmt.Fprintf(&b, "\nEnter to continue, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewConfirm() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReady to write configuration\n\n")
	excluded := m.excludedNames()
	if len(excluded) > 0 {
		fmt.Fprintf(&b, "Crates excluded from workspace runs:\n")
		for _, name := range excluded {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	} else {
		fmt.Fprintf(&b, "No crates excluded.\n")
	}
	fmt.Fprintf(&b, "\nReport output: %s\n", m.config.Report.Output)
	fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) excludedNames() []string {
	var names []string
	for _, crate := range m.crates {
		if crate.excluded {
			names = append(names, crate.name)
		}
	}
	return names
}

func (m *initWizardModel) toConfig() application.Config {
	cfg := m.config
	cfg.Exclude = m.excludedNames()
	return cfg
}
