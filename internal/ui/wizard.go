package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork  string
	RPCAlgorithm    string
	ContractAddress string
	IPFSGateway     string
}

// --- Bubble Tea model ---

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepAlgorithm
	stepContract
	stepGateway
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	choices   []string
	networks  []string
	input     string
	inputMode bool
	quitting  bool
}

var algorithms = []string{"fastest", "failover"}

func initialWizard(networks []string, gateway string) wizardModel {
	return wizardModel{
		step:     stepNetwork,
		choices:  networks,
		networks: networks,
		result:   WizardResult{IPFSGateway: gateway},
	}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if !m.inputMode && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if !m.inputMode && m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "enter":
			if m.inputMode {
				m.applyInput()
			} else {
				m.applyChoice()
			}
			m.cursor = 0
			m.advance()

		case "backspace":
			if m.inputMode && len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}

		default:
			if m.inputMode && msg.Type == tea.KeyRunes {
				m.input += string(msg.Runes)
			}
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	m.input = ""
	switch m.step {
	case stepAlgorithm:
		m.choices = algorithms
	case stepContract, stepGateway:
		m.choices = nil
		m.inputMode = true
	default:
		m.inputMode = false
	}
}

func (m *wizardModel) applyChoice() {
	if m.cursor >= len(m.choices) {
		return
	}
	switch m.step {
	case stepNetwork:
		m.result.DefaultNetwork = m.choices[m.cursor]
	case stepAlgorithm:
		m.result.RPCAlgorithm = m.choices[m.cursor]
	}
}

func (m *wizardModel) applyInput() {
	// Strip whitespace and accidental brackets/quotes from paste.
	v := strings.Trim(strings.TrimSpace(m.input), `[]"'`)
	if v == "" {
		return
	}
	switch m.step {
	case stepContract:
		m.result.ContractAddress = v
	case stepGateway:
		m.result.IPFSGateway = v
	}
}

func (m wizardModel) View() string {
	if m.quitting {
		return ""
	}
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select the collection's network:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices, m.cursor)
	case stepContract:
		s = StyleTitle.Render("Collection contract") + "\n\n"
		s += StyleMeta.Render("Enter the deployed contract address (or press Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepGateway:
		s = StyleTitle.Render("IPFS gateway") + "\n\n"
		s += StyleMeta.Render("Press Enter to keep "+m.result.IPFSGateway+":") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc quit")
	return s
}

// RunWizard launches the interactive setup wizard. gateway pre-fills the
// IPFS gateway answer. A nil result means the user quit.
func RunWizard(networks []string, gateway string) (*WizardResult, error) {
	m := initialWizard(networks, gateway)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	fm := final.(wizardModel)
	if fm.quitting {
		return nil, nil
	}
	return &fm.result, nil
}
