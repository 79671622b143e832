package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestWizardFlow(t *testing.T) {
	var m tea.Model = initialWizard([]string{"etherlink-testnet", "localhost", "sepolia"}, "https://ipfs.io")

	m = press(m, "down", "enter")
	m = press(m, "down", "enter")
	m = press(m, " 0x5FbDB2315678afecb367f032d93F642f64180aa3 ", "enter")
	m = press(m, "enter")

	wm := m.(wizardModel)
	assert.Equal(t, stepDone, wm.step)
	assert.Equal(t, WizardResult{
		DefaultNetwork:  "localhost",
		RPCAlgorithm:    "failover",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		IPFSGateway:     "https://ipfs.io",
	}, wm.result)
}

func TestWizardInputEditing(t *testing.T) {
	var m tea.Model = initialWizard([]string{"etherlink-testnet"}, "https://ipfs.io")
	m = press(m, "enter", "enter")
	m = press(m, "0xab", "backspace", "enter")
	m = press(m, "https://gw.example", "enter")

	wm := m.(wizardModel)
	assert.Equal(t, "0xa", wm.result.ContractAddress)
	assert.Equal(t, "https://gw.example", wm.result.IPFSGateway)
}

func TestWizardQuit(t *testing.T) {
	var m tea.Model = initialWizard([]string{"etherlink-testnet"}, "")
	m = press(m, "esc")
	assert.True(t, m.(wizardModel).quitting)
}
