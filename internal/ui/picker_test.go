package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testItems() []PickerItem {
	return []PickerItem{
		{Label: "alice", SubLabel: "0xf39F…2266", Value: "alice"},
		{Label: "bob", SubLabel: "0x7099…79C8", Value: "bob"},
		{Label: "carol", Value: "carol"},
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestPickerNavigateAndSelect(t *testing.T) {
	m := press(pickerModel{title: "Connect an account", items: testItems()}, "down", "down", "up", "enter").(pickerModel)
	require.NotNil(t, m.selected)
	assert.Equal(t, "bob", m.selected.Value)
}

func TestPickerCursorBounds(t *testing.T) {
	m := press(pickerModel{items: testItems()}, "up", "down", "down", "down", "down").(pickerModel)
	assert.Equal(t, 2, m.cursor)
}

func TestPickerDigitSelects(t *testing.T) {
	m := press(pickerModel{items: testItems()}, "3").(pickerModel)
	require.NotNil(t, m.selected)
	assert.Equal(t, "carol", m.selected.Value)

	m = press(pickerModel{items: testItems()}, "9").(pickerModel)
	assert.Nil(t, m.selected, "out of range digit is ignored")
}

func TestPickerCancel(t *testing.T) {
	m := press(pickerModel{items: testItems()}, "esc").(pickerModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickerView(t *testing.T) {
	v := pickerModel{title: "Connect an account", items: testItems()}.View()
	assert.Contains(t, v, "Connect an account")
	assert.Contains(t, v, "alice")
	assert.Contains(t, v, "0x7099…79C8")
	assert.True(t, strings.Contains(v, "2 "), "non-selected rows are numbered")
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("x", nil)
	assert.Error(t, err)
}
