package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Input is where prompts read answers from. Tests replace it.
var Input io.Reader = os.Stdin

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleWarning.Render(prompt))
	return readYes(Input)
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func ConfirmDanger(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes(Input)
}

// Ask prompts for a line of text; def is returned for an empty answer.
func Ask(prompt, def string) string {
	if def != "" {
		fmt.Printf("%s %s: ", StyleWarning.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Printf("%s: ", StyleWarning.Render(prompt))
	}
	line, _ := bufio.NewReader(Input).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func readYes(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
