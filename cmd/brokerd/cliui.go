package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("99")
	dimColor    = lipgloss.Color("243")

	accentStyle = lipgloss.NewStyle().Foreground(accentColor)
	labelStyle  = lipgloss.NewStyle().Foreground(dimColor)
)

type kv struct {
	key   string
	value string
}

func keyValue(key, value string) kv { return kv{key: key, value: value} }

// keyValues renders aligned "key:  value" lines, matching the rest of the
// corpus's small-CLI status output.
func keyValues(pairs ...kv) string {
	maxLen := 0
	for _, p := range pairs {
		if len(p.key) > maxLen {
			maxLen = len(p.key)
		}
	}

	var sb strings.Builder
	for _, p := range pairs {
		label := fmt.Sprintf("%-*s", maxLen+1, p.key+":")
		sb.WriteString(labelStyle.Render(label) + " " + p.value + "\n")
	}
	return sb.String()
}

func accent(s string) string { return accentStyle.Render(s) }
