// Package ui styles CLI output with lipgloss.
package ui
