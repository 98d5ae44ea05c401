package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#00FF00", "#FF0000", "#FFA500", "#626262")

	for name, render := range map[string]func(string) string{
		"title": p.Title,
		"ok":    p.OK,
		"err":   p.Err,
		"warn":  p.Warn,
		"help":  p.Help,
	} {
		t.Run(name, func(t *testing.T) {
			if got := render("hello"); !strings.Contains(got, "hello") {
				t.Errorf("rendered text lost its content: %q", got)
			}
		})
	}
}
