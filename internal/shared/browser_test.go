package shared

import (
	"errors"
	"os/exec"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	tc := []struct {
		name    string
		goos    string
		wantBin string
	}{
		{name: "darwin", goos: "darwin", wantBin: "open"},
		{name: "linux", goos: "linux", wantBin: "xdg-open"},
		{name: "windows", goos: "windows", wantBin: "rundll32"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var started *exec.Cmd
			getRuntime = func() string { return tt.goos }
			startCommand = func(cmd *exec.Cmd) error {
				started = cmd
				return nil
			}

			if err := OpenBrowser("https://provider.example.com/auth"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if started == nil {
				t.Fatal("expected a command to be started")
			}
			if started.Args[0] != tt.wantBin {
				t.Errorf("expected %s, got %s", tt.wantBin, started.Args[0])
			}
			if last := started.Args[len(started.Args)-1]; last != "https://provider.example.com/auth" {
				t.Errorf("expected url as last argument, got %s", last)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		err := OpenBrowser("https://provider.example.com/auth")
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("empty url", func(t *testing.T) {
		if err := OpenBrowser(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		startCommand = func(*exec.Cmd) error { return errors.New("exec: not found") }

		if err := (BrowserOpener{}).OpenURL("https://provider.example.com/auth"); err == nil {
			t.Fatal("expected error when the command cannot start")
		}
	})
}
