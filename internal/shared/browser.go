package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// startCommand launches cmd without waiting for it to exit.
var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// browserCommand returns the platform command that hands url to the default external application.
func browserCommand(url string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform %s", ErrNotImplemented, rt)
	}
}

// OpenBrowser opens the default system browser to the specified URL.
//
// It is fire-and-forget: the launched process is not waited on.
func OpenBrowser(url string) error {
	if url == "" {
		return fmt.Errorf("%w: url", ErrMissingArgument)
	}

	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// BrowserOpener adapts [OpenBrowser] to types expecting an OpenURL method.
type BrowserOpener struct{}

// OpenURL calls [OpenBrowser].
func (BrowserOpener) OpenURL(url string) error { return OpenBrowser(url) }
