package proxy

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// OpenURL opens rawURL in the default browser.
func OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("open %q: %w: not an absolute URL", rawURL, ErrBadRequest)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("open %q: unsupported platform %s", rawURL, runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %q: %w", rawURL, err)
	}
	// Reap the launcher without blocking the caller.
	go func() { _ = cmd.Wait() }()
	return nil
}
