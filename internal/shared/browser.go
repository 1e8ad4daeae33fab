package shared

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the launcher for the platform, or false when there is none.
func browserCommand(goos, url string) (name string, args []string, ok bool) {
	switch goos {
	case "darwin":
		return "open", []string{url}, true
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, true
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, true
	default:
		return "", nil, false
	}
}

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser sends the system browser to url without waiting for it to exit.
//
// Its signature matches auth.Navigator so the CLI can hand it to the login flow.
func OpenBrowser(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, args, ok := browserCommand(runtime.GOOS, url)
	if !ok {
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
