//go:build e2e

package e2e

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
)

func TestMain(m *testing.M) {
	code := m.Run()

	// Safety net for tests that died before their browser was closed.
	cleanupOrphanedBrowsers()

	os.Exit(code)
}

// cleanupOrphanedBrowsers kills Chrome processes left behind by failed
// tests. Best effort.
func cleanupOrphanedBrowsers() {
	switch runtime.GOOS {
	case "darwin", "linux":
		// pkill exits non-zero when nothing matched.
		_ = exec.Command("pkill", "-f", "chromium|chrome").Run()
	case "windows":
		_ = exec.Command("taskkill", "/F", "/IM", "chrome.exe").Run()
		_ = exec.Command("taskkill", "/F", "/IM", "chromium.exe").Run()
	}
}
